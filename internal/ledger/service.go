package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/altamimi/custody-ledger/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation errors surfaced to the caller before any mutation.
var (
	ErrZeroAmount        = errors.New("amount must differ from zero")
	ErrMissingEmployeeID = errors.New("employeeId is required")
	ErrInvalidType       = errors.New("invalid expense type")
	ErrInvalidMethod     = errors.New("invalid payment method")
)

// unknownEmployeeName is recorded when the referenced employee does not
// exist; the ledger stays append-only instead of failing the creation.
const unknownEmployeeName = "غير معروف"

// CreateExpenseInput carries the caller-supplied fields of a new expense.
// Amount arrives already signed: the UI applies the sign convention of the
// expense type before calling the service.
type CreateExpenseInput struct {
	EmployeeID    string
	Type          entity.ExpenseType
	Amount        decimal.Decimal
	Date          string
	PaymentMethod entity.PaymentMethod
	Notes         string
	ReceiptURL    string
	CreatedBy     entity.Creator
	CreatedByName string
}

// Service enforces the custody-balance invariant: after every operation an
// employee's custodyBalance equals the sum of the amounts of their
// non-deleted expenses. It is the only component that mutates balances.
//
// Every mutation runs its whole read-modify-write cycle under one mutex,
// so in-process callers cannot lose updates to each other.
type Service struct {
	store   store.Store
	logger  *zap.Logger
	opDelay time.Duration

	mu sync.Mutex
}

// Options tunes service behavior.
type Options struct {
	// OpDelay adds an artificial latency to every operation. The original
	// system simulated network round-trips this way; zero disables it.
	OpDelay time.Duration
}

// NewService creates a ledger service over the given store.
func NewService(st store.Store, opts Options, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		logger:  logger,
		opDelay: opts.OpDelay,
	}
}

// Employees returns the current employee collection.
func (s *Service) Employees(ctx context.Context) []entity.Employee {
	s.delay(ctx)
	return s.store.LoadEmployees(ctx)
}

// Expenses returns the current expense collection, most recent first.
func (s *Service) Expenses(ctx context.Context) []entity.Expense {
	s.delay(ctx)
	return s.store.LoadExpenses(ctx)
}

// CreateExpense records a new expense and immediately applies its balance
// effect; the effect is not deferred to confirmation. The new record is
// prepended so the collection stays most-recent-first. A nonexistent
// employeeId does not fail the creation: the record is stored with a
// placeholder name and no balance changes.
func (s *Service) CreateExpense(ctx context.Context, input CreateExpenseInput) (*entity.Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	s.delay(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	expenses := s.store.LoadExpenses(ctx)
	employees := s.store.LoadEmployees(ctx)

	employeeName := unknownEmployeeName
	for _, e := range employees {
		if e.ID == input.EmployeeID {
			employeeName = e.Name
			break
		}
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = entity.CreatorEmployee
	}

	expense := entity.Expense{
		ID:                  uuid.NewString(),
		EmployeeID:          input.EmployeeID,
		EmployeeName:        employeeName,
		Type:                input.Type,
		Amount:              input.Amount,
		Date:                input.Date,
		Month:               entity.MonthOf(input.Date),
		PaymentMethod:       input.PaymentMethod,
		Status:              entity.StatusPending,
		Notes:               input.Notes,
		ReceiptURL:          input.ReceiptURL,
		CreatedAt:           time.Now().UTC(),
		ConfirmedByEmployee: false,
		CreatedBy:           createdBy,
		CreatedByName:       input.CreatedByName,
	}

	updated := append([]entity.Expense{expense}, expenses...)
	if err := s.store.SaveExpenses(ctx, updated); err != nil {
		s.logger.Error("Failed to persist expense", zap.Error(err))
		return nil, fmt.Errorf("failed to persist expense: %w", err)
	}

	if err := s.applyBalance(ctx, employees, input.EmployeeID, input.Amount); err != nil {
		// Expense append and balance update form one logical transaction:
		// undo the append rather than leave the invariant broken.
		if rbErr := s.store.SaveExpenses(ctx, expenses); rbErr != nil {
			s.logger.Error("Failed to roll back expense append", zap.Error(rbErr))
		}
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.String("id", expense.ID),
		zap.String("employee_id", expense.EmployeeID),
		zap.String("type", string(expense.Type)),
		zap.String("amount", expense.Amount.String()))

	return &expense, nil
}

// ConfirmExpense marks a pending expense as paid on behalf of the
// employee. Repeat calls re-stamp confirmedAt; the balance never changes,
// its effect was applied at creation.
func (s *Service) ConfirmExpense(ctx context.Context, id string) bool {
	s.delay(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setStatus(ctx, id, entity.StatusPaid, true)
}

// RejectExpense marks an expense as rejected. The balance effect applied
// at creation is NOT reversed: rejection is a status marker only, and a
// rejected expense keeps counting against custody until deleted.
func (s *Service) RejectExpense(ctx context.Context, id string) bool {
	s.delay(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setStatus(ctx, id, entity.StatusRejected, false)
}

// DeleteExpense removes an expense permanently and reverses its balance
// effect using the original stored amount. Applicable from any status.
func (s *Service) DeleteExpense(ctx context.Context, id string) bool {
	s.delay(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	expenses := s.store.LoadExpenses(ctx)

	var target *entity.Expense
	for i := range expenses {
		if expenses[i].ID == id {
			target = &expenses[i]
			break
		}
	}
	if target == nil {
		return false
	}

	employees := s.store.LoadEmployees(ctx)
	if err := s.applyBalance(ctx, employees, target.EmployeeID, target.Amount.Neg()); err != nil {
		return false
	}

	remaining := make([]entity.Expense, 0, len(expenses)-1)
	for _, e := range expenses {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}
	if err := s.store.SaveExpenses(ctx, remaining); err != nil {
		s.logger.Error("Failed to persist expense removal", zap.Error(err))
		// Re-apply the reversed amount so the balance still matches the
		// collection that actually persisted.
		if rbErr := s.applyBalance(ctx, s.store.LoadEmployees(ctx), target.EmployeeID, target.Amount); rbErr != nil {
			s.logger.Error("Failed to roll back balance reversal", zap.Error(rbErr))
		}
		return false
	}

	s.logger.Info("Expense deleted",
		zap.String("id", id),
		zap.String("employee_id", target.EmployeeID),
		zap.String("reversed_amount", target.Amount.String()))
	return true
}

// setStatus transitions the expense lifecycle state and stamps the
// confirmation metadata. Returns false when the id is unknown or the
// updated collection cannot be persisted.
func (s *Service) setStatus(ctx context.Context, id string, status entity.ExpenseStatus, confirmed bool) bool {
	expenses := s.store.LoadExpenses(ctx)

	found := false
	now := time.Now().UTC()
	for i := range expenses {
		if expenses[i].ID == id {
			expenses[i].Status = status
			expenses[i].ConfirmedByEmployee = confirmed
			expenses[i].ConfirmedAt = &now
			found = true
			break
		}
	}
	if !found {
		return false
	}

	if err := s.store.SaveExpenses(ctx, expenses); err != nil {
		s.logger.Error("Failed to persist status change",
			zap.String("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return false
	}
	return true
}

// applyBalance adds change to the referenced employee's custody balance
// and persists the employee collection. A missing employee is a no-op.
func (s *Service) applyBalance(ctx context.Context, employees []entity.Employee, employeeID string, change decimal.Decimal) error {
	for i := range employees {
		if employees[i].ID == employeeID {
			employees[i].CustodyBalance = employees[i].CustodyBalance.Add(change)
			if err := s.store.SaveEmployees(ctx, employees); err != nil {
				s.logger.Error("Failed to persist balance update",
					zap.String("employee_id", employeeID),
					zap.Error(err))
				return fmt.Errorf("failed to persist balance update: %w", err)
			}
			return nil
		}
	}
	return nil
}

func (s *Service) delay(ctx context.Context) {
	if s.opDelay <= 0 {
		return
	}
	select {
	case <-time.After(s.opDelay):
	case <-ctx.Done():
	}
}

func (in CreateExpenseInput) validate() error {
	if in.EmployeeID == "" {
		return ErrMissingEmployeeID
	}
	if in.Amount.IsZero() {
		return ErrZeroAmount
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if !in.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	return nil
}
