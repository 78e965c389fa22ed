package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/altamimi/custody-ledger/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewService(st, Options{}, zap.NewNop()), st
}

func balanceOf(t *testing.T, svc *Service, employeeID string) decimal.Decimal {
	t.Helper()
	for _, e := range svc.Employees(context.Background()) {
		if e.ID == employeeID {
			return e.CustodyBalance
		}
	}
	t.Fatalf("employee %s not found", employeeID)
	return decimal.Zero
}

func workExpense(employeeID string, amount int64) CreateExpenseInput {
	return CreateExpenseInput{
		EmployeeID:    employeeID,
		Type:          entity.TypeWorkExpense,
		Amount:        decimal.NewFromInt(amount),
		Date:          "2024-05-12",
		PaymentMethod: entity.MethodCash,
		CreatedBy:     entity.CreatorAdmin,
		CreatedByName: "أبو تميم",
	}
}

func TestCreateExpense_AppliesBalanceEffect(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Seed employee "1" starts at 1500.
	require.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1500)))

	expense, err := svc.CreateExpense(ctx, workExpense("1", -50))
	require.NoError(t, err)
	require.NotNil(t, expense)

	assert.Equal(t, entity.StatusPending, expense.Status)
	assert.False(t, expense.ConfirmedByEmployee)
	assert.NotEmpty(t, expense.ID)
	assert.Equal(t, "أحمد محمد", expense.EmployeeName)
	assert.Equal(t, "2024-05", expense.Month)
	assert.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1450)))
}

func TestCreateExpense_SignedCreditIncreasesBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, CreateExpenseInput{
		EmployeeID:    "2",
		Type:          entity.TypeBonus,
		Amount:        decimal.NewFromInt(300),
		Date:          "2024-05-01",
		PaymentMethod: entity.MethodBankTransfer,
		CreatedBy:     entity.CreatorAdmin,
	})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, svc, "2").Equal(decimal.NewFromInt(800)))
}

func TestCreateExpense_CustodyPaymentAlreadyNegated(t *testing.T) {
	// The caller applies the sign convention: a 200 custody payment
	// arrives as -200. Employee "3" starts at 2000.
	svc, _ := newTestService(t)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseInput{
		EmployeeID:    "3",
		Type:          entity.TypeCustodyPayment,
		Amount:        decimal.NewFromInt(-200),
		Date:          "2024-05-03",
		PaymentMethod: entity.MethodCash,
		CreatedBy:     entity.CreatorEmployee,
	})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, svc, "3").Equal(decimal.NewFromInt(1800)))
}

func TestCreateExpense_ZeroAmountRejectedBeforeMutation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before := balanceOf(t, svc, "1")

	expense, err := svc.CreateExpense(ctx, workExpense("1", 0))
	assert.Nil(t, expense)
	assert.ErrorIs(t, err, ErrZeroAmount)

	assert.Empty(t, svc.Expenses(ctx))
	assert.True(t, balanceOf(t, svc, "1").Equal(before))
}

func TestCreateExpense_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateExpenseInput)
		wantErr error
	}{
		{"missing employee id", func(in *CreateExpenseInput) { in.EmployeeID = "" }, ErrMissingEmployeeID},
		{"unknown type", func(in *CreateExpenseInput) { in.Type = "gift" }, ErrInvalidType},
		{"unknown payment method", func(in *CreateExpenseInput) { in.PaymentMethod = "crypto" }, ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := workExpense("1", -50)
			tt.mutate(&in)
			_, err := svc.CreateExpense(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateExpense_UnknownEmployeeStillSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	expense, err := svc.CreateExpense(ctx, workExpense("no-such-id", -75))
	require.NoError(t, err)
	require.NotNil(t, expense)

	// Placeholder name, record persisted, no balance touched anywhere.
	assert.Equal(t, "غير معروف", expense.EmployeeName)
	assert.Len(t, svc.Expenses(ctx), 1)

	seed := store.SeedEmployees()
	current := svc.Employees(ctx)
	require.Len(t, current, len(seed))
	for i, e := range current {
		assert.True(t, e.CustodyBalance.Equal(seed[i].CustodyBalance),
			"balance of %s must be untouched", e.ID)
	}
}

func TestCreateExpense_PrependsMostRecentFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateExpense(ctx, workExpense("1", -10))
	require.NoError(t, err)
	second, err := svc.CreateExpense(ctx, workExpense("1", -20))
	require.NoError(t, err)

	expenses := svc.Expenses(ctx)
	require.Len(t, expenses, 2)
	assert.Equal(t, second.ID, expenses[0].ID)
	assert.Equal(t, first.ID, expenses[1].ID)
}

func TestCreateExpense_StoreUnreachable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Prime the seed before making saves fail.
	svc.Employees(ctx)
	st.SaveErr = errors.New("disk full")

	expense, err := svc.CreateExpense(ctx, workExpense("1", -50))
	assert.Nil(t, expense)
	assert.Error(t, err)
}

func TestConfirmExpense(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, workExpense("1", -50))
	require.NoError(t, err)
	before := balanceOf(t, svc, "1")

	require.True(t, svc.ConfirmExpense(ctx, created.ID))

	expenses := svc.Expenses(ctx)
	require.Len(t, expenses, 1)
	assert.Equal(t, entity.StatusPaid, expenses[0].Status)
	assert.True(t, expenses[0].ConfirmedByEmployee)
	require.NotNil(t, expenses[0].ConfirmedAt)

	firstStamp := *expenses[0].ConfirmedAt

	// Second confirm leaves status and flag unchanged, only re-stamps
	// confirmedAt; the balance never moves.
	require.True(t, svc.ConfirmExpense(ctx, created.ID))
	expenses = svc.Expenses(ctx)
	assert.Equal(t, entity.StatusPaid, expenses[0].Status)
	assert.True(t, expenses[0].ConfirmedByEmployee)
	require.NotNil(t, expenses[0].ConfirmedAt)
	assert.False(t, expenses[0].ConfirmedAt.Before(firstStamp))
	assert.True(t, balanceOf(t, svc, "1").Equal(before))
}

func TestConfirmExpense_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	assert.False(t, svc.ConfirmExpense(context.Background(), "missing"))
}

func TestRejectExpense_KeepsBalanceApplied(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, workExpense("1", -50))
	require.NoError(t, err)
	require.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1450)))

	require.True(t, svc.RejectExpense(ctx, created.ID))

	expenses := svc.Expenses(ctx)
	require.Len(t, expenses, 1)
	assert.Equal(t, entity.StatusRejected, expenses[0].Status)
	assert.False(t, expenses[0].ConfirmedByEmployee)
	require.NotNil(t, expenses[0].ConfirmedAt)

	// Rejection is a status marker only; the amount stays applied.
	assert.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1450)))
}

func TestRejectExpense_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	assert.False(t, svc.RejectExpense(context.Background(), "missing"))
}

func TestDeleteExpense_ReversesOriginalAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, workExpense("1", -50))
	require.NoError(t, err)
	require.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1450)))

	require.True(t, svc.DeleteExpense(ctx, created.ID))

	assert.Empty(t, svc.Expenses(ctx))
	assert.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1500)))
}

func TestDeleteExpense_RejectedRecordStillReverses(t *testing.T) {
	// Deletion applies from any status and always reverses the stored
	// amount, rejected records included.
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, workExpense("1", -50))
	require.NoError(t, err)
	require.True(t, svc.RejectExpense(ctx, created.ID))

	require.True(t, svc.DeleteExpense(ctx, created.ID))
	assert.True(t, balanceOf(t, svc, "1").Equal(decimal.NewFromInt(1500)))
}

func TestDeleteExpense_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	assert.False(t, svc.DeleteExpense(context.Background(), "missing"))
}

func TestBalanceInvariantAcrossMixedOperations(t *testing.T) {
	// After any sequence of operations, an employee's balance equals the
	// seed balance plus the sum of their surviving expense amounts.
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateExpense(ctx, workExpense("1", -100))
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, workExpense("1", 250))
	require.NoError(t, err)
	c, err := svc.CreateExpense(ctx, workExpense("1", -40))
	require.NoError(t, err)

	require.True(t, svc.ConfirmExpense(ctx, a.ID))
	require.True(t, svc.RejectExpense(ctx, c.ID))
	require.True(t, svc.DeleteExpense(ctx, a.ID))

	sum := decimal.Zero
	for _, e := range svc.Expenses(ctx) {
		if e.EmployeeID == "1" {
			sum = sum.Add(e.Amount)
		}
	}
	want := decimal.NewFromInt(1500).Add(sum)
	assert.True(t, balanceOf(t, svc, "1").Equal(want),
		"balance %s, want %s", balanceOf(t, svc, "1"), want)
}

func TestCreateExpense_DefaultsCreatorToEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	in := workExpense("1", -5)
	in.CreatedBy = ""
	in.CreatedByName = ""
	expense, err := svc.CreateExpense(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.CreatorEmployee, expense.CreatedBy)
}
