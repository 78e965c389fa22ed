package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseType classifies an expense record. The sign convention of the
// amount is applied by the caller before the record reaches the ledger:
// negative amounts deduct from custody, positive amounts credit it.
type ExpenseType string

const (
	TypeWorkExpense    ExpenseType = "work_expense"
	TypeCustodyPayment ExpenseType = "custody_payment"
	TypeSalary         ExpenseType = "salary"
	TypeBonus          ExpenseType = "bonus"
	TypeDeduction      ExpenseType = "deduction"
	TypeLoan           ExpenseType = "loan"
	TypeOther          ExpenseType = "other"
)

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case TypeWorkExpense, TypeCustodyPayment, TypeSalary, TypeBonus,
		TypeDeduction, TypeLoan, TypeOther:
		return true
	}
	return false
}

// ExpenseStatus is the approval lifecycle state of an expense.
// pending -> paid (confirm) and pending -> rejected (reject) are the only
// transitions; deletion is destructive and applies from any status.
type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "pending"
	StatusPaid     ExpenseStatus = "paid"
	StatusRejected ExpenseStatus = "rejected"
)

// PaymentMethod is how the money moved.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheck:
		return true
	}
	return false
}

// Creator identifies which side of the app recorded the expense.
type Creator string

const (
	CreatorAdmin    Creator = "admin"
	CreatorEmployee Creator = "employee"
)

// Expense is a single signed financial transaction tied to one employee.
// Amount is immutable after creation; only status and confirmation
// metadata change afterwards.
type Expense struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employeeId"`
	EmployeeName        string          `json:"employeeName"`
	Type                ExpenseType     `json:"type"`
	Amount              decimal.Decimal `json:"amount"`
	Date                string          `json:"date"`
	Month               string          `json:"month"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
	Status              ExpenseStatus   `json:"status"`
	Notes               string          `json:"notes,omitempty"`
	ReceiptURL          string          `json:"receiptUrl,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	ConfirmedByEmployee bool            `json:"confirmedByEmployee"`
	ConfirmedAt         *time.Time      `json:"confirmedAt,omitempty"`
	CreatedBy           Creator         `json:"createdBy"`
	CreatedByName       string          `json:"createdByName,omitempty"`
}

// MonthOf derives the YYYY-MM prefix of a calendar date string.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
