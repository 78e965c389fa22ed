package store

import (
	"context"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func init() {
	// The persisted layout keeps amounts and balances as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Collection keys under which the two snapshots are persisted.
const (
	KeyEmployees = "app_employees"
	KeyExpenses  = "app_expenses"
)

// Store persists the two ledger collections as whole-collection snapshots.
// Loads never fail: a missing or unreadable collection falls back to the
// seed employees or an empty expense list. Saves replace the persisted
// snapshot atomically.
type Store interface {
	LoadEmployees(ctx context.Context) []entity.Employee
	LoadExpenses(ctx context.Context) []entity.Expense
	SaveEmployees(ctx context.Context, employees []entity.Employee) error
	SaveExpenses(ctx context.Context, expenses []entity.Expense) error
}

// SeedEmployees returns the default employee records used when no
// persisted Employees collection exists yet: three staff accounts plus the
// administrative super-custody account.
func SeedEmployees() []entity.Employee {
	return []entity.Employee{
		{
			ID:             "1",
			Name:           "أحمد محمد",
			Role:           "مدير مبيعات",
			Salary:         decimal.NewFromInt(5000),
			JoinDate:       "2023-01-15",
			CustodyBalance: decimal.NewFromInt(1500),
			Email:          "ahmed@example.com",
		},
		{
			ID:             "2",
			Name:           "سارة علي",
			Role:           "محاسب",
			Salary:         decimal.NewFromInt(4500),
			JoinDate:       "2023-03-10",
			CustodyBalance: decimal.NewFromInt(500),
			Email:          "sara@example.com",
		},
		{
			ID:             "3",
			Name:           "خالد عمر",
			Role:           "مندوب",
			Salary:         decimal.NewFromInt(3500),
			JoinDate:       "2023-06-01",
			CustodyBalance: decimal.NewFromInt(2000),
			Email:          "khaled@example.com",
		},
		{
			ID:             "abu_tamim",
			Name:           "أبو تميم",
			Role:           "مدير النظام",
			Salary:         decimal.Zero,
			JoinDate:       "2023-01-01",
			CustodyBalance: decimal.NewFromInt(10000),
			Email:          "abu.tamim@system.com",
		},
	}
}
