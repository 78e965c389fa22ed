package entity

import "github.com/shopspring/decimal"

// Employee is a staff member holding a custody balance.
// CustodyBalance is the authoritative running total: the sum of the
// amounts of all non-deleted expenses recorded against the employee.
// Only the ledger service may change it.
type Employee struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Role           string          `json:"role"`
	Salary         decimal.Decimal `json:"salary"`
	JoinDate       string          `json:"joinDate"`
	CustodyBalance decimal.Decimal `json:"custodyBalance"`
	Email          string          `json:"email,omitempty"`
}
