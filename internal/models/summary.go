package models

import "github.com/shopspring/decimal"

// Summary holds dashboard totals over a set of expenses.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
	Count   int             `json:"count"`
}
