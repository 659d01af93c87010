package domain

import "time"

// DefaultCurrency is applied to transactions created without a currency.
const DefaultCurrency = "EUR"

// Transaction is a single ledger entry under a budget. UserID mirrors the
// owner of the budget at creation time.
type Transaction struct {
	ID              string
	Amount          float64
	ConvertedAmount float64
	Currency        string
	Vendor          string
	Category        string
	Date            time.Time
	BudgetID        string
	UserID          string
}
