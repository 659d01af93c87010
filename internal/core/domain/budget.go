package domain

import "time"

// CategoryAllocation is a named slice of a budget's income.
type CategoryAllocation struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Budget is a planning period owned by exactly one user.
type Budget struct {
	ID                 string
	Name               string
	StartDate          time.Time
	EndDate            *time.Time // optional
	TotalIncome        float64
	SavingsGoal        float64
	CategoryAllocation []CategoryAllocation
	UserID             string
}
