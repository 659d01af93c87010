package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Date accepts RFC 3339 timestamps and plain 2006-01-02 dates.
type Date struct {
	time.Time
}

const dateOnly = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// ptr returns nil for an absent date.
func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// NullableDate tells an absent field apart from an explicit null. Present is
// set whenever the key appears in the body; Date stays nil for null.
type NullableDate struct {
	Present bool
	Date    *Date
}

func (n *NullableDate) UnmarshalJSON(b []byte) error {
	n.Present = true
	if bytes.Equal(b, []byte("null")) {
		n.Date = nil
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Date = &d
	return nil
}

// parseLimit reads the optional ?limit= query value. Absent is 0 (no limit).
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > ports.MaxListLimit {
		return 0, domain.NewValidationError(fmt.Sprintf("limit must be an integer between 1 and %d", ports.MaxListLimit))
	}
	return n, nil
}

// --- Auth ---

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"authToken"`
}

type verifyResponse struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	TokenID   string `json:"jti,omitempty"`
}

// --- Budgets ---

type allocationBody struct {
	Name   string  `json:"name"   validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type createBudgetRequest struct {
	Name               string           `json:"name"               validate:"required"`
	StartDate          *Date            `json:"startDate"          swaggertype:"string"`
	EndDate            *Date            `json:"endDate"            swaggertype:"string"`
	TotalIncome        float64          `json:"totalIncome"        validate:"gte=0"`
	SavingsGoal        float64          `json:"savingsGoal"        validate:"gte=0"`
	CategoryAllocation []allocationBody `json:"categoryAllocation" validate:"omitempty,dive"`
}

type updateBudgetRequest struct {
	Name               *string           `json:"name"               validate:"omitempty,min=1"`
	StartDate          *Date             `json:"startDate"          swaggertype:"string"`
	EndDate            NullableDate      `json:"endDate"            swaggertype:"string"`
	TotalIncome        *float64          `json:"totalIncome"        validate:"omitempty,gte=0"`
	SavingsGoal        *float64          `json:"savingsGoal"        validate:"omitempty,gte=0"`
	CategoryAllocation *[]allocationBody `json:"categoryAllocation" validate:"omitempty,dive"`
}

type allocationResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type budgetResponse struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	StartDate          time.Time            `json:"startDate"`
	EndDate            *time.Time           `json:"endDate,omitempty"`
	TotalIncome        float64              `json:"totalIncome"`
	SavingsGoal        float64              `json:"savingsGoal"`
	CategoryAllocation []allocationResponse `json:"categoryAllocation"`
	User               string               `json:"user"`
}

// --- Transactions ---

type createTransactionRequest struct {
	Amount          float64  `json:"amount"`
	ConvertedAmount *float64 `json:"convertedAmount"`
	Currency        string   `json:"currency"        validate:"omitempty,len=3"`
	Vendor          string   `json:"vendor"          validate:"required"`
	Category        string   `json:"category"`
	Date            *Date    `json:"date"            swaggertype:"string"`
}

type updateTransactionRequest struct {
	Amount          *float64 `json:"amount"`
	ConvertedAmount *float64 `json:"convertedAmount"`
	Currency        *string  `json:"currency"        validate:"omitempty,len=3"`
	Vendor          *string  `json:"vendor"          validate:"omitempty,min=1"`
	Category        *string  `json:"category"`
	Date            *Date    `json:"date"            swaggertype:"string"`
}

type transactionResponse struct {
	ID              string    `json:"id"`
	Amount          float64   `json:"amount"`
	ConvertedAmount float64   `json:"convertedAmount"`
	Currency        string    `json:"currency"`
	Vendor          string    `json:"vendor"`
	Category        string    `json:"category"`
	Date            time.Time `json:"date"`
	Budget          string    `json:"budget"`
	User            string    `json:"user"`
}
