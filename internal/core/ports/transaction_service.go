package ports

import (
	"context"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// CreateTransactionInput is the client-supplied part of a new transaction.
type CreateTransactionInput struct {
	Amount          float64
	ConvertedAmount *float64 // defaults to Amount
	Currency        string   // defaults to domain.DefaultCurrency
	Vendor          string
	Category        string
	Date            *time.Time // defaults to now
}

// TransactionService is the ownership-scoped use-case layer for transactions.
// Every operation first resolves the budget under the caller's ownership.
type TransactionService interface {
	Create(ctx context.Context, ownerID, budgetID string, input CreateTransactionInput) (*domain.Transaction, error)
	List(ctx context.Context, ownerID, budgetID string, limit int) ([]*domain.Transaction, error)
	Get(ctx context.Context, ownerID, budgetID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, ownerID, budgetID, id string, patch TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, budgetID, id string) error
}
