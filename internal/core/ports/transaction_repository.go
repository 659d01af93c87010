package ports

import (
	"context"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// TransactionFilter selects transactions of one budget for listing.
type TransactionFilter struct {
	OwnerID  string
	BudgetID string
	Limit    int // 0 = no limit; otherwise most recent date first
}

// TransactionPatch lists the fields of a transaction to change.
// The owning budget and user are not patchable.
type TransactionPatch struct {
	Amount          *float64
	ConvertedAmount *float64
	Currency        *string
	Vendor          *string
	Category        *string
	Date            *time.Time
}

func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.ConvertedAmount == nil && p.Currency == nil &&
		p.Vendor == nil && p.Category == nil && p.Date == nil
}

// TransactionRepository persists transactions, always filtered by owner and budget.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	FindByID(ctx context.Context, ownerID, budgetID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, ownerID, budgetID, id string, patch TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, budgetID, id string) error
	// DeleteByBudget removes every transaction of the budget and reports how
	// many were removed. It is idempotent.
	DeleteByBudget(ctx context.Context, ownerID, budgetID string) (int64, error)
}
