package ports

import (
	"context"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// CreateBudgetInput is the client-supplied part of a new budget. The owner
// always comes from the verified identity.
type CreateBudgetInput struct {
	Name               string
	StartDate          *time.Time // defaults to now
	EndDate            *time.Time
	TotalIncome        float64
	SavingsGoal        float64
	CategoryAllocation []domain.CategoryAllocation
}

// BudgetService is the ownership-scoped use-case layer for budgets.
type BudgetService interface {
	Create(ctx context.Context, ownerID string, input CreateBudgetInput) (*domain.Budget, error)
	List(ctx context.Context, ownerID string, limit int) ([]*domain.Budget, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Budget, error)
	Update(ctx context.Context, ownerID, id string, patch BudgetPatch) (*domain.Budget, error)
	// Delete removes the budget and all of its transactions. It never
	// reports success while transactions of the budget remain.
	Delete(ctx context.Context, ownerID, id string) error
}
