package ports

import (
	"context"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// MaxListLimit caps the caller-supplied limit on list endpoints.
const MaxListLimit = 100

// BudgetFilter selects budgets for listing. OwnerID is mandatory.
type BudgetFilter struct {
	OwnerID string
	Limit   int // 0 = no limit; otherwise most recent startDate first
}

// BudgetPatch lists the fields of a budget to change. Nil fields are left as
// they are. ClearEndDate removes the end date and wins over EndDate.
type BudgetPatch struct {
	Name               *string
	StartDate          *time.Time
	EndDate            *time.Time
	ClearEndDate       bool
	TotalIncome        *float64
	SavingsGoal        *float64
	CategoryAllocation *[]domain.CategoryAllocation
}

// Empty reports whether the patch changes nothing.
func (p BudgetPatch) Empty() bool {
	return p.Name == nil && p.StartDate == nil && p.EndDate == nil && !p.ClearEndDate &&
		p.TotalIncome == nil && p.SavingsGoal == nil && p.CategoryAllocation == nil
}

// BudgetRepository persists budgets. Every lookup, update and delete is
// filtered by owner; a budget owned by someone else is domain.ErrNotFound.
type BudgetRepository interface {
	Create(ctx context.Context, b *domain.Budget) (*domain.Budget, error)
	List(ctx context.Context, filter BudgetFilter) ([]*domain.Budget, error)
	FindByID(ctx context.Context, ownerID, id string) (*domain.Budget, error)
	Update(ctx context.Context, ownerID, id string, patch BudgetPatch) (*domain.Budget, error)
	Delete(ctx context.Context, ownerID, id string) error
	// Touch records a write on the budget without changing its fields. Run
	// inside a transaction it conflicts with a concurrent Delete.
	Touch(ctx context.Context, ownerID, id string) error
}
