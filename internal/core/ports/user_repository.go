package ports

import (
	"context"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByEmail returns domain.ErrNotRegistered when no user has email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns domain.ErrDuplicateIdentity when the email is taken,
	// including when another insert wins a race after the caller's pre-check.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
