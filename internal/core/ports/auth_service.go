package ports

import (
	"context"
	"time"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// SignupInput carries the raw credentials submitted on signup.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.PublicUser, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// PasswordHasher hashes and verifies passwords. The cost is fixed by the
// implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(identity domain.Identity, ttl time.Duration) (string, error)
	// Verify returns domain.ErrInvalidToken for forged, malformed or expired tokens.
	Verify(token string) (*domain.SessionClaims, error)
}
