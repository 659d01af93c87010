package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// DefaultBcryptCost matches the salt rounds accounts were created with so far.
const DefaultBcryptCost = 10

// BcryptHasher implements ports.PasswordHasher with bcrypt. bcrypt draws a
// fresh salt on every Hash call and compares digests in constant time.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside the
// range bcrypt accepts fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("Password must be at most 72 bytes long.")
		}
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
