package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

func checkLimit(limit int) error {
	if limit < 0 || limit > ports.MaxListLimit {
		return domain.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", ports.MaxListLimit))
	}
	return nil
}

func checkRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field + " is required")
	}
	return nil
}

func checkNonNegative(field string, v float64) error {
	if v < 0 {
		return domain.NewValidationError(field + " must be greater than or equal to 0")
	}
	return nil
}

// checkID rejects malformed identifiers before any storage call.
func checkID(id string) error {
	if !domain.IsValidID(id) {
		return domain.ErrInvalidID
	}
	return nil
}

// missing tags a bare domain.ErrNotFound from storage with the resource it
// concerns. Other errors pass through unchanged.
func missing(err error, resource *domain.NotFoundError) error {
	var nf *domain.NotFoundError
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &nf) {
		return resource
	}
	return err
}
