package mongo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// storageError tags a driver failure so the HTTP layer maps it to 500.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageFailure, err)
}

// notFoundOr maps an empty result to domain.ErrNotFound.
func notFoundOr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return storageError(op, err)
}

// objectIDs parses hex identifiers. A malformed one means nothing can match.
func objectIDs(hex ...string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(hex))
	for i, h := range hex {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, domain.ErrNotFound
		}
		ids[i] = id
	}
	return ids, nil
}
