package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs callbacks in a Mongo session transaction when the
// deployment supports it.
type Transactor struct {
	client *mongo.Client
	atomic bool
}

// NewTransactor wraps client. atomic should come from SupportsTransactions.
func NewTransactor(client *mongo.Client, atomic bool) *Transactor {
	return &Transactor{client: client, atomic: atomic}
}

func (t *Transactor) Atomic() bool { return t.atomic }

// WithinTransaction commits everything fn writes through the session
// context, or nothing. Without transaction support fn runs directly.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return storageError("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
