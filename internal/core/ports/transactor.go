package ports

import "context"

// Transactor runs fn so that every repository call made with the context it
// receives commits or aborts together.
type Transactor interface {
	// Atomic reports whether the store provides multi-document transactions.
	// When false, WithinTransaction simply calls fn.
	Atomic() bool
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
