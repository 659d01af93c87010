package ports

import "context"

// CascadeJob identifies the transactions left behind by a deleted budget.
type CascadeJob struct {
	OwnerID  string
	BudgetID string
}

// CascadeJournal durably records cascades that have not completed yet.
type CascadeJournal interface {
	Record(ctx context.Context, job CascadeJob) error
	Resolve(ctx context.Context, job CascadeJob) error
	Pending(ctx context.Context) ([]CascadeJob, error)
}

// CascadeQueue accepts journaled cascades for background completion.
type CascadeQueue interface {
	Enqueue(job CascadeJob)
}

// CascadeProcessor completes a journaled cascade.
type CascadeProcessor interface {
	ResumeCascade(ctx context.Context, job CascadeJob) error
}
