package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerly/budget-api/internal/core/ports"
)

// pendingKey holds one member per unfinished cascade, formatted
// <owner_id>:<budget_id>.
const pendingKey = "cascade:pending"

// CascadeJournal tracks budget deletes whose transaction cascade has not
// completed yet.
type CascadeJournal struct {
	client *redis.Client
}

// NewCascadeJournal creates a CascadeJournal wrapping the given Redis client.
func NewCascadeJournal(client *redis.Client) *CascadeJournal {
	return &CascadeJournal{client: client}
}

func (j *CascadeJournal) Record(ctx context.Context, job ports.CascadeJob) error {
	if err := j.client.SAdd(ctx, pendingKey, encodeJob(job)).Err(); err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	return nil
}

func (j *CascadeJournal) Resolve(ctx context.Context, job ports.CascadeJob) error {
	if err := j.client.SRem(ctx, pendingKey, encodeJob(job)).Err(); err != nil {
		return fmt.Errorf("journal resolve: %w", err)
	}
	return nil
}

// Pending lists every journaled cascade. Unparseable members are skipped.
func (j *CascadeJournal) Pending(ctx context.Context) ([]ports.CascadeJob, error) {
	members, err := j.client.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("journal pending: %w", err)
	}
	jobs := make([]ports.CascadeJob, 0, len(members))
	for _, m := range members {
		if job, ok := decodeJob(m); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func encodeJob(job ports.CascadeJob) string {
	return job.OwnerID + ":" + job.BudgetID
}

func decodeJob(member string) (ports.CascadeJob, bool) {
	owner, budget, ok := strings.Cut(member, ":")
	if !ok || owner == "" || budget == "" {
		return ports.CascadeJob{}, false
	}
	return ports.CascadeJob{OwnerID: owner, BudgetID: budget}, true
}
