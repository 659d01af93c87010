package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
	"github.com/ledgerly/budget-api/internal/pkg/metrics"
)

const (
	cascadeRetries     = 3
	cascadeBaseBackoff = 50 * time.Millisecond
)

// BudgetService implements ports.BudgetService and completes the
// budget-to-transactions cascade, both inline and from the recovery queue.
type BudgetService struct {
	budgets      ports.BudgetRepository
	transactions ports.TransactionRepository
	tx           ports.Transactor
	journal      ports.CascadeJournal
	queue        ports.CascadeQueue
	backoff      func() retry.Backoff
	log          zerolog.Logger
}

func NewBudgetService(
	budgets ports.BudgetRepository,
	transactions ports.TransactionRepository,
	tx ports.Transactor,
	journal ports.CascadeJournal,
	queue ports.CascadeQueue,
	log zerolog.Logger,
) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		transactions: transactions,
		tx:           tx,
		journal:      journal,
		queue:        queue,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(cascadeRetries, retry.NewExponential(cascadeBaseBackoff))
		},
		log: log,
	}
}

func (s *BudgetService) Create(ctx context.Context, ownerID string, in ports.CreateBudgetInput) (*domain.Budget, error) {
	if err := checkRequired("name", in.Name); err != nil {
		return nil, err
	}
	if err := checkNonNegative("totalIncome", in.TotalIncome); err != nil {
		return nil, err
	}
	if err := checkNonNegative("savingsGoal", in.SavingsGoal); err != nil {
		return nil, err
	}

	b := &domain.Budget{
		Name:               in.Name,
		StartDate:          time.Now().UTC(),
		EndDate:            in.EndDate,
		TotalIncome:        in.TotalIncome,
		SavingsGoal:        in.SavingsGoal,
		CategoryAllocation: in.CategoryAllocation,
		UserID:             ownerID,
	}
	if in.StartDate != nil {
		b.StartDate = in.StartDate.UTC()
	}
	if b.CategoryAllocation == nil {
		b.CategoryAllocation = []domain.CategoryAllocation{}
	}

	created, err := s.budgets.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	s.log.Info().Str("user_id", ownerID).Str("budget_id", created.ID).Msg("budget created")
	return created, nil
}

func (s *BudgetService) List(ctx context.Context, ownerID string, limit int) ([]*domain.Budget, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	budgets, err := s.budgets.List(ctx, ports.BudgetFilter{OwnerID: ownerID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Get(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	b, err := s.budgets.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, missing(err, domain.ErrBudgetNotFound)
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, ownerID, id string, patch ports.BudgetPatch) (*domain.Budget, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if err := checkRequired("name", *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.TotalIncome != nil {
		if err := checkNonNegative("totalIncome", *patch.TotalIncome); err != nil {
			return nil, err
		}
	}
	if patch.SavingsGoal != nil {
		if err := checkNonNegative("savingsGoal", *patch.SavingsGoal); err != nil {
			return nil, err
		}
	}
	if patch.StartDate != nil {
		utc := patch.StartDate.UTC()
		patch.StartDate = &utc
	}

	var (
		b   *domain.Budget
		err error
	)
	if patch.Empty() {
		b, err = s.budgets.FindByID(ctx, ownerID, id)
	} else {
		b, err = s.budgets.Update(ctx, ownerID, id, patch)
	}
	if err != nil {
		return nil, missing(err, domain.ErrBudgetNotFound)
	}
	return b, nil
}

// Delete removes the budget and its transactions. With a transactional store
// both deletes commit together. Otherwise the budget delete is authoritative
// and the transaction cascade is retried; if it still fails the cascade is
// left journaled for the recovery queue and the caller gets an error.
func (s *BudgetService) Delete(ctx context.Context, ownerID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	if s.tx.Atomic() {
		var removed int64
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.budgets.Delete(ctx, ownerID, id); err != nil {
				return err
			}
			n, err := s.transactions.DeleteByBudget(ctx, ownerID, id)
			removed = n
			return err
		})
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				metrics.CascadesTotal.WithLabelValues("atomic", "failed").Inc()
			}
			return missing(err, domain.ErrBudgetNotFound)
		}
		metrics.CascadesTotal.WithLabelValues("atomic", "ok").Inc()
		metrics.CascadeTransactionsDeleted.Add(float64(removed))
		s.log.Info().Str("user_id", ownerID).Str("budget_id", id).Int64("transactions", removed).Msg("budget deleted")
		return nil
	}

	return s.deleteTwoPhase(ctx, ownerID, id)
}

func (s *BudgetService) deleteTwoPhase(ctx context.Context, ownerID, id string) error {
	if err := s.budgets.Delete(ctx, ownerID, id); err != nil {
		return missing(err, domain.ErrBudgetNotFound)
	}

	job := ports.CascadeJob{OwnerID: ownerID, BudgetID: id}
	if err := s.journal.Record(ctx, job); err != nil {
		s.log.Warn().Err(err).Str("budget_id", id).Msg("failed to journal cascade")
	}

	removed, err := s.cascade(ctx, job)
	if err != nil {
		metrics.CascadesTotal.WithLabelValues("two_phase", "failed").Inc()
		s.log.Error().Err(err).Str("user_id", ownerID).Str("budget_id", id).Msg("transaction cascade failed, queued for recovery")
		s.queue.Enqueue(job)
		return fmt.Errorf("delete budget %s: cascade transactions: %w", id, err)
	}

	s.resolve(ctx, job)
	metrics.CascadesTotal.WithLabelValues("two_phase", "ok").Inc()
	s.log.Info().Str("user_id", ownerID).Str("budget_id", id).Int64("transactions", removed).Msg("budget deleted")
	return nil
}

// ResumeCascade finishes a journaled cascade. If the budget turns out to
// still exist the job is dropped without touching its transactions.
func (s *BudgetService) ResumeCascade(ctx context.Context, job ports.CascadeJob) error {
	_, err := s.budgets.FindByID(ctx, job.OwnerID, job.BudgetID)
	switch {
	case err == nil:
		s.log.Warn().Str("budget_id", job.BudgetID).Msg("journaled cascade for a live budget, dropping")
		s.resolve(ctx, job)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("resume cascade: %w", err)
	}

	removed, err := s.cascade(ctx, job)
	if err != nil {
		metrics.CascadesTotal.WithLabelValues("recovery", "failed").Inc()
		return fmt.Errorf("resume cascade: %w", err)
	}

	s.resolve(ctx, job)
	metrics.CascadesTotal.WithLabelValues("recovery", "ok").Inc()
	s.log.Info().Str("budget_id", job.BudgetID).Int64("transactions", removed).Msg("cascade recovered")
	return nil
}

// cascade deletes the budget's transactions with bounded exponential retries.
func (s *BudgetService) cascade(ctx context.Context, job ports.CascadeJob) (int64, error) {
	var removed int64
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		n, err := s.transactions.DeleteByBudget(ctx, job.OwnerID, job.BudgetID)
		if err != nil {
			return retry.RetryableError(err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.CascadeTransactionsDeleted.Add(float64(removed))
	return removed, nil
}

func (s *BudgetService) resolve(ctx context.Context, job ports.CascadeJob) {
	if err := s.journal.Resolve(ctx, job); err != nil {
		s.log.Warn().Err(err).Str("budget_id", job.BudgetID).Msg("failed to clear cascade journal entry")
	}
}
