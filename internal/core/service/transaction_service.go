package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

// TransactionService implements ports.TransactionService. Every call first
// resolves the budget under the caller's ownership, so transactions of a
// deleted or foreign budget are never visible.
type TransactionService struct {
	budgets      ports.BudgetRepository
	transactions ports.TransactionRepository
	tx           ports.Transactor
	log          zerolog.Logger
}

func NewTransactionService(budgets ports.BudgetRepository, transactions ports.TransactionRepository, tx ports.Transactor, log zerolog.Logger) *TransactionService {
	return &TransactionService{budgets: budgets, transactions: transactions, tx: tx, log: log}
}

// Create records a transaction under a budget owned by ownerID. A malformed,
// absent or foreign budget id is domain.ErrBudgetNotFound and nothing is
// kept. A transaction never outlives a concurrent delete of its budget.
func (s *TransactionService) Create(ctx context.Context, ownerID, budgetID string, in ports.CreateTransactionInput) (*domain.Transaction, error) {
	if !domain.IsValidID(budgetID) {
		return nil, fmt.Errorf("budget %q: %w", budgetID, domain.ErrBudgetNotFound)
	}
	if err := checkRequired("vendor", in.Vendor); err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		Amount:          in.Amount,
		ConvertedAmount: in.Amount,
		Currency:        in.Currency,
		Vendor:          in.Vendor,
		Category:        in.Category,
		Date:            time.Now().UTC(),
		BudgetID:        budgetID,
		UserID:          ownerID,
	}
	if in.ConvertedAmount != nil {
		t.ConvertedAmount = *in.ConvertedAmount
	}
	if t.Currency == "" {
		t.Currency = domain.DefaultCurrency
	}
	if in.Date != nil {
		t.Date = in.Date.UTC()
	}

	var (
		created *domain.Transaction
		err     error
	)
	if s.tx.Atomic() {
		created, err = s.createAtomic(ctx, t)
	} else {
		created, err = s.createChecked(ctx, t)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", ownerID).Str("budget_id", budgetID).Str("transaction_id", created.ID).Msg("transaction created")
	return created, nil
}

// createAtomic writes the budget and inserts the transaction in one
// transaction, so it conflicts with a budget delete running concurrently.
func (s *TransactionService) createAtomic(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.budgets.Touch(ctx, t.UserID, t.BudgetID); err != nil {
			return err
		}
		var err error
		created, err = s.transactions.Create(ctx, t)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, missing(err, domain.ErrBudgetNotFound)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// createChecked resolves the budget, inserts, then resolves it again. A
// budget deleted in between has already run its cascade, so the insert is
// undone here. A delete after the second check cascades over the insert.
func (s *TransactionService) createChecked(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if err := s.ownedBudget(ctx, t.UserID, t.BudgetID); err != nil {
		return nil, err
	}

	created, err := s.transactions.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.ownedBudget(ctx, t.UserID, t.BudgetID); err != nil {
		if undoErr := s.transactions.Delete(ctx, t.UserID, t.BudgetID, created.ID); undoErr != nil && !errors.Is(undoErr, domain.ErrNotFound) {
			s.log.Error().Err(undoErr).
				Str("budget_id", t.BudgetID).
				Str("transaction_id", created.ID).
				Msg("failed to remove transaction of a deleted budget")
		}
		return nil, err
	}
	return created, nil
}

func (s *TransactionService) List(ctx context.Context, ownerID, budgetID string, limit int) ([]*domain.Transaction, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return nil, err
	}
	txs, err := s.transactions.List(ctx, ports.TransactionFilter{OwnerID: ownerID, BudgetID: budgetID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, budgetID, id string) (*domain.Transaction, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return nil, err
	}
	t, err := s.transactions.FindByID(ctx, ownerID, budgetID, id)
	if err != nil {
		return nil, missing(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

func (s *TransactionService) Update(ctx context.Context, ownerID, budgetID, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if patch.Vendor != nil {
		if err := checkRequired("vendor", *patch.Vendor); err != nil {
			return nil, err
		}
	}
	if patch.Date != nil {
		utc := patch.Date.UTC()
		patch.Date = &utc
	}
	if err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return nil, err
	}

	var (
		t   *domain.Transaction
		err error
	)
	if patch.Empty() {
		t, err = s.transactions.FindByID(ctx, ownerID, budgetID, id)
	} else {
		t, err = s.transactions.Update(ctx, ownerID, budgetID, id, patch)
	}
	if err != nil {
		return nil, missing(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, budgetID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, ownerID, budgetID, id); err != nil {
		return missing(err, domain.ErrTransactionNotFound)
	}
	s.log.Info().Str("user_id", ownerID).Str("budget_id", budgetID).Str("transaction_id", id).Msg("transaction deleted")
	return nil
}

// ownedBudget checks the path budget: malformed ids are domain.ErrInvalidID,
// absent or foreign budgets domain.ErrBudgetNotFound.
func (s *TransactionService) ownedBudget(ctx context.Context, ownerID, budgetID string) error {
	if err := checkID(budgetID); err != nil {
		return err
	}
	if _, err := s.budgets.FindByID(ctx, ownerID, budgetID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return missing(err, domain.ErrBudgetNotFound)
		}
		return fmt.Errorf("resolve budget: %w", err)
	}
	return nil
}
