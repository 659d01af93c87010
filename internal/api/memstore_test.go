package api

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

// memStore is an in-memory stand-in for the Mongo repositories.
type memStore struct {
	mu           sync.Mutex
	users        map[string]domain.User
	budgets      map[string]domain.Budget
	transactions map[string]domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]domain.User{},
		budgets:      map[string]domain.Budget{},
		transactions: map[string]domain.Transaction{},
	}
}

type memUsers struct{ *memStore }
type memBudgets struct{ *memStore }
type memTransactions struct{ *memStore }

func (s memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return nil, domain.ErrDuplicateIdentity
	}
	stored := *u
	stored.ID = primitive.NewObjectID().Hex()
	s.users[u.Email] = stored
	return &stored, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	return &u, nil
}

func (s memBudgets) Create(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *b
	stored.ID = primitive.NewObjectID().Hex()
	s.budgets[stored.ID] = stored
	return &stored, nil
}

func (s memBudgets) List(_ context.Context, f ports.BudgetFilter) ([]*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Budget
	for _, b := range s.budgets {
		if b.UserID == f.OwnerID {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s memBudgets) FindByID(_ context.Context, ownerID, id string) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s memBudgets) Update(_ context.Context, ownerID, id string, p ports.BudgetPatch) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.TotalIncome != nil {
		b.TotalIncome = *p.TotalIncome
	}
	if p.SavingsGoal != nil {
		b.SavingsGoal = *p.SavingsGoal
	}
	if p.CategoryAllocation != nil {
		b.CategoryAllocation = *p.CategoryAllocation
	}
	if p.EndDate != nil {
		b.EndDate = p.EndDate
	}
	if p.ClearEndDate {
		b.EndDate = nil
	}
	s.budgets[id] = b
	return &b, nil
}

func (s memBudgets) Touch(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgets[id]; !ok || b.UserID != ownerID {
		return domain.ErrNotFound
	}
	return nil
}

func (s memBudgets) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s memTransactions) Create(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *t
	stored.ID = primitive.NewObjectID().Hex()
	s.transactions[stored.ID] = stored
	return &stored, nil
}

func (s memTransactions) List(_ context.Context, f ports.TransactionFilter) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if t.UserID == f.OwnerID && t.BudgetID == f.BudgetID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (s memTransactions) FindByID(_ context.Context, ownerID, budgetID, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s memTransactions) Update(_ context.Context, ownerID, budgetID, id string, p ports.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return nil, domain.ErrNotFound
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Vendor != nil {
		t.Vendor = *p.Vendor
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	s.transactions[id] = t
	return &t, nil
}

func (s memTransactions) Delete(_ context.Context, ownerID, budgetID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return domain.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s memTransactions) DeleteByBudget(_ context.Context, ownerID, budgetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.transactions {
		if t.UserID == ownerID && t.BudgetID == budgetID {
			delete(s.transactions, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// directTransactor has no transaction support, forcing the two-phase delete.
type directTransactor struct{}

func (directTransactor) Atomic() bool { return false }
func (directTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memJournal struct {
	mu   sync.Mutex
	jobs map[ports.CascadeJob]bool
}

func (j *memJournal) Record(_ context.Context, job ports.CascadeJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jobs[job] = true
	return nil
}

func (j *memJournal) Resolve(_ context.Context, job ports.CascadeJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.jobs, job)
	return nil
}

func (j *memJournal) Pending(context.Context) ([]ports.CascadeJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ports.CascadeJob, 0, len(j.jobs))
	for job := range j.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (j *memJournal) Enqueue(ports.CascadeJob) {}
