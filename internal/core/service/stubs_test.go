package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var errDBUnavailable = errors.New("db unavailable")

func newID() string { return primitive.NewObjectID().Hex() }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create enforces uniqueness under the lock, mirroring the unique index.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrDuplicateIdentity
	}
	stored := cloneUser(user)
	stored.ID = newID()
	r.byEmail[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// Budgets
// ---------------------------------------------------------------------------

type stubBudgetRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Budget
	deleteErr  error
	findCalls  int
	touchCalls int
}

func newStubBudgetRepo() *stubBudgetRepo {
	return &stubBudgetRepo{byID: make(map[string]*domain.Budget)}
}

func cloneBudget(b *domain.Budget) *domain.Budget {
	clone := *b
	if b.CategoryAllocation != nil {
		clone.CategoryAllocation = make([]domain.CategoryAllocation, len(b.CategoryAllocation))
		copy(clone.CategoryAllocation, b.CategoryAllocation)
	}
	return &clone
}

func (r *stubBudgetRepo) Create(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneBudget(b)
	stored.ID = newID()
	r.byID[stored.ID] = stored
	return cloneBudget(stored), nil
}

func (r *stubBudgetRepo) List(_ context.Context, f ports.BudgetFilter) ([]*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Budget{}
	for _, b := range r.byID {
		if b.UserID == f.OwnerID {
			out = append(out, cloneBudget(b))
		}
	}
	if f.Limit > 0 {
		sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

func (r *stubBudgetRepo) FindByID(_ context.Context, ownerID, id string) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	b, ok := r.byID[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	return cloneBudget(b), nil
}

func (r *stubBudgetRepo) Update(_ context.Context, ownerID, id string, p ports.BudgetPatch) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = p.EndDate
	}
	if p.ClearEndDate {
		b.EndDate = nil
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
	return cloneBudget(b), nil
}

func (r *stubBudgetRepo) Touch(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchCalls++
	b, ok := r.byID[id]
	if !ok || b.UserID != ownerID {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stubBudgetRepo) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	b, ok := r.byID[id]
	if !ok || b.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type stubTransactionRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Transaction
	// cascadeFailures makes the next N DeleteByBudget calls fail.
	cascadeFailures int
	cascadeCalls    int
	createErr       error
	// afterCreate runs once a Create has stored its transaction, outside the lock.
	afterCreate func()
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{byID: make(map[string]*domain.Transaction)}
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	clone := *t
	return &clone
}

func (r *stubTransactionRepo) Create(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	if r.createErr != nil {
		r.mu.Unlock()
		return nil, r.createErr
	}
	stored := cloneTransaction(t)
	stored.ID = newID()
	r.byID[stored.ID] = stored
	hook := r.afterCreate
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return cloneTransaction(stored), nil
}

func (r *stubTransactionRepo) List(_ context.Context, f ports.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Transaction{}
	for _, t := range r.byID {
		if t.UserID == f.OwnerID && t.BudgetID == f.BudgetID {
			out = append(out, cloneTransaction(t))
		}
	}
	if f.Limit > 0 {
		sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

func (r *stubTransactionRepo) FindByID(_ context.Context, ownerID, budgetID, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return nil, domain.ErrNotFound
	}
	return cloneTransaction(t), nil
}

func (r *stubTransactionRepo) Update(_ context.Context, ownerID, budgetID, id string, p ports.TransactionPatch) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return nil, domain.ErrNotFound
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.ConvertedAmount != nil {
		t.ConvertedAmount = *p.ConvertedAmount
	}
	if p.Currency != nil {
		t.Currency = *p.Currency
	}
	if p.Vendor != nil {
		t.Vendor = *p.Vendor
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return cloneTransaction(t), nil
}

func (r *stubTransactionRepo) Delete(_ context.Context, ownerID, budgetID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.UserID != ownerID || t.BudgetID != budgetID {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubTransactionRepo) DeleteByBudget(_ context.Context, ownerID, budgetID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cascadeCalls++
	if r.cascadeFailures > 0 {
		r.cascadeFailures--
		return 0, errDBUnavailable
	}
	var n int64
	for id, t := range r.byID {
		if t.UserID == ownerID && t.BudgetID == budgetID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubTransactionRepo) countForBudget(budgetID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byID {
		if t.BudgetID == budgetID {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Cascade collaborators
// ---------------------------------------------------------------------------

// stubTransactor runs fn directly; when atomic it snapshots both stores and
// restores them if fn fails, which is enough to observe all-or-nothing.
type stubTransactor struct {
	atomic       bool
	budgets      *stubBudgetRepo
	transactions *stubTransactionRepo
	calls        int
}

func (t *stubTransactor) Atomic() bool { return t.atomic }

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if !t.atomic {
		return fn(ctx)
	}

	t.budgets.mu.Lock()
	budgets := make(map[string]*domain.Budget, len(t.budgets.byID))
	for k, v := range t.budgets.byID {
		budgets[k] = v
	}
	t.budgets.mu.Unlock()
	t.transactions.mu.Lock()
	txs := make(map[string]*domain.Transaction, len(t.transactions.byID))
	for k, v := range t.transactions.byID {
		txs[k] = v
	}
	t.transactions.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.budgets.mu.Lock()
		t.budgets.byID = budgets
		t.budgets.mu.Unlock()
		t.transactions.mu.Lock()
		t.transactions.byID = txs
		t.transactions.mu.Unlock()
		return err
	}
	return nil
}

type stubJournal struct {
	mu      sync.Mutex
	pending map[ports.CascadeJob]struct{}
}

func newStubJournal() *stubJournal {
	return &stubJournal{pending: make(map[ports.CascadeJob]struct{})}
}

func (j *stubJournal) Record(_ context.Context, job ports.CascadeJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending[job] = struct{}{}
	return nil
}

func (j *stubJournal) Resolve(_ context.Context, job ports.CascadeJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.pending, job)
	return nil
}

func (j *stubJournal) Pending(_ context.Context) ([]ports.CascadeJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ports.CascadeJob, 0, len(j.pending))
	for job := range j.pending {
		out = append(out, job)
	}
	return out, nil
}

func (j *stubJournal) has(job ports.CascadeJob) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.pending[job]
	return ok
}

type stubQueue struct {
	jobs []ports.CascadeJob
}

func (q *stubQueue) Enqueue(job ports.CascadeJob) { q.jobs = append(q.jobs, job) }
