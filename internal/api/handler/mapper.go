package handler

import (
	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

func toAllocations(in []allocationBody) []domain.CategoryAllocation {
	if in == nil {
		return nil
	}
	out := make([]domain.CategoryAllocation, len(in))
	for i, a := range in {
		out[i] = domain.CategoryAllocation{Name: a.Name, Amount: a.Amount}
	}
	return out
}

func toCreateBudgetInput(req createBudgetRequest) ports.CreateBudgetInput {
	return ports.CreateBudgetInput{
		Name:               req.Name,
		StartDate:          req.StartDate.ptr(),
		EndDate:            req.EndDate.ptr(),
		TotalIncome:        req.TotalIncome,
		SavingsGoal:        req.SavingsGoal,
		CategoryAllocation: toAllocations(req.CategoryAllocation),
	}
}

func toBudgetPatch(req updateBudgetRequest) ports.BudgetPatch {
	patch := ports.BudgetPatch{
		Name:        req.Name,
		StartDate:   req.StartDate.ptr(),
		TotalIncome: req.TotalIncome,
		SavingsGoal: req.SavingsGoal,
	}
	if req.EndDate.Present {
		patch.EndDate = req.EndDate.Date.ptr()
		patch.ClearEndDate = patch.EndDate == nil
	}
	if req.CategoryAllocation != nil {
		alloc := toAllocations(*req.CategoryAllocation)
		if alloc == nil {
			alloc = []domain.CategoryAllocation{}
		}
		patch.CategoryAllocation = &alloc
	}
	return patch
}

func toBudgetResponse(b *domain.Budget) budgetResponse {
	alloc := make([]allocationResponse, len(b.CategoryAllocation))
	for i, a := range b.CategoryAllocation {
		alloc[i] = allocationResponse{Name: a.Name, Amount: a.Amount}
	}
	return budgetResponse{
		ID:                 b.ID,
		Name:               b.Name,
		StartDate:          b.StartDate,
		EndDate:            b.EndDate,
		TotalIncome:        b.TotalIncome,
		SavingsGoal:        b.SavingsGoal,
		CategoryAllocation: alloc,
		User:               b.UserID,
	}
}

func toBudgetResponses(in []*domain.Budget) []budgetResponse {
	out := make([]budgetResponse, 0, len(in))
	for _, b := range in {
		out = append(out, toBudgetResponse(b))
	}
	return out
}

func toCreateTransactionInput(req createTransactionRequest) ports.CreateTransactionInput {
	return ports.CreateTransactionInput{
		Amount:          req.Amount,
		ConvertedAmount: req.ConvertedAmount,
		Currency:        req.Currency,
		Vendor:          req.Vendor,
		Category:        req.Category,
		Date:            req.Date.ptr(),
	}
}

func toTransactionPatch(req updateTransactionRequest) ports.TransactionPatch {
	return ports.TransactionPatch{
		Amount:          req.Amount,
		ConvertedAmount: req.ConvertedAmount,
		Currency:        req.Currency,
		Vendor:          req.Vendor,
		Category:        req.Category,
		Date:            req.Date.ptr(),
	}
}

func toTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:              t.ID,
		Amount:          t.Amount,
		ConvertedAmount: t.ConvertedAmount,
		Currency:        t.Currency,
		Vendor:          t.Vendor,
		Category:        t.Category,
		Date:            t.Date,
		Budget:          t.BudgetID,
		User:            t.UserID,
	}
}

func toTransactionResponses(in []*domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(in))
	for _, t := range in {
		out = append(out, toTransactionResponse(t))
	}
	return out
}
