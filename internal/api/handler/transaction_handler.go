package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerly/budget-api/internal/core/ports"
)

const msgTransactionDeleted = "Transaction deleted successfully"

// TransactionHandler serves the transactions of the caller's budgets.
type TransactionHandler struct {
	service ports.TransactionService
}

func NewTransactionHandler(service ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Create handles POST /api/budgets/:budgetId/transactions.
//
// @Summary      Record a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId  path      string                    true  "Budget id"
// @Param        body      body      createTransactionRequest  true  "Transaction"
// @Success      201       {object}  transactionResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/budgets/{budgetId}/transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.service.Create(c.Request().Context(), owner, c.Param("budgetId"), toCreateTransactionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(t))
}

// List handles GET /api/budgets/:budgetId/transactions.
//
// @Summary      List the transactions of a budget
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId  path      string  true   "Budget id"
// @Param        limit     query     int     false  "Most recent N transactions (1-100)"
// @Success      200       {array}   transactionResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/budgets/{budgetId}/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	txs, err := h.service.List(c.Request().Context(), owner, c.Param("budgetId"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponses(txs))
}

// Get handles GET /api/budgets/:budgetId/transactions/:transactionId.
//
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId       path      string  true  "Budget id"
// @Param        transactionId  path      string  true  "Transaction id"
// @Success      200            {object}  transactionResponse
// @Failure      400            {object}  errorResponse
// @Failure      404            {object}  errorResponse
// @Router       /api/budgets/{budgetId}/transactions/{transactionId} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	t, err := h.service.Get(c.Request().Context(), owner, c.Param("budgetId"), c.Param("transactionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t))
}

// Update handles PUT /api/budgets/:budgetId/transactions/:transactionId.
//
// @Summary      Update a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId       path      string                    true  "Budget id"
// @Param        transactionId  path      string                    true  "Transaction id"
// @Param        body           body      updateTransactionRequest  true  "Fields to change"
// @Success      200            {object}  transactionResponse
// @Failure      400            {object}  errorResponse
// @Failure      404            {object}  errorResponse
// @Router       /api/budgets/{budgetId}/transactions/{transactionId} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req updateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.service.Update(c.Request().Context(), owner, c.Param("budgetId"), c.Param("transactionId"), toTransactionPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t))
}

// Delete handles DELETE /api/budgets/:budgetId/transactions/:transactionId.
//
// @Summary      Delete a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId       path      string  true  "Budget id"
// @Param        transactionId  path      string  true  "Transaction id"
// @Success      200            {object}  messageResponse
// @Failure      400            {object}  errorResponse
// @Failure      404            {object}  errorResponse
// @Router       /api/budgets/{budgetId}/transactions/{transactionId} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), owner, c.Param("budgetId"), c.Param("transactionId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgTransactionDeleted})
}
