package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerly/budget-api/internal/core/ports"
)

const msgBudgetDeleted = "Budget deleted successfully"

// BudgetHandler serves the caller's budgets.
type BudgetHandler struct {
	service ports.BudgetService
}

func NewBudgetHandler(service ports.BudgetService) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// Create handles POST /api/budgets.
//
// @Summary      Create a budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBudgetRequest  true  "Budget"
// @Success      201   {object}  budgetResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/budgets [post]
func (h *BudgetHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req createBudgetRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Create(c.Request().Context(), owner, toCreateBudgetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBudgetResponse(b))
}

// List handles GET /api/budgets.
//
// @Summary      List budgets
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Most recent N budgets (1-100)"
// @Success      200    {array}   budgetResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/budgets [get]
func (h *BudgetHandler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	budgets, err := h.service.List(c.Request().Context(), owner, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// Get handles GET /api/budgets/:budgetId.
//
// @Summary      Get a budget
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId  path      string  true  "Budget id"
// @Success      200       {object}  budgetResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/budgets/{budgetId} [get]
func (h *BudgetHandler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	b, err := h.service.Get(c.Request().Context(), owner, c.Param("budgetId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBudgetResponse(b))
}

// Update handles PUT /api/budgets/:budgetId. Absent fields are left unchanged.
//
// @Summary      Update a budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId  path      string               true  "Budget id"
// @Param        body      body      updateBudgetRequest  true  "Fields to change"
// @Success      200       {object}  budgetResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/budgets/{budgetId} [put]
func (h *BudgetHandler) Update(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req updateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Update(c.Request().Context(), owner, c.Param("budgetId"), toBudgetPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBudgetResponse(b))
}

// Delete handles DELETE /api/budgets/:budgetId and its transactions.
//
// @Summary      Delete a budget and its transactions
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        budgetId  path      string  true  "Budget id"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/budgets/{budgetId} [delete]
func (h *BudgetHandler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), owner, c.Param("budgetId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgBudgetDeleted})
}
