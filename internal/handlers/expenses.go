package handlers

import (
	"net/http"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	msgExpenseRecorded = "Expense recorded successfully"
	msgExpenseDeleted  = "Expense deleted successfully"
)

// ExpenseRequest is the payload for recording or editing an entry.
// UserID is optional; when present it must match the caller.
type ExpenseRequest struct {
	UserID      string             `json:"userId,omitempty" example:"65f1c0ffee0000000000abcd"`
	Type        models.ExpenseType `json:"type" binding:"required" example:"expense" enums:"income,expense"`
	Date        *models.Date       `json:"date" binding:"required" swaggertype:"string" example:"2024-03-01"`
	Description string             `json:"description" example:"groceries"`
	Amount      *decimal.Decimal   `json:"amount" binding:"required" swaggertype:"string" example:"42.50"`
}

func (r ExpenseRequest) input() service.ExpenseInput {
	return service.ExpenseInput{
		Type:        r.Type,
		Date:        *r.Date,
		Description: r.Description,
		Amount:      *r.Amount,
	}
}

func filterFromQuery(c *gin.Context) service.ExpenseFilter {
	return service.ExpenseFilter{
		Type:  c.Query("type"),
		Month: c.Query("month"),
		Year:  c.Query("year"),
	}
}

// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body  ExpenseRequest  true  "Entry"
// @Success      200   {object}  map[string]interface{}  "message, expense"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /recordexpense [post]
// @Security     BearerAuth
func (h *Handler) recordExpense(c *gin.Context) {
	var req ExpenseRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	caller := callerID(c)
	if req.UserID != "" && req.UserID != caller {
		forbidden(c)
		return
	}

	e, err := h.services.Expenses.Record(c.Request.Context(), caller, req.input())
	if err != nil {
		h.respondServiceError(c, err, msgFailedRecordExpense, "expense_record_failed", "user_id", caller)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgExpenseRecorded, "expense": e})
}

// @Summary      List expenses
// @Description  Month narrows the result only together with year; type must match exactly.
// @Tags         expenses
// @Produce      json
// @Param        userId  query  string  false  "Must equal the caller when given"
// @Param        type    query  string  false  "income or expense"
// @Param        month   query  string  false  "1-12"  example(3)
// @Param        year    query  string  false  "Four-digit year"  example(2024)
// @Success      200     {array}   models.Expense
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /expenses [get]
// @Security     BearerAuth
func (h *Handler) listExpenses(c *gin.Context) {
	caller := callerID(c)
	if q := c.Query("userId"); q != "" && q != caller {
		forbidden(c)
		return
	}

	f := filterFromQuery(c)
	expenses, err := h.services.Expenses.List(c.Request.Context(), caller, f)
	if err != nil {
		h.respondServiceError(c, err, msgFailedFetchExpenses, "expense_list_failed", "user_id", caller, "filter", f)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// @Summary      Summarize expenses
// @Description  Income, expense and savings over the filtered entries.
// @Tags         expenses
// @Produce      json
// @Param        type    query  string  false  "income or expense"
// @Param        month   query  string  false  "1-12"
// @Param        year    query  string  false  "Four-digit year"
// @Success      200     {object}  models.Summary
// @Failure      401     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /expenses/summary [get]
// @Security     BearerAuth
func (h *Handler) getSummary(c *gin.Context) {
	caller := callerID(c)
	s, err := h.services.Summarize(c.Request.Context(), caller, filterFromQuery(c))
	if err != nil {
		h.respondServiceError(c, err, msgFailedSummary, "expense_summary_failed", "user_id", caller)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Update an expense
// @Description  Replaces type, date, description and amount of the entry.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Expense id"
// @Param        body  body  ExpenseRequest  true  "New values"
// @Success      200   {object}  models.Expense
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /expenses/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateExpense(c *gin.Context) {
	var req ExpenseRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	caller, expenseID := callerID(c), c.Param("id")

	e, err := h.services.Expenses.Update(c.Request.Context(), caller, expenseID, req.input())
	if err != nil {
		h.respondServiceError(c, err, msgFailedUpdateExpense, "expense_update_failed", "user_id", caller, "expense_id", expenseID)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path  string  true  "Expense id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /expenses/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteExpense(c *gin.Context) {
	caller, expenseID := callerID(c), c.Param("id")

	if err := h.services.Expenses.Delete(c.Request.Context(), caller, expenseID); err != nil {
		h.respondServiceError(c, err, msgFailedDeleteExpense, "expense_delete_failed", "user_id", caller, "expense_id", expenseID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgExpenseDeleted})
}
