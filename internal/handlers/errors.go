package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgUserNotFound        = "User not found"
	msgExpenseNotFound     = "Expense not found"
	msgOwnerNotFound       = "User or Expense not found"
	msgEmailTaken          = "Email already registered."
	msgConflict            = "Concurrent modification, please retry"
	msgForbidden           = "Forbidden"
	msgInvalidBodyPref     = "invalid body: "
	msgInternal            = "Internal server error."
	msgFailedRecordExpense = "Failed to record expense"
	msgFailedFetchExpenses = "Failed to fetch expenses"
	msgFailedUpdateExpense = "Failed to update expense"
	msgFailedDeleteExpense = "Failed to delete expense"
	msgFailedFetchProfile  = "Failed to fetch user profile"
	msgFailedSummary       = "Failed to compute summary"
	msgFailedActivity      = "Failed to load activity"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(requestIDCtx)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"message": userMsg})
}

// respondServiceError maps domain errors to statuses; anything unknown is a 500 with fallback.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallback, logKey string, kv ...interface{}) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Reason})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgUserNotFound})
	case errors.Is(err, service.ErrExpenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgExpenseNotFound})
	case errors.Is(err, service.ErrOwnerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgOwnerNotFound})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": msgEmailTaken})
	case errors.Is(err, service.ErrConflict):
		if h.log != nil {
			h.log.Warnw(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(http.StatusConflict, gin.H{"message": msgConflict})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, fallback, logKey, err, kv...)
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"message": msgForbidden})
}
