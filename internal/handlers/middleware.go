package handlers

import (
	"net/http"
	"strings"
	"time"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIdCtx    = "userId"
	claimsCtx    = "claims"
	requestIDCtx = "requestId"

	requestIDHeader = "X-Request-ID"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "invalid Authorization header format",
		})
		return
	}

	claims, err := h.services.ParseToken(c.Request.Context(), parts[1])
	if err != nil {
		if h.log != nil {
			h.log.Debugw("token_rejected", "err", err, "request_id", c.GetString(requestIDCtx))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(userIdCtx, claims.UserID)
	c.Set(claimsCtx, claims)
	c.Next()
}

// requestLogger tags each request with an id and logs it once the handler chain returns.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()

	reqID := c.GetHeader(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Set(requestIDCtx, reqID)
	c.Header(requestIDHeader, reqID)

	c.Next()

	if h.log == nil {
		return
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"request_id", reqID,
		"client_ip", c.ClientIP(),
	)
}

func callerID(c *gin.Context) string {
	return c.GetString(userIdCtx)
}

func callerClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(claimsCtx)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
