package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Get a user profile
// @Description  Returns the user with its expenses; the password hash is never included.
// @Tags         profile
// @Produce      json
// @Param        userId  path  string  true  "User id; must be the caller"
// @Success      200     {object}  models.UserProfile
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /profile/{userId} [get]
// @Security     BearerAuth
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.Param("userId")
	if userID != callerID(c) {
		forbidden(c)
		return
	}

	p, err := h.services.Profile(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err, msgFailedFetchProfile, "profile_get_failed", "user_id", userID)
		return
	}
	c.JSON(http.StatusOK, p)
}
