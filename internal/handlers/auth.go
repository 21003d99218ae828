package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgSignUpOK     = "success"
	msgLoginNoUser  = "User not found."
	msgLoginBadPass = "Incorrect password."
	msgLoggedOut    = "Logged out successfully"
	msgLogoutFailed = "Failed to log out"
	statusOK        = "ok"
)

// SignUpRequest is the sign-up payload.
type SignUpRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret"`
}

// LoginRequest is the sign-in payload.
// An empty password is checked like any other and answers "Incorrect password.".
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      plain
// @Param        body  body  SignUpRequest  true  "New account"
// @Success      200   {string}  string  "success"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /usersignup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		h.respondServiceError(c, err, msgInternal, "auth_sign_up_failed", "email", input.Email)
		return
	}

	if h.log != nil {
		h.log.Infow("user_signed_up", "user_id", id)
	}
	c.String(http.StatusOK, msgSignUpOK)
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]string  "userId, token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /userlogin [post]
func (h *Handler) signIn(c *gin.Context) {
	var input LoginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	userID, token, err := h.services.GenerateToken(c.Request.Context(), input.Email, input.Password)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "email", input.Email, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgLoginNoUser})
		return
	case errors.Is(err, service.ErrInvalidPassword):
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "email", input.Email, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgLoginBadPass})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, msgInternal, "auth_sign_in_error", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID, "token": token})
}

// @Summary      Log out
// @Description  Revokes the presented token until it expires.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	if err := h.services.Logout(c.Request.Context(), callerClaims(c)); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, msgLogoutFailed, "auth_logout_failed", err, "user_id", callerID(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgLoggedOut})
}
