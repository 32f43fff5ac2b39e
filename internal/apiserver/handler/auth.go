// Package handler implements the HTTP handlers for the apiserver.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/internal/apiserver/biz"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/middleware"
	"github.com/agentic-hq/agentic/pkg/response"
)

// AuthHandler handles registration, login and session verification.
type AuthHandler struct {
	auth *biz.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *biz.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	token, user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{"token": token, "user": userView(user)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{"token": token, "user": userView(user)})
}

// Verify handles GET /auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, errors.ErrLoginRequired)
		return
	}

	user, err := h.auth.Verify(c.Request.Context(), claims)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{"user": userView(user)})
}

// Health handles GET /auth/health.
func (h *AuthHandler) Health(c *gin.Context) {
	response.OKFields(c, gin.H{"status": "ok"})
}

// userView shapes an account for the wire. IDs travel as strings so widget
// and CLI clients never lose precision on large numeric ids.
func userView(u *model.User) gin.H {
	return gin.H{
		"id":       strconv.FormatUint(u.ID, 10),
		"name":     u.Name,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	}
}
