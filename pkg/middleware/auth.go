package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/pkg/auth"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/response"
)

// Context keys set by RequireAuth.
const (
	ContextUserID  = "user_id"
	ContextClaims  = "claims"
	ContextIsAdmin = "is_admin"
)

// RequireAuth returns a middleware that verifies the Authorization bearer
// token and stores the session claims in the gin context.
func RequireAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Abort(c, errors.ErrLoginRequired)
			return
		}

		claims, err := tm.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Abort(c, errors.ErrLoginRequired)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin returns a middleware that rejects non-admin sessions.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			response.Abort(c, errors.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

// GetClaims returns the session claims stored by RequireAuth.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// GetUserID returns the authenticated user id, or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
