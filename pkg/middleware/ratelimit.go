package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/ratelimit"
	"github.com/agentic-hq/agentic/pkg/response"
)

// EmbedRateLimit returns a middleware enforcing the per-token query window.
// The key is the :token path parameter. Rejections carry window metadata so
// widgets can show a countdown. Limiter backend errors fail open; losing a
// window is better than taking the chat down.
func EmbedRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		res, err := limiter.Allow(c.Request.Context(), token)
		if err != nil {
			logger.Warnw("rate limiter unavailable, failing open",
				"error", err.Error(),
				"request_id", GetRequestID(c),
			)
			c.Next()
			return
		}

		if !res.Allowed {
			response.FailMeta(c, errors.ErrEmbedRateLimited, gin.H{
				"limit":          res.Limit,
				"remaining":      0,
				"retry_after_ms": res.RetryAfter.Milliseconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
