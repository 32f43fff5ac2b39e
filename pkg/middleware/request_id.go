// Package middleware provides the gin middleware shared by every HTTP
// surface of the apiserver.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/pkg/id"
)

// RequestID header and context key names.
const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID returns a middleware that tags each request with a unique id.
// The id is echoed in the X-Request-ID response header and stored in the
// gin context for handlers to embed in response envelopes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.NewRequestID()
		}

		c.Header(HeaderXRequestID, requestID)
		c.Set(ContextRequestID, requestID)

		c.Next()
	}
}

// GetRequestID returns the request id from the gin context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
