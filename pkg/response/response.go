// Package response writes the wire envelope shared by every HTTP surface.
//
// Success:
//
//	{"success": true, "data": {...}, "metadata": {...}, "request_id": "..."}
//
// Failure:
//
//	{"success": false, "error": "human readable message"}
//
// Some dashboard endpoints flatten extra fields next to "success" instead of
// nesting under "data". OKFields covers those. The two shapes coexist on
// purpose; widget clients must keep accepting both.
package response

import (
	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/pkg/errors"
)

// Envelope is the standard response body.
type Envelope struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Metadata  interface{} `json:"metadata,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// OK sends a successful response with data nested under "data".
func OK(c *gin.Context, data interface{}) {
	c.JSON(errors.OK.HTTPStatus(), &Envelope{Success: true, Data: data})
}

// OKMeta sends a successful response with data, metadata and a request id.
func OKMeta(c *gin.Context, data, metadata interface{}, requestID string) {
	c.JSON(errors.OK.HTTPStatus(), &Envelope{
		Success:   true,
		Data:      data,
		Metadata:  metadata,
		RequestID: requestID,
	})
}

// OKFields sends a successful response with fields flattened next to
// "success". The fields map must not contain a "success" key.
func OKFields(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(errors.OK.HTTPStatus(), body)
}

// Fail sends an error response using the Errno's HTTP status and message.
func Fail(c *gin.Context, e *errors.Errno) {
	c.JSON(e.HTTPStatus(), &Envelope{Success: false, Error: e.Message()})
}

// FailMeta sends an error response carrying extra metadata, used by the
// rate limiter to report window state on 429s.
func FailMeta(c *gin.Context, e *errors.Errno, metadata interface{}) {
	c.JSON(e.HTTPStatus(), &Envelope{Success: false, Error: e.Message(), Metadata: metadata})
}

// FailWithError converts any error and sends it.
// Non-Errno errors are reported as internal server errors without leaking
// the underlying message.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}

// Abort sends an error response and aborts the gin handler chain.
func Abort(c *gin.Context, e *errors.Errno) {
	c.AbortWithStatusJSON(e.HTTPStatus(), &Envelope{Success: false, Error: e.Message()})
}
