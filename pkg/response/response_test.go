package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-hq/agentic/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOK(t *testing.T) {
	c, w := newTestContext(t)
	OK(c, gin.H{"answer": "42"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "42", body["data"].(map[string]interface{})["answer"])
	assert.NotContains(t, body, "error")
}

func TestOKMeta(t *testing.T) {
	c, w := newTestContext(t)
	OKMeta(c, gin.H{"answer": "hi"}, gin.H{"response_time_ms": 12}, "req-1")

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["request_id"])
	meta := body["metadata"].(map[string]interface{})
	assert.EqualValues(t, 12, meta["response_time_ms"])
}

func TestOKFieldsFlattens(t *testing.T) {
	c, w := newTestContext(t)
	OKFields(c, gin.H{"agent_name": "support-bot", "domain": "retail"})

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "support-bot", body["agent_name"])
	assert.NotContains(t, body, "data")
}

func TestFail(t *testing.T) {
	c, w := newTestContext(t)
	Fail(c, errors.ErrInvalidEmbedToken)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid embed token", body["error"])
}

func TestFailMetaCarriesWindowState(t *testing.T) {
	c, w := newTestContext(t)
	FailMeta(c, errors.ErrEmbedRateLimited, gin.H{"limit": 20, "remaining": 0, "window_seconds": 60})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	meta := body["metadata"].(map[string]interface{})
	assert.EqualValues(t, 20, meta["limit"])
	assert.EqualValues(t, 0, meta["remaining"])
}

func TestFailWithErrorHidesInternals(t *testing.T) {
	c, w := newTestContext(t)
	FailWithError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body["error"], assert.AnError.Error())
}
