package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "a1b2c3d4e5f60718293a4b5c")
	require.NoError(t, err)
	return client
}

func TestClientInfo(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embed/a1b2c3d4e5f60718293a4b5c/info", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"agent_name":  "support-bot",
			"domain":      "retail",
			"description": "Answers order questions",
		})
	}))

	info, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "support-bot", info.AgentName)
	assert.Equal(t, "retail", info.Domain)
}

func TestClientInfoInvalidToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Invalid embed token",
		})
	}))

	_, err := client.Info(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalidToken(err))
	// server string passes through verbatim
	assert.Equal(t, "Invalid embed token", err.Error())
}

func TestClientConfigNestedEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"config": map[string]interface{}{
					"agent":      map[string]interface{}{"name": "support-bot", "domain": "retail"},
					"features":   map[string]interface{}{"streaming": false, "feedback": true},
					"rate_limit": map[string]interface{}{"limit": 20, "remaining": 20, "window_seconds": 60},
					"ui_hints": map[string]interface{}{
						"placeholder":     "Ask about retail...",
						"welcome_message": "Hi! I'm support-bot. How can I help you today?",
					},
				},
			},
		})
	}))

	cfg, err := client.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "support-bot", cfg.Agent.Name)
	assert.True(t, cfg.Features.Feedback)
	assert.Equal(t, 20, cfg.RateLimit.Limit)
	assert.Equal(t, "Hi! I'm support-bot. How can I help you today?", cfg.UIHints.WelcomeMessage)
}

func TestClientConfigLegacyFlatEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"config": map[string]interface{}{
				"agent":    map[string]interface{}{"name": "legacy-bot"},
				"ui_hints": map[string]interface{}{"welcome_message": "Hello"},
			},
		})
	}))

	cfg, err := client.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legacy-bot", cfg.Agent.Name)
}

func TestClientQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embed/a1b2c3d4e5f60718293a4b5c/query", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is your refund policy?", body["query"])
		assert.Equal(t, "conv_1", body["conversation_id"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"data":       map[string]interface{}{"answer": "30 days, no questions asked.", "message_id": "msg_01H"},
			"metadata":   map[string]interface{}{"response_time_ms": 812, "tokens_used": 64},
			"request_id": "req_01H",
		})
	}))

	result, err := client.Query(context.Background(), "What is your refund policy?", "conv_1")
	require.NoError(t, err)
	assert.Equal(t, "30 days, no questions asked.", result.Answer)
	assert.Equal(t, "msg_01H", result.MessageID)
	assert.EqualValues(t, 812, result.ResponseTimeMs)
	assert.Equal(t, 64, result.TokensUsed)
	assert.Equal(t, "req_01H", result.RequestID)
}

func TestClientQueryRateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Rate limit exceeded. Please try again later.",
		})
	}))

	_, err := client.Query(context.Background(), "hi", "")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, "Rate limit exceeded. Please try again later.", err.Error())
}

func TestClientFeedback(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embed/a1b2c3d4e5f60718293a4b5c/feedback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	err := client.Feedback(context.Background(), "msg_1", FeedbackNegative, "wrong answer")
	require.NoError(t, err)
	assert.Equal(t, "msg_1", got["message_id"])
	assert.Equal(t, "negative", got["type"])
	assert.Equal(t, "wrong answer", got["comment"])
}

func TestClientAnalytics(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embed/a1b2c3d4e5f60718293a4b5c/analytics", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	err := client.Analytics(context.Background(), EventWidgetOpen, map[string]interface{}{"page": "/pricing"})
	require.NoError(t, err)
	assert.Equal(t, "widget_open", got["event"])
	assert.Equal(t, "/pricing", got["data"].(map[string]interface{})["page"])
}

func TestClientClearConversation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/embed/a1b2c3d4e5f60718293a4b5c/conversation", r.URL.Path)
		assert.Equal(t, "conv_1", r.URL.Query().Get("conversation_id"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	require.NoError(t, client.ClearConversation(context.Background(), "conv_1"))
}

func TestNewHTTPTransportRejectsBadURL(t *testing.T) {
	_, err := NewHTTPTransport("not a url")
	assert.Error(t, err)

	_, err = NewHTTPTransport("")
	assert.Error(t, err)
}
