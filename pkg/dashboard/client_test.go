package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, StaticToken(token))
	require.NoError(t, err)
	return client
}

func TestClientLogin(t *testing.T) {
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "jwt-abc",
			"user":    map[string]interface{}{"id": "u1", "email": "alice@example.com"},
		})
	}))

	token, user, err := client.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
	assert.Equal(t, "u1", user.ID)
}

func TestClientBearerHeader(t *testing.T) {
	client := newTestClient(t, "jwt-abc", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "agents": []Agent{}})
	}))

	_, err := client.Agents(context.Background())
	require.NoError(t, err)
}

func TestClientUnauthorized(t *testing.T) {
	client := newTestClient(t, "expired", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Authentication required. Please login again.",
		})
	}))

	_, err := client.Agents(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientAPIErrorVerbatim(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Admin access required",
		})
	}))

	_, err := client.AdminUsers(context.Background())
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Equal(t, "Admin access required", err.Error())
}

func TestClientCreateAgentMultipart(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agents/create", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "support-bot", r.FormValue("agent_name"))
		assert.Equal(t, "retail", r.FormValue("domain"))
		require.Len(t, r.MultipartForm.File["files"], 2)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	err := client.CreateAgent(context.Background(), CreateAgentRequest{
		Name:   "support-bot",
		Domain: "retail",
		Files: []Upload{
			{Name: "faq.pdf", Content: []byte("pdf-bytes")},
			{Name: "policy.pdf", Content: []byte("pdf-bytes-2")},
		},
	})
	require.NoError(t, err)
}

func TestClientCreateAgentFromSource(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agents/create-from-source", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, SourceSQL, r.FormValue("source_type"))
		assert.Equal(t, "mysql://db/orders", r.FormValue("connection_string"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))

	err := client.CreateAgentFromSource(context.Background(),
		CreateAgentRequest{Name: "orders-bot", Domain: "retail"},
		SourceSQL,
		map[string]string{"connection_string": "mysql://db/orders"})
	require.NoError(t, err)
}

func TestClientMintEmbedTokenIdempotent(t *testing.T) {
	calls := 0
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/agents/support-bot/embed-token", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"embed_token": "a1b2c3d4e5f60718293a4b5c",
		})
	}))

	first, err := client.MintEmbedToken(context.Background(), "support-bot")
	require.NoError(t, err)
	second, err := client.MintEmbedToken(context.Background(), "support-bot")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestClientQueryFlatEnvelope(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agents/support-bot/query", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refund policy?", body["query"])
		assert.EqualValues(t, 6, body["k"])

		// answer and source_documents sit flat next to success
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"answer":  "30 days.",
			"source_documents": []map[string]interface{}{
				{"content": "Refunds are accepted within 30 days."},
			},
		})
	}))

	resp, err := client.Query(context.Background(), "support-bot", "refund policy?", 6)
	require.NoError(t, err)
	assert.Equal(t, "30 days.", resp.Answer)
	require.Len(t, resp.SourceDocuments, 1)
	assert.Contains(t, resp.SourceDocuments[0].Content, "30 days")
}

func TestClientStats(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/stats", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"stats": map[string]interface{}{
				"total_queries": 42,
				"total_tokens":  9000,
			},
		})
	}))

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalQueries)
	assert.Equal(t, 9000, stats.TotalTokens)
}

func TestClientAdminUserUsageLimit(t *testing.T) {
	client := newTestClient(t, "jwt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/usage/u1", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"usage":   []UsageRecord{{UserID: "u1", AgentID: 3, Surface: "embed", Tokens: 64}},
		})
	}))

	usage, err := client.AdminUserUsage(context.Background(), "u1", 50)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 64, usage[0].Tokens)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url", nil)
	assert.Error(t, err)

	_, err = NewClient("", nil)
	assert.Error(t, err)
}
