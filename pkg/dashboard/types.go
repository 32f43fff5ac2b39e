// Package dashboard implements the authenticated dashboard client: the auth
// session, the agent store and the chat calls owners use to test their
// agents. The anonymous widget protocol lives in pkg/embed.
package dashboard

import (
	"errors"
	"fmt"
	"net/http"
)

// User is the authenticated account.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Agent is one deployed agent as listed by the dashboard API.
type Agent struct {
	Name        string `json:"agent_name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	EmbedToken  string `json:"embed_token,omitempty"`
}

// SourceDocument is one retrieval hit returned with an answer.
type SourceDocument struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryResponse is the authenticated chat answer. Note the envelope differs
// from the embed surface on purpose: fields sit flat next to "success".
type QueryResponse struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents"`
}

// UserStats is the per-account usage summary.
type UserStats struct {
	TotalQueries     int    `json:"total_queries"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	LastQueryAt      string `json:"last_query_at,omitempty"`
}

// UsageRecord is one admin-visible usage row.
type UsageRecord struct {
	UserID         string `json:"user_id"`
	AgentID        uint64 `json:"agent_id"`
	Surface        string `json:"surface"`
	Tokens         int    `json:"tokens"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	CreatedAt      string `json:"created_at"`
}

// CreateAgentRequest creates a new agent from uploaded documents.
type CreateAgentRequest struct {
	Name        string
	Domain      string
	Description string
	Files       []Upload
}

// Upload is one file attached to an agent create call.
type Upload struct {
	Name    string
	Content []byte
}

// Source types accepted by create-from-source.
const (
	SourcePDF   = "pdf"
	SourceCSV   = "csv"
	SourceWord  = "word"
	SourceSQL   = "sql"
	SourceNoSQL = "nosql"
)

// ErrUnauthorized is returned for 401 responses after the credential has
// been force-cleared.
var ErrUnauthorized = errors.New("dashboard: authentication required, please login again")

// APIError is a non-2xx dashboard response. Message is the server string,
// verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("dashboard: request failed with status %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsForbidden reports whether err is a 403 response.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}
