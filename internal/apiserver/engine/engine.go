// Package engine is the HTTP client for the external answer engine that
// performs retrieval and generation. The apiserver never talks to a model
// directly; every chat turn is proxied through this client.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	apierrors "github.com/agentic-hq/agentic/pkg/errors"
	engineopts "github.com/agentic-hq/agentic/pkg/options/engine"
)

// QueryRequest is one retrieval-augmented generation request.
type QueryRequest struct {
	Collection     string `json:"collection"`
	Query          string `json:"query"`
	TopK           int    `json:"k,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// SourceDocument is one retrieval hit.
type SourceDocument struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryResult is the engine's answer with its accounting.
type QueryResult struct {
	Answer           string           `json:"answer"`
	SourceDocuments  []SourceDocument `json:"source_documents"`
	PromptTokens     int              `json:"prompt_tokens"`
	CompletionTokens int              `json:"completion_tokens"`
	TotalTokens      int              `json:"total_tokens"`
}

// Document is one file to ingest into a collection.
type Document struct {
	Name    string
	Content []byte
}

// Client calls the answer engine HTTP API.
type Client struct {
	base   string
	apiKey string
	client *http.Client
}

// New creates an engine client from options.
func New(opts *engineopts.Options) *Client {
	return &Client{
		base:   strings.TrimRight(opts.Endpoint, "/"),
		apiKey: opts.APIKey,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apierrors.ErrEngineTimeout.WithCause(err)
		}
		return apierrors.ErrEngineUnavailable.WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierrors.ErrEngineUnavailable.WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierrors.ErrEngineFailed.WithCause(
			fmt.Errorf("engine returned %d: %s", resp.StatusCode, truncate(string(data), 256)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return apierrors.ErrEngineFailed.WithCause(err)
		}
	}
	return nil
}

// Query runs one retrieval-augmented generation turn.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/query", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result QueryResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QueryStream runs one turn with streaming output. The engine's SSE body is
// passed through untouched; the caller relays it to the browser.
func (c *Client) QueryStream(ctx context.Context, req QueryRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/query/stream", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apierrors.ErrEngineUnavailable.WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, apierrors.ErrEngineFailed.WithCause(fmt.Errorf("engine returned %d", resp.StatusCode))
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		_ = resp.Body.Close()
		return nil, apierrors.ErrEngineFailed.WithCause(errors.New("engine does not support streaming"))
	}
	return resp.Body, nil
}

// Ingest uploads documents into a collection, creating it if needed.
// sourceType tells the engine which parser to use; extra carries
// source-specific settings such as connection strings.
func (c *Client) Ingest(ctx context.Context, collection, sourceType string, docs []Document, extra map[string]string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("collection", collection); err != nil {
		return err
	}
	if sourceType != "" {
		if err := writer.WriteField("source_type", sourceType); err != nil {
			return err
		}
	}
	for k, v := range extra {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, doc := range docs {
		part, err := writer.CreateFormFile("files", doc.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(doc.Content); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/ingest", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, nil)
}

// DeleteCollection drops a collection and its vectors.
func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/collections/"+url.PathEscape(collection), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ClearConversation drops the engine's memory of a conversation.
func (c *Client) ClearConversation(ctx context.Context, conversationID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
