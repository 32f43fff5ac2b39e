package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// string means no credential; the request goes out unauthenticated and the
// server answers 401.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-credential TokenSource.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Client is the REST client for the auth and dashboard surfaces.
type Client struct {
	base   *url.URL
	client *http.Client
	tokens TokenSource
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.client = c
	}
}

// NewClient creates a dashboard Client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("dashboard: invalid base URL %q", baseURL)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	c := &Client{
		base:   base,
		client: &http.Client{Timeout: 120 * time.Second},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON executes req and decodes the response into out. 401 maps to
// ErrUnauthorized; other non-2xx statuses carry the server error verbatim.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("dashboard: decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// ============================================================================
// Auth surface
// ============================================================================

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    *User  `json:"user"`
	}
	err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

// Register creates an account and returns a session token.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) (string, *User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    *User  `json:"user"`
	}
	err := c.postJSON(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": password,
	}, &resp)
	if err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

// Verify checks the current credential and returns the account behind it.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var resp struct {
		Success bool  `json:"success"`
		User    *User `json:"user"`
	}
	if err := c.getJSON(ctx, "/auth/verify", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ============================================================================
// Agent management
// ============================================================================

// Agents lists the caller's agents.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	var resp struct {
		Success bool    `json:"success"`
		Agents  []Agent `json:"agents"`
	}
	if err := c.getJSON(ctx, "/api/agents", &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// Agent fetches one agent by name.
func (c *Client) Agent(ctx context.Context, name string) (*Agent, error) {
	var resp struct {
		Success bool   `json:"success"`
		Agent   *Agent `json:"agent"`
	}
	if err := c.getJSON(ctx, "/api/agents/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	return resp.Agent, nil
}

// CreateAgent creates an agent from uploaded documents.
func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) error {
	fields := map[string]string{
		"agent_name":  req.Name,
		"domain":      req.Domain,
		"description": req.Description,
	}
	return c.postMultipart(ctx, "/api/agents/create", fields, req.Files)
}

// CreateAgentFromSource creates an agent from a typed knowledge source.
// Extra fields depend on sourceType (connection strings for sql/nosql,
// nothing extra for document uploads).
func (c *Client) CreateAgentFromSource(ctx context.Context, req CreateAgentRequest, sourceType string, extra map[string]string) error {
	fields := map[string]string{
		"agent_name":  req.Name,
		"domain":      req.Domain,
		"description": req.Description,
		"source_type": sourceType,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return c.postMultipart(ctx, "/api/agents/create-from-source", fields, req.Files)
}

// UpdateAgent uploads additional documents into an existing agent.
func (c *Client) UpdateAgent(ctx context.Context, name string, files []Upload) error {
	return c.postMultipart(ctx, "/api/agents/"+url.PathEscape(name)+"/update", nil, files)
}

// DeleteAgent deletes an agent by name.
func (c *Client) DeleteAgent(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/agents/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// MintEmbedToken returns the agent's embed token, creating it on first call.
// Minting is idempotent: every call returns the same token.
func (c *Client) MintEmbedToken(ctx context.Context, name string) (string, error) {
	var resp struct {
		Success    bool   `json:"success"`
		EmbedToken string `json:"embed_token"`
	}
	err := c.postJSON(ctx, "/api/agents/"+url.PathEscape(name)+"/embed-token", nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.EmbedToken, nil
}

// postMultipart sends a multipart form with fields and file uploads.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files []Upload) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Content); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.doJSON(req, nil)
}

// ============================================================================
// Chat
// ============================================================================

// Query runs one authenticated chat turn against an agent.
func (c *Client) Query(ctx context.Context, agentName, query string, k int) (*QueryResponse, error) {
	body := map[string]interface{}{"query": query}
	if k > 0 {
		body["k"] = k
	}

	var resp struct {
		Success bool `json:"success"`
		QueryResponse
	}
	err := c.postJSON(ctx, "/api/agents/"+url.PathEscape(agentName)+"/query", body, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.QueryResponse, nil
}

// ============================================================================
// Stats and admin
// ============================================================================

// Stats returns the caller's usage summary.
func (c *Client) Stats(ctx context.Context) (*UserStats, error) {
	var resp struct {
		Success bool       `json:"success"`
		Stats   *UserStats `json:"stats"`
	}
	if err := c.getJSON(ctx, "/api/user/stats", &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// AdminUsers lists all accounts. Admin only.
func (c *Client) AdminUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Users   []User `json:"users"`
	}
	if err := c.getJSON(ctx, "/api/admin/users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// AdminUsage lists usage across all accounts. Admin only.
func (c *Client) AdminUsage(ctx context.Context) ([]UsageRecord, error) {
	var resp struct {
		Success bool          `json:"success"`
		Usage   []UsageRecord `json:"usage"`
	}
	if err := c.getJSON(ctx, "/api/admin/usage", &resp); err != nil {
		return nil, err
	}
	return resp.Usage, nil
}

// AdminUserUsage lists one account's usage. Admin only.
func (c *Client) AdminUserUsage(ctx context.Context, userID string, limit int) ([]UsageRecord, error) {
	path := "/api/admin/usage/" + url.PathEscape(userID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp struct {
		Success bool          `json:"success"`
		Usage   []UsageRecord `json:"usage"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Usage, nil
}
