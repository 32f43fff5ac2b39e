package embed

import (
	"context"
	"fmt"
	"net/url"
)

// Client is the REST client for the embed API. One Client serves one embed
// token. It is stateless and safe for concurrent use; Session layers the
// conversation state machine on top.
type Client struct {
	transport Transport
	token     string
}

// NewClient creates a Client for the given server base URL and embed token.
func NewClient(baseURL, token string, opts ...HTTPTransportOption) (*Client, error) {
	transport, err := NewHTTPTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewClientWithTransport(transport, token), nil
}

// NewClientWithTransport creates a Client over a custom Transport.
func NewClientWithTransport(transport Transport, token string) *Client {
	return &Client{transport: transport, token: token}
}

// Token returns the embed token this client serves.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) path(endpoint string) string {
	return fmt.Sprintf("/v1/embed/%s/%s", c.token, endpoint)
}

// Info fetches the public agent identity.
func (c *Client) Info(ctx context.Context) (*AgentInfo, error) {
	var resp struct {
		Success bool `json:"success"`
		AgentInfo
	}
	if err := c.transport.Get(ctx, c.path("info"), &resp); err != nil {
		return nil, err
	}
	return &resp.AgentInfo, nil
}

// Config fetches the widget configuration.
//
// Two envelope shapes are in the wild: the current nested
// {"success":true,"data":{"config":{...}}} and the legacy flat
// {"success":true,"config":{...}}. Both must keep working.
func (c *Client) Config(ctx context.Context) (*WidgetConfig, error) {
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Config *WidgetConfig `json:"config"`
		} `json:"data"`
		Config *WidgetConfig `json:"config"`
	}
	if err := c.transport.Get(ctx, c.path("config"), &resp); err != nil {
		return nil, err
	}

	cfg := resp.Data.Config
	if cfg == nil {
		cfg = resp.Config
	}
	if cfg == nil {
		return nil, fmt.Errorf("embed: config missing from response")
	}
	return cfg, nil
}

// Query sends one chat turn and returns the answer.
// conversationID groups turns server-side; empty is a fresh conversation.
func (c *Client) Query(ctx context.Context, query, conversationID string) (*QueryResult, error) {
	body := map[string]string{"query": query}
	if conversationID != "" {
		body["conversation_id"] = conversationID
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Answer    string `json:"answer"`
			MessageID string `json:"message_id"`
		} `json:"data"`
		Metadata struct {
			ResponseTimeMs int64 `json:"response_time_ms"`
			TokensUsed     int   `json:"tokens_used"`
		} `json:"metadata"`
		RequestID string `json:"request_id"`
	}
	if err := c.transport.Post(ctx, c.path("query"), body, &resp); err != nil {
		return nil, err
	}

	return &QueryResult{
		Answer:         resp.Data.Answer,
		MessageID:      resp.Data.MessageID,
		ResponseTimeMs: resp.Metadata.ResponseTimeMs,
		TokensUsed:     resp.Metadata.TokensUsed,
		RequestID:      resp.RequestID,
	}, nil
}

// Feedback records feedback for a message. feedbackType is "positive" or
// "negative"; re-submitting overwrites the previous value server-side.
func (c *Client) Feedback(ctx context.Context, messageID, feedbackType, comment string) error {
	body := map[string]string{
		"message_id": messageID,
		"type":       feedbackType,
	}
	if comment != "" {
		body["comment"] = comment
	}
	return c.transport.Post(ctx, c.path("feedback"), body, nil)
}

// Analytics reports a widget telemetry event.
func (c *Client) Analytics(ctx context.Context, event string, data map[string]interface{}) error {
	body := map[string]interface{}{"event": event}
	if data != nil {
		body["data"] = data
	}
	return c.transport.Post(ctx, c.path("analytics"), body, nil)
}

// Conversation fetches server-held history for this token. History lives
// client-side, so the list is empty today; the call doubles as a token
// liveness probe.
func (c *Client) Conversation(ctx context.Context) ([]Message, error) {
	var resp struct {
		Success  bool      `json:"success"`
		Messages []Message `json:"messages"`
	}
	if err := c.transport.Get(ctx, c.path("conversation"), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// ClearConversation asks the server to drop its memory of a conversation.
// History is client-side, so this only clears engine-side context; callers
// treat failures as best effort.
func (c *Client) ClearConversation(ctx context.Context, conversationID string) error {
	endpoint := "conversation"
	if conversationID != "" {
		endpoint += "?conversation_id=" + url.QueryEscape(conversationID)
	}
	return c.transport.Delete(ctx, c.path(endpoint))
}
