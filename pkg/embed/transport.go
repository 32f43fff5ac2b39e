package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport performs HTTP round trips against the embed API. It exists so
// tests and alternative stacks can substitute the wire layer; Client adds
// the protocol on top.
type Transport interface {
	// Get fetches path and decodes the JSON body into out.
	Get(ctx context.Context, path string, out interface{}) error
	// Post sends body as JSON to path and decodes the response into out.
	// A nil out discards the response body.
	Post(ctx context.Context, path string, body, out interface{}) error
	// Delete issues a DELETE to path, discarding any response body.
	Delete(ctx context.Context, path string) error
}

// HTTPTransport is the standard Transport over net/http.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// NewHTTPTransport creates a Transport rooted at baseURL.
// baseURL is the server root, e.g. "https://api.example.com".
func NewHTTPTransport(baseURL string, opts ...HTTPTransportOption) (*HTTPTransport, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("embed: invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("embed: invalid base URL %q", baseURL)
	}

	t := &HTTPTransport{
		base:   base,
		client: &http.Client{Timeout: 95 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base.String()+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

// Delete implements Transport.
func (t *HTTPTransport) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, t.base.String()+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, nil)
}

// do executes the request. Non-2xx responses become APIError with the
// server's error string passed through verbatim. No retries at this layer;
// the session protocol forbids automatic retry of query turns.
func (t *HTTPTransport) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
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
			return fmt.Errorf("embed: decoding response: %w", err)
		}
	}
	return nil
}
