package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// sseDone is the stream terminator sentinel.
	sseDone = "[DONE]"

	// revealDelay paces the simulated word-by-word reveal when streaming is
	// unavailable. Cosmetic only.
	revealDelay = 30 * time.Millisecond
)

// QueryStream runs one authenticated chat turn with incremental delivery.
// Fragments arrive through onToken as the server produces them.
//
// When the server does not speak SSE (older deployments answer the stream
// route with plain JSON, or not at all), the call falls back to the regular
// query endpoint and replays the finished answer word by word through
// onToken, so rendering adapters see the same shape either way.
func (c *Client) QueryStream(ctx context.Context, agentName, query string, k int, onToken func(string)) (*QueryResponse, error) {
	body := map[string]interface{}{"query": query}
	if k > 0 {
		body["k"] = k
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost,
		"/api/agents/"+url.PathEscape(agentName)+"/query/stream", strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		// transport failure on the stream route; try the plain route
		return c.queryWithReveal(ctx, agentName, query, k, onToken)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		return nil, ErrUnauthorized
	}
	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !strings.HasPrefix(contentType, "text/event-stream") {
		_ = resp.Body.Close()
		return c.queryWithReveal(ctx, agentName, query, k, onToken)
	}
	defer func() { _ = resp.Body.Close() }()

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == sseDone {
			break
		}

		var fragment struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(data), &fragment); err != nil {
			continue
		}
		answer.WriteString(fragment.Token)
		if onToken != nil {
			onToken(fragment.Token)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &QueryResponse{Answer: answer.String()}, nil
}

// queryWithReveal is the non-streaming fallback: fetch the complete answer,
// then replay it word by word so the UI still types.
func (c *Client) queryWithReveal(ctx context.Context, agentName, query string, k int, onToken func(string)) (*QueryResponse, error) {
	resp, err := c.Query(ctx, agentName, query, k)
	if err != nil {
		return nil, err
	}

	if onToken != nil {
		words := strings.Fields(resp.Answer)
		for i, word := range words {
			select {
			case <-ctx.Done():
				return resp, ctx.Err()
			case <-time.After(revealDelay):
			}
			if i < len(words)-1 {
				onToken(word + " ")
			} else {
				onToken(word)
			}
		}
	}
	return resp, nil
}
