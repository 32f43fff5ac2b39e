package biz

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/apiserver/engine"
	"github.com/agentic-hq/agentic/internal/apiserver/store"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/cache"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/id"
	"github.com/agentic-hq/agentic/pkg/ratelimit"
	ratelimitopts "github.com/agentic-hq/agentic/pkg/options/ratelimit"
)

// WidgetConfig is the configuration payload served to embedded widgets.
type WidgetConfig struct {
	Agent struct {
		Name        string `json:"name"`
		Domain      string `json:"domain,omitempty"`
		Description string `json:"description,omitempty"`
		CreatedAt   string `json:"created_at,omitempty"`
	} `json:"agent"`
	Features struct {
		Streaming           bool `json:"streaming"`
		FileUpload          bool `json:"file_upload"`
		VoiceInput          bool `json:"voice_input"`
		Feedback            bool `json:"feedback"`
		ConversationHistory bool `json:"conversation_history"`
	} `json:"features"`
	RateLimit struct {
		Limit         int `json:"limit"`
		Remaining     int `json:"remaining"`
		WindowSeconds int `json:"window_seconds"`
	} `json:"rate_limit"`
	UIHints struct {
		Placeholder        string   `json:"placeholder"`
		WelcomeMessage     string   `json:"welcome_message"`
		SuggestedQuestions []string `json:"suggested_questions"`
	} `json:"ui_hints"`
}

// EmbedQueryResult is one widget answer with its response metadata.
type EmbedQueryResult struct {
	Answer         string
	MessageID      string
	RequestID      string
	ResponseTimeMs int64
	TokensUsed     int
}

// EmbedService handles the anonymous widget surface. Every call is keyed by
// a public embed token; there is no account in the picture.
// resolveTTL bounds how long a deleted agent keeps answering through a
// cached token resolution.
const resolveTTL = 30 * time.Second

type EmbedService struct {
	store   store.Factory
	engine  *engine.Client
	limiter ratelimit.Limiter
	limits  *ratelimitopts.Options
	pool    *ants.Pool
	resolve *cache.TTLCache[string, *model.Agent]
}

// NewEmbedService creates a new EmbedService. The pool absorbs analytics
// writes so beacons never block a chat turn.
func NewEmbedService(factory store.Factory, eng *engine.Client, limiter ratelimit.Limiter, limits *ratelimitopts.Options) (*EmbedService, error) {
	pool, err := ants.NewPool(8, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &EmbedService{
		store:   factory,
		engine:  eng,
		limiter: limiter,
		limits:  limits,
		pool:    pool,
		resolve: cache.NewTTL[string, *model.Agent](resolveTTL),
	}, nil
}

// Close releases the analytics pool.
func (s *EmbedService) Close() {
	s.pool.Release()
}

// Resolve maps an embed token to its agent. Unknown tokens, malformed
// tokens and tokens whose agent has been deleted all resolve the same way.
func (s *EmbedService) Resolve(ctx context.Context, token string) (*model.Agent, error) {
	if err := id.ValidateEmbedToken(token); err != nil {
		return nil, errors.ErrInvalidEmbedToken
	}
	if agent, ok := s.resolve.Get(token); ok {
		return agent, nil
	}
	row, err := s.store.EmbedTokens().GetByToken(ctx, token)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrInvalidEmbedToken
	}
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	agent, err := s.store.Agents().GetByID(ctx, row.AgentID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrInvalidEmbedToken
	}
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	s.resolve.Set(token, agent)
	return agent, nil
}

// Config builds the widget configuration for a token, including the current
// rate limit window state.
func (s *EmbedService) Config(ctx context.Context, token string) (*WidgetConfig, error) {
	agent, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	cfg := &WidgetConfig{}
	cfg.Agent.Name = agent.Name
	cfg.Agent.Domain = agent.Domain
	cfg.Agent.Description = agent.Description
	if agent.CreatedAt > 0 {
		cfg.Agent.CreatedAt = time.UnixMilli(agent.CreatedAt).UTC().Format(time.RFC3339)
	}

	// streaming stays off on the widget surface; the protocol has no SSE leg
	cfg.Features.Feedback = true
	cfg.Features.ConversationHistory = true

	cfg.RateLimit.Limit = s.limits.Limit
	cfg.RateLimit.Remaining = s.limits.Limit
	cfg.RateLimit.WindowSeconds = s.limits.WindowSeconds()
	if res, err := s.limiter.Peek(ctx, token); err == nil {
		cfg.RateLimit.Remaining = res.Remaining
	}

	cfg.UIHints.Placeholder = placeholder(agent)
	cfg.UIHints.WelcomeMessage = fmt.Sprintf("Hi! I'm %s. How can I help you today?", agent.Name)
	cfg.UIHints.SuggestedQuestions = []string{}
	return cfg, nil
}

// Query runs one anonymous widget turn and records usage against the
// agent's owner.
func (s *EmbedService) Query(ctx context.Context, token, query, conversationID string) (*EmbedQueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.ErrEmptyQuery
	}

	agent, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.engine.Query(ctx, engine.QueryRequest{
		Collection:     agent.Collection,
		Query:          query,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	s.recordUsage(ctx, agent, result, elapsed)

	return &EmbedQueryResult{
		Answer:         result.Answer,
		MessageID:      id.NewMessageID(),
		RequestID:      id.NewRequestID(),
		ResponseTimeMs: elapsed,
		TokensUsed:     result.TotalTokens,
	}, nil
}

// Feedback stores a visitor rating on one answer, last write wins.
func (s *EmbedService) Feedback(ctx context.Context, token, messageID, feedbackType, comment string) error {
	if feedbackType != model.FeedbackPositive && feedbackType != model.FeedbackNegative {
		return errors.ErrInvalidFeedbackType
	}
	agent, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if messageID == "" {
		return errors.ErrMissingParam.WithMessage("message_id is required")
	}

	err = s.store.Feedback().Upsert(ctx, &model.Feedback{
		AgentID:   agent.ID,
		MessageID: messageID,
		Type:      feedbackType,
		Comment:   comment,
	})
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Analytics accepts a widget beacon. The write is handed to the pool and
// the call returns immediately; a full pool drops the event.
func (s *EmbedService) Analytics(ctx context.Context, token, event string, data map[string]interface{}) error {
	agent, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}

	payload := ""
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err == nil {
			payload = string(raw)
		}
	}

	agentID := agent.ID
	submitErr := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.store.Events().Create(ctx, &model.Event{
			AgentID: agentID,
			Name:    event,
			Payload: payload,
		})
		if err != nil {
			logger.Warnw("failed to store analytics event", "event", event, "error", err.Error())
		}
	})
	if submitErr != nil {
		logger.Warnw("analytics pool full, dropping event", "event", event)
	}
	return nil
}

// ClearConversation drops the engine's memory of a widget conversation.
// Clearing a conversation the engine no longer knows is not an error.
func (s *EmbedService) ClearConversation(ctx context.Context, token, conversationID string) error {
	if _, err := s.Resolve(ctx, token); err != nil {
		return err
	}
	if conversationID == "" {
		return nil
	}
	if err := s.engine.ClearConversation(ctx, conversationID); err != nil {
		logger.Warnw("failed to clear conversation",
			"conversation_id", conversationID,
			"error", err.Error(),
		)
	}
	return nil
}

func (s *EmbedService) recordUsage(ctx context.Context, agent *model.Agent, result *engine.QueryResult, elapsed int64) {
	err := s.store.Usage().Create(ctx, &model.Usage{
		UserID:           agent.UserID,
		AgentID:          agent.ID,
		Surface:          model.SurfaceEmbed,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		ResponseTimeMs:   elapsed,
	})
	if err != nil {
		logger.Warnw("failed to record embed usage", "error", err.Error())
	}
}

func placeholder(agent *model.Agent) string {
	if agent.Domain != "" {
		return fmt.Sprintf("Ask about %s...", agent.Domain)
	}
	return "Type your question..."
}
