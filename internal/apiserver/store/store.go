// Package store implements persistence for the apiserver on GORM.
package store

import (
	"context"

	"github.com/agentic-hq/agentic/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Users() UserStore
	Agents() AgentStore
	EmbedTokens() EmbedTokenStore
	Usage() UsageStore
	Feedback() FeedbackStore
	Events() EventStore
	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// AgentStore defines the agent storage interface.
type AgentStore interface {
	Create(ctx context.Context, agent *model.Agent) error
	Update(ctx context.Context, agent *model.Agent) error
	Delete(ctx context.Context, userID uint64, name string) error
	Get(ctx context.Context, userID uint64, name string) (*model.Agent, error)
	GetByID(ctx context.Context, id uint64) (*model.Agent, error)
	List(ctx context.Context, userID uint64) ([]*model.Agent, error)
}

// EmbedTokenStore defines the embed token storage interface.
type EmbedTokenStore interface {
	Create(ctx context.Context, token *model.EmbedToken) error
	GetByToken(ctx context.Context, token string) (*model.EmbedToken, error)
	GetByAgent(ctx context.Context, agentID uint64) (*model.EmbedToken, error)
	DeleteByAgent(ctx context.Context, agentID uint64) error
}

// UsageStore defines the usage storage interface.
type UsageStore interface {
	Create(ctx context.Context, usage *model.Usage) error
	SummarizeUser(ctx context.Context, userID uint64) (*UsageSummary, error)
	List(ctx context.Context, limit int) ([]*model.Usage, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Usage, error)
}

// UsageSummary aggregates a user's recorded queries.
type UsageSummary struct {
	TotalQueries     int64
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LastQueryAt      int64
}

// FeedbackStore defines the feedback storage interface.
type FeedbackStore interface {
	// Upsert stores feedback for a message, replacing any previous rating.
	Upsert(ctx context.Context, fb *model.Feedback) error
	GetByMessage(ctx context.Context, messageID string) (*model.Feedback, error)
	ListByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.Feedback, error)
}

// EventStore defines the analytics event storage interface.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	ListByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.Event, error)
}
