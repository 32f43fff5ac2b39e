package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/model"
)

type events struct {
	db *gorm.DB
}

func newEvents(db *gorm.DB) *events {
	return &events{db}
}

// Create stores one analytics event.
func (e *events) Create(ctx context.Context, event *model.Event) error {
	return e.db.WithContext(ctx).Create(event).Error
}

// ListByAgent lists recent events for an agent.
func (e *events) ListByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.Event, error) {
	var list []*model.Event
	q := e.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
