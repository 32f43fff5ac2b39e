package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentic-hq/agentic/internal/model"
)

type feedback struct {
	db *gorm.DB
}

func newFeedback(db *gorm.DB) *feedback {
	return &feedback{db}
}

// Upsert stores feedback for a message. A repeat rating on the same message
// overwrites the previous one, last write wins.
func (f *feedback) Upsert(ctx context.Context, fb *model.Feedback) error {
	return f.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"type":       fb.Type,
			"comment":    fb.Comment,
			"updated_at": time.Now().UnixMilli(),
		}),
	}).Create(fb).Error
}

// GetByMessage retrieves the feedback stored for a message.
func (f *feedback) GetByMessage(ctx context.Context, messageID string) (*model.Feedback, error) {
	var row model.Feedback
	if err := f.db.WithContext(ctx).Where("message_id = ?", messageID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByAgent lists recent feedback for an agent.
func (f *feedback) ListByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.Feedback, error) {
	var list []*model.Feedback
	q := f.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
