package model

// Feedback types accepted on the widget surface.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Feedback is a visitor rating on one widget answer. One row per message,
// last write wins.
type Feedback struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	AgentID   uint64 `json:"agent_id" gorm:"not null;index:idx_feedback_agent"`
	MessageID string `json:"message_id" gorm:"size:64;not null;uniqueIndex:uk_message"`
	Type      string `json:"type" gorm:"size:16;not null"`
	Comment   string `json:"comment" gorm:"size:2048"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt int64  `json:"updated_at" gorm:"autoUpdateTime:milli"`
}

// TableName returns the table name for GORM.
func (f *Feedback) TableName() string {
	return "feedback"
}
