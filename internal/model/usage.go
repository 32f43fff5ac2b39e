package model

// Usage surfaces recorded per query.
const (
	SurfaceDashboard = "dashboard"
	SurfaceEmbed     = "embed"
)

// Usage is one recorded query with its token accounting.
type Usage struct {
	ID               uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint64 `json:"user_id" gorm:"not null;index:idx_usage_user"`
	AgentID          uint64 `json:"agent_id" gorm:"not null;index:idx_usage_agent"`
	Surface          string `json:"surface" gorm:"size:16;not null"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	ResponseTimeMs   int64  `json:"response_time_ms"`
	CreatedAt        int64  `json:"created_at" gorm:"autoCreateTime:milli;index:idx_usage_created"`
}

// TableName returns the table name for GORM.
func (u *Usage) TableName() string {
	return "usage_records"
}
