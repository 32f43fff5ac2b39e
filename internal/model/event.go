package model

// Event is one widget analytics beacon. Payload is stored as raw JSON;
// nothing downstream needs to query inside it.
type Event struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	AgentID   uint64 `json:"agent_id" gorm:"not null;index:idx_event_agent"`
	Name      string `json:"event" gorm:"size:64;not null"`
	Payload   string `json:"data" gorm:"type:text"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli;index:idx_event_created"`
}

// TableName returns the table name for GORM.
func (e *Event) TableName() string {
	return "events"
}
