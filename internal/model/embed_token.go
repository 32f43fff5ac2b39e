package model

// EmbedToken maps a public widget token to an agent. One token per agent;
// minting again returns the existing row.
type EmbedToken struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Token     string `json:"token" gorm:"size:24;not null;uniqueIndex:uk_token"`
	AgentID   uint64 `json:"agent_id" gorm:"not null;uniqueIndex:uk_agent"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// TableName returns the table name for GORM.
func (t *EmbedToken) TableName() string {
	return "embed_tokens"
}
