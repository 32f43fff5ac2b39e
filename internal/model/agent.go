package model

import (
	"time"

	"gorm.io/gorm"
)

// Agent source types.
const (
	SourcePDF   = "pdf"
	SourceCSV   = "csv"
	SourceWord  = "word"
	SourceSQL   = "sql"
	SourceNoSQL = "nosql"
)

// Agent is one deployed agent. Names are unique per owner, not globally:
// two accounts can both run a "support-bot".
type Agent struct {
	ID          uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint64         `json:"user_id" gorm:"not null;uniqueIndex:uk_owner_name,priority:1"`
	Name        string         `json:"agent_name" gorm:"size:128;not null;uniqueIndex:uk_owner_name,priority:2"`
	Domain      string         `json:"domain" gorm:"size:128"`
	Description string         `json:"description" gorm:"size:1024"`
	SourceType  string         `json:"source_type" gorm:"size:16;default:pdf"`
	Collection  string         `json:"-" gorm:"size:160;not null"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (a *Agent) TableName() string {
	return "agents"
}

// BeforeCreate sets the timestamp fields.
func (a *Agent) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	a.CreatedAt = now
	a.UpdatedAt = now
	return
}
