// Package model defines the persistence models shared by the stores.
package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an account on the dashboard.
type User struct {
	ID        uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name" gorm:"size:64;not null"`
	Email     string         `json:"email" gorm:"size:128;not null;uniqueIndex:uk_email"`
	Phone     string         `json:"phone" gorm:"size:20"`
	Password  string         `json:"-" gorm:"size:255;not null"`
	IsAdmin   bool           `json:"is_admin" gorm:"default:false"`
	CreatedAt int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate sets the timestamp fields.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	u.CreatedAt = now
	u.UpdatedAt = now
	return
}
