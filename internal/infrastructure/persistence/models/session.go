package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel maps the sessions table written by the external access
// control system. The core only reads it to validate tokens; it never
// issues or deletes sessions.
type SessionModel struct {
	Token     string    `gorm:"type:varchar(64);primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session has lapsed at the given instant
func (m *SessionModel) IsExpired(at time.Time) bool {
	return m.ExpiresAt.Before(at)
}

// UserCapabilityModel maps the capability grants table written by the
// external access control system.
type UserCapabilityModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primary_key"`
	Capability string    `gorm:"type:varchar(50);primary_key"`
	GrantedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserCapabilityModel) TableName() string {
	return "user_capabilities"
}
