package models

import (
	"time"

	"gorm.io/gorm"
)

// StaffAccount is a credential-store row for an admin or staff login.
// Passwords are stored as bcrypt hashes only.
type StaffAccount struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"not null;default:'staff'" json:"role"` // "admin" or "staff"
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the StaffAccount model
func (StaffAccount) TableName() string {
	return "staff_accounts"
}

// AttemptType distinguishes admin and staff login paths.
type AttemptType string

const (
	AttemptTypeAdmin AttemptType = "admin"
	AttemptTypeStaff AttemptType = "staff"
)

// LoginAttempt is one row of the append-only login audit log. Rows are
// never mutated or deleted; the lockout window is evaluated at query
// time against this log.
type LoginAttempt struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Email        string      `gorm:"not null;index:idx_attempt_email_type" json:"email"`
	Success      bool        `gorm:"not null" json:"success"`
	AttemptType  AttemptType `gorm:"not null;index:idx_attempt_email_type" json:"attempt_type"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the LoginAttempt model
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
