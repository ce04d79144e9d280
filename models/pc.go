package models

import (
	"time"

	"gorm.io/gorm"
)

// PCStatus is the lifecycle state of a kiosk terminal.
type PCStatus string

const (
	PCStatusOffline     PCStatus = "offline"
	PCStatusOnline      PCStatus = "online"
	PCStatusPending     PCStatus = "pending"
	PCStatusMaintenance PCStatus = "maintenance"
)

// SessionStatus is the lifecycle state of a terminal access session.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusActive   SessionStatus = "active"
	SessionStatusEnded    SessionStatus = "ended"
	SessionStatusRejected SessionStatus = "rejected"
)

// Terminal reports whether the session is in a final state. A PC may
// hold at most one non-terminal session at a time.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusEnded || s == SessionStatusRejected
}

// PC represents a physical kiosk terminal identified by IP
type PC struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PCNumber         string         `gorm:"uniqueIndex;not null" json:"pc_number"`
	IPAddress        *string        `gorm:"index" json:"ip_address,omitempty"`
	Status           PCStatus       `gorm:"not null;default:'offline'" json:"status"`
	CurrentSessionID *uint          `json:"current_session_id,omitempty"`
	SessionStartedAt *time.Time     `json:"session_started_at,omitempty"`
	LastSeen         *time.Time     `json:"last_seen,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the PC model
func (PC) TableName() string {
	return "pcs"
}

// Session is a time-bounded grant of terminal access tied to one PC and
// one IP address.
type Session struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PCID      uint          `gorm:"not null;index" json:"pc_id"`
	IPAddress string        `gorm:"not null" json:"ip_address"`
	Status    SessionStatus `gorm:"not null;default:'pending'" json:"status"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// DetectedIPStatus classifies a quarantined IP address.
type DetectedIPStatus string

const (
	DetectedIPUnregistered DetectedIPStatus = "unregistered"
	DetectedIPRegistered   DetectedIPStatus = "registered"
)

// DetectedIP is an IP address observed by the kiosk gate but not yet
// bound to a registered PC, held for admin triage.
type DetectedIP struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	IPAddress string           `gorm:"uniqueIndex;not null" json:"ip_address"`
	Status    DetectedIPStatus `gorm:"not null;default:'unregistered'" json:"status"`
	FirstSeen time.Time        `json:"first_seen"`
	LastSeen  time.Time        `json:"last_seen"`
}

// TableName specifies the table name for the DetectedIP model
func (DetectedIP) TableName() string {
	return "detected_ips"
}
