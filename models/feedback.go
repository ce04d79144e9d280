package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerFeedback represents a feedback entry submitted from a kiosk
type CustomerFeedback struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Rating    int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string         `gorm:"type:text" json:"comment"`
	Terminal  string         `json:"terminal"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the CustomerFeedback model
func (CustomerFeedback) TableName() string {
	return "customer_feedbacks"
}
