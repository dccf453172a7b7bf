package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriberList represents a list of subscribers on a website
type SubscriberList struct {
	ID          string    `gorm:"primaryKey;size:64" json:"_id"`
	WebsiteID   string    `gorm:"not null;index;size:64" json:"websiteId" validate:"required"`
	Name        string    `gorm:"not null" json:"name" validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Statistics
	SubscriberCount int `gorm:"default:0" json:"subscriberCount"`
	ActiveCount     int `gorm:"default:0" json:"activeCount"`
}

func (SubscriberList) TableName() string {
	return "subscriber_lists"
}

func (l *SubscriberList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}
