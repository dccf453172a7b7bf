package models

import (
	"time"

	"gorm.io/gorm"
)

// Website groups the lists and automations of one tracked site.
type Website struct {
	ID        string    `gorm:"primaryKey;size:64" json:"_id"`
	Name      string    `gorm:"not null" json:"name" validate:"required"`
	Domain    string    `gorm:"not null;index" json:"domain" validate:"required,hostname"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *Website) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = NewID()
	}
	return nil
}
