package models

import (
	"time"

	"gorm.io/gorm"
)

// Template represents a mail template usable by sendMail steps
type Template struct {
	ID          string    `gorm:"primaryKey;size:64" json:"_id"`
	Name        string    `gorm:"not null" json:"name" validate:"required"`
	Subject     string    `json:"subject"`
	HTMLContent string    `gorm:"type:text" json:"htmlContent"`
	TextContent string    `gorm:"type:text" json:"textContent"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Template) TableName() string {
	return "mail_templates"
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}
