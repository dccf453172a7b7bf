package models

import (
	"time"

	"gorm.io/gorm"
)

// MailServer represents an outgoing SMTP server used to send automation mails
type MailServer struct {
	ID        string `gorm:"primaryKey;size:64" json:"_id"`
	Name      string `gorm:"not null" json:"name" validate:"required"`
	FromEmail string `gorm:"not null" json:"fromEmail" validate:"required"`
	FromName  string `json:"fromName"`

	// ========= SMTP Configuration =========
	SMTPHost     string `gorm:"not null" json:"smtpHost" validate:"required,hostname|ip"`
	SMTPPort     int    `gorm:"not null" json:"smtpPort" validate:"required,min=1,max=65535"`
	SMTPUsername string `json:"smtpUsername"`
	SMTPPassword string `json:"-"`
	Encryption   string `gorm:"default:'STARTTLS'" json:"encryption"` // SSL, TLS, STARTTLS

	DailyLimit int       `gorm:"default:500" json:"dailyLimit"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s *MailServer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}
