package models

import (
	"time"

	"gorm.io/gorm"
)

// Automation is the shell of a flow: its name, activation state and the
// list and website it runs against. Steps live in automation_steps.
type Automation struct {
	ID        string    `gorm:"primaryKey;size:64" json:"_id"`
	Name      string    `gorm:"not null" json:"name"`
	IsActive  bool      `gorm:"default:false" json:"isActive"`
	ListID    string    `gorm:"index;size:64" json:"listId"`
	WebsiteID string    `gorm:"index;size:64" json:"websiteId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Statistics (denormalized, read-only for the editor)
	Stats AutomationStats `gorm:"type:jsonb;serializer:json" json:"stats"`
}

// AutomationStats aggregates execution counters of a flow.
type AutomationStats struct {
	Entered   int `json:"entered"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
	MailsSent int `json:"mailsSent"`
	Failed    int `json:"failed"`
}

func (a *Automation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}

// Flow update kinds accepted by PUT /api/work-flow/flow.
const (
	FlowUpdateStatus = "statusChange"
	FlowUpdateName   = "nameChange"
)

// FlowUpdateData carries the changed field of a flow update.
type FlowUpdateData struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}
