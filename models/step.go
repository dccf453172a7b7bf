package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StepType is the server-side discriminant of an automation step.
type StepType string

const (
	StepTypeWait             StepType = "waitSubscriber"
	StepTypeSendMail         StepType = "sendMail"
	StepTypeWebhook          StepType = "sendWebhook"
	StepTypeMoveSubscriber   StepType = "moveSubscriber"
	StepTypeRemoveSubscriber StepType = "removeSubscriber"
	StepTypeDeleteSubscriber StepType = "deleteSubscriber"
)

// IsValid reports whether t is one of the known step types.
func (t StepType) IsValid() bool {
	switch t {
	case StepTypeWait, StepTypeSendMail, StepTypeWebhook,
		StepTypeMoveSubscriber, StepTypeRemoveSubscriber, StepTypeDeleteSubscriber:
		return true
	default:
		return false
	}
}

// QueryParam is one entry of a webhook query string.
type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"` // static
	// Bare marks a segment written without "=", such as "flag".
	Bare bool `json:"bare,omitempty"`
}

// StepRecord is a persisted automation step. It is also the JSON record
// exchanged on /api/work-flow/steps.
type StepRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"_id"`
	FlowID    string    `gorm:"not null;index;size:64" json:"flowId"`
	StepType  StepType  `gorm:"not null;size:32" json:"stepType" validate:"steptype"`
	StepCount int       `gorm:"not null;default:0" json:"stepCount"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// waitSubscriber
	WaitDuration float64 `json:"waitDuration,omitempty"`
	WaitUnit     string  `gorm:"size:16" json:"waitUnit,omitempty"`

	// sendMail
	SendMailTemplate string `json:"sendMailTemplate,omitempty"`
	SendMailSubject  string `json:"sendMailSubject,omitempty"`
	SendMailHTML     string `gorm:"type:text" json:"sendMailHtml,omitempty"`

	// sendWebhook
	WebhookURL        string            `json:"webhookUrl,omitempty"`
	RequestMethod     string            `gorm:"size:8" json:"requestMethod,omitempty"`
	QueryParams       []QueryParam      `gorm:"type:jsonb;serializer:json" json:"queryParams,omitempty"`
	Headers           map[string]string `gorm:"type:jsonb;serializer:json" json:"headers,omitempty"`
	RequestBody       string            `gorm:"type:text" json:"requestBody,omitempty"`
	RetryAttempts     int               `json:"retryAttempts,omitempty"`
	RetryAfterSeconds int               `json:"retryAfterSeconds,omitempty"`

	// moveSubscriber
	TargetListID string `gorm:"size:64" json:"targetListId,omitempty"`

	// deleteSubscriber
	DeleteReason string `json:"deleteReason,omitempty"`
}

func (StepRecord) TableName() string {
	return "automation_steps"
}

// BeforeCreate issues an id for records that do not carry one yet.
func (s *StepRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

// StepUpdate is a partial update of a step. Nil fields are left untouched.
type StepUpdate struct {
	StepType          *StepType          `json:"stepType,omitempty"`
	StepCount         *int               `json:"stepCount,omitempty"`
	Title             *string            `json:"title,omitempty"`
	WaitDuration      *float64           `json:"waitDuration,omitempty"`
	WaitUnit          *string            `json:"waitUnit,omitempty"`
	SendMailTemplate  *string            `json:"sendMailTemplate,omitempty"`
	SendMailSubject   *string            `json:"sendMailSubject,omitempty"`
	SendMailHTML      *string            `json:"sendMailHtml,omitempty"`
	WebhookURL        *string            `json:"webhookUrl,omitempty"`
	RequestMethod     *string            `json:"requestMethod,omitempty"`
	QueryParams       *[]QueryParam      `json:"queryParams,omitempty"`
	Headers           *map[string]string `json:"headers,omitempty"`
	RequestBody       *string            `json:"requestBody,omitempty"`
	RetryAttempts     *int               `json:"retryAttempts,omitempty"`
	RetryAfterSeconds *int               `json:"retryAfterSeconds,omitempty"`
	TargetListID      *string            `json:"targetListId,omitempty"`
	DeleteReason      *string            `json:"deleteReason,omitempty"`
}

// FullUpdate builds an update that overwrites every content field of the
// step with rec and places it at position count.
func FullUpdate(rec StepRecord, count int) StepUpdate {
	params := append([]QueryParam{}, rec.QueryParams...)
	headers := map[string]string{}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return StepUpdate{
		StepType:          &rec.StepType,
		StepCount:         &count,
		Title:             &rec.Title,
		WaitDuration:      &rec.WaitDuration,
		WaitUnit:          &rec.WaitUnit,
		SendMailTemplate:  &rec.SendMailTemplate,
		SendMailSubject:   &rec.SendMailSubject,
		SendMailHTML:      &rec.SendMailHTML,
		WebhookURL:        &rec.WebhookURL,
		RequestMethod:     &rec.RequestMethod,
		QueryParams:       &params,
		Headers:           &headers,
		RequestBody:       &rec.RequestBody,
		RetryAttempts:     &rec.RetryAttempts,
		RetryAfterSeconds: &rec.RetryAfterSeconds,
		TargetListID:      &rec.TargetListID,
		DeleteReason:      &rec.DeleteReason,
	}
}

// OrderUpdate only moves a step to position count.
func OrderUpdate(count int) StepUpdate {
	return StepUpdate{StepCount: &count}
}

// Apply copies every non-nil field of u onto s.
func (s *StepRecord) Apply(u StepUpdate) {
	if u.StepType != nil {
		s.StepType = *u.StepType
	}
	if u.StepCount != nil {
		s.StepCount = *u.StepCount
	}
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.WaitDuration != nil {
		s.WaitDuration = *u.WaitDuration
	}
	if u.WaitUnit != nil {
		s.WaitUnit = *u.WaitUnit
	}
	if u.SendMailTemplate != nil {
		s.SendMailTemplate = *u.SendMailTemplate
	}
	if u.SendMailSubject != nil {
		s.SendMailSubject = *u.SendMailSubject
	}
	if u.SendMailHTML != nil {
		s.SendMailHTML = *u.SendMailHTML
	}
	if u.WebhookURL != nil {
		s.WebhookURL = *u.WebhookURL
	}
	if u.RequestMethod != nil {
		s.RequestMethod = *u.RequestMethod
	}
	if u.QueryParams != nil {
		s.QueryParams = *u.QueryParams
	}
	if u.Headers != nil {
		s.Headers = *u.Headers
	}
	if u.RequestBody != nil {
		s.RequestBody = *u.RequestBody
	}
	if u.RetryAttempts != nil {
		s.RetryAttempts = *u.RetryAttempts
	}
	if u.RetryAfterSeconds != nil {
		s.RetryAfterSeconds = *u.RetryAfterSeconds
	}
	if u.TargetListID != nil {
		s.TargetListID = *u.TargetListID
	}
	if u.DeleteReason != nil {
		s.DeleteReason = *u.DeleteReason
	}
}

// NewID returns a fresh server-side identifier.
func NewID() string {
	return uuid.NewString()
}
