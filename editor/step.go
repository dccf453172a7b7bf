package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind separates waiting steps from steps that act on a subscriber.
type Kind string

const (
	KindDelay  Kind = "delay"
	KindAction Kind = "action"
)

// ActionKind identifies what an action step does.
type ActionKind string

const (
	ActionSendEmail             ActionKind = "send_email"
	ActionHTTPRequest           ActionKind = "http_request"
	ActionMoveToList            ActionKind = "move_to_list"
	ActionDeleteFromCurrentList ActionKind = "delete_from_current_list"
	ActionDeleteSubscriber      ActionKind = "delete_subscriber"
)

// TimeUnit is the unit of a delay step.
type TimeUnit string

const (
	UnitSeconds TimeUnit = "seconds"
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
	UnitWeeks   TimeUnit = "weeks"
	UnitMonths  TimeUnit = "months"
)

// TempIDPrefix marks identifiers generated locally for steps the server has
// not seen yet.
const TempIDPrefix = "tmp_"

// NewTempID returns a fresh temporary identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was generated locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Step is one entry of a flow as the editor sees it.
type Step struct {
	ID    string
	Title string
	Body  Body
}

// Body holds the variant-specific data of a step. The set of
// implementations is closed.
type Body interface {
	Kind() Kind
	ActionKind() ActionKind
	isBody()
}

// Delay waits before the next step runs.
type Delay struct {
	Amount float64  `json:"amount" validate:"gte=0"`
	Unit   TimeUnit `json:"unit" validate:"oneof=seconds minutes hours days weeks months"`
}

// SendEmail sends a template to the subscriber.
type SendEmail struct {
	TemplateID string `json:"templateId"`
	Subject    string `json:"subject"`
	HTML       string `json:"html,omitempty"`

	// Summary is derived from HTML and never persisted.
	Summary *PlaceholderSummary `json:"-"`
}

// HTTPRequest calls a webhook.
type HTTPRequest struct {
	Method            string            `json:"method" validate:"oneof=GET POST PUT PATCH DELETE"`
	URL               string            `json:"url" validate:"required,url"`
	Query             string            `json:"query"`
	Headers           map[string]string `json:"headers,omitempty"`
	Body              string            `json:"body"`
	RetryAttempts     int               `json:"retryAttempts" validate:"min=1,max=7"`
	RetryDelaySeconds int               `json:"retryDelaySeconds" validate:"min=1,max=300"`
}

// MoveToList moves the subscriber to another list.
type MoveToList struct {
	TargetListID string `json:"targetListId" validate:"required"`
}

// DeleteFromCurrentList removes the subscriber from the flow's list.
type DeleteFromCurrentList struct{}

// DeleteSubscriber deletes the subscriber entirely.
type DeleteSubscriber struct {
	Reason string `json:"reason,omitempty"`
}

func (Delay) Kind() Kind                 { return KindDelay }
func (SendEmail) Kind() Kind             { return KindAction }
func (HTTPRequest) Kind() Kind           { return KindAction }
func (MoveToList) Kind() Kind            { return KindAction }
func (DeleteFromCurrentList) Kind() Kind { return KindAction }
func (DeleteSubscriber) Kind() Kind      { return KindAction }

func (Delay) ActionKind() ActionKind                 { return "" }
func (SendEmail) ActionKind() ActionKind             { return ActionSendEmail }
func (HTTPRequest) ActionKind() ActionKind           { return ActionHTTPRequest }
func (MoveToList) ActionKind() ActionKind            { return ActionMoveToList }
func (DeleteFromCurrentList) ActionKind() ActionKind { return ActionDeleteFromCurrentList }
func (DeleteSubscriber) ActionKind() ActionKind      { return ActionDeleteSubscriber }

func (Delay) isBody()                 {}
func (SendEmail) isBody()             {}
func (HTTPRequest) isBody()           {}
func (MoveToList) isBody()            {}
func (DeleteFromCurrentList) isBody() {}
func (DeleteSubscriber) isBody()      {}

// Kind returns the kind of the step body.
func (s Step) Kind() Kind {
	if s.Body == nil {
		return ""
	}
	return s.Body.Kind()
}

// ActionKind returns the action kind, empty for delays.
func (s Step) ActionKind() ActionKind {
	if s.Body == nil {
		return ""
	}
	return s.Body.ActionKind()
}

// newBody returns an empty body for the given discriminants.
func newBody(kind Kind, action ActionKind) (Body, error) {
	switch kind {
	case KindDelay:
		return &Delay{}, nil
	case KindAction:
		switch action {
		case ActionSendEmail:
			return &SendEmail{}, nil
		case ActionHTTPRequest:
			return &HTTPRequest{}, nil
		case ActionMoveToList:
			return &MoveToList{}, nil
		case ActionDeleteFromCurrentList:
			return &DeleteFromCurrentList{}, nil
		case ActionDeleteSubscriber:
			return &DeleteSubscriber{}, nil
		}
		return nil, fmt.Errorf("unknown action kind %q", action)
	}
	return nil, fmt.Errorf("unknown step kind %q", kind)
}

// deref turns the pointer returned by newBody back into a value body.
func deref(b Body) Body {
	switch v := b.(type) {
	case *Delay:
		return *v
	case *SendEmail:
		if v.HTML != "" {
			v.Summary = SummarizePlaceholders(v.HTML)
		}
		return *v
	case *HTTPRequest:
		return *v
	case *MoveToList:
		return *v
	case *DeleteFromCurrentList:
		return *v
	case *DeleteSubscriber:
		return *v
	}
	return b
}

type stepHeader struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	Title      string     `json:"title"`
	ActionKind ActionKind `json:"actionKind,omitempty"`
}

// MarshalJSON writes the step as one flat object: id, kind, title,
// actionKind and the body fields side by side.
func (s Step) MarshalJSON() ([]byte, error) {
	fields, err := bodyFields(s.Body)
	if err != nil {
		return nil, err
	}
	fields["id"] = s.ID
	fields["kind"] = s.Kind()
	fields["title"] = s.Title
	if s.Kind() == KindAction {
		fields["actionKind"] = s.ActionKind()
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the flat form written by MarshalJSON.
func (s *Step) UnmarshalJSON(data []byte) error {
	var h stepHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	body, err := newBody(h.Kind, h.ActionKind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, body); err != nil {
		return fmt.Errorf("decode %s step: %w", h.Kind, err)
	}
	s.ID = h.ID
	s.Title = h.Title
	s.Body = deref(body)
	return nil
}

func bodyFields(b Body) (map[string]any, error) {
	fields := map[string]any{}
	if b == nil {
		return fields, nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// canonical is the serialization used for every "did it change" check.
func canonical(steps []Step) string {
	if steps == nil {
		steps = []Step{}
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return ""
	}
	return string(raw)
}

// cloneSteps copies the list so callers cannot mutate builder state.
func cloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		if h, ok := s.Body.(HTTPRequest); ok && h.Headers != nil {
			headers := make(map[string]string, len(h.Headers))
			for k, v := range h.Headers {
				headers[k] = v
			}
			h.Headers = headers
			s.Body = h
		}
		out[i] = s
	}
	return out
}
