package editor

import (
	"context"

	"mailflow/models"
)

// API is the step half of the REST backend.
type API interface {
	ListSteps(ctx context.Context, flowID string) ([]models.StepRecord, error)
	CreateStep(ctx context.Context, flowID string, step models.StepRecord) (models.StepRecord, error)
	UpdateStep(ctx context.Context, flowID, stepID string, data models.StepUpdate) error
	DeleteStep(ctx context.Context, flowID, stepID string) error
}

// FlowShell is the automation together with its website and list.
type FlowShell struct {
	Automation    models.Automation      `json:"automation"`
	WebsiteData   *models.Website        `json:"websiteData"`
	ConnectedList *models.SubscriberList `json:"connectedList"`
}

// FlowAPI reads and updates the automation shell.
type FlowAPI interface {
	GetFlow(ctx context.Context, automationID string) (FlowShell, error)
	UpdateFlow(ctx context.Context, automationID, status string, data models.FlowUpdateData) error
}

// OptionsAPI serves the dropdown options of the step configuration forms.
type OptionsAPI interface {
	ListLists(ctx context.Context, websiteID string) ([]models.SubscriberList, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	ListServers(ctx context.Context) ([]models.MailServer, error)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Notifier receives user-facing success and error messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
