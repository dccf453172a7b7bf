package store

import (
	"context"
	"errors"

	"mailflow/models"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence port of the REST backend.
type Store interface {
	GetAutomation(ctx context.Context, id string) (models.Automation, error)
	CreateAutomation(ctx context.Context, a *models.Automation) error
	UpdateAutomation(ctx context.Context, id string, data models.FlowUpdateData) (models.Automation, error)
	// DeleteAutomation removes the automation and all of its steps.
	DeleteAutomation(ctx context.Context, id string) error

	ListSteps(ctx context.Context, flowID string) ([]models.StepRecord, error)
	// CreateStep stores step under flowID. A zero StepCount appends the
	// step after the last one.
	CreateStep(ctx context.Context, step *models.StepRecord) error
	UpdateStep(ctx context.Context, flowID, stepID string, data models.StepUpdate) (models.StepRecord, error)
	DeleteStep(ctx context.Context, flowID, stepID string) error

	GetWebsite(ctx context.Context, id string) (models.Website, error)
	ListWebsites(ctx context.Context) ([]models.Website, error)
	CreateWebsite(ctx context.Context, w *models.Website) error

	GetList(ctx context.Context, id string) (models.SubscriberList, error)
	ListLists(ctx context.Context, websiteID string) ([]models.SubscriberList, error)
	CreateList(ctx context.Context, l *models.SubscriberList) error

	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateTemplate(ctx context.Context, t *models.Template) error

	ListServers(ctx context.Context) ([]models.MailServer, error)
	CreateServer(ctx context.Context, s *models.MailServer) error
}
