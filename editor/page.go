package editor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"mailflow/models"
	"mailflow/utils"
)

// Options are the choices offered by the step configuration forms.
type Options struct {
	Lists     []models.SubscriberList
	Templates []models.Template
	Servers   []models.MailServer
}

// PageConfig wires a Page.
type PageConfig struct {
	FlowID   string
	Steps    API
	Flows    FlowAPI
	Options  OptionsAPI
	Drafts   *DraftStore
	Notifier Notifier
	Logger   *logrus.Entry
}

// Page coordinates the automation shell and its step builder: staged shell
// edits, save-all, discard-all and the unsaved-changes guard.
type Page struct {
	flowID   string
	flows    FlowAPI
	options  OptionsAPI
	drafts   *DraftStore
	notifier Notifier
	logger   *logrus.Entry
	builder  *Builder

	shell   FlowShell
	opts    Options
	patch   AutomationPatch
	loaded  bool
	running atomic.Bool
}

func NewPage(cfg PageConfig) *Page {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Page{
		flowID:   cfg.FlowID,
		flows:    cfg.Flows,
		options:  cfg.Options,
		drafts:   cfg.Drafts,
		notifier: notifier,
		logger:   logger.WithFields(logrus.Fields{"component": "page", "flow_id": cfg.FlowID}),
		builder:  NewBuilder(cfg.FlowID, cfg.Steps, cfg.Drafts, logger),
	}
}

// Builder exposes the step builder of the page.
func (p *Page) Builder() *Builder { return p.builder }

// Shell returns the automation as last loaded, without staged edits.
func (p *Page) Shell() FlowShell { return p.shell }

// Options returns the loaded form options.
func (p *Page) Options() Options { return p.opts }

// Patch returns the staged automation edits.
func (p *Page) Patch() AutomationPatch { return p.patch }

// Automation returns the automation with staged edits applied.
func (p *Page) Automation() models.Automation {
	a := p.shell.Automation
	if p.patch.Name != nil {
		a.Name = *p.patch.Name
	}
	if p.patch.IsActive != nil {
		a.IsActive = *p.patch.IsActive
	}
	return a
}

// Load fetches the shell and the steps concurrently, then the options of
// the shell's website. Any failure fails the whole load.
func (p *Page) Load(ctx context.Context) error {
	if strings.TrimSpace(p.flowID) == "" {
		return ErrNotFound
	}
	var shell FlowShell
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shell, err = p.flows.GetFlow(gctx, p.flowID)
		if err != nil {
			return &LoadError{Part: "automation", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		return p.builder.Load(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	opts, err := p.loadOptions(ctx, shell.Automation.WebsiteID)
	if err != nil {
		return err
	}

	p.shell = shell
	p.opts = opts
	p.patch = AutomationPatch{}
	if draft := p.drafts.Read(p.flowID); draft != nil && !draft.AutomationPatch.Empty() {
		p.patch = draft.AutomationPatch
	}
	p.loaded = true
	return nil
}

func (p *Page) loadOptions(ctx context.Context, websiteID string) (Options, error) {
	var opts Options
	if p.options == nil {
		return opts, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lists, err := p.options.ListLists(gctx, websiteID)
		if err != nil {
			return &LoadError{Part: "lists", Err: err}
		}
		opts.Lists = lists
		return nil
	})
	g.Go(func() error {
		templates, err := p.options.ListTemplates(gctx)
		if err != nil {
			return &LoadError{Part: "templates", Err: err}
		}
		opts.Templates = templates
		return nil
	})
	g.Go(func() error {
		servers, err := p.options.ListServers(gctx)
		if err != nil {
			return &LoadError{Part: "servers", Err: err}
		}
		opts.Servers = servers
		return nil
	})
	return opts, g.Wait()
}

// Stage records an automation-level edit. field is "name" or "isActive".
func (p *Page) Stage(field string, value any) error {
	switch field {
	case "name":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("name must be a string")
		}
		name = strings.TrimSpace(name)
		if err := utils.ValidateVar(name, "required,max=120", "name"); err != nil {
			return err
		}
		p.patch.Name = &name
	case "isActive":
		active, ok := value.(bool)
		if !ok {
			return fmt.Errorf("isActive must be a boolean")
		}
		p.patch.IsActive = &active
	default:
		return fmt.Errorf("unknown automation field %q", field)
	}
	p.drafts.SavePatch(p.flowID, p.patch)
	return nil
}

// HasUnsavedAutomationPatch reports whether shell edits are staged.
func (p *Page) HasUnsavedAutomationPatch() bool {
	return !p.patch.Empty()
}

// HasUnsavedChanges reports staged shell edits or step edits.
func (p *Page) HasUnsavedChanges() bool {
	return p.HasUnsavedAutomationPatch() || p.builder.Dirty()
}

// Processing reports whether a save is running.
func (p *Page) Processing() bool {
	return p.running.Load()
}

// SaveAll sends staged shell edits, one call per changed field, then
// commits the steps. Flags and draft are cleared only when everything
// succeeded.
func (p *Page) SaveAll(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.running.Store(false)

	if err := p.saveAll(ctx); err != nil {
		p.logger.WithError(err).Error("save failed")
		p.notifier.Error(fmt.Sprintf("Save failed: %v", err))
		return err
	}
	p.notifier.Success("Automation saved")
	return nil
}

func (p *Page) saveAll(ctx context.Context) error {
	shell := p.shell.Automation
	if p.patch.IsActive != nil {
		if err := p.flows.UpdateFlow(ctx, p.flowID, models.FlowUpdateStatus,
			models.FlowUpdateData{IsActive: p.patch.IsActive}); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		shell.IsActive = *p.patch.IsActive
	}
	if p.patch.Name != nil {
		if err := p.flows.UpdateFlow(ctx, p.flowID, models.FlowUpdateName,
			models.FlowUpdateData{Name: p.patch.Name}); err != nil {
			return fmt.Errorf("update name: %w", err)
		}
		shell.Name = *p.patch.Name
	}

	if _, err := p.builder.Commit(ctx); err != nil {
		return err
	}

	p.shell.Automation = shell
	p.patch = AutomationPatch{}
	p.drafts.Clear(p.flowID)
	return nil
}

// DiscardAll drops every local edit after confirmation and reloads from
// the server.
func (p *Page) DiscardAll(ctx context.Context, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm("Discard all unsaved changes?") {
		return ErrCancelled
	}
	p.drafts.Clear(p.flowID)
	p.patch = AutomationPatch{}
	if err := p.Load(ctx); err != nil {
		p.notifier.Error(fmt.Sprintf("Reload failed: %v", err))
		return err
	}
	p.notifier.Success("Changes discarded")
	return nil
}

// LeaveWarning returns the message to show before leaving the page and
// whether leaving would lose unsaved changes.
func (p *Page) LeaveWarning() (string, bool) {
	if !p.HasUnsavedChanges() {
		return "", false
	}
	return "You have unsaved changes. They are kept as a local draft until you save or discard them.", true
}
