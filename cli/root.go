// Package cli implements flowctl, a command line editor for automation
// flows. Each invocation loads the flow, applies one command and keeps
// unsaved edits in a local draft until "save" or "discard".
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailflow/client"
	"mailflow/config"
	"mailflow/editor"
	"mailflow/models"
	"mailflow/utils"
)

type app struct {
	cfg    config.Config
	logger *logrus.Entry
	in     io.Reader
	out    io.Writer

	automationID string
	apiURL       string
	yes          bool

	// Overridable in tests.
	newKV  func(cfg config.Config) (editor.KV, error)
	newAPI func(a *app) backend
}

// backend is everything flowctl needs from the REST API.
type backend interface {
	editor.API
	editor.FlowAPI
	editor.OptionsAPI
	CreateFlow(ctx context.Context, name, listID, websiteID string) (models.Automation, error)
	DeleteFlow(ctx context.Context, automationID string) error
}

// NewRootCommand builds the flowctl command tree reading confirmations from
// in and writing results to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	return newRootCommand(&app{
		in:     in,
		out:    out,
		newKV:  newDraftKV,
		newAPI: newClient,
	})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "Edit automation flows and their steps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logrus.NewEntry(utils.NewLogger(cfg.LogLevel, cfg.LogFormat))
			if a.apiURL == "" {
				a.apiURL = cfg.APIURL
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.automationID, "automation", "a", "", "Automation (flow) id")
	flags.StringVar(&a.apiURL, "api", "", "Base URL of the mailflow API (default $MAILFLOW_API_URL)")
	flags.BoolVarP(&a.yes, "yes", "y", false, "Answer yes to every confirmation")

	cmd.AddCommand(
		newShowCommand(a),
		newStepCommand(a),
		newRenameCommand(a),
		newActivateCommand(a, true),
		newActivateCommand(a, false),
		newSaveCommand(a),
		newDiscardCommand(a),
		newExportCommand(a),
		newFlowCommand(a),
		newDraftsCommand(a),
	)
	return cmd
}

func newClient(a *app) backend {
	return client.New(a.apiURL,
		client.WithTimeout(a.cfg.RequestTimeout),
		client.WithLogger(a.logger),
	)
}

func newDraftKV(cfg config.Config) (editor.KV, error) {
	switch cfg.DraftBackend {
	case "memory":
		return editor.NewMemoryKV(), nil
	case "redis":
		return editor.NewRedisKV(editor.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.DraftMaxAge,
		}), nil
	default:
		return editor.NewFileKV(cfg.DraftDir)
	}
}

func (a *app) drafts() (*editor.DraftStore, error) {
	kv, err := a.newKV(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("open draft storage: %w", err)
	}
	return editor.NewDraftStore(kv, a.logger), nil
}

func (a *app) confirmer() editor.Confirmer {
	return newPromptConfirmer(a.in, a.out, a.yes)
}

// openPage loads the selected flow. A false result with a nil error means
// there is no flow to show; the caller should stop quietly.
func (a *app) openPage(ctx context.Context) (*editor.Page, bool, error) {
	if a.automationID == "" {
		fmt.Fprintln(a.out, "No automation selected. Pass --automation <id>.")
		return nil, false, nil
	}
	drafts, err := a.drafts()
	if err != nil {
		return nil, false, err
	}
	api := a.newAPI(a)
	page := editor.NewPage(editor.PageConfig{
		FlowID:   a.automationID,
		Steps:    api,
		Flows:    api,
		Options:  api,
		Drafts:   drafts,
		Notifier: newPrintNotifier(a.out, a.logger),
		Logger:   a.logger,
	})
	if err := page.Load(ctx); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			fmt.Fprintf(a.out, "Automation %s not found.\n", a.automationID)
			return nil, false, nil
		}
		return nil, false, err
	}
	return page, true, nil
}

// Execute runs flowctl with the process arguments.
func Execute(ctx context.Context, in io.Reader, out, errOut io.Writer) int {
	cmd := NewRootCommand(in, out)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
