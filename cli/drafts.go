package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mailflow/worker"
)

func newDraftsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage local drafts",
	}
	cmd.AddCommand(newDraftsListCommand(a), newDraftsPruneCommand(a))
	return cmd
}

func newDraftsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List flows with unsaved local edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := a.drafts()
			if err != nil {
				return err
			}
			flows := drafts.Flows()
			if len(flows) == 0 {
				fmt.Fprintln(a.out, "No drafts.")
				return nil
			}
			t := newTable(a.out, "Automation", "Updated")
			for _, id := range flows {
				updated := "unreadable"
				if d := drafts.Read(id); d != nil {
					updated = d.UpdatedAt.Local().Format("2006-01-02 15:04")
				}
				t.Append([]string{id, updated})
			}
			t.Render()
			return nil
		},
	}
}

func newDraftsPruneCommand(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove drafts older than DRAFT_MAX_AGE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := a.drafts()
			if err != nil {
				return err
			}
			sweeper := worker.NewDraftSweeper(drafts, a.cfg.DraftMaxAge, a.cfg.SweepInterval, a.logger)
			if !watch {
				fmt.Fprintf(a.out, "Removed %d draft(s).\n", sweeper.SweepOnce())
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			sweeper.Start(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and prune every DRAFT_SWEEP_INTERVAL")
	return cmd
}
