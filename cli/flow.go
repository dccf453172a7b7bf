package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newFlowCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Create or delete automations",
	}
	cmd.AddCommand(newFlowCreateCommand(a), newFlowDeleteCommand(a))
	return cmd
}

func newFlowCreateCommand(a *app) *cobra.Command {
	var listID, websiteID string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an inactive automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listID == "" || websiteID == "" {
				return errors.New("--list and --website are required")
			}
			flow, err := a.newAPI(a).CreateFlow(cmd.Context(), args[0], listID, websiteID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created automation %s (%s).\n", flow.Name, flow.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&listID, "list", "", "Subscriber list id")
	cmd.Flags().StringVar(&websiteID, "website", "", "Website id")
	return cmd
}

func newFlowDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the selected automation and its steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.automationID == "" {
				fmt.Fprintln(a.out, "No automation selected. Pass --automation <id>.")
				return nil
			}
			if !a.confirmer().Confirm(fmt.Sprintf("Delete automation %s and all of its steps?", a.automationID)) {
				fmt.Fprintln(a.out, "Nothing deleted.")
				return nil
			}
			if err := a.newAPI(a).DeleteFlow(cmd.Context(), a.automationID); err != nil {
				return err
			}
			if drafts, err := a.drafts(); err == nil {
				drafts.Clear(a.automationID)
			}
			fmt.Fprintf(a.out, "Deleted automation %s.\n", a.automationID)
			return nil
		},
	}
}
