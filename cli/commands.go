package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mailflow/editor"
)

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the automation and its steps, including unsaved edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if page.Builder().FromDraft() || page.HasUnsavedAutomationPatch() {
				fmt.Fprintln(a.out, "Restored unsaved changes from the local draft.")
			}
			return printPage(a.out, page)
		},
	}
}

func newStepCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Add, edit, remove or move steps",
	}
	cmd.AddCommand(
		newStepAddCommand(a),
		newStepEditCommand(a),
		newStepRemoveCommand(a),
		newStepMoveCommand(a),
	)
	return cmd
}

func newStepAddCommand(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:       "add <kind>",
		Short:     "Append a step from the palette",
		Long:      "Append a step. kind is one of: " + paletteList() + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: paletteArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := editor.PaletteKind(args[0])
			defaults, err := editor.Defaults(kind)
			if err != nil {
				return err
			}
			patch, err := parseSets(defaults, sets)
			if err != nil {
				return err
			}

			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			step, err := page.Builder().AddStep(kind, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added step %s (%s). Run \"flowctl save\" to publish.\n", step.ID, describe(step))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as key=value (repeatable)")
	return cmd
}

func newStepEditCommand(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <step-id>",
		Short: "Change fields of a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return errors.New("nothing to change, pass at least one --set key=value")
			}
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			b := page.Builder()
			current, found := b.Step(args[0])
			if !found {
				return fmt.Errorf("%w: %s", editor.ErrStepNotFound, args[0])
			}
			patch, err := parseSets(current, sets)
			if err != nil {
				return err
			}
			step, err := b.EditStep(current.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated step %s (%s).\n", step.ID, describe(step))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as key=value (repeatable)")
	return cmd
}

func newStepRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <step-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a step",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			err = page.Builder().DeleteStep(args[0], a.confirmer())
			if errors.Is(err, editor.ErrCancelled) {
				fmt.Fprintln(a.out, "Nothing removed.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed step %s.\n", args[0])
			return nil
		},
	}
}

func newStepMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <onto>",
		Short: "Drop the step at position from onto the step at position onto (1-based)",
		Long: "Moving down places the step after the target, moving up places it " +
			"before the target.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := position(args[0])
			if err != nil {
				return err
			}
			onto, err := position(args[1])
			if err != nil {
				return err
			}
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			b := page.Builder()
			if n := len(b.Steps()); from >= n || onto >= n {
				return fmt.Errorf("positions must be between 1 and %d", n)
			}
			if !b.MoveStep(from, onto) {
				fmt.Fprintln(a.out, "Order unchanged.")
				return nil
			}
			return printSteps(a.out, b.Steps())
		},
	}
}

func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return n - 1, nil
}

func newRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Stage a new automation name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if err := page.Stage("name", args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Name staged as %q.\n", *page.Patch().Name)
			return nil
		},
	}
}

func newActivateCommand(a *app, active bool) *cobra.Command {
	use, short := "activate", "Stage turning the automation on"
	if !active {
		use, short = "deactivate", "Stage turning the automation off"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if err := page.Stage("isActive", active); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Status staged as %s.\n", statusLabel(active))
			return nil
		},
	}
}

func newSaveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Publish every unsaved change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if !page.HasUnsavedChanges() {
				fmt.Fprintln(a.out, "No unsaved changes.")
				return nil
			}
			return page.SaveAll(cmd.Context())
		},
	}
}

func newDiscardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop every unsaved change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if !page.HasUnsavedChanges() {
				fmt.Fprintln(a.out, "No unsaved changes.")
				return nil
			}
			err = page.DiscardAll(cmd.Context(), a.confirmer())
			if errors.Is(err, editor.ErrCancelled) {
				fmt.Fprintln(a.out, "Kept unsaved changes.")
				return nil
			}
			return err
		},
	}
}
