package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mailflow/editor"
	"mailflow/models"
)

type exportDoc struct {
	Automation models.Automation `json:"automation"`
	Unsaved    bool              `json:"unsaved"`
	Steps      []editor.Step     `json:"steps"`
}

func newExportCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the automation and its steps as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q, want yaml or json", format)
			}
			page, ok, err := a.openPage(cmd.Context())
			if err != nil || !ok {
				return err
			}
			doc := exportDoc{
				Automation: page.Automation(),
				Unsaved:    page.HasUnsavedChanges(),
				Steps:      page.Builder().Steps(),
			}
			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			if format == "json" {
				fmt.Fprintln(a.out, string(raw))
				return nil
			}
			// Steps only know their JSON shape; YAML is derived from it.
			var generic interface{}
			if err := json.Unmarshal(raw, &generic); err != nil {
				return err
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(generic); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	return cmd
}
