package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"mailflow/editor"
)

func printPage(out io.Writer, page *editor.Page) error {
	a := page.Automation()
	fmt.Fprintf(out, "Automation: %s (%s)\n", a.Name, a.ID)
	fmt.Fprintf(out, "Status:     %s\n", statusLabel(a.IsActive))
	shell := page.Shell()
	if shell.WebsiteData != nil {
		fmt.Fprintf(out, "Website:    %s (%s)\n", shell.WebsiteData.Name, shell.WebsiteData.Domain)
	}
	if shell.ConnectedList != nil {
		fmt.Fprintf(out, "List:       %s\n", shell.ConnectedList.Name)
	}
	if page.HasUnsavedChanges() {
		fmt.Fprintln(out, "Unsaved changes: yes")
	}
	b := page.Builder()
	if b.Dirty() {
		plan := editor.Diff(b.Snapshot(), b.Steps())
		fmt.Fprintf(out, "Unsaved step changes: %d new, %d changed, %d removed (%d published)\n",
			len(plan.Created), len(plan.Updated), len(plan.Deleted), len(b.Snapshot()))
	}
	fmt.Fprintln(out)
	return printSteps(out, b.Steps())
}

// newTable returns a borderless, left-aligned table in the style of
// plain column output.
func newTable(out io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(out)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

func printSteps(out io.Writer, steps []editor.Step) error {
	if len(steps) == 0 {
		fmt.Fprintln(out, "No steps yet. Add one with \"flowctl step add <kind>\".")
		return nil
	}
	t := newTable(out, "#", "ID", "Title", "Step")
	for i, s := range steps {
		id := s.ID
		if editor.IsTempID(id) {
			id += " (new)"
		}
		t.Append([]string{strconv.Itoa(i + 1), id, s.Title, describe(s)})
	}
	t.Render()
	return nil
}

// describe is a one-line summary of what a step does.
func describe(s editor.Step) string {
	switch b := s.Body.(type) {
	case editor.Delay:
		return fmt.Sprintf("wait %g %s", b.Amount, b.Unit)
	case editor.SendEmail:
		text := fmt.Sprintf("send template %q", b.TemplateID)
		if b.Subject != "" {
			text += fmt.Sprintf(" subject %q", b.Subject)
		}
		if b.Summary != nil && len(b.Summary.Tokens) > 0 {
			text += " placeholders " + strings.Join(b.Summary.Tokens, ",")
		}
		return text
	case editor.HTTPRequest:
		return fmt.Sprintf("%s %s (retry %dx every %ds)", b.Method, b.URL, b.RetryAttempts, b.RetryDelaySeconds)
	case editor.MoveToList:
		return "move to list " + b.TargetListID
	case editor.DeleteFromCurrentList:
		return "remove from current list"
	case editor.DeleteSubscriber:
		if b.Reason != "" {
			return "delete subscriber: " + b.Reason
		}
		return "delete subscriber"
	}
	return "unknown"
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func paletteArgs() []string {
	args := make([]string, 0, len(editor.Palette))
	for _, k := range editor.Palette {
		args = append(args, string(k))
	}
	return args
}

func paletteList() string {
	return strings.Join(paletteArgs(), ", ")
}
