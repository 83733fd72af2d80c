package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List logged runs",
		Long: `List the runs found in the storage directory, keyed by the view's index columns.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown table

Use --output to override: auto, text, markdown, json`,
		Example: `  # List runs
  runlens runs

  # List runs of a served instance as JSON
  runlens runs --origin http://localhost:8765 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd)
		},
	}
	return cmd
}

func runRuns(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	keys, err := cc.Source.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch cc.Mode() {
	case config.OutputJSON:
		return renderRunsJSON(cc.Out, keys)
	case config.OutputMarkdown:
		return renderRunsTable(cc.Out, keys, true)
	default:
		return renderRunsTable(cc.Out, keys, false)
	}
}

func renderRunsJSON(w io.Writer, keys []core.RunKey) error {
	runs := make([]string, len(keys))
	for i, k := range keys {
		runs[i] = k.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]string{"runs": runs})
}

func renderRunsTable(w io.Writer, keys []core.RunKey, markdown bool) error {
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(w, "(0 runs)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Run"})
	for i, k := range keys {
		t.AppendRow(table.Row{i + 1, k.String()})
	}

	if markdown {
		t.RenderMarkdown()
		return nil
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d runs", len(keys))})
	t.Render()
	return nil
}
