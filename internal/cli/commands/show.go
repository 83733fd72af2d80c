package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/render/markdown"
	"github.com/leapstack-labs/runlens/internal/render/text"
	"github.com/leapstack-labs/runlens/internal/report"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run>",
		Short: "Print a run report",
		Long: `Render the panels of one run in the terminal.

Trees start collapsed, tables on their first page and step players on the
first step. Delimited artifacts are loaded before printing.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format

Use --output to override: auto, text, markdown, json`,
		Example: `  # Show a run
  runlens show alpha

  # Show a run keyed by several index columns
  runlens show exp1/seed3

  # Dump the run document as JSON
  runlens show alpha --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
	return cmd
}

func runShow(cmd *cobra.Command, run string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := cc.OpenReport(cmd.Context(), run, nil)
	if err != nil {
		return err
	}

	switch cc.Mode() {
	case config.OutputJSON:
		return writeDocumentJSON(cc.Out, rep)
	case config.OutputMarkdown:
		return markdown.New(html.MustNew()).Export(cc.Out, run, settledViews(cmd.Context(), rep))
	default:
		r := text.New(text.Options{Styled: cc.Styled(), Writer: cc.Out})
		return r.Write(cc.Out, settledViews(cmd.Context(), rep))
	}
}

// settledViews renders once to request files, waits for them and renders again.
func settledViews(ctx context.Context, rep *report.Report) []*panel.PanelView {
	rep.Views()
	done := make(chan struct{})
	go func() {
		rep.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return rep.Views()
}

func writeDocumentJSON(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep.Document())
}
