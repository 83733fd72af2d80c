package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/render/markdown"
)

// Export formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Format string
	File   string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <run>",
		Short: "Export a run report to a file",
		Long: `Export the report of one run as a standalone document.

Formats:
  - html: self-contained page with inlined styles and no scripts
  - markdown: the HTML report converted to Markdown
  - json: the run document`,
		Example: `  # Export to HTML on stdout
  runlens export alpha > alpha.html

  # Export to a Markdown file
  runlens export alpha --format markdown --file alpha.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", FormatHTML, "Export format (html|markdown|json)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Write to file instead of stdout")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatHTML, FormatMarkdown, FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, run string, opts *ExportOptions) error {
	switch opts.Format {
	case FormatHTML, FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q: want html, markdown or json", opts.Format)
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := cc.OpenReport(cmd.Context(), run, nil)
	if err != nil {
		return err
	}

	var w io.Writer = cc.Out
	if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.File, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch opts.Format {
	case FormatJSON:
		err = writeDocumentJSON(w, rep)
	case FormatMarkdown:
		err = markdown.New(html.MustNew()).Export(w, run, settledViews(cmd.Context(), rep))
	default:
		err = html.MustNew().Export(w, run, settledViews(cmd.Context(), rep))
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if opts.File != "" {
		cc.Logger.Info("report exported", "run", run, "format", opts.Format, "file", opts.File)
	}
	return nil
}
