// Package markdown exports reports as Markdown by converting the static HTML
// export with html-to-markdown.
package markdown

import (
	"fmt"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/internal/render/html"
)

// Exporter renders panels to Markdown.
type Exporter struct {
	html *html.Renderer
	conv *converter.Converter
}

// New creates an exporter over an HTML renderer.
func New(r *html.Renderer) *Exporter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithSkipEmptyRows(true),
				table.WithHeaderPromotion(true),
			),
		),
	)
	// Charts and controls have no Markdown form; the chart legend and pager
	// labels are kept as text.
	conv.Register.TagType("svg", converter.TagTypeRemove, converter.PriorityEarly)
	conv.Register.TagType("button", converter.TagTypeRemove, converter.PriorityEarly)
	return &Exporter{html: r, conv: conv}
}

// ExportString renders the run report as Markdown.
func (e *Exporter) ExportString(run string, panels []*panel.PanelView) (string, error) {
	page, err := e.html.ExportString(run, panels)
	if err != nil {
		return "", err
	}
	md, err := e.conv.ConvertString(page)
	if err != nil {
		return "", fmt.Errorf("converting report to markdown: %w", err)
	}
	return md + "\n", nil
}

// Export writes the run report as Markdown to w.
func (e *Exporter) Export(w io.Writer, run string, panels []*panel.PanelView) error {
	md, err := e.ExportString(run, panels)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md)
	return err
}
