// Package text renders panel views for terminals: lipgloss-styled trees,
// go-pretty tables and sparkline charts.
package text

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	prettytext "github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/runlens/internal/panel"
)

// ControlKind is the kind of an interactive element in the output.
type ControlKind int

const (
	// ControlVisibility shows or hides a panel.
	ControlVisibility ControlKind = iota
	// ControlToggle opens or closes a tree entry.
	ControlToggle
	// ControlPager pages a table.
	ControlPager
	// ControlScrubber moves a step player.
	ControlScrubber
)

// Control is an interactive element and the output line it is drawn on.
type Control struct {
	Kind ControlKind
	Path panel.Path
	Line int
}

// Key identifies the control across renders.
func (c Control) Key() string {
	return strconv.Itoa(int(c.Kind)) + ":" + c.Path.String()
}

// Output is a rendered report.
type Output struct {
	Text     string
	Controls []Control
}

// Options configures a Renderer.
type Options struct {
	// Styled enables ANSI colours
	Styled bool
	// Focus is the Key of the control to highlight
	Focus string
	// Writer is the destination used to pick the colour renderer (optional)
	Writer io.Writer
}

// Renderer renders views as text.
type Renderer struct {
	styles Styles
	focus  string
}

// New creates a text renderer.
func New(opts Options) *Renderer {
	w := opts.Writer
	if w == nil {
		w = io.Discard
	}
	return &Renderer{styles: NewStyles(w, opts.Styled), focus: opts.Focus}
}

// Render renders panels in order.
func (r *Renderer) Render(panels []*panel.PanelView) *Output {
	b := &builder{r: r}
	for i, pv := range panels {
		if i > 0 {
			b.line(0, "")
		}
		b.view(pv, 0)
	}
	return &Output{Text: strings.Join(b.lines, "\n") + "\n", Controls: b.controls}
}

// Write renders panels to w.
func (r *Renderer) Write(w io.Writer, panels []*panel.PanelView) error {
	_, err := io.WriteString(w, r.Render(panels).Text)
	return err
}

type builder struct {
	r        *Renderer
	lines    []string
	controls []Control
}

const indentWidth = 2

func (b *builder) line(indent int, s string) {
	pad := strings.Repeat(" ", indent*indentWidth)
	for _, l := range strings.Split(s, "\n") {
		b.lines = append(b.lines, pad+l)
	}
}

// block appends a multi-line string at indent.
func (b *builder) block(indent int, s string) {
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.line(indent, l)
	}
}

// control registers an interactive element drawn on the next line and
// returns label styled for its focus state.
func (b *builder) control(kind ControlKind, path panel.Path, label string) string {
	c := Control{Kind: kind, Path: path, Line: len(b.lines)}
	b.controls = append(b.controls, c)
	if b.r.focus != "" && c.Key() == b.r.focus {
		return b.r.styles.Focus.Render(label)
	}
	return b.r.styles.Control.Render(label)
}

func (b *builder) view(v panel.View, indent int) {
	s := b.r.styles
	switch v := v.(type) {
	case *panel.PanelView:
		b.line(indent, b.control(ControlVisibility, v.Path, arrow(v.Visible)+" ")+s.Panel.Render(v.Name))
		if v.Visible && v.Body != nil {
			b.view(v.Body, indent+1)
		}
	case *panel.TreeView:
		b.tree(v, indent)
	case *panel.TableView:
		b.table(v, indent)
	case *panel.ChartView:
		b.chart(v, indent)
	case *panel.FileView:
		b.file(v, indent)
	case *panel.StepView:
		b.step(v, indent)
	case *panel.RawView:
		for _, l := range strings.Split(v.Text, "\n") {
			b.line(indent, s.Muted.Render(l))
		}
	}
}

func arrow(open bool) string {
	if open {
		return "▼"
	}
	return "▶"
}

func (b *builder) tree(v *panel.TreeView, indent int) {
	s := b.r.styles
	if len(v.Entries) == 0 {
		b.line(indent, s.Muted.Render("(empty)"))
		return
	}
	for _, e := range v.Entries {
		if e.Kind == panel.EntryLeaf {
			b.line(indent, s.Key.Render(e.Key+":")+" "+e.Text)
			continue
		}
		b.line(indent, b.control(ControlToggle, e.Path, arrow(e.Open)+" "+e.Key))
		if e.Child != nil {
			b.view(e.Child, indent+1)
		}
	}
}

func (b *builder) table(v *panel.TableView, indent int) {
	t := newTable()
	header := make(table.Row, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, row := range v.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}
	b.block(indent, t.Render())

	label := fmt.Sprintf("◀ Page %d of %d ▶", v.Page, v.TotalPages)
	footer := b.control(ControlPager, v.Path, label)
	if v.Total > 0 {
		footer += b.r.styles.Muted.Render(fmt.Sprintf("  records %d-%d of %d", v.Start+1, v.End, v.Total))
	}
	b.line(indent, footer)
}

func (b *builder) chart(v *panel.ChartView, indent int) {
	s := b.r.styles
	b.line(indent, s.Muted.Render("x: "+v.Index))

	width := 0
	for _, series := range v.Series {
		if len(series.Name) > width {
			width = len(series.Name)
		}
	}
	for _, series := range v.Series {
		name := fmt.Sprintf("%-*s", width, series.Name)
		b.line(indent, s.Color(series.Color).Render("■ "+name)+" "+Sparkline(series.Points, sparkWidth)+" "+s.Muted.Render(lastValue(series.Points)))
	}

	t := newTable()
	header := table.Row{v.Index}
	for _, series := range v.Series {
		header = append(header, series.Name)
	}
	t.AppendHeader(header)
	for i, x := range v.X {
		row := table.Row{x}
		for _, series := range v.Series {
			if i < len(series.Points) {
				row = append(row, formatPoint(series.Points[i]))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	b.block(indent, t.Render())
}

// newTable returns a light-style table writer. Headers are record keys and
// keep their case.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = prettytext.FormatDefault
	return t
}

func (b *builder) file(v *panel.FileView, indent int) {
	s := b.r.styles
	switch {
	case v.Class == panel.FileDelimited && v.Loading:
		b.line(indent, fmt.Sprintf("[%s] %s %s", v.Class, v.URL, s.Muted.Render("(loading…)")))
	case v.Class == panel.FileDelimited && v.Table != nil:
		b.line(indent, fmt.Sprintf("[%s] %s", v.Class, v.URL))
		b.table(v.Table, indent)
	default:
		b.line(indent, fmt.Sprintf("[%s] %s", v.Class, v.URL))
	}
}

func (b *builder) step(v *panel.StepView, indent int) {
	s := b.r.styles
	if len(v.Steps) == 0 {
		b.line(indent, s.Muted.Render("(no steps)"))
		return
	}
	label := fmt.Sprintf("◀ %s = %s (%d/%d) ▶", v.Slider, v.Selected, v.Position+1, len(v.Steps))
	b.line(indent, b.control(ControlScrubber, v.Path, label)+" "+s.Muted.Render(scrubBar(v.Position, len(v.Steps))))
	for _, child := range v.Children {
		b.view(child, indent+1)
	}
}

func formatPoint(p panel.Point) string {
	if !p.Valid {
		return ""
	}
	return strconv.FormatFloat(p.Y, 'g', -1, 64)
}

func lastValue(points []panel.Point) string {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Valid {
			return formatPoint(points[i])
		}
	}
	return ""
}

const scrubWidth = 20

// scrubBar draws the position of a step player as a track.
func scrubBar(pos, n int) string {
	if n <= 1 {
		return "[" + strings.Repeat("━", scrubWidth) + "]"
	}
	at := pos * (scrubWidth - 1) / (n - 1)
	return "[" + strings.Repeat("─", at) + "●" + strings.Repeat("─", scrubWidth-1-at) + "]"
}
