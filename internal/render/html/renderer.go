// Package html renders panel views as HTML. Output is wrapped in templ
// components so the UI can stream panel patches over datastar.
package html

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"hash/fnv"
	"html/template"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"

	"github.com/leapstack-labs/runlens/internal/panel"
)

//go:embed templates/*.html
var templateFS embed.FS

// DatastarScript is the client bundle loaded by interactive pages.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Renderer executes the embedded template set.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("runlens").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// MustNew is New for package-level initialisation.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// scope is what every view template receives: the view plus how actions
// are addressed. Static scopes render without any event bindings.
type scope struct {
	Report string
	Static bool
	View   panel.View
}

// RunItem is one entry of the run list.
type RunItem struct {
	Key  string
	Href string
}

// RunsPage is the data of the run list page.
type RunsPage struct {
	Title string
	Runs  []RunItem
	// Notes is markdown shown above the list, typically the storage README
	Notes string
	Error string
}

// ReportPage is the data of an interactive report page.
type ReportPage struct {
	Title    string
	Run      string
	ReportID string
	Panels   []*panel.PanelView
	Error    string
}

// RunsPage renders the run list page.
func (r *Renderer) RunsPage(data RunsPage) templ.Component {
	return templ.FromGoHTML(r.templates.Lookup("runs-page"), data)
}

// ReportPage renders an interactive report page.
func (r *Renderer) ReportPage(data ReportPage) templ.Component {
	return templ.FromGoHTML(r.templates.Lookup("report-page"), data)
}

// Panel renders a single panel for patching into a report page.
func (r *Renderer) Panel(reportID string, pv *panel.PanelView) templ.Component {
	return templ.FromGoHTML(r.templates.Lookup("view"), scope{Report: reportID, View: pv})
}

// Panels renders the panel container of a report page.
func (r *Renderer) Panels(reportID string, panels []*panel.PanelView) templ.Component {
	return templ.FromGoHTML(r.templates.Lookup("panels"), ReportPage{ReportID: reportID, Panels: panels})
}

// Export writes a standalone page with every panel as currently rendered.
func (r *Renderer) Export(w io.Writer, run string, panels []*panel.PanelView) error {
	return r.templates.ExecuteTemplate(w, "export-page", ReportPage{Title: run, Run: run, Panels: panels})
}

// ExportString is Export into a string.
func (r *Renderer) ExportString(run string, panels []*panel.PanelView) (string, error) {
	var buf bytes.Buffer
	if err := r.Export(&buf, run, panels); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fragment renders one view without event bindings.
func (r *Renderer) Fragment(ctx context.Context, v panel.View) (string, error) {
	var buf bytes.Buffer
	c := templ.FromGoHTML(r.templates.Lookup("view"), scope{Static: true, View: v})
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"kind":     kind,
		"sub":      sub,
		"panels":   panelScopes,
		"action":   action,
		"scrub":    scrubAction,
		"stream":   streamAction,
		"datastar": func() string { return DatastarScript },
		"domID":    DomID,
		"chart":    layoutChart,
		"markdown": markdownToHTML,
		"inc":      func(i int) int { return i + 1 },
		"dec":      func(i int) int { return i - 1 },
	}
}

// kind names the template of a view.
func kind(v panel.View) string {
	switch v.(type) {
	case *panel.PanelView:
		return "panel"
	case *panel.TreeView:
		return "tree"
	case *panel.TableView:
		return "table"
	case *panel.ChartView:
		return "chart"
	case *panel.FileView:
		return "file"
	case *panel.StepView:
		return "step"
	default:
		return "raw"
	}
}

func sub(s scope, v panel.View) scope {
	return scope{Report: s.Report, Static: s.Static, View: v}
}

func panelScopes(reportID string, static bool, panels []*panel.PanelView) []scope {
	out := make([]scope, len(panels))
	for i, pv := range panels {
		out[i] = scope{Report: reportID, Static: static, View: pv}
	}
	return out
}

// action returns the datastar expression posting verb for the node at path,
// or "" for static output. Extra arguments are query parameter pairs.
func action(s scope, verb string, path panel.Path, params ...string) template.JS {
	if s.Static || s.Report == "" {
		return ""
	}
	return template.JS(fmt.Sprintf("@post('%s')", actionURL(s.Report, verb, path, params...)))
}

// scrubAction posts the range input's value as the new position.
func scrubAction(s scope, path panel.Path) template.JS {
	if s.Static || s.Report == "" {
		return ""
	}
	return template.JS(fmt.Sprintf("@post('%s&pos=' + el.value)", actionURL(s.Report, "scrub", path)))
}

func actionURL(report, verb string, path panel.Path, params ...string) string {
	q := url.Values{}
	q.Set("path", path.String())
	for i := 0; i+1 < len(params); i += 2 {
		q.Set(params[i], params[i+1])
	}
	return "/api/reports/" + url.PathEscape(report) + "/" + verb + "?" + q.Encode()
}

// streamAction opens the report's update stream.
func streamAction(report string) template.JS {
	return template.JS(fmt.Sprintf("@get('/api/reports/%s/stream')", url.PathEscape(report)))
}

// DomID is the element id of the node at path.
func DomID(path panel.Path) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path.String()))
	return fmt.Sprintf("rl-%016x", h.Sum64())
}

// markdownToHTML converts markdown to HTML. Raw HTML in the input is dropped.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}
