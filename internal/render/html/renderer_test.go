package html

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/pkg/core"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func samplePanels() []*panel.PanelView {
	summary := panel.Path{"Summary"}
	return []*panel.PanelView{
		{
			Path: summary, Name: "Summary", Visible: true,
			Body: &panel.TreeView{Path: summary, Entries: []panel.TreeEntry{
				{Key: "lr", Path: summary.Child("lr"), Kind: panel.EntryLeaf, Text: "0.1"},
				{Key: "model", Path: summary.Child("model"), Kind: panel.EntryTree},
			}},
		},
		{Path: panel.Path{"hidden"}, Name: "hidden", Visible: false},
	}
}

func TestRunsPage(t *testing.T) {
	r := MustNew()
	body := render(t, r.RunsPage(RunsPage{
		Title: "Runs",
		Runs:  []RunItem{{Key: "alpha", Href: "/view/alpha"}, {Key: "exp/2", Href: "/view/exp/2"}},
		Notes: "# Experiments\n\nSeed sweep.",
	}))

	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<title>Runs - runlens</title>")
	assert.Contains(t, body, `<h1>Experiments</h1>`)
	assert.Contains(t, body, `href="/view/alpha"`)
	assert.Contains(t, body, `href="/view/exp/2"`)
}

func TestRunsPage_Empty(t *testing.T) {
	body := render(t, MustNew().RunsPage(RunsPage{Title: "Runs", Error: "store unavailable"}))
	assert.Contains(t, body, "No runs logged yet.")
	assert.Contains(t, body, "store unavailable")
}

func TestReportPage(t *testing.T) {
	r := MustNew()
	body := render(t, r.ReportPage(ReportPage{Title: "alpha", Run: "alpha", ReportID: "r1", Panels: samplePanels()}))

	assert.Contains(t, body, DatastarScript)
	assert.Contains(t, body, "data-init=")
	assert.Contains(t, body, "/api/reports/r1/stream")
	assert.Contains(t, body, `id="rl-panels"`)
	assert.Contains(t, body, "/api/reports/r1/toggle?path=%2FSummary%2Fmodel")
	assert.Contains(t, body, "/api/reports/r1/visibility?path=%2Fhidden")
	assert.Contains(t, body, "0.1")
	assert.Contains(t, body, `id="`+DomID(panel.Path{"Summary"})+`"`)
}

func TestExport_HasNoEventBindings(t *testing.T) {
	out, err := MustNew().ExportString("alpha", samplePanels())
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>alpha</h1>")
	assert.Contains(t, out, `<h2 class="rl-panel__title">Summary</h2>`)
	assert.NotContains(t, out, "data-on:click")
	assert.NotContains(t, out, "@post")
	assert.NotContains(t, out, DatastarScript)
}

func TestPanel_Component(t *testing.T) {
	pv := samplePanels()[1]
	body := render(t, MustNew().Panel("r1", pv))
	assert.Contains(t, body, `<section class="rl-panel" id="`+DomID(pv.Path)+`"`)
	assert.Contains(t, body, `aria-expanded="false"`)
	assert.NotContains(t, body, "rl-panel__body")
}

func TestFragment_Views(t *testing.T) {
	p := panel.Path{"p"}
	tests := []struct {
		name string
		view panel.View
		want []string
		deny []string
	}{
		{
			name: "raw escapes text",
			view: &panel.RawView{Path: p, Text: `["<b>", 1]`},
			want: []string{`<pre class="rl-raw"`, "&lt;b&gt;"},
		},
		{
			name: "table with pager",
			view: &panel.TableView{
				Path: p, Columns: []string{"a", "b"}, Rows: [][]string{{"1", "x"}},
				Page: 1, TotalPages: 3, HasNext: true,
			},
			want: []string{"<th>a</th><th>b</th>", "<td>1</td><td>x</td>", "Page 1 of 3", "disabled"},
		},
		{
			name: "image",
			view: &panel.FileView{Path: p, Class: panel.FileImage, URL: "/artifacts/run.PNG", Ref: core.FileReference{Filename: "run.PNG"}},
			want: []string{`<img src="/artifacts/run.PNG" alt="run.PNG">`},
		},
		{
			name: "audio",
			view: &panel.FileView{Path: p, Class: panel.FileAudio, URL: "/a.mp3", MIME: "audio/mp3"},
			want: []string{"<audio controls>", `type="audio/mp3"`},
		},
		{
			name: "text file",
			view: &panel.FileView{Path: p, Class: panel.FileText, URL: "/log.txt", Ref: core.FileReference{Filename: "log.txt"}},
			want: []string{`<iframe src="/log.txt"`},
		},
		{
			name: "delimited loading",
			view: &panel.FileView{Path: p, Class: panel.FileDelimited, URL: "/out.csv", Loading: true},
			want: []string{"Loading"},
			deny: []string{"<table>"},
		},
		{
			name: "delimited loaded",
			view: &panel.FileView{Path: p, Class: panel.FileDelimited, URL: "/out.csv", Table: &panel.TableView{
				Path: p.Child("rows"), Columns: []string{"id"}, Rows: [][]string{{"1"}}, Page: 1, TotalPages: 1,
			}},
			want: []string{"<table>", "<td>1</td>"},
			deny: []string{"Loading"},
		},
		{
			name: "download",
			view: &panel.FileView{Path: p, Class: panel.FileDownload, URL: "/weights.bin", Ref: core.FileReference{Filename: "weights.bin"}},
			want: []string{`download="weights.bin"`, `href="/weights.bin"`},
		},
		{
			name: "step player",
			view: &panel.StepView{
				Path: p, Slider: "t", Steps: []string{"1", "2"}, Position: 0, Selected: "1",
				Children: []panel.View{&panel.RawView{Path: p.Child("@", "0"), Text: "first"}},
			},
			want: []string{`type="range"`, `max="1"`, "t: 1", "first", "disabled"},
		},
		{
			name: "empty step player",
			view: &panel.StepView{Path: p, Slider: "t"},
			want: []string{"No steps."},
		},
		{
			name: "chart",
			view: &panel.ChartView{
				Path: p, Index: "step", X: []string{"0", "1", "2"},
				Series: []panel.Series{{Name: "loss", Color: panel.SeriesColor(0), Points: []panel.Point{{Y: 2, Valid: true}, {Y: 1, Valid: true}, {Y: 0.5, Valid: true}}}},
			},
			want: []string{"<svg", "<polyline", `stroke="` + panel.SeriesColor(0) + `"`, "loss"},
		},
	}

	r := MustNew()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Fragment(context.Background(), tt.view)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, d := range tt.deny {
				assert.NotContains(t, out, d)
			}
		})
	}
}

func TestLayoutChart(t *testing.T) {
	t.Run("no valid points", func(t *testing.T) {
		l := layoutChart(&panel.ChartView{X: []string{"0"}, Series: []panel.Series{{Name: "a", Points: []panel.Point{{}}}}})
		assert.True(t, l.Empty)
	})

	t.Run("gaps split segments", func(t *testing.T) {
		l := layoutChart(&panel.ChartView{
			X: []string{"0", "1", "2", "3", "4"},
			Series: []panel.Series{{Name: "a", Points: []panel.Point{
				{Y: 1, Valid: true}, {Y: 2, Valid: true}, {}, {Y: 3, Valid: true}, {},
			}}},
		})
		require.Len(t, l.Lines, 1)
		assert.Len(t, l.Lines[0].Segments, 1)
		assert.Len(t, l.Lines[0].Dots, 1)
		assert.Len(t, l.XTicks, 5)
		assert.Equal(t, "3", l.YTicks[0].Text)
		assert.Equal(t, "1", l.YTicks[2].Text)
	})

	t.Run("flat series is padded", func(t *testing.T) {
		l := layoutChart(&panel.ChartView{
			X:      []string{"0"},
			Series: []panel.Series{{Name: "a", Points: []panel.Point{{Y: 5, Valid: true}}}},
		})
		require.Len(t, l.Lines[0].Dots, 1)
		assert.InDelta(t, (l.Left+l.Right)/2, l.Lines[0].Dots[0].X, 1e-9)
		assert.InDelta(t, (l.Top+l.Bottom)/2, l.Lines[0].Dots[0].Y, 1e-9)
	})

	t.Run("ticks thin out", func(t *testing.T) {
		x := make([]string, 20)
		pts := make([]panel.Point, 20)
		for i := range x {
			x[i] = "x"
			pts[i] = panel.Point{Y: float64(i), Valid: true}
		}
		l := layoutChart(&panel.ChartView{X: x, Series: []panel.Series{{Points: pts}}})
		assert.LessOrEqual(t, len(l.XTicks), maxXTicks)
	})
}
