package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/panel"
)

func reportPanels() []*panel.PanelView {
	summary := panel.Path{"Summary"}
	model := summary.Child("model")
	return []*panel.PanelView{
		{
			Path: summary, Name: "Summary", Visible: true,
			Body: &panel.TreeView{Path: summary, Entries: []panel.TreeEntry{
				{Key: "lr", Path: summary.Child("lr"), Kind: panel.EntryLeaf, Text: "0.1"},
				{Key: "model", Path: model, Kind: panel.EntryTree, Open: true, Child: &panel.TreeView{
					Path: model, Depth: 1, Entries: []panel.TreeEntry{
						{Key: "layers", Path: model.Child("layers"), Kind: panel.EntryLeaf, Text: "2"},
					},
				}},
				{Key: "extra", Path: summary.Child("extra"), Kind: panel.EntryTree},
			}},
		},
		{Path: panel.Path{"hidden"}, Name: "hidden"},
	}
}

func TestRender_TreeAndControls(t *testing.T) {
	out := New(Options{}).Render(reportPanels())

	lines := strings.Split(strings.TrimRight(out.Text, "\n"), "\n")
	assert.Equal(t, []string{
		"▼ Summary",
		"  lr: 0.1",
		"  ▼ model",
		"    layers: 2",
		"  ▶ extra",
		"",
		"▶ hidden",
	}, lines)

	require.Len(t, out.Controls, 4)
	assert.Equal(t, ControlVisibility, out.Controls[0].Kind)
	assert.Equal(t, 0, out.Controls[0].Line)
	assert.Equal(t, ControlToggle, out.Controls[1].Kind)
	assert.Equal(t, panel.Path{"Summary", "model"}, out.Controls[1].Path)
	assert.Equal(t, 2, out.Controls[1].Line)
	assert.Equal(t, 4, out.Controls[2].Line)
	assert.Equal(t, 6, out.Controls[3].Line)
}

func TestRender_Table(t *testing.T) {
	p := panel.Path{"grid"}
	out := New(Options{}).Render([]*panel.PanelView{{
		Path: p, Name: "grid", Visible: true,
		Body: &panel.TableView{
			Path: p, Columns: []string{"step", "acc"}, Rows: [][]string{{"0", "0.5"}, {"1", ""}},
			Page: 1, TotalPages: 3, PageSize: 2, Total: 5, Start: 0, End: 2, HasNext: true,
		},
	}})

	assert.Contains(t, out.Text, "step")
	assert.Contains(t, out.Text, "0.5")
	assert.Contains(t, out.Text, "◀ Page 1 of 3 ▶")
	assert.Contains(t, out.Text, "records 1-2 of 5")
	require.Len(t, out.Controls, 2)
	assert.Equal(t, ControlPager, out.Controls[1].Kind)
	lines := strings.Split(out.Text, "\n")
	assert.Contains(t, lines[out.Controls[1].Line], "Page 1 of 3")
}

func TestRender_ChartFileStep(t *testing.T) {
	p := panel.Path{"p"}
	tests := []struct {
		name string
		view panel.View
		want []string
	}{
		{
			name: "chart",
			view: &panel.ChartView{Path: p, Index: "step", X: []string{"0", "1"}, Series: []panel.Series{
				{Name: "loss", Color: panel.SeriesColor(0), Points: []panel.Point{{Y: 2, Valid: true}, {Y: 1, Valid: true}}},
			}},
			want: []string{"x: step", "■ loss █▁ 1", "loss"},
		},
		{
			name: "image",
			view: &panel.FileView{Path: p, Class: panel.FileImage, URL: "/artifacts/run.PNG"},
			want: []string{"[image] /artifacts/run.PNG"},
		},
		{
			name: "csv loading",
			view: &panel.FileView{Path: p, Class: panel.FileDelimited, URL: "/out.csv", Loading: true},
			want: []string{"[delimited] /out.csv (loading…)"},
		},
		{
			name: "csv loaded",
			view: &panel.FileView{Path: p, Class: panel.FileDelimited, URL: "/out.csv", Table: &panel.TableView{
				Path: p.Child("rows"), Columns: []string{"id"}, Rows: [][]string{{"7"}}, Page: 1, TotalPages: 1, Total: 1, End: 1,
			}},
			want: []string{"[delimited] /out.csv", "7", "Page 1 of 1"},
		},
		{
			name: "step",
			view: &panel.StepView{Path: p, Slider: "t", Steps: []string{"1", "2"}, Position: 1, Selected: "2",
				Children: []panel.View{&panel.RawView{Path: p.Child("@", "0"), Text: `{"v": 20}`}}},
			want: []string{"◀ t = 2 (2/2) ▶", `{"v": 20}`},
		},
		{
			name: "raw",
			view: &panel.RawView{Path: p, Text: "[\n  1\n]"},
			want: []string{"  [", "    1", "  ]"},
		},
	}

	r := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Render([]*panel.PanelView{{Path: p, Name: "p", Visible: true, Body: tt.view}})
			for _, w := range tt.want {
				assert.Contains(t, out.Text, w)
			}
		})
	}
}

func TestRender_FocusHighlight(t *testing.T) {
	panels := reportPanels()
	plain := New(Options{}).Render(panels)
	focus := plain.Controls[1].Key()

	styled := New(Options{Styled: true, Focus: focus}).Render(panels)
	lines := strings.Split(styled.Text, "\n")
	assert.Contains(t, lines[2], "\x1b[7m")
	assert.NotContains(t, lines[4], "\x1b[7m")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{Writer: &buf}).Write(&buf, reportPanels()))
	assert.True(t, strings.HasPrefix(buf.String(), "▼ Summary\n"))
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		points []panel.Point
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"ramp", []panel.Point{{Y: 0, Valid: true}, {Y: 7, Valid: true}}, 10, "▁█"},
		{"gap", []panel.Point{{Y: 0, Valid: true}, {}, {Y: 7, Valid: true}}, 10, "▁ █"},
		{"flat", []panel.Point{{Y: 3, Valid: true}, {Y: 3, Valid: true}}, 10, "▄▄"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sparkline(tt.points, tt.width))
		})
	}

	long := make([]panel.Point, 100)
	for i := range long {
		long[i] = panel.Point{Y: float64(i), Valid: true}
	}
	assert.Equal(t, 10, len([]rune(Sparkline(long, 10))))
}

func TestControlKey(t *testing.T) {
	c := Control{Kind: ControlToggle, Path: panel.Path{"a", "b/c"}}
	assert.Equal(t, "1:/a/b~1c", c.Key())
}

func TestRender_HeadersKeepCase(t *testing.T) {
	p := panel.Path{"p"}
	views := []panel.View{
		&panel.TableView{Path: p, Columns: []string{"learning_rate", "LR"}, Rows: [][]string{{"0.1", "1"}}, Page: 1, TotalPages: 1, PageSize: 10, Total: 1, End: 1},
		&panel.ChartView{Path: p, Index: "step", X: []string{"0"}, Series: []panel.Series{
			{Name: "val_loss", Color: panel.SeriesColor(0), Points: []panel.Point{{Y: 1, Valid: true}}},
		}},
	}

	for _, v := range views {
		out := New(Options{}).Render([]*panel.PanelView{{Path: p, Name: "p", Visible: true, Body: v}})
		assert.NotContains(t, out.Text, "LEARNING_RATE")
		assert.NotContains(t, out.Text, "VAL_LOSS")
		assert.NotContains(t, out.Text, "STEP")
	}
}
