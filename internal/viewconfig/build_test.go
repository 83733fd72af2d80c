package viewconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/pkg/core"
)

func parseRows(t *testing.T, lines ...string) []*core.Value {
	t.Helper()
	rows := make([]*core.Value, 0, len(lines))
	for _, l := range lines {
		v, err := core.ParseJSON([]byte(l))
		require.NoError(t, err)
		rows = append(rows, v)
	}
	return rows
}

func alphaRows(t *testing.T) []*core.Value {
	return parseRows(t,
		`{"run_id": "alpha", "step": 0, "timestamp": 100, "loss": 2.0, "config": {"lr": 0.1, "model": {"layers": 2}}}`,
		`{"run_id": "alpha", "step": 1, "timestamp": 101, "loss": 1.5, "config": {"model": {"heads": 4}}}`,
		`{"run_id": "alpha", "step": 2, "timestamp": 102, "loss": null, "sample": {"text": "hello"}}`,
	)
}

func TestLatest_NoIndex(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		cols Columns
		want string
	}{
		{
			name: "all columns in first-seen order",
			rows: []string{`{"a": 1, "b": 2}`, `{"c": 3, "a": 4}`},
			cols: AllColumns,
			want: `{"a":4,"b":2,"c":3}`,
		},
		{
			name: "mappings merge recursively",
			rows: []string{`{"c": {"a": 1, "b": {"x": 1}}}`, `{"c": {"b": {"y": 2}}}`},
			cols: Columns{Names: []string{"c"}},
			want: `{"c":{"a":1,"b":{"x":1,"y":2}}}`,
		},
		{
			name: "scalar replaces mapping",
			rows: []string{`{"c": {"a": 1}}`, `{"c": 5}`},
			cols: Columns{Names: []string{"c"}},
			want: `{"c":5}`,
		},
		{
			name: "null replaces earlier value",
			rows: []string{`{"c": 1}`, `{"c": null}`},
			cols: Columns{Names: []string{"c"}},
			want: `{"c":null}`,
		},
		{
			name: "rows without the column do not count",
			rows: []string{`{"c": 1}`, `{"d": 2}`},
			cols: Columns{Names: []string{"c"}},
			want: `{"c":1}`,
		},
		{
			name: "absent columns are dropped",
			rows: []string{`{"c": 1}`},
			cols: Columns{Names: []string{"missing", "c"}},
			want: `{"c":1}`,
		},
		{
			name: "nothing selected",
			rows: []string{`{"c": 1}`},
			cols: Columns{Names: []string{"missing"}},
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Latest(parseRows(t, tt.rows...), tt.cols, nil)
			assert.Equal(t, tt.want, got.Compact())
		})
	}
}

func TestLatest_DeepMergeLeavesRowsUntouched(t *testing.T) {
	rows := parseRows(t, `{"c": {"a": 1}}`, `{"c": {"b": 2}}`)
	_ = Latest(rows, AllColumns, nil)
	assert.Equal(t, `{"c":{"a":1}}`, rows[0].Compact())
	assert.Equal(t, `{"c":{"b":2}}`, rows[1].Compact())
}

func TestLatest_Indexed(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		cols  Columns
		index []string
		want  string
	}{
		{
			name:  "last non-null per group",
			rows:  []string{`{"step": 0, "a": 1}`, `{"step": 0, "a": null}`, `{"step": 0, "b": 2}`},
			cols:  AllColumns,
			index: []string{"step"},
			want:  `[{"step":0,"a":1,"b":2}]`,
		},
		{
			name:  "groups ordered numerically",
			rows:  []string{`{"step": 10, "a": 1}`, `{"step": 2, "a": 2}`},
			cols:  Columns{Names: []string{"a"}},
			index: []string{"step"},
			want:  `[{"step":2,"a":2},{"step":10,"a":1}]`,
		},
		{
			name:  "all-null records dropped",
			rows:  []string{`{"step": 0, "a": 1}`, `{"step": 1, "a": null}`},
			cols:  Columns{Names: []string{"a"}},
			index: []string{"step"},
			want:  `[{"step":0,"a":1}]`,
		},
		{
			name:  "missing column is null",
			rows:  []string{`{"step": 0, "a": 1}`, `{"step": 1, "b": 2}`},
			cols:  Columns{Names: []string{"a", "b"}},
			index: []string{"step"},
			want:  `[{"step":0,"a":1,"b":null},{"step":1,"a":null,"b":2}]`,
		},
		{
			name:  "composite index",
			rows:  []string{`{"s": 1, "i": "b", "v": 1}`, `{"s": 1, "i": "a", "v": 2}`, `{"s": 0, "i": "z", "v": 3}`},
			cols:  Columns{Names: []string{"v"}},
			index: []string{"s", "i"},
			want:  `[{"s":0,"i":"z","v":3},{"s":1,"i":"a","v":2},{"s":1,"i":"b","v":1}]`,
		},
		{
			name:  "rows without index value skipped",
			rows:  []string{`{"step": 0, "a": 1}`, `{"a": 9}`},
			cols:  Columns{Names: []string{"a"}},
			index: []string{"step"},
			want:  `[{"step":0,"a":1}]`,
		},
		{
			name:  "index column never logged",
			rows:  []string{`{"a": 1}`},
			cols:  AllColumns,
			index: []string{"step"},
			want:  `[]`,
		},
		{
			name:  "index excluded from star columns",
			rows:  []string{`{"step": 0, "a": 1}`},
			cols:  AllColumns,
			index: []string{"step"},
			want:  `[{"step":0,"a":1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Latest(parseRows(t, tt.rows...), tt.cols, tt.index)
			assert.Equal(t, tt.want, got.Compact())
		})
	}
}

func TestBuild(t *testing.T) {
	cfg := &Config{
		Index: FieldList{"run_id"},
		Panels: []PanelConfig{
			{Name: "Summary", Columns: AllColumns, Type: core.PanelData},
			{Name: "loss", Columns: Columns{Names: []string{"loss"}}, Type: core.PanelLinePlot, Index: FieldList{"step"}},
			{Name: "samples", Columns: Columns{Names: []string{"sample"}}, Type: core.PanelData, Slider: "step"},
			{Name: "empty", Columns: Columns{Names: []string{"nothing"}}, Type: core.PanelData},
		},
	}

	doc := Build(alphaRows(t), cfg)
	require.Equal(t, []string{"Summary", "loss", "samples"}, doc.Names())

	summary, _ := doc.Panel("Summary")
	assert.Equal(t, core.PanelData, summary.Type)
	assert.Equal(t,
		`{"run_id":"alpha","step":2,"timestamp":102,"loss":null,"config":{"lr":0.1,"model":{"layers":2,"heads":4}},"sample":{"text":"hello"}}`,
		summary.Data.Compact())

	loss, _ := doc.Panel("loss")
	assert.Equal(t, "step", loss.Index)
	assert.Equal(t, `[{"step":0,"loss":2},{"step":1,"loss":1.5}]`, loss.Data.Compact())

	samples, _ := doc.Panel("samples")
	assert.Equal(t, "step", samples.Slider)
	assert.Empty(t, samples.Index)
	assert.Equal(t, `[{"step":2,"sample":{"text":"hello"}}]`, samples.Data.Compact())
}

func TestBuild_NilConfig(t *testing.T) {
	assert.Equal(t, 0, Build(alphaRows(t), nil).Len())
}

func TestPanelConfig_EffectiveIndex(t *testing.T) {
	tests := []struct {
		name  string
		panel PanelConfig
		want  []string
	}{
		{"no slider", PanelConfig{Index: FieldList{"i"}}, []string{"i"}},
		{"slider only", PanelConfig{Slider: "step"}, []string{"step"}},
		{"slider first", PanelConfig{Index: FieldList{"i", "j"}, Slider: "step"}, []string{"step", "i", "j"}},
		{"slider not repeated", PanelConfig{Index: FieldList{"step"}, Slider: "step"}, []string{"step"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.panel.effectiveIndex())
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default(alphaRows(t))

	assert.Equal(t, FieldList{"run_id"}, cfg.Index)
	require.Len(t, cfg.Panels, 3)
	assert.Equal(t, PanelConfig{Name: "Summary", Columns: AllColumns, Type: core.PanelData}, cfg.Panels[0])
	assert.Equal(t, PanelConfig{Name: "step", Columns: Columns{Names: []string{"step"}}, Type: core.PanelLinePlot, Index: FieldList{"timestamp"}}, cfg.Panels[1])
	assert.Equal(t, PanelConfig{Name: "loss", Columns: Columns{Names: []string{"loss"}}, Type: core.PanelLinePlot, Index: FieldList{"step"}}, cfg.Panels[2])
}

func TestDefault_WithoutStep(t *testing.T) {
	cfg := Default(parseRows(t, `{"run_id": "a", "timestamp": 1, "acc": 0.5, "name": "x"}`))
	require.Len(t, cfg.Panels, 2)
	assert.Equal(t, "acc", cfg.Panels[1].Name)
	assert.Equal(t, FieldList{"timestamp"}, cfg.Panels[1].Index)
}

func TestDefault_MixedColumnNotPlotted(t *testing.T) {
	cfg := Default(parseRows(t, `{"v": 1}`, `{"v": "two"}`, `{"w": null}`))
	require.Len(t, cfg.Panels, 1)
	assert.Equal(t, "Summary", cfg.Panels[0].Name)
}
