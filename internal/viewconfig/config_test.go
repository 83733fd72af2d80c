package viewconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/pkg/core"
)

func TestParse(t *testing.T) {
	input := `
index: [run_id, seed]
panels:
  - name: Summary
    columns: "*"
    type: data
  - name: loss
    columns: [loss, val_loss]
    type: lineplot
    index: step
  - name: samples
    columns: sample
    type: data
    slider: step
`
	cfg, err := Parse([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, FieldList{"run_id", "seed"}, cfg.Index)
	require.Len(t, cfg.Panels, 3)
	assert.True(t, cfg.Panels[0].Columns.All)
	assert.Equal(t, core.PanelData, cfg.Panels[0].Type)
	assert.Equal(t, []string{"loss", "val_loss"}, cfg.Panels[1].Columns.Names)
	assert.Equal(t, FieldList{"step"}, cfg.Panels[1].Index)
	assert.Equal(t, []string{"sample"}, cfg.Panels[2].Columns.Names)
	assert.Equal(t, "step", cfg.Panels[2].Slider)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		unknown bool
		errMsg  string
	}{
		{
			name:    "unknown top-level field",
			input:   "index: run_id\nlayout: grid\n",
			unknown: true,
			errMsg:  `unknown field "layout" in view config`,
		},
		{
			name:    "unknown panel field",
			input:   "panels:\n  - name: a\n    columns: '*'\n    colour: red\n",
			unknown: true,
			errMsg:  `unknown field "colour" in panels[0]`,
		},
		{
			name:   "invalid yaml",
			input:  "index: [unclosed\n",
			errMsg: "invalid YAML",
		},
		{
			name:   "panel without name",
			input:  "panels:\n  - columns: '*'\n",
			errMsg: "name is required",
		},
		{
			name:   "duplicate panel",
			input:  "panels:\n  - {name: a, columns: '*'}\n  - {name: a, columns: '*'}\n",
			errMsg: "duplicate panel name",
		},
		{
			name:   "missing columns",
			input:  "panels:\n  - name: a\n",
			errMsg: "columns is required",
		},
		{
			name:   "columns of the wrong shape",
			input:  "panels:\n  - name: a\n    columns: {x: 1}\n",
			errMsg: "columns must be",
		},
		{
			name:   "panel not a mapping",
			input:  "panels:\n  - just-a-string\n",
			errMsg: "expected a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			var unknown *UnknownFieldError
			assert.Equal(t, tt.unknown, errors.As(err, &unknown))
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default(alphaRows(t))
	path := filepath.Join(t.TempDir(), "default.yaml")

	require.NoError(t, Save(path, cfg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "index: run_id")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
