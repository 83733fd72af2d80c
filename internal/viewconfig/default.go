package viewconfig

import (
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Well-known row fields.
const (
	RunIDField     = "run_id"
	StepField      = "step"
	TimestampField = "timestamp"
	SummaryPanel   = "Summary"
)

// Default derives a view from the rows themselves: a summary of every
// column, plus a line plot for each numeric column plotted against the step
// when one is logged and against the timestamp otherwise.
func Default(rows []*core.Value) *Config {
	cfg := &Config{
		Index: FieldList{RunIDField},
		Panels: []PanelConfig{
			{Name: SummaryPanel, Columns: AllColumns, Type: core.PanelData},
		},
	}

	present := presentColumns(rows)
	for _, col := range present.order {
		if col == TimestampField || col == RunIDField {
			continue
		}
		if !isNumericColumn(rows, col) {
			continue
		}
		index := TimestampField
		if present.has(StepField) && col != StepField {
			index = StepField
		}
		cfg.Panels = append(cfg.Panels, PanelConfig{
			Name:    col,
			Columns: Columns{Names: []string{col}},
			Type:    core.PanelLinePlot,
			Index:   FieldList{index},
		})
	}
	return cfg
}

// isNumericColumn reports whether every non-null value of col is a number and
// at least one row holds a number there.
func isNumericColumn(rows []*core.Value, col string) bool {
	seen := false
	for _, row := range rows {
		v, ok := row.Get(col)
		if !ok || v.IsNull() {
			continue
		}
		if v.Kind() != core.KindNumber {
			return false
		}
		seen = true
	}
	return seen
}
