package panel

import (
	"sort"
	"strconv"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// UniqueSteps returns the distinct values of field across the records of data,
// sorted numeric-aware. Items that are not mappings or lack the field are skipped.
func UniqueSteps(data *core.Value, field string) []*core.Value {
	var steps []*core.Value
	seen := make(map[string]bool)
	for _, record := range data.Items() {
		v, ok := record.Get(field)
		if !ok {
			continue
		}
		key := stepKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		steps = append(steps, v)
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return core.Compare(steps[i], steps[j]) < 0
	})
	return steps
}

// stepKey is equal for step values that core.Equal treats as equal.
func stepKey(v *core.Value) string {
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f+0, 'g', -1, 64)
	}
	return v.Compact()
}

// StepRecords returns every record of data whose field equals step.
func StepRecords(data *core.Value, field string, step *core.Value) []*core.Value {
	var out []*core.Value
	for _, record := range data.Items() {
		if v, ok := record.Get(field); ok && core.Equal(v, step) {
			out = append(out, record)
		}
	}
	return out
}

func (p *pass) step(path Path, desc *core.PanelDescriptor, depth int) View {
	n, fresh := p.state.bind(path.String(), desc.Data)
	if fresh {
		n.steps = UniqueSteps(desc.Data, desc.Slider)
	}

	sv := &StepView{Path: path, Slider: desc.Slider, Position: n.pos}
	for _, s := range n.steps {
		sv.Steps = append(sv.Steps, Leaf(s))
	}
	if len(n.steps) == 0 {
		return sv
	}

	selected := n.steps[n.pos]
	sv.Selected = Leaf(selected)
	for i, record := range StepRecords(desc.Data, desc.Slider, selected) {
		child := &core.PanelDescriptor{Type: desc.Type, Data: record, Index: desc.Index}
		sv.Children = append(sv.Children, p.dispatch(path.Child("@", strconv.Itoa(i)), child, depth+1, true))
	}
	return sv
}
