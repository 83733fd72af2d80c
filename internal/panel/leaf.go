package panel

import "github.com/leapstack-labs/runlens/pkg/core"

// Leaf renders a scalar inline. Sequences are treated as opaque scalars and
// joined with commas.
func Leaf(v *core.Value) string {
	return v.String()
}

// Cell renders a table cell. Missing and null values are blank; nested values
// are shown as single-line JSON.
func Cell(v *core.Value) string {
	switch v.Kind() {
	case core.KindNull:
		return ""
	case core.KindList, core.KindMap:
		return v.Literal()
	default:
		return v.String()
	}
}

// Dump is the structural dump: an indented, order-preserving literal of v.
func Dump(v *core.Value) string {
	return v.Indent()
}
