package panel

import "github.com/leapstack-labs/runlens/pkg/core"

// Renderer is the view family chosen for a descriptor.
type Renderer int

const (
	RenderRaw Renderer = iota
	RenderTree
	RenderTable
	RenderChart
	RenderFile
	RenderStep
)

func (r Renderer) String() string {
	switch r {
	case RenderTree:
		return "tree"
	case RenderTable:
		return "table"
	case RenderChart:
		return "chart"
	case RenderFile:
		return "file"
	case RenderStep:
		return "step"
	default:
		return "raw"
	}
}

// Classify picks the renderer for a descriptor. Rules apply in order and the
// structural dump catches everything else.
func Classify(desc *core.PanelDescriptor) Renderer {
	if desc == nil {
		return RenderRaw
	}
	data := desc.Data
	switch {
	case desc.Slider != "" && data.IsList():
		return RenderStep
	case desc.Type == core.PanelLinePlot && desc.Index != "" && isRecords(data):
		return RenderChart
	case desc.Type == core.PanelData && desc.Index != "" && data.IsList():
		return RenderTable
	case desc.Type == core.PanelData && desc.Index == "":
		if data.IsMap() {
			return RenderTree
		}
		return RenderRaw
	case (desc.Type == core.PanelImage || desc.Type == core.PanelFile) && core.IsFileReference(data):
		return RenderFile
	default:
		return RenderRaw
	}
}

// isRecords reports whether v is a non-empty sequence of mappings.
func isRecords(v *core.Value) bool {
	if !v.IsList() || v.Len() == 0 {
		return false
	}
	for _, item := range v.Items() {
		if !item.IsMap() {
			return false
		}
	}
	return true
}
