package panel

import "github.com/leapstack-labs/runlens/pkg/core"

// Reconcile returns next with every panel whose descriptor is unchanged from
// prev replaced by prev's descriptor. Unchanged panels keep their data identity
// across a refetch and therefore keep their UI state.
func Reconcile(prev, next *core.Document) *core.Document {
	if prev == nil || next == nil {
		return next
	}
	out := core.NewDocument()
	for _, name := range next.Names() {
		desc, _ := next.Panel(name)
		if old, ok := prev.Panel(name); ok && sameDescriptor(old, desc) {
			desc = old
		}
		out.Add(name, desc)
	}
	return out
}

func sameDescriptor(a, b *core.PanelDescriptor) bool {
	return a.Type == b.Type && a.Index == b.Index && a.Slider == b.Slider && core.Equal(a.Data, b.Data)
}
