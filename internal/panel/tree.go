package panel

import "github.com/leapstack-labs/runlens/pkg/core"

func (p *pass) tree(path Path, data *core.Value, depth int, force bool) View {
	n, fresh := p.state.bind(path.String(), data)
	if fresh && force {
		p.expandAll(path, n, data, depth)
	}

	tv := &TreeView{Path: path, Depth: depth}
	for _, key := range data.Keys() {
		value, _ := data.Get(key)
		entry := TreeEntry{Key: key, Path: path.Child(key)}

		switch {
		case core.IsFileReference(value):
			entry.Kind = EntryFile
			entry.Open = n.open[key]
			if entry.Open {
				entry.Child = p.file(entry.Path, value, depth+1)
			}
		case value.IsMap():
			entry.Kind = EntryTree
			entry.Open = n.open[key]
			if entry.Open {
				if depth+1 > p.e.maxDepth {
					entry.Child = p.raw(entry.Path, value)
				} else {
					entry.Child = p.tree(entry.Path, value, depth+1, force)
				}
			}
		default:
			entry.Kind = EntryLeaf
			entry.Text = Leaf(value)
		}
		tv.Entries = append(tv.Entries, entry)
	}
	return tv
}

// expandAll opens every nested mapping and file reference key below n,
// binding each nested tree to its data so the flags survive its first render.
func (p *pass) expandAll(path Path, n *node, data *core.Value, depth int) {
	if n.open == nil {
		n.open = make(map[string]bool)
	}
	for _, key := range data.Keys() {
		value, _ := data.Get(key)
		switch {
		case core.IsFileReference(value):
			n.open[key] = true
		case value.IsMap():
			n.open[key] = true
			if depth+1 > p.e.maxDepth {
				continue
			}
			childPath := path.Child(key)
			child, _ := p.state.bind(childPath.String(), value)
			p.expandAll(childPath, child, value, depth+1)
		}
	}
}
