package viewconfig

import (
	"sort"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Build evaluates every panel of cfg against rows and returns the document
// served for a run. Panels whose selection is empty are left out.
func Build(rows []*core.Value, cfg *Config) *core.Document {
	doc := core.NewDocument()
	if cfg == nil {
		return doc
	}
	for _, p := range cfg.Panels {
		data := Latest(rows, p.Columns, p.effectiveIndex())
		if data.Len() == 0 {
			continue
		}
		desc := &core.PanelDescriptor{
			Type:   p.Type,
			Data:   data,
			Slider: p.Slider,
		}
		if len(p.Index) > 0 {
			desc.Index = p.Index[0]
		}
		doc.Add(p.Name, desc)
	}
	return doc
}

// effectiveIndex prepends the slider field so each step keeps its own rows.
func (p PanelConfig) effectiveIndex() []string {
	if p.Slider == "" {
		return p.Index
	}
	out := make([]string, 0, len(p.Index)+1)
	out = append(out, p.Slider)
	for _, f := range p.Index {
		if f != p.Slider {
			out = append(out, f)
		}
	}
	return out
}

// Latest reduces rows to the most recent value of each selected column.
//
// Without an index the result is a single mapping in which mapping values are
// merged recursively across rows and any other value replaces the previous
// one. With an index the result is one record per distinct index tuple,
// ordered by the index, holding the last non-null value of each column.
// Records where every selected column is null are dropped. If any index
// column never appears, the result is an empty list.
func Latest(rows []*core.Value, cols Columns, index []string) *core.Value {
	present := presentColumns(rows)
	if len(index) == 0 {
		return mergeLatest(rows, selectColumns(cols, present, nil))
	}
	for _, f := range index {
		if !present.has(f) {
			return core.List()
		}
	}
	return groupLatest(rows, selectColumns(cols, present, index), index)
}

type columnSet struct {
	order []string
	seen  map[string]bool
}

func (s *columnSet) has(name string) bool { return s.seen[name] }

// presentColumns lists every key of rows in first-appearance order.
func presentColumns(rows []*core.Value) *columnSet {
	set := &columnSet{seen: map[string]bool{}}
	for _, row := range rows {
		for _, key := range row.Keys() {
			if !set.seen[key] {
				set.seen[key] = true
				set.order = append(set.order, key)
			}
		}
	}
	return set
}

func selectColumns(cols Columns, present *columnSet, index []string) []string {
	skip := make(map[string]bool, len(index))
	for _, f := range index {
		skip[f] = true
	}
	candidates := cols.Names
	if cols.All {
		candidates = present.order
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if present.has(c) && !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

func mergeLatest(rows []*core.Value, columns []string) *core.Value {
	result := core.NewMap()
	for _, col := range columns {
		var acc *core.Value
		for _, row := range rows {
			v, ok := row.Get(col)
			if !ok {
				continue
			}
			acc = deepMerge(acc, v)
		}
		result.Set(col, acc)
	}
	return result
}

// deepMerge overlays b onto a. Both mappings merge key by key; otherwise b wins.
// Neither input is modified.
func deepMerge(a, b *core.Value) *core.Value {
	if !a.IsMap() || !b.IsMap() {
		return b
	}
	out := core.NewMap()
	for _, key := range a.Keys() {
		v, _ := a.Get(key)
		out.Set(key, v)
	}
	for _, key := range b.Keys() {
		bv, _ := b.Get(key)
		if av, ok := a.Get(key); ok {
			out.Set(key, deepMerge(av, bv))
			continue
		}
		out.Set(key, bv)
	}
	return out
}

type group struct {
	key    []*core.Value
	latest map[string]*core.Value
}

func groupLatest(rows []*core.Value, columns, index []string) *core.Value {
	var groups []*group
	byKey := map[string]*group{}

	for _, row := range rows {
		key, ok := indexKey(row, index)
		if !ok {
			continue
		}
		id := core.List(key...).Compact()
		g, found := byKey[id]
		if !found {
			g = &group{key: key, latest: map[string]*core.Value{}}
			byKey[id] = g
			groups = append(groups, g)
		}
		for _, col := range columns {
			if v, ok := row.Get(col); ok && !v.IsNull() {
				g.latest[col] = v
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		for k := range index {
			if c := core.Compare(groups[i].key[k], groups[j].key[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	out := core.List()
	for _, g := range groups {
		if len(g.latest) == 0 {
			continue
		}
		rec := core.NewMap()
		for i, f := range index {
			rec.Set(f, g.key[i])
		}
		for _, col := range columns {
			if v, ok := g.latest[col]; ok {
				rec.Set(col, v)
			} else {
				rec.Set(col, core.Null())
			}
		}
		out.Append(rec)
	}
	return out
}

// indexKey returns the index tuple of row. Rows missing an index value, or
// holding null there, belong to no group.
func indexKey(row *core.Value, index []string) ([]*core.Value, bool) {
	key := make([]*core.Value, len(index))
	for i, f := range index {
		v, ok := row.Get(f)
		if !ok || v.IsNull() {
			return nil, false
		}
		key[i] = v
	}
	return key, true
}
