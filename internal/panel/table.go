package panel

import "github.com/leapstack-labs/runlens/pkg/core"

func (p *pass) table(path Path, data *core.Value) View {
	n, _ := p.state.bind(path.String(), data)
	size := p.e.pageSize
	total := data.Len()

	n.pages = (total + size - 1) / size
	if n.page > n.pages {
		n.page = n.pages
	}
	if n.page < 1 {
		n.page = 1
	}

	tv := &TableView{
		Path:       path,
		Columns:    columns(data),
		Page:       n.page,
		TotalPages: n.pages,
		PageSize:   size,
		Total:      total,
		HasPrev:    n.page > 1,
		HasNext:    n.page < n.pages,
	}
	tv.Start = min((n.page-1)*size, total)
	tv.End = min(tv.Start+size, total)

	for _, record := range data.Items()[tv.Start:tv.End] {
		row := make([]string, len(tv.Columns))
		for i, col := range tv.Columns {
			v, _ := record.Get(col)
			row[i] = Cell(v)
		}
		tv.Rows = append(tv.Rows, row)
	}
	return tv
}

// columns returns the keys of the first record, which define the schema.
func columns(data *core.Value) []string {
	first := data.Index(0)
	if !first.IsMap() {
		return nil
	}
	return append([]string(nil), first.Keys()...)
}
