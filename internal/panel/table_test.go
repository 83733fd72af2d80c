package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/pkg/core"
)

func renderTable(t *testing.T, e *Engine, tree *StateTree, path Path, data *core.Value) *TableView {
	t.Helper()
	tv, ok := e.Table(tree, path, data).(*TableView)
	require.True(t, ok)
	return tv
}

func TestTable_Pagination(t *testing.T) {
	e, _ := newTestEngine(t)
	tree := NewStateTree()
	path := Path{"metrics"}
	data := records(23)

	tv := renderTable(t, e, tree, path, data)
	assert.Equal(t, 3, tv.TotalPages)
	assert.Equal(t, 1, tv.Page)
	assert.False(t, tv.HasPrev)
	assert.True(t, tv.HasNext)
	assert.Equal(t, []string{"step", "loss"}, tv.Columns)
	assert.Len(t, tv.Rows, 10)

	assert.False(t, tree.PrevPage(path), "Previous on page 1 is a no-op")
	assert.Equal(t, 1, tree.Page(path))

	require.True(t, tree.SetPage(path, 3))
	tv = renderTable(t, e, tree, path, data)
	assert.Equal(t, 3, tv.Page)
	assert.Equal(t, 20, tv.Start)
	assert.Equal(t, 23, tv.End)
	require.Len(t, tv.Rows, 3)
	assert.Equal(t, []string{"20", "3"}, tv.Rows[0])
	assert.Equal(t, []string{"22", "1"}, tv.Rows[2])
	assert.True(t, tv.HasPrev)
	assert.False(t, tv.HasNext)

	assert.False(t, tree.NextPage(path), "Next on the last page is a no-op")
	assert.Equal(t, 3, tree.Page(path))

	assert.False(t, tree.SetPage(path, 0))
	assert.False(t, tree.SetPage(path, 4))

	require.True(t, tree.PrevPage(path))
	assert.Equal(t, 2, renderTable(t, e, tree, path, data).Page)
}

func TestTable_TotalPages(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		n     int
		pages int
	}{
		{0, 0}, {1, 1}, {10, 1}, {11, 2}, {20, 2}, {23, 3},
	}
	for _, tt := range tests {
		tv := renderTable(t, e, NewStateTree(), Path{"t"}, records(tt.n))
		assert.Equal(t, tt.pages, tv.TotalPages, "n=%d", tt.n)
		assert.Equal(t, 1, tv.Page, "n=%d", tt.n)
	}
}

func TestTable_Empty(t *testing.T) {
	e, _ := newTestEngine(t)
	tree := NewStateTree()
	tv := renderTable(t, e, tree, Path{"t"}, core.List())
	assert.Empty(t, tv.Columns)
	assert.Empty(t, tv.Rows)
	assert.False(t, tv.HasPrev)
	assert.False(t, tv.HasNext)
	assert.False(t, tree.NextPage(Path{"t"}))
}

func TestTable_PageSizeConfigurable(t *testing.T) {
	e := New(Config{PageSize: 5})
	tv := renderTable(t, e, NewStateTree(), Path{"t"}, records(12))
	assert.Equal(t, 3, tv.TotalPages)
	assert.Len(t, tv.Rows, 5)
}

func TestTable_Cells(t *testing.T) {
	e, _ := newTestEngine(t)
	data := core.MustParseJSON(`[{"a": null, "b": {"x": 1}, "c": [1, 2], "d": true}, {"b": "only b"}]`)
	tv := renderTable(t, e, NewStateTree(), Path{"t"}, data)
	assert.Equal(t, []string{"a", "b", "c", "d"}, tv.Columns)
	assert.Equal(t, []string{"", `{"x":1}`, "[1,2]", "true"}, tv.Rows[0])
	assert.Equal(t, []string{"", "only b", "", ""}, tv.Rows[1])
}

func TestTable_NewDataResetsPage(t *testing.T) {
	e, _ := newTestEngine(t)
	tree := NewStateTree()
	path := Path{"t"}

	renderTable(t, e, tree, path, records(30))
	require.True(t, tree.SetPage(path, 3))

	tv := renderTable(t, e, tree, path, records(30))
	assert.Equal(t, 1, tv.Page)
}

func TestDispatch_DataWithIndexIsTable(t *testing.T) {
	e, _ := newTestEngine(t)
	v := e.Dispatch(NewStateTree(), Path{"t"}, &core.PanelDescriptor{Type: core.PanelData, Data: records(3), Index: "step"})
	assert.IsType(t, &TableView{}, v)
}
