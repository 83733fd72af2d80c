package panel

import "github.com/leapstack-labs/runlens/pkg/core"

// View is one node of a rendered report. The set of implementations is closed:
// *RawView, *TreeView, *TableView, *ChartView, *FileView, *StepView and *PanelView.
type View interface {
	NodePath() Path
	view()
}

// RawView is the structural dump, a pretty-printed literal of the data.
type RawView struct {
	Path Path
	Text string
}

// EntryKind says how a tree entry renders.
type EntryKind int

const (
	// EntryLeaf renders key and value inline.
	EntryLeaf EntryKind = iota
	// EntryTree is a toggle over a nested mapping.
	EntryTree
	// EntryFile is a toggle over a file reference.
	EntryFile
)

// TreeView is one level of a key/value tree.
type TreeView struct {
	Path    Path
	Depth   int
	Entries []TreeEntry
}

// TreeEntry is a single key of a TreeView. Path addresses the entry's toggle.
type TreeEntry struct {
	Key   string
	Path  Path
	Kind  EntryKind
	Text  string // leaf text
	Open  bool
	Child View // set for open toggles
}

// TableView is one page of a record grid.
type TableView struct {
	Path       Path
	Columns    []string
	Rows       [][]string
	Page       int // 1-based
	TotalPages int
	PageSize   int
	Total      int // records in the whole sequence
	Start, End int // record range [Start, End) shown on this page
	HasPrev    bool
	HasNext    bool
}

// ChartView is a multi-series line chart over an independent field.
type ChartView struct {
	Path   Path
	Index  string
	X      []string // independent values in data order
	Series []Series
}

// Series is one plotted field.
type Series struct {
	Name   string
	Color  string
	Points []Point
}

// Point is a y value. Valid is false for missing or non-numeric values.
type Point struct {
	Y     float64
	Valid bool
}

// FileClass is the presentation chosen for a file reference.
type FileClass string

// File classes.
const (
	FileImage     FileClass = "image"
	FileAudio     FileClass = "audio"
	FileVideo     FileClass = "video"
	FileText      FileClass = "text"
	FileDelimited FileClass = "delimited"
	FileDownload  FileClass = "download"
)

// FileView presents a file reference.
type FileView struct {
	Path    Path
	Ref     core.FileReference
	Class   FileClass
	URL     string
	MIME    string     // audio and video only
	Loading bool       // delimited only, until the fetch resolves
	Table   *TableView // delimited only, once loaded
}

// StepView is a scrubber over the distinct discriminator values of a sequence.
type StepView struct {
	Path     Path
	Slider   string
	Steps    []string
	Position int
	Selected string
	Children []View // one per record matching the selected step
}

// PanelView is a named, show/hide-toggleable top-level panel.
type PanelView struct {
	Path    Path
	Name    string
	Visible bool
	Body    View // nil when hidden
}

func (v *RawView) NodePath() Path   { return v.Path }
func (v *TreeView) NodePath() Path  { return v.Path }
func (v *TableView) NodePath() Path { return v.Path }
func (v *ChartView) NodePath() Path { return v.Path }
func (v *FileView) NodePath() Path  { return v.Path }
func (v *StepView) NodePath() Path  { return v.Path }
func (v *PanelView) NodePath() Path { return v.Path }

func (*RawView) view()   {}
func (*TreeView) view()  {}
func (*TableView) view() {}
func (*ChartView) view() {}
func (*FileView) view()  {}
func (*StepView) view()  {}
func (*PanelView) view() {}
