package panel

import (
	"sync"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// node holds the UI state of one rendered component.
type node struct {
	ident *core.Value // data the state belongs to

	open map[string]bool // tree: key -> expanded

	page  int // table: 1-based
	pages int

	pos   int           // step: scrubber position
	steps []*core.Value // step: sorted distinct discriminator values

	gen     uint64      // file: generation of the outstanding fetch
	loaded  bool        // file: fetch resolved
	records *core.Value // file: parsed rows
}

// StateTree is the UI state of one open report, keyed by structural path.
//
// State under a path is bound to the identity of the data rendered there.
// Rendering different data at a path drops the state of that path and every
// path below it. All methods are safe for concurrent use.
type StateTree struct {
	mu     sync.Mutex
	nodes  map[string]*node
	gens   map[string]uint64 // file generations, kept across rebinds
	hidden map[string]bool   // panel name -> hidden
}

// NewStateTree returns an empty state tree.
func NewStateTree() *StateTree {
	return &StateTree{
		nodes:  make(map[string]*node),
		gens:   make(map[string]uint64),
		hidden: make(map[string]bool),
	}
}

// bind returns the node at key for ident. fresh is true when the node was
// (re)created, which is the component's mount. Nodes are only bound below a
// bound node, so a key without a node has nothing below it to clear.
func (t *StateTree) bind(key string, ident *core.Value) (n *node, fresh bool) {
	if n, ok := t.nodes[key]; ok && n.ident == ident {
		return n, false
	}
	if _, ok := t.nodes[key]; ok {
		t.clear(key)
	}
	n = &node{ident: ident, page: 1}
	t.nodes[key] = n
	return n, true
}

// clear drops the state at key and below.
func (t *StateTree) clear(key string) {
	for k := range t.nodes {
		if within(k, key) {
			delete(t.nodes, k)
		}
	}
}

func (t *StateTree) lookup(p Path) *node {
	return t.nodes[p.String()]
}

// Toggle flips the open flag of the tree entry at entry. It reports false when
// no tree is rendered at the entry's parent.
func (t *StateTree) Toggle(entry Path) bool {
	if len(entry) == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(entry.Parent())
	if n == nil {
		return false
	}
	if n.open == nil {
		n.open = make(map[string]bool)
	}
	key := entry.Last()
	n.open[key] = !n.open[key]
	return true
}

// IsOpen reports the open flag of the tree entry at entry.
func (t *StateTree) IsOpen(entry Path) bool {
	if len(entry) == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(entry.Parent())
	return n != nil && n.open[entry.Last()]
}

// Page returns the current page of the table at p, 1 when unknown.
func (t *StateTree) Page(p Path) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.lookup(p); n != nil {
		return n.page
	}
	return 1
}

// SetPage moves the table at p to page. Pages outside [1, totalPages] are
// ignored and reported as false.
func (t *StateTree) SetPage(p Path, page int) bool {
	return t.movePage(p, func(int) int { return page })
}

// NextPage advances the table at p by one page.
func (t *StateTree) NextPage(p Path) bool {
	return t.movePage(p, func(cur int) int { return cur + 1 })
}

// PrevPage moves the table at p back by one page.
func (t *StateTree) PrevPage(p Path) bool {
	return t.movePage(p, func(cur int) int { return cur - 1 })
}

func (t *StateTree) movePage(p Path, next func(cur int) int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(p)
	if n == nil {
		return false
	}
	page := next(n.page)
	if page < 1 || page > n.pages {
		return false
	}
	n.page = page
	return true
}

// Position returns the scrubber position of the step player at p.
func (t *StateTree) Position(p Path) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.lookup(p); n != nil {
		return n.pos
	}
	return 0
}

// Scrub moves the step player at p to pos. Positions outside the step range
// are ignored and reported as false.
func (t *StateTree) Scrub(p Path, pos int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(p)
	if n == nil || pos < 0 || pos >= len(n.steps) {
		return false
	}
	n.pos = pos
	return true
}

// Visible reports whether the named panel is shown. Panels start visible.
func (t *StateTree) Visible(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.hidden[name]
}

// SetVisible shows or hides the named panel.
func (t *StateTree) SetVisible(name string, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if visible {
		delete(t.hidden, name)
	} else {
		t.hidden[name] = true
	}
}

// ToggleVisible flips the named panel and returns its new visibility.
func (t *StateTree) ToggleVisible(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden[name] {
		delete(t.hidden, name)
		return true
	}
	t.hidden[name] = true
	return false
}

// Generation returns the generation of the latest fetch issued for the file at p.
func (t *StateTree) Generation(p Path) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[p.String()]
}

// ResolveFile applies parsed records to the file slot at p. Results whose
// generation is not the latest issued for p, or whose slot is no longer
// rendered, are discarded and reported as false.
func (t *StateTree) ResolveFile(p Path, gen uint64, records *core.Value) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := p.String()
	if t.gens[key] != gen {
		return false
	}
	n := t.nodes[key]
	if n == nil || n.gen != gen {
		return false
	}
	n.loaded = true
	n.records = records
	return true
}

// nextGen issues a new generation for the file slot at key.
func (t *StateTree) nextGen(key string) uint64 {
	t.gens[key]++
	return t.gens[key]
}
