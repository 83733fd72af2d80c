// Package panel turns run artifact data into view trees.
//
// An Engine classifies each panel descriptor, recurses through nested
// mappings, pages, charts and scrubs through sequences, and keeps per-node UI
// state in an externally owned StateTree. Rendering is synchronous; the only
// asynchronous work is the fetch of delimited files, which the Engine hands to
// a Requester and which comes back through StateTree.ResolveFile.
package panel

import (
	"log/slog"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Default limits.
const (
	DefaultPageSize = 10
	DefaultMaxDepth = 64
)

// FileRequest asks for the delimited file at URL to be fetched, parsed and
// resolved into the slot at Path with generation Gen.
type FileRequest struct {
	Path Path
	Gen  uint64
	Ref  core.FileReference
	URL  string
}

// Requester starts file fetches. Request must not block.
type Requester interface {
	Request(req FileRequest)
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(req FileRequest)

// Request calls f(req).
func (f RequesterFunc) Request(req FileRequest) { f(req) }

// Config holds engine configuration.
type Config struct {
	// PageSize is the number of records per table page (default 10)
	PageSize int
	// MaxDepth bounds recursion; deeper values render as a dump (default 64)
	MaxDepth int
	// Origin is prefixed to file paths to build URLs; empty means server-relative
	Origin string
	// Requester starts delimited file fetches (optional, files stay loading if nil)
	Requester Requester
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine renders descriptors into views.
type Engine struct {
	pageSize  int
	maxDepth  int
	origin    string
	requester Requester
	logger    *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		pageSize:  cfg.PageSize,
		maxDepth:  cfg.MaxDepth,
		origin:    cfg.Origin,
		requester: cfg.Requester,
		logger:    logger,
	}
	if e.pageSize <= 0 {
		e.pageSize = DefaultPageSize
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	return e
}

// PageSize returns the configured table page size.
func (e *Engine) PageSize() int { return e.pageSize }

// pass is one render over a locked state tree. File requests are collected
// and issued after the lock is released.
type pass struct {
	e        *Engine
	state    *StateTree
	requests []FileRequest
}

func (e *Engine) run(tree *StateTree, fn func(p *pass) View) View {
	p := &pass{e: e, state: tree}
	tree.mu.Lock()
	v := fn(p)
	tree.mu.Unlock()

	for _, req := range p.requests {
		if e.requester == nil {
			e.logger.Debug("no requester, file stays loading", "path", req.Path.String(), "url", req.URL)
			continue
		}
		e.logger.Debug("requesting file", "path", req.Path.String(), "url", req.URL, "gen", req.Gen)
		e.requester.Request(req)
	}
	return v
}

// Document renders one panel per document entry, in document order.
func (e *Engine) Document(tree *StateTree, doc *core.Document) []*PanelView {
	views := make([]*PanelView, 0, doc.Len())
	for _, name := range doc.Names() {
		desc, _ := doc.Panel(name)
		views = append(views, e.Panel(tree, name, desc))
	}
	return views
}

// Panel renders the named panel. The panel owns only its visibility; when
// shown its body is the dispatch of desc at path /name.
func (e *Engine) Panel(tree *StateTree, name string, desc *core.PanelDescriptor) *PanelView {
	v := e.run(tree, func(p *pass) View {
		pv := &PanelView{Path: Path{name}, Name: name, Visible: !tree.hidden[name]}
		if pv.Visible {
			pv.Body = p.dispatch(pv.Path, desc, 0, false)
		}
		return pv
	})
	return v.(*PanelView)
}

// Dispatch renders desc at path. It never fails; unknown shapes render as a
// structural dump.
func (e *Engine) Dispatch(tree *StateTree, path Path, desc *core.PanelDescriptor) View {
	return e.run(tree, func(p *pass) View {
		return p.dispatch(path, desc, 0, false)
	})
}

// Tree renders a mapping as a key/value tree.
func (e *Engine) Tree(tree *StateTree, path Path, data *core.Value, forceExpandAll bool) View {
	return e.run(tree, func(p *pass) View {
		if !data.IsMap() {
			return p.raw(path, data)
		}
		return p.tree(path, data, 0, forceExpandAll)
	})
}

// Table renders a page of a record sequence.
func (e *Engine) Table(tree *StateTree, path Path, data *core.Value) View {
	return e.run(tree, func(p *pass) View {
		return p.table(path, data)
	})
}

// Chart renders a record sequence against index.
func (e *Engine) Chart(path Path, data *core.Value, index string) View {
	return chart(path, data, index)
}

// File renders a file reference.
func (e *Engine) File(tree *StateTree, path Path, ref *core.Value) View {
	return e.run(tree, func(p *pass) View {
		if !core.IsFileReference(ref) {
			return p.raw(path, ref)
		}
		return p.file(path, ref, 0)
	})
}

// Step renders a step player over data partitioned by slider.
func (e *Engine) Step(tree *StateTree, path Path, data *core.Value, slider string, typ core.PanelType, index string) View {
	return e.run(tree, func(p *pass) View {
		return p.step(path, &core.PanelDescriptor{Type: typ, Data: data, Index: index, Slider: slider}, 0)
	})
}

// dispatch routes desc to its renderer.
func (p *pass) dispatch(path Path, desc *core.PanelDescriptor, depth int, force bool) View {
	if desc == nil {
		return p.raw(path, nil)
	}
	if depth > p.e.maxDepth {
		return p.raw(path, desc.Data)
	}

	switch Classify(desc) {
	case RenderStep:
		return p.step(path, desc, depth)
	case RenderChart:
		return chart(path, desc.Data, desc.Index)
	case RenderTable:
		return p.table(path, desc.Data)
	case RenderTree:
		return p.tree(path, desc.Data, depth, force)
	case RenderFile:
		return p.file(path, desc.Data, depth)
	default:
		return p.raw(path, desc.Data)
	}
}

func (p *pass) raw(path Path, data *core.Value) View {
	return &RawView{Path: path, Text: Dump(data)}
}
