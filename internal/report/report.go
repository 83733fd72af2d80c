// Package report holds the state of one open run report: the current
// document, its state tree and the loader resolving delimited files into it.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/runlens/internal/fetch"
	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Config holds report configuration.
type Config struct {
	ID     string
	Run    string
	Source core.DocumentSource
	// Fetcher retrieves delimited artifact files (optional, they stay loading if nil)
	Fetcher fetch.Fetcher
	// PageSize is the number of table records per page (default panel.DefaultPageSize)
	PageSize int
	// Origin prefixes artifact URLs in file views
	Origin string
	// OnUpdate is called with the panel name when a file result changes its rendering
	OnUpdate func(panelName string)
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Report is one open detail view of a run. All methods are safe for
// concurrent use; user events and file completions are serialised by the
// state tree.
type Report struct {
	id       string
	run      string
	source   core.DocumentSource
	engine   *panel.Engine
	tree     *panel.StateTree
	loader   *fetch.Loader
	onUpdate func(string)
	logger   *slog.Logger

	mu  sync.RWMutex
	doc *core.Document
	gen uint64 // latest issued document fetch
}

// New creates a report with a fresh state tree. Call Load to fetch the document.
func New(cfg Config) *Report {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("report", cfg.ID, "run", cfg.Run)

	r := &Report{
		id:       cfg.ID,
		run:      cfg.Run,
		source:   cfg.Source,
		tree:     panel.NewStateTree(),
		onUpdate: cfg.OnUpdate,
		logger:   logger,
	}

	var requester panel.Requester
	if cfg.Fetcher != nil {
		r.loader = fetch.NewLoader(fetch.LoaderConfig{
			Fetcher:  cfg.Fetcher,
			Tree:     r.tree,
			OnUpdate: r.fileLoaded,
			Logger:   logger,
		})
		requester = r.loader
	}
	r.engine = panel.New(panel.Config{
		PageSize:  cfg.PageSize,
		Origin:    cfg.Origin,
		Requester: requester,
		Logger:    logger,
	})
	return r
}

// ID returns the report ID.
func (r *Report) ID() string { return r.id }

// Run returns the run key in path form.
func (r *Report) Run() string { return r.run }

// Load fetches the run's document. On failure the previous document is kept.
// Panels whose descriptor did not change keep their state. A result that
// arrives after a newer Load was issued is dropped.
func (r *Report) Load(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	doc, err := r.source.FetchDocument(ctx, r.run)
	if err != nil {
		r.logger.Error("failed to fetch document", "error", err)
		return fmt.Errorf("failed to load run %s: %w", r.run, err)
	}

	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		r.logger.Debug("dropping stale document", "gen", gen)
		return nil
	}
	r.doc = panel.Reconcile(r.doc, doc)
	r.mu.Unlock()
	r.logger.Debug("document loaded", "panels", doc.Len(), "gen", gen)
	return nil
}

// Document returns the current document, nil before the first Load.
func (r *Report) Document() *core.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc
}

// Views renders every panel.
func (r *Report) Views() []*panel.PanelView {
	return r.engine.Document(r.tree, r.Document())
}

// Panel renders the named panel.
func (r *Report) Panel(name string) (*panel.PanelView, error) {
	desc, ok := r.Document().Panel(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrPanelNotFound, name)
	}
	return r.engine.Panel(r.tree, name, desc), nil
}

// Toggle flips the tree entry at path.
func (r *Report) Toggle(path panel.Path) bool {
	return r.tree.Toggle(path)
}

// NextPage advances the table at path.
func (r *Report) NextPage(path panel.Path) bool {
	return r.tree.NextPage(path)
}

// PrevPage moves the table at path back.
func (r *Report) PrevPage(path panel.Path) bool {
	return r.tree.PrevPage(path)
}

// Scrub moves the step player at path to pos.
func (r *Report) Scrub(path panel.Path, pos int) bool {
	return r.tree.Scrub(path, pos)
}

// Position returns the step player's current position at path.
func (r *Report) Position(path panel.Path) int {
	return r.tree.Position(path)
}

// ToggleVisible shows or hides the named panel and reports the new visibility.
func (r *Report) ToggleVisible(name string) bool {
	return r.tree.ToggleVisible(name)
}

// Wait blocks until all file fetches issued so far have completed.
func (r *Report) Wait() {
	if r.loader != nil {
		r.loader.Wait()
	}
}

func (r *Report) fileLoaded(p panel.Path) {
	if r.onUpdate != nil && len(p) > 0 {
		r.onUpdate(p[0])
	}
}
