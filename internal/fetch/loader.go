package fetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/runlens/internal/delimited"
	"github.com/leapstack-labs/runlens/internal/panel"
)

// Loader fetches and parses delimited files requested by the panel engine and
// resolves them into a report's state tree. It implements panel.Requester.
//
// Every request runs on its own goroutine. Nothing is coalesced or cancelled;
// results of superseded requests are dropped by the state tree.
type Loader struct {
	fetcher  Fetcher
	tree     *panel.StateTree
	onUpdate func(panel.Path)
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// LoaderConfig holds loader configuration.
type LoaderConfig struct {
	Fetcher Fetcher
	Tree    *panel.StateTree
	// OnUpdate is called after a result is applied (optional)
	OnUpdate func(panel.Path)
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fetcher:  cfg.Fetcher,
		tree:     cfg.Tree,
		onUpdate: cfg.OnUpdate,
		logger:   logger,
	}
}

// Request implements panel.Requester.
func (l *Loader) Request(req panel.FileRequest) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.load(req)
	}()
}

func (l *Loader) load(req panel.FileRequest) {
	log := l.logger.With("path", req.Path.String(), "file", req.Ref.Path, "gen", req.Gen)

	body, err := l.fetcher.Fetch(context.Background(), req.Ref.Path)
	if err != nil {
		log.Error("failed to fetch delimited file", "error", err)
		return
	}
	records, err := delimited.Parse(string(body))
	if err != nil {
		log.Error("failed to parse delimited file", "error", err)
		return
	}
	if !l.tree.ResolveFile(req.Path, req.Gen, records) {
		log.Debug("discarding stale file result")
		return
	}
	log.Debug("file loaded", "records", records.Len())
	if l.onUpdate != nil {
		l.onUpdate(req.Path)
	}
}

// Wait blocks until every request issued so far has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
