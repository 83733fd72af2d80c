package viewconfig

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Source builds run documents from a store. The view config file is re-read
// on every request so edits show up on the next refetch. Without a file the
// view is derived from the logged rows.
type Source struct {
	store  core.Store
	path   string
	logger *slog.Logger
}

var _ core.DocumentSource = (*Source)(nil)

// NewSource creates a Source. An empty path selects the derived default view.
func NewSource(store core.Store, path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{store: store, path: path, logger: logger}
}

// Config returns the active view config.
func (s *Source) Config(ctx context.Context) (*Config, error) {
	if s.path != "" {
		return Load(s.path)
	}
	rows, err := s.store.Rows(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive view config: %w", err)
	}
	return Default(rows), nil
}

// ListRuns returns the run keys of the active view's index.
func (s *Source) ListRuns(ctx context.Context) ([]core.RunKey, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListRuns(ctx, cfg.Index)
}

// FetchDocument builds the document for run, given in its path form.
func (s *Source) FetchDocument(ctx context.Context, run string) (*core.Document, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	key := core.ParseRunKey(run)
	if len(key) != len(cfg.Index) {
		return nil, fmt.Errorf("%w: %q does not match index %v", core.ErrRunNotFound, run, []string(cfg.Index))
	}
	filter := make(map[string]string, len(key))
	for i, field := range cfg.Index {
		filter[field] = key[i]
	}

	rows, err := s.store.Rows(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, run)
	}

	doc := Build(rows, cfg)
	s.logger.Debug("built run document", "run", run, "rows", len(rows), "panels", doc.Len())
	return doc, nil
}
