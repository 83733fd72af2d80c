package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/fetch"
	"github.com/leapstack-labs/runlens/internal/report"
	"github.com/leapstack-labs/runlens/internal/store"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	"github.com/leapstack-labs/runlens/internal/viewconfig"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Source lists runs and builds their documents
	Source common.RunSource
	// Store is the local run index, nil when reading from a remote origin
	Store   *store.SQLiteStore
	Fetcher fetch.Fetcher
	// Origin prefixes artifact URLs in rendered file views
	Origin string
	Out    io.Writer
}

// NewCommandContext creates a CommandContext over the local store, or over the
// configured remote origin. Returns the context and a cleanup function that
// must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	cc := &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Out:    cmd.OutOrStdout(),
	}

	if cfg.Fetch.Remote() {
		cc.Source = fetch.NewHTTPSource(cfg.Fetch.Origin, cfg.Fetch.Timeout)
		cc.Fetcher = fetch.NewHTTPFetcher(cfg.Fetch.Origin, cfg.Fetch.Timeout)
		cc.Origin = cfg.Fetch.Origin
		return cc, func() {}, nil
	}

	st, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Store = st
	cc.Source = viewconfig.NewSource(st, cfg.ActiveViewConfig(), logger)
	cc.Fetcher = fetch.DirFetcher{Root: cfg.StorageDir}
	cc.Origin = "file://" + filepath.ToSlash(cfg.StorageDir)

	cleanup := func() {
		_ = st.Close()
	}
	return cc, cleanup, nil
}

// OpenReport creates and loads a report for run.
func (c *CommandContext) OpenReport(ctx context.Context, run string, onUpdate func(string)) (*report.Report, error) {
	rep := report.New(report.Config{
		ID:       uuid.NewString(),
		Run:      run,
		Source:   c.Source,
		Fetcher:  c.Fetcher,
		PageSize: c.Cfg.GetUIConfig().PageSize,
		Origin:   c.Origin,
		OnUpdate: onUpdate,
		Logger:   c.Logger,
	})
	if err := rep.Load(ctx); err != nil {
		return nil, err
	}
	return rep, nil
}

// Mode resolves the auto output mode: text on a terminal, markdown otherwise.
func (c *CommandContext) Mode() string {
	mode := c.Cfg.OutputFormat
	if mode == "" || mode == config.OutputAuto {
		if isTerminal(c.Out) {
			return config.OutputText
		}
		return config.OutputMarkdown
	}
	return mode
}

// Styled reports whether ANSI styling should be emitted.
func (c *CommandContext) Styled() bool {
	return isTerminal(c.Out)
}

// Helper functions shared across commands

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StorageDir:   config.DefaultStorageDir,
		ViewConfig:   config.DefaultViewConfig,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
	}
}

// openStore opens the run index and ingests any new rows.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, err
	}

	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	st := store.NewSQLiteStore(store.Config{
		StorageDir: cfg.StorageDir,
		Pattern:    cfg.Pattern,
		Logger:     logger,
	})
	if err := st.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, err
	}
	n, err := st.Sync(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Debug("store synced", "rows", n, "storage", cfg.StorageDir)
	return st, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
