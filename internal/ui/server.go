// Package ui provides the web report viewer for logged runs.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/runlens/internal/fetch"
	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/report"
	"github.com/leapstack-labs/runlens/internal/store"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/internal/ui/router"
)

// evictInterval is how often idle reports are swept.
const evictInterval = time.Minute

// Server is the main UI server.
type Server struct {
	source       common.RunSource
	store        *store.SQLiteStore
	storageDir   string
	sessionStore *sessions.CookieStore
	registry     *report.Registry
	renderer     *html.Renderer
	port         int
	watch        bool
	dev          bool
	pageSize     int
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Source        common.RunSource
	Store         *store.SQLiteStore
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	ReportTTL     time.Duration
	PageSize      int
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		source:       cfg.Source,
		store:        cfg.Store,
		storageDir:   cfg.Store.StorageDir(),
		sessionStore: sessionStore,
		registry:     report.NewRegistry(cfg.ReportTTL),
		renderer:     html.MustNew(),
		port:         cfg.Port,
		watch:        cfg.Watch,
		dev:          cfg.Dev,
		pageSize:     cfg.PageSize,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Source:       s.source,
		Store:        s.store,
		StorageDir:   s.storageDir,
		Fetcher:      fetch.DirFetcher{Root: s.storageDir},
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Renderer:     s.renderer,
		PageSize:     s.pageSize,
		Logger:       s.logger,
	}
	if err := router.SetupRoutes(r, deps, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "storage", s.storageDir)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start log watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	// Evict idle reports
	eg.Go(func() error {
		return s.registry.Run(egctx, evictInterval)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Registry returns the open reports.
func (s *Server) Registry() *report.Registry {
	return s.registry
}

// watchFiles ingests log files as they are written and notifies open reports.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.storageDir); err != nil {
		s.logger.Error("failed to watch storage directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watchDirRecursive(watcher, event.Name); err != nil {
					s.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
				}
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			rel, err := filepath.Rel(s.storageDir, event.Name)
			if err != nil || !s.store.Matches(rel) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("log changed, syncing", "file", rel)
				s.syncAndNotify(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// syncAndNotify ingests new rows and pings open reports when any arrived.
func (s *Server) syncAndNotify(ctx context.Context) {
	n, err := s.store.Sync(ctx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
		return
	}
	if n > 0 {
		s.notifier.Broadcast(notifier.TopicRuns)
	}
}

// watchDirRecursive adds a directory and all subdirectories except the
// artifacts folder to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == "artifacts" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
