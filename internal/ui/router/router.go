// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/runlens/internal/fetch"
	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/report"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	reportFeature "github.com/leapstack-labs/runlens/internal/ui/features/report"
	runsFeature "github.com/leapstack-labs/runlens/internal/ui/features/runs"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/internal/ui/resources"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Deps holds the dependencies shared by the feature routes.
type Deps struct {
	Source       common.RunSource
	Store        core.Store
	StorageDir   string
	Fetcher      fetch.Fetcher
	Registry     *report.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Renderer     *html.Renderer
	PageSize     int
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps, isDev bool) error {
	// Hot reload endpoints for dev mode
	if isDev {
		setupHotReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := runsFeature.SetupRoutes(
		router,
		deps.Source,
		deps.Store,
		deps.StorageDir,
		deps.Renderer,
		deps.Notifier,
		deps.Logger,
	); err != nil {
		return err
	}

	if err := reportFeature.SetupRoutes(router, reportFeature.Config{
		Source:       deps.Source,
		Fetcher:      deps.Fetcher,
		Registry:     deps.Registry,
		SessionStore: deps.SessionStore,
		Notifier:     deps.Notifier,
		Renderer:     deps.Renderer,
		PageSize:     deps.PageSize,
		Logger:       deps.Logger,
	}); err != nil {
		return err
	}

	return nil
}

func setupHotReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/dev/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/dev/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
