package runs

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// SetupRoutes registers the runs feature routes.
func SetupRoutes(
	router chi.Router,
	source common.RunSource,
	store core.Store,
	storageDir string,
	renderer *html.Renderer,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(source, store, storageDir, renderer, notify, logger)

	// Page routes
	router.Get("/", handlers.RunsPage)

	// Data routes
	router.Get("/runs", handlers.RunsJSON)
	router.Get("/data/*", handlers.Data)
	router.Get("/reload", handlers.Reload)
	router.Handle("/artifacts/*", handlers.Artifacts())

	return nil
}
