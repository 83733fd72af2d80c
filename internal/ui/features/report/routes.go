package report

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the report feature routes.
func SetupRoutes(router chi.Router, cfg Config) error {
	handlers := NewHandlers(cfg)

	// Page routes
	router.Get("/view/*", handlers.ReportPage)

	// Event routes, patched back over SSE
	router.Route("/api/reports/{id}", func(r chi.Router) {
		r.Post("/toggle", handlers.Toggle)
		r.Post("/page", handlers.Page)
		r.Post("/scrub", handlers.Scrub)
		r.Post("/visibility", handlers.Visibility)
		r.Get("/stream", handlers.Stream)
	})

	return nil
}
