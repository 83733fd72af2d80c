// Package runs provides the run list, run data and artifact handlers for the UI.
package runs

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// NotesFile is the optional Markdown file in the storage directory shown
// above the run list.
const NotesFile = "README.md"

// Handlers provides HTTP handlers for the runs feature.
type Handlers struct {
	source     common.RunSource
	store      core.Store
	storageDir string
	renderer   *html.Renderer
	notifier   *notifier.Notifier
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(source common.RunSource, store core.Store, storageDir string, renderer *html.Renderer, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:     source,
		store:      store,
		storageDir: storageDir,
		renderer:   renderer,
		notifier:   notify,
		logger:     logger,
	}
}

// RunsPage renders the run list.
func (h *Handlers) RunsPage(w http.ResponseWriter, r *http.Request) {
	page := html.RunsPage{Title: "Runs", Notes: h.readNotes()}

	keys, err := h.source.ListRuns(r.Context())
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		page.Error = err.Error()
	}
	for _, key := range keys {
		page.Runs = append(page.Runs, html.RunItem{Key: key.String(), Href: common.RunHref(key)})
	}

	if err := h.renderer.RunsPage(page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RunsJSON returns {"runs": [...]} with every run key in path form.
func (h *Handlers) RunsJSON(w http.ResponseWriter, r *http.Request) {
	keys, err := h.source.ListRuns(r.Context())
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	runs := make([]string, len(keys))
	for i, key := range keys {
		runs[i] = key.String()
	}
	common.WriteJSON(w, http.StatusOK, map[string][]string{"runs": runs})
}

// Data returns the panel document of the run named by the wildcard.
func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) {
	run := chi.URLParam(r, "*")
	doc, err := h.source.FetchDocument(r.Context(), run)
	switch {
	case errors.Is(err, core.ErrRunNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("failed to build document", "run", run, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	common.WriteJSON(w, http.StatusOK, doc)
}

// Reload ingests rows appended since the last sync and notifies open reports.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Sync(r.Context())
	if err != nil {
		h.logger.Error("failed to sync store", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n > 0 {
		h.notifier.Broadcast(notifier.TopicRuns)
	}
	common.WriteJSON(w, http.StatusOK, map[string]int{"added": n})
}

// Artifacts serves files from the storage directory's artifacts folder.
// Delimited files are served as text/csv so browsers display them.
func (h *Handlers) Artifacts() http.Handler {
	files := http.FileServerFS(os.DirFS(filepath.Join(h.storageDir, "artifacts")))
	return http.StripPrefix("/artifacts/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == ".csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		}
		files.ServeHTTP(w, r)
	}))
}

func (h *Handlers) readNotes() string {
	if h.storageDir == "" {
		return ""
	}
	body, err := os.ReadFile(filepath.Join(h.storageDir, NotesFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("failed to read notes", "error", err)
		}
		return ""
	}
	return string(body)
}
