// Package report provides the run report page and its datastar event
// endpoints: every interaction mutates the report's state tree and patches
// the affected panel back into the page.
package report

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/runlens/internal/fetch"
	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/report"
	"github.com/leapstack-labs/runlens/internal/ui/features/common"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Config holds the dependencies of the report handlers.
type Config struct {
	Source       core.DocumentSource
	Fetcher      fetch.Fetcher
	Registry     *report.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Renderer     *html.Renderer
	PageSize     int
	Logger       *slog.Logger
}

// Handlers provides HTTP handlers for the report feature.
type Handlers struct {
	source       core.DocumentSource
	fetcher      fetch.Fetcher
	registry     *report.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	renderer     *html.Renderer
	pageSize     int
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:       cfg.Source,
		fetcher:      cfg.Fetcher,
		registry:     cfg.Registry,
		sessionStore: cfg.SessionStore,
		notifier:     cfg.Notifier,
		renderer:     cfg.Renderer,
		pageSize:     cfg.PageSize,
		logger:       logger,
	}
}

// ReportPage opens a fresh report of the run named by the wildcard and
// renders it in full. Every page load starts from default state.
func (h *Handlers) ReportPage(w http.ResponseWriter, r *http.Request) {
	run := chi.URLParam(r, "*")
	viewer, err := common.ViewerID(h.sessionStore, w, r, true)
	if err != nil {
		h.logger.Error("failed to establish viewer", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	rep := report.New(report.Config{
		ID:       id,
		Run:      run,
		Source:   h.source,
		Fetcher:  h.fetcher,
		PageSize: h.pageSize,
		OnUpdate: func(panelName string) {
			h.notifier.Broadcast(notifier.ReportTopic(id, panelName))
		},
		Logger: h.logger,
	})

	page := html.ReportPage{Title: run, Run: run}
	if err := rep.Load(r.Context()); err != nil {
		page.Error = err.Error()
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		if err := h.renderer.ReportPage(page).Render(r.Context(), w); err != nil {
			h.logger.Error("failed to render report page", "error", err)
		}
		return
	}

	h.registry.Add(viewer, rep)
	page.ReportID = id
	page.Panels = rep.Views()
	if err := h.renderer.ReportPage(page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Toggle opens or closes the tree entry at ?path.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	rep, path, ok := h.lookup(w, r, 2)
	if !ok {
		return
	}
	rep.Toggle(path)
	h.patchPanel(w, r, rep, path[0])
}

// Page moves the table at ?path in direction ?dir (next or prev).
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	rep, path, ok := h.lookup(w, r, 1)
	if !ok {
		return
	}
	switch r.URL.Query().Get("dir") {
	case "next":
		rep.NextPage(path)
	case "prev":
		rep.PrevPage(path)
	default:
		http.Error(w, "dir must be next or prev", http.StatusBadRequest)
		return
	}
	h.patchPanel(w, r, rep, path[0])
}

// Scrub moves the step player at ?path to position ?pos.
func (h *Handlers) Scrub(w http.ResponseWriter, r *http.Request) {
	rep, path, ok := h.lookup(w, r, 1)
	if !ok {
		return
	}
	pos, err := strconv.Atoi(r.URL.Query().Get("pos"))
	if err != nil {
		http.Error(w, "pos must be an integer", http.StatusBadRequest)
		return
	}
	rep.Scrub(path, pos)
	h.patchPanel(w, r, rep, path[0])
}

// Visibility shows or hides the panel at ?path.
func (h *Handlers) Visibility(w http.ResponseWriter, r *http.Request) {
	rep, path, ok := h.lookup(w, r, 1)
	if !ok {
		return
	}
	rep.ToggleVisible(path[0])
	h.patchPanel(w, r, rep, path[0])
}

// Stream is the long-lived SSE endpoint of an open report. It re-renders a
// panel when one of its delimited files resolves, and refetches the whole
// document when new rows were ingested.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	sub := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(sub)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.C:
			for _, topic := range sub.Drain() {
				if topic == notifier.TopicRuns {
					h.sendAll(sse, r, rep)
					continue
				}
				if name, ok := notifier.ReportPanel(topic, rep.ID()); ok {
					h.sendPanel(sse, rep, name)
				}
			}
		}
	}
}

// report resolves the {id} route parameter to a report of the requesting viewer.
func (h *Handlers) report(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	viewer, err := common.ViewerID(h.sessionStore, w, r, false)
	if err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return nil, false
	}
	rep, ok := h.registry.Get(viewer, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "report not found", http.StatusNotFound)
		return nil, false
	}
	return rep, true
}

// lookup resolves the report and the ?path parameter, which must have at
// least minLen segments.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request, minLen int) (*report.Report, panel.Path, bool) {
	rep, ok := h.report(w, r)
	if !ok {
		return nil, nil, false
	}
	path := panel.ParsePath(r.URL.Query().Get("path"))
	if len(path) < minLen {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return nil, nil, false
	}
	return rep, path, true
}

func (h *Handlers) patchPanel(w http.ResponseWriter, r *http.Request, rep *report.Report, name string) {
	sse := datastar.NewSSE(w, r)
	h.sendPanel(sse, rep, name)
}

func (h *Handlers) sendPanel(sse *datastar.ServerSentEventGenerator, rep *report.Report, name string) {
	pv, err := rep.Panel(name)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(h.renderer.Panel(rep.ID(), pv)); err != nil {
		h.logger.Error("failed to patch panel", "panel", name, "error", err)
	}
}

func (h *Handlers) sendAll(sse *datastar.ServerSentEventGenerator, r *http.Request, rep *report.Report) {
	if err := rep.Load(r.Context()); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(h.renderer.Panels(rep.ID(), rep.Views())); err != nil {
		h.logger.Error("failed to patch panels", "error", err)
	}
}
