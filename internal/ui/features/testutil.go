// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/render/html"
	"github.com/leapstack-labs/runlens/internal/report"
	"github.com/leapstack-labs/runlens/internal/store"
	"github.com/leapstack-labs/runlens/internal/testutil"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/internal/viewconfig"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	StorageDir   string
	Store        *store.SQLiteStore
	Source       *viewconfig.Source
	Registry     *report.Registry
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Renderer     *html.Renderer
}

// SetupTestFixture creates a storage directory with testutil.SampleRows, an
// in-memory store synced from it, and a source using the default view.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	dir := testutil.SampleStorage(t)

	st := store.NewSQLiteStore(store.Config{StorageDir: dir, Logger: logger})
	require.NoError(t, st.Open(":memory:"))
	require.NoError(t, st.Migrate())
	t.Cleanup(func() {
		_ = st.Close()
	})

	_, err := st.Sync(context.Background())
	require.NoError(t, err)

	return &TestFixture{
		StorageDir:   dir,
		Store:        st,
		Source:       viewconfig.NewSource(st, "", logger),
		Registry:     report.NewRegistry(0),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Renderer:     html.MustNew(),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	// Note: caller should handle cleanup, but for tests the timeout will trigger
	_ = cancel // suppress lint warning, context will be cancelled by timeout
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
