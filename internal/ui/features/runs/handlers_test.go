package runs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/testutil"
	"github.com/leapstack-labs/runlens/internal/ui/features"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestRouter(t *testing.T) (http.Handler, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	router := chi.NewRouter()
	require.NoError(t, SetupRoutes(
		router,
		fixture.Source,
		fixture.Store,
		fixture.StorageDir,
		fixture.Renderer,
		fixture.Notifier,
		testutil.NewTestLogger(t),
	))
	return router, fixture
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// RunsPage Tests
// =============================================================================

func TestRunsPage(t *testing.T) {
	h, fixture := setupTestRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(fixture.StorageDir, NotesFile), []byte("# Sweep\n\nLearning rate sweep."), 0o644))

	rec := get(t, h, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Runs - runlens</title>",
		`href="/view/alpha"`,
		`href="/view/beta"`,
		"<h1>Sweep</h1>",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
}

// =============================================================================
// Data Endpoint Tests
// =============================================================================

func TestRunsJSON(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec := get(t, h, "/runs")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs": ["alpha", "beta"]}`, rec.Body.String())
}

func TestData(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "known run",
			target:     "/data/alpha",
			wantStatus: http.StatusOK,
			wantBody:   []string{`"Summary"`, `"type":"lineplot"`, `"index":"step"`},
		},
		{
			name:       "unknown run",
			target:     "/data/gamma",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "key longer than index",
			target:     "/data/alpha/extra",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestRouter(t)
			rec := get(t, h, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestReload(t *testing.T) {
	h, fixture := setupTestRouter(t)
	sub := fixture.Notifier.Subscribe()
	defer fixture.Notifier.Unsubscribe(sub)

	rec := get(t, h, "/reload")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added": 0}`, rec.Body.String())

	testutil.AppendRunLog(t, filepath.Join(fixture.StorageDir, "runs.jsonl"),
		`{"run_id": "gamma", "step": 0, "loss": 4.0}`)

	rec = get(t, h, "/reload")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added": 1}`, rec.Body.String())

	select {
	case <-sub.C:
		assert.Contains(t, sub.Drain(), "runs")
	default:
		t.Error("reload with new rows should notify")
	}

	rec = get(t, h, "/runs")
	assert.JSONEq(t, `{"runs": ["alpha", "beta", "gamma"]}`, rec.Body.String())
}

// =============================================================================
// Artifact Tests
// =============================================================================

func TestArtifacts(t *testing.T) {
	h, fixture := setupTestRouter(t)
	testutil.WriteArtifact(t, fixture.StorageDir, "alpha/notes.txt", "hello")

	rec := get(t, h, "/artifacts/alpha/preds.csv")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "id,pred\n1,0.9\n2,cat\n", rec.Body.String())

	rec = get(t, h, "/artifacts/alpha/notes.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = get(t, h, "/artifacts/alpha/missing.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
