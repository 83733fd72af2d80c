package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/internal/store"
	"github.com/leapstack-labs/runlens/internal/testutil"
	"github.com/leapstack-labs/runlens/internal/ui/notifier"
	"github.com/leapstack-labs/runlens/internal/viewconfig"
)

func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	dir := testutil.SampleStorage(t)

	st := store.NewSQLiteStore(store.Config{StorageDir: dir, Logger: logger})
	require.NoError(t, st.Open(":memory:"))
	require.NoError(t, st.Migrate())
	t.Cleanup(func() { _ = st.Close() })
	_, err := st.Sync(context.Background())
	require.NoError(t, err)

	srv := NewServer(Config{
		Source:        viewconfig.NewSource(st, "", logger),
		Store:         st,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	})
	return srv, dir
}

func TestServer_Routes(t *testing.T) {
	srv, _ := setupTestServer(t)
	h, err := srv.Handler()
	require.NoError(t, err)

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/runs", http.StatusOK},
		{"/data/alpha", http.StatusOK},
		{"/view/alpha", http.StatusOK},
		{"/artifacts/alpha/preds.csv", http.StatusOK},
		{"/static/favicon.svg", http.StatusOK},
		{"/dev/reload", http.StatusNotFound},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, 1, srv.Registry().Len())
}

func TestServer_WatchIngestsAppendedRows(t *testing.T) {
	srv, dir := setupTestServer(t)
	sub := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.watchFiles(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Let the watcher register the storage directory.
	time.Sleep(50 * time.Millisecond)
	testutil.AppendRunLog(t, filepath.Join(dir, "runs.jsonl"), `{"run_id": "gamma", "step": 0, "loss": 4.0}`)

	select {
	case <-sub.C:
		assert.Equal(t, []string{notifier.TopicRuns}, sub.Drain())
	case <-time.After(2 * time.Second):
		t.Fatal("appended rows were not ingested")
	}

	runs, err := srv.source.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestServer_WatchIgnoresArtifacts(t *testing.T) {
	srv, dir := setupTestServer(t)
	sub := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.watchFiles(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(50 * time.Millisecond)
	testutil.WriteArtifact(t, dir, "alpha/extra.jsonl", `{"run_id": "delta"}`)

	select {
	case <-sub.C:
		t.Fatal("artifact writes must not trigger a sync")
	case <-time.After(300 * time.Millisecond):
	}
}
