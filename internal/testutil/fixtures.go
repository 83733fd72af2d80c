package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleRows is a small two-run log: scalar metrics, a nested config, a CSV
// artifact reference and step-indexed samples.
var SampleRows = []string{
	`{"run_id": "alpha", "step": 0, "timestamp": 100, "loss": 2.0, "config": {"lr": 0.1, "model": {"layers": 2}}}`,
	`{"run_id": "alpha", "step": 1, "timestamp": 101, "loss": 1.5, "table": {"path": "artifacts/alpha/preds.csv", "filename": "preds.csv"}}`,
	`{"run_id": "alpha", "step": 2, "timestamp": 102, "loss": NaN, "sample": {"text": "hello"}}`,
	`{"run_id": "beta", "step": 0, "timestamp": 200, "loss": 3.0, "config": {"lr": 0.01}}`,
}

// WriteRunLog writes rows as a JSONL file under dir and returns its path.
func WriteRunLog(t testing.TB, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// AppendRunLog appends rows to an existing JSONL file.
func AppendRunLog(t testing.TB, path string, rows ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(strings.Join(rows, "\n") + "\n"); err != nil {
		t.Fatalf("failed to append to %s: %v", path, err)
	}
}

// WriteArtifact writes an artifact file under dir/artifacts.
func WriteArtifact(t testing.TB, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, "artifacts", filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create artifact dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write artifact %s: %v", rel, err)
	}
}

// SampleStorage creates a storage directory with SampleRows and the CSV
// artifact they reference.
func SampleStorage(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteRunLog(t, dir, "runs.jsonl", SampleRows...)
	WriteArtifact(t, dir, "alpha/preds.csv", "id,pred\n1,0.9\n2,cat\n")
	return dir
}
