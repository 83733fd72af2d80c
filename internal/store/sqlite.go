// Package store indexes logged JSONL rows in SQLite and serves them by run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/runlens/pkg/core"

	_ "modernc.org/sqlite"
)

// DefaultPattern selects the log files ingested from the storage directory.
const DefaultPattern = "**/*.jsonl"

// Config holds store configuration.
type Config struct {
	// StorageDir holds the JSONL logs and the artifacts directory
	StorageDir string
	// Pattern is a doublestar glob relative to StorageDir (default "**/*.jsonl")
	Pattern string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// SQLiteStore implements core.Store over a SQLite index of the storage directory.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	dir     string
	pattern string
	logger  *slog.Logger
	syncMu  sync.Mutex
}

var _ core.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store. Call Open and Migrate before use.
func NewSQLiteStore(cfg Config) *SQLiteStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &SQLiteStore{dir: cfg.StorageDir, pattern: pattern, logger: logger}
}

// NewWithDB creates a store over an existing connection.
func NewWithDB(db *sql.DB, cfg Config) *SQLiteStore {
	s := NewSQLiteStore(cfg)
	s.db = db
	return s
}

// Open opens the index database. Use ":memory:" for an in-memory index.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StorageDir returns the directory the store ingests from.
func (s *SQLiteStore) StorageDir() string { return s.dir }

// ListRuns returns the distinct tuples of the index columns in first-seen
// order. Rows missing any index column are ignored.
func (s *SQLiteStore) ListRuns(ctx context.Context, index []string) ([]core.RunKey, error) {
	if s.db == nil {
		return nil, fmt.Errorf("list runs: %w", core.ErrNotOpen)
	}

	if len(index) == 0 {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_rows`).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
		return []core.RunKey{{}}, nil
	}

	cols := make([]string, len(index))
	conds := make([]string, len(index))
	args := make([]any, len(index))
	for i, name := range index {
		cols[i] = fmt.Sprintf("CAST(json_extract(payload, ?) AS TEXT) AS k%d", i)
		conds[i] = fmt.Sprintf("k%d IS NOT NULL", i)
		args[i] = jsonPath(name)
	}
	keys := make([]string, len(index))
	for i := range index {
		keys[i] = fmt.Sprintf("k%d", i)
	}

	query := fmt.Sprintf(
		`SELECT %[1]s FROM (SELECT id, %[2]s FROM log_rows) WHERE %[3]s GROUP BY %[1]s ORDER BY MIN(id)`,
		strings.Join(keys, ", "), strings.Join(cols, ", "), strings.Join(conds, " AND "),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []core.RunKey
	for rows.Next() {
		vals := make([]string, len(index))
		ptrs := make([]any, len(index))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, core.RunKey(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Rows returns the rows whose columns equal filter by text form, in
// insertion order. A nil filter returns every row.
func (s *SQLiteStore) Rows(ctx context.Context, filter map[string]string) ([]*core.Value, error) {
	if s.db == nil {
		return nil, fmt.Errorf("rows: %w", core.ErrNotOpen)
	}

	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)

	query := `SELECT payload FROM log_rows`
	args := make([]any, 0, 2*len(names))
	if len(names) > 0 {
		conds := make([]string, len(names))
		for i, name := range names {
			conds[i] = `CAST(json_extract(payload, ?) AS TEXT) = ?`
			args = append(args, jsonPath(name), filter[name])
		}
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.Value
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		v, err := core.ParseJSON([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// jsonPath quotes a top-level key for json_extract.
func jsonPath(key string) string {
	return `$."` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(key) + `"`
}
