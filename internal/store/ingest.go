package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Sync ingests rows appended to every log file matching the store pattern
// since the previous call, and reports how many rows were added.
func (s *SQLiteStore) Sync(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("sync: %w", core.ErrNotOpen)
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	files, err := s.logFiles()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, rel := range files {
		n, err := s.ingest(ctx, rel)
		if err != nil {
			return total, err
		}
		total += n
	}
	if total > 0 {
		s.logger.Info("ingested rows", "rows", total, "files", len(files))
	}
	return total, nil
}

// IngestFile ingests the rows appended to one log file, given relative to the
// storage directory.
func (s *SQLiteStore) IngestFile(ctx context.Context, rel string) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("ingest: %w", core.ErrNotOpen)
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.ingest(ctx, filepath.ToSlash(rel))
}

// Matches reports whether rel, relative to the storage directory, is a log
// file the store ingests.
func (s *SQLiteStore) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "artifacts" || strings.HasPrefix(rel, "artifacts/") {
		return false
	}
	ok, err := doublestar.Match(s.pattern, rel)
	return err == nil && ok
}

// logFiles lists matching files, skipping the artifacts directory.
func (s *SQLiteStore) logFiles() ([]string, error) {
	if s.dir == "" {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(s.dir), s.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", s.pattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if m == "artifacts" || strings.HasPrefix(m, "artifacts/") {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

func (s *SQLiteStore) ingest(ctx context.Context, rel string) (int, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	offset, lines, err := s.offset(ctx, rel)
	if err != nil {
		return 0, err
	}
	if info.Size() < offset {
		s.logger.Warn("log file shrank, re-ingesting", "file", rel, "size", info.Size(), "offset", offset)
		if _, err := s.db.ExecContext(ctx, `DELETE FROM log_rows WHERE file = ?`, rel); err != nil {
			return 0, fmt.Errorf("failed to reset %s: %w", rel, err)
		}
		offset, lines = 0, 0
	}
	if info.Size() == offset {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek %s: %w", rel, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	// A trailing line without newline is still being written.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return 0, nil
	}
	data = data[:end+1]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, raw := range bytes.Split(data[:end], []byte{'\n'}) {
		lines++
		payload, ok := s.decodeLine(rel, lines, raw)
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO log_rows (file, line, payload) VALUES (?, ?, ?)`,
			rel, lines, payload,
		); err != nil {
			return 0, fmt.Errorf("failed to insert row: %w", err)
		}
		added++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ingest_offsets (file, byte_offset, lines) VALUES (?, ?, ?)
		 ON CONFLICT(file) DO UPDATE SET byte_offset = excluded.byte_offset, lines = excluded.lines, updated_at = CURRENT_TIMESTAMP`,
		rel, offset+int64(end+1), lines,
	); err != nil {
		return 0, fmt.Errorf("failed to record offset: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ingest: %w", err)
	}
	return added, nil
}

func (s *SQLiteStore) offset(ctx context.Context, rel string) (offset, lines int64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT byte_offset, lines FROM ingest_offsets WHERE file = ?`, rel,
	).Scan(&offset, &lines)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read offset for %s: %w", rel, err)
	}
	return offset, lines, nil
}

// decodeLine validates one log line and returns the payload to store.
func (s *SQLiteStore) decodeLine(rel string, line int64, raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	clean := SanitizeJSON(raw)
	v, err := core.ParseJSON(clean)
	if err != nil {
		s.logger.Warn("skipping malformed log line", "file", rel, "line", line, "error", err)
		return "", false
	}
	if !v.IsMap() {
		s.logger.Warn("skipping non-object log line", "file", rel, "line", line, "kind", v.Kind().String())
		return "", false
	}
	return string(clean), true
}

// SanitizeJSON replaces the bare NaN, Infinity and -Infinity tokens some
// loggers emit with null. Text inside strings is left alone.
func SanitizeJSON(b []byte) []byte {
	var out bytes.Buffer
	inString, escaped := false, false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if tok := nonFinite(b[i:]); tok != "" {
			out.WriteString("null")
			i += len(tok) - 1
			continue
		}
		out.WriteByte(c)
	}
	return out.Bytes()
}

func nonFinite(b []byte) string {
	for _, tok := range []string{"-Infinity", "Infinity", "NaN"} {
		if bytes.HasPrefix(b, []byte(tok)) {
			return tok
		}
	}
	return ""
}
