package core

import (
	"context"
	"strings"
)

// RunKey identifies one run by the values of the view's index columns, in
// index order.
type RunKey []string

// String renders the key as its path form, e.g. "exp1/seed3".
func (k RunKey) String() string { return strings.Join(k, "/") }

// ParseRunKey splits a path form back into its parts.
func ParseRunKey(s string) RunKey {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return RunKey(strings.Split(s, "/"))
}

// Store is the read side of the logged-row index.
type Store interface {
	// Sync ingests any rows appended to the storage directory since the last call.
	// It reports how many rows were added.
	Sync(ctx context.Context) (int, error)
	// ListRuns returns the distinct index tuples in first-seen order.
	ListRuns(ctx context.Context, index []string) ([]RunKey, error)
	// Rows returns all rows whose columns match filter by text form, in
	// insertion order.
	Rows(ctx context.Context, filter map[string]string) ([]*Value, error)
	Close() error
}

// DocumentSource produces the panel document for a run.
type DocumentSource interface {
	FetchDocument(ctx context.Context, run string) (*Document, error)
}
