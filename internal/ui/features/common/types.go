// Package common provides shared types and utilities for UI features.
package common

import (
	"context"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// RunSource lists runs and builds their documents.
type RunSource interface {
	core.DocumentSource
	ListRuns(ctx context.Context) ([]core.RunKey, error)
}
