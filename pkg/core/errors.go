package core

import "errors"

// Sentinel errors shared across packages.
var (
	// ErrRunNotFound is returned when no rows match a run key.
	ErrRunNotFound = errors.New("run not found")
	// ErrPanelNotFound is returned when a document has no panel of the given name.
	ErrPanelNotFound = errors.New("panel not found")
	// ErrNotOpen is returned by stores used before Open.
	ErrNotOpen = errors.New("store not opened")
)
