// Package model holds the data types shared across cache-sweep's
// subsystems: the immutable Result record the walker emits, and the
// SizeState/DeleteState lifecycles the display model tracks per result.
package model

import "time"

// Result is immutable once appended to a display model. StableIndex is
// assigned monotonically on append and never changes thereafter — it is
// the identifier async size/delete completions carry back to the display
// model.
type Result struct {
	StableIndex int
	Path        string
	Target      string // matched pattern name, e.g. "node_modules"
	Profile     string // owning profile, e.g. "node"
	ModTime     time.Time
	Sensitive   bool
}

// SizeKind distinguishes the phases of SizeState.
type SizeKind int

const (
	SizePending SizeKind = iota
	SizeComputing
	SizeReady
	SizeFailed
)

// SizeState is a per-result size-computation lifecycle. Only one of Bytes/
// FileCount (when Ready) or Reason (when Failed) is meaningful.
type SizeState struct {
	Kind      SizeKind
	Bytes     int64
	FileCount int
	Reason    string
}

// DeleteKind distinguishes the phases of DeleteState.
type DeleteKind int

const (
	DeleteAlive DeleteKind = iota
	DeleteDeleting
	DeleteDeleted
	DeleteFailed
	DeleteRefused
)

// DeleteState is a per-result deletion lifecycle.
type DeleteState struct {
	Kind   DeleteKind
	Reason string
}
