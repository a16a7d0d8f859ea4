// Package sink implements the two non-interactive output contracts:
// a single aggregated JSON object emitted after scanning and sizing
// complete, and a streaming NDJSON sink that flushes one line per
// completed result as it arrives. Both consume stdlib encoding/json —
// no third-party JSON library in the retrieved corpus offers anything
// beyond what the standard encoder already does for this shape.
package sink

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cache-sweep/cachesweep/internal/model"
)

// Entry is one result's externally visible shape, shared by both sinks.
type Entry struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	FileCount int       `json:"file_count"`
	Modified  time.Time `json:"modified"`
}

// Aggregated is the single-object JSON payload emitted on completion.
type Aggregated struct {
	SessionID  string  `json:"sessionID"`
	Results    []Entry `json:"results"`
	TotalSize  int64   `json:"total_size"`
	TotalCount int     `json:"total_count"`
}

// WriteAggregated marshals one Aggregated object to w as pretty JSON. The
// session ID distinguishes concurrent or repeated runs when results are
// collected centrally.
func WriteAggregated(w io.Writer, entries []Entry) error {
	agg := Aggregated{SessionID: uuid.NewString()}
	for _, e := range entries {
		agg.Results = append(agg.Results, e)
		agg.TotalSize += e.Size
		agg.TotalCount += e.FileCount
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(agg)
}

// NDJSONSink streams one JSON object per line as completions arrive, with
// no enclosing envelope and no trailing summary.
type NDJSONSink struct {
	enc *json.Encoder
}

// NewNDJSONSink wraps w for line-delimited JSON output.
func NewNDJSONSink(w io.Writer) *NDJSONSink {
	return &NDJSONSink{enc: json.NewEncoder(w)}
}

// Write emits one Entry as a single JSON line, flushed immediately.
func (s *NDJSONSink) Write(e Entry) error {
	return s.enc.Encode(e)
}

// EntryFromResult builds a sink Entry from a Result and its size state.
// Size and FileCount are copied from the state as is, so a Failed state
// yields zero for both.
func EntryFromResult(r model.Result, size model.SizeState) Entry {
	return Entry{
		Path:      r.Path,
		Size:      size.Bytes,
		FileCount: size.FileCount,
		Modified:  r.ModTime,
	}
}
