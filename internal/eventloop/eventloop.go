// Package eventloop drives the single-threaded cooperative loop that
// owns the display model and the terminal: it multiplexes terminal
// input, scan batches, size completions, delete completions, a render
// tick, and external cancellation, always preferring input when more
// than one source is ready. The cooperative-cancellation shape
// generalizes a ctx-based worker-shutdown pattern from a fan-out worker
// pool into a single-threaded multiplexer.
package eventloop

import (
	"context"
	"time"

	"github.com/cache-sweep/cachesweep/internal/deleter"
	"github.com/cache-sweep/cachesweep/internal/display"
	"github.com/cache-sweep/cachesweep/internal/model"
	"github.com/cache-sweep/cachesweep/internal/sizecalc"
	"github.com/cache-sweep/cachesweep/internal/tui"
)

// Key identifies a recognized input action, decoupled from raw bytes so
// the loop itself never parses escape sequences.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyQuit
	KeyDelete
	KeyDeleteMarked
	KeyMark
	KeySortSize
	KeySortPath
	KeySortAge
	KeyToggleProtected
)

// InputEvent is one recognized keystroke.
type InputEvent struct {
	Key Key
}

// Deps wires the loop to its collaborators. All channels are owned by
// the caller; the loop only ever receives from them.
type Deps struct {
	Input        <-chan InputEvent
	Batches      <-chan []model.Result
	Sizes        <-chan sizecalc.Completion
	Display      *display.Model
	Sizer        *sizecalc.Computer
	Deleter      *deleter.Deleter
	Render       func(progress tui.Progress)
	TickInterval time.Duration
}

// deleteJob is one queued removal, dispatched off-loop so a large
// recursive delete never blocks input, scan batches, or rendering.
type deleteJob struct {
	stableIndex int
	path        string
}

// deleteResult reports a completed deleteJob, fed back into Run's select
// the same way a sizecalc.Completion is.
type deleteResult struct {
	stableIndex int
	outcome     deleter.Outcome
}

// Loop runs Deps' multiplexed select. Run returns when the input stream
// signals quit or closes, or ctx is cancelled.
type Loop struct {
	deps          Deps
	scanComplete  bool
	matchesFound  int
	pendingSizes  int
	showProtected bool

	deleteQueue   chan deleteJob
	deleteResults chan deleteResult
}

// New constructs a Loop. TickInterval defaults to ~16ms (60Hz) if zero.
// The loop's initial protected-visibility state mirrors Deps.Deleter's
// ShowProtected, so the TUI and the deleter start in agreement about
// whether sensitive matches are visible and deletable.
func New(deps Deps) *Loop {
	if deps.TickInterval <= 0 {
		deps.TickInterval = 16 * time.Millisecond
	}
	showProtected := false
	if deps.Deleter != nil {
		showProtected = deps.Deleter.ShowProtected
	}
	return &Loop{
		deps:          deps,
		showProtected: showProtected,
		deleteQueue:   make(chan deleteJob, 64),
		deleteResults: make(chan deleteResult, 64),
	}
}

// Run drives the loop until quit, cancellation, or the input channel
// closes. Per iteration, at most one source is serviced; long work
// (sort, filter rebuild) is confined to the tick branch and throttled
// there by the display model's own needs_sort/needs_filter flags.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.deps.TickInterval)
	defer ticker.Stop()

	go l.runDeleteWorker(ctx)

	batches := l.deps.Batches
	sizes := l.deps.Sizes

	for {
		// Input is serviced eagerly, ahead of any other ready source,
		// bounding keystroke-to-action latency to one iteration.
		select {
		case ev, ok := <-l.deps.Input:
			if !ok {
				return nil
			}
			if quit := l.handleInput(ev); quit {
				return nil
			}
			continue
		default:
		}

		select {
		case ev, ok := <-l.deps.Input:
			if !ok {
				return nil
			}
			if quit := l.handleInput(ev); quit {
				return nil
			}

		case batch, ok := <-batches:
			if !ok {
				l.scanComplete = true
				batches = nil
				continue
			}
			l.handleBatch(ctx, batch)

		case comp, ok := <-sizes:
			if !ok {
				sizes = nil
				continue
			}
			l.handleSizeCompletion(comp)

		case res, ok := <-l.deleteResults:
			if !ok {
				continue
			}
			l.handleDeleteResult(res)

		case <-ticker.C:
			l.deps.Display.Rebuild()
			l.render()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runDeleteWorker drains deleteQueue one job at a time, so multi-select
// deletion serializes per item rather than firing every marked removal
// concurrently. It exits once ctx is cancelled or the queue is closed,
// which never happens while Run is still servicing its select loop.
func (l *Loop) runDeleteWorker(ctx context.Context) {
	for {
		select {
		case job, ok := <-l.deleteQueue:
			if !ok {
				return
			}
			outcome := l.deps.Deleter.Delete(ctx, job.path, false)
			select {
			case l.deleteResults <- deleteResult{stableIndex: job.stableIndex, outcome: outcome}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) handleBatch(ctx context.Context, batch []model.Result) {
	visible := batch[:0]
	for _, r := range batch {
		if r.Sensitive && !l.showProtected {
			continue
		}
		visible = append(visible, r)
	}
	if len(visible) == 0 {
		return
	}

	indices := l.deps.Display.Append(visible)
	l.matchesFound += len(indices)
	for _, idx := range indices {
		l.pendingSizes++
		l.deps.Sizer.Submit(ctx, idx, l.deps.Display.Result(idx).Path)
	}
}

func (l *Loop) handleSizeCompletion(comp sizecalc.Completion) {
	l.deps.Display.UpdateSize(comp.StableIndex, comp.State)
	if l.pendingSizes > 0 {
		l.pendingSizes--
	}
}

func (l *Loop) handleDeleteResult(res deleteResult) {
	switch res.outcome.Kind {
	case deleter.Deleted:
		l.deps.Display.MarkDeleted(res.stableIndex)
	case deleter.Refused:
		l.deps.Display.MarkRefused(res.stableIndex, res.outcome.Reason)
	case deleter.Failed:
		l.deps.Display.MarkDeleteFailed(res.stableIndex, res.outcome.Reason)
	}
}

func (l *Loop) handleInput(ev InputEvent) (quit bool) {
	switch ev.Key {
	case KeyQuit:
		return true
	case KeyUp:
		l.deps.Display.MoveCursor(-1)
	case KeyDown:
		l.deps.Display.MoveCursor(1)
	case KeyMark:
		if idx := l.deps.Display.CurrentStableIndex(); idx >= 0 {
			l.deps.Display.ToggleMark(idx)
		}
	case KeySortSize:
		l.deps.Display.SetSortKey(display.SortSizeDesc)
	case KeySortPath:
		l.deps.Display.SetSortKey(display.SortPathAsc)
	case KeySortAge:
		l.deps.Display.SetSortKey(display.SortAgeOldestFirst)
	case KeyDelete:
		if idx := l.deps.Display.CurrentStableIndex(); idx >= 0 {
			l.enqueueDelete(idx)
		}
	case KeyDeleteMarked:
		l.deleteMarked()
	case KeyToggleProtected:
		l.showProtected = !l.showProtected
		l.deps.Display.MarkDirty()
	}
	return false
}

// deleteMarked enqueues one deleteJob per currently marked row. Each job
// is serialized through the same deleteQueue a single KeyDelete uses, so
// a multi-select deletion drains one item at a time.
func (l *Loop) deleteMarked() {
	for _, idx := range l.deps.Display.Marks() {
		l.enqueueDelete(idx)
	}
}

// enqueueDelete resolves the sensitivity refusal synchronously (it is a
// cheap in-memory check) and only ever hands the recursive filesystem
// work to the delete worker, mirroring sizecalc.Computer.Submit: the
// caller never blocks beyond the channel send, which runs in its own
// goroutine.
func (l *Loop) enqueueDelete(idx int) {
	result := l.deps.Display.Result(idx)
	if result.Sensitive && !l.showProtected {
		l.deps.Display.MarkRefused(idx, "path is marked sensitive")
		return
	}
	l.deps.Display.MarkDeleting(idx)
	job := deleteJob{stableIndex: idx, path: result.Path}
	go func() { l.deleteQueue <- job }()
}

func (l *Loop) render() {
	if l.deps.Render == nil {
		return
	}
	l.deps.Render(tui.Progress{
		ScanComplete: l.scanComplete,
		MatchesFound: l.matchesFound,
		SizesPending: l.pendingSizes,
	})
}
