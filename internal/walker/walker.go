// Package walker implements a streaming parallel filesystem traversal: a
// semaphore-bounded fan-out of per-directory goroutines that emit matched
// Results onto a channel and prune traversal the moment a directory
// matches a target pattern.
//
// The fan-out/fan-in shape (one goroutine per directory, a semaphore
// capping concurrent directory reads, a WaitGroup tracking in-flight
// walkers) is grounded on ivoronin-dupedog's internal/scanner; the
// match-and-prune and exclusion semantics are purpose-built for locating
// dependency and build-cache directories.
package walker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/cache-sweep/cachesweep/internal/errs"
	"github.com/cache-sweep/cachesweep/internal/model"
	"github.com/cache-sweep/cachesweep/internal/sensitivity"
	"github.com/cache-sweep/cachesweep/internal/target"
)

// Options configures a walk.
type Options struct {
	Root        string
	Matcher     *target.Matcher
	Classifier  *sensitivity.Classifier
	Workers     int  // concurrent directory reads; 0 = auto (NumCPU*2)
	FollowLinks bool // off by default; symlinked directories are leaves
}

// Walker performs one streaming traversal per call to Run.
type Walker struct {
	opts Options
	sem  chan struct{}
	wg   sync.WaitGroup
	out  chan model.Result
	errs *errs.Collector
}

// New constructs a Walker. Its errs.Collector (see Errors) accumulates
// recoverable per-entry I/O problems encountered during Run; a root that
// cannot be opened is returned by Run as a fatal *errs.ScanRootError instead.
func New(opts Options) *Walker {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2 * runtime.NumCPU()
	}
	return &Walker{
		opts: opts,
		sem:  make(chan struct{}, workers),
		out:  make(chan model.Result, 256),
		errs: errs.NewCollector(1000),
	}
}

// Errors returns the bounded collector of recoverable per-entry errors
// accumulated during the last Run call.
func (w *Walker) Errors() *errs.Collector { return w.errs }

// Run starts the traversal and returns immediately with a receive-only
// channel of matched Results. The channel closes when traversal completes
// or ctx is cancelled. Returns a fatal error if the root cannot be opened.
func (w *Walker) Run(ctx context.Context) (<-chan model.Result, error) {
	absRoot, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return nil, &errs.ScanRootError{Path: w.opts.Root, Err: err}
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return nil, &errs.ScanRootError{Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &errs.ScanRootError{Path: absRoot, Err: os.ErrInvalid}
	}

	// The root itself may be a target: classify it before descending
	// rather than unconditionally walking into it.
	if w.emitIfMatch(absRoot, filepath.Base(absRoot), info) {
		close(w.out)
		return w.out, nil
	}

	w.wg.Add(1)
	go w.walkDir(ctx, absRoot)

	go func() {
		w.wg.Wait()
		close(w.out)
	}()

	return w.out, nil
}

// walkDir processes one directory: lists entries, emits matches (pruning
// the branch), and recursively fans out into subdirectories that do not
// match and are not excluded.
func (w *Walker) walkDir(ctx context.Context, dir string) {
	defer w.wg.Done()

	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	entries, err := os.ReadDir(dir)
	<-w.sem

	if err != nil {
		w.errs.Add(dir, err)
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		name := entry.Name()
		full, err := securejoin.SecureJoin(dir, name)
		if err != nil {
			full = filepath.Join(dir, name)
		}

		isSymlink := entry.Type()&os.ModeSymlink != 0
		if isSymlink && !w.opts.FollowLinks {
			// A symlink is treated as a leaf: never traversed, and never
			// emitted even if its basename matches a pattern, since the
			// thing it points at was not itself discovered by the walk.
			continue
		}

		var info os.FileInfo
		if isSymlink {
			// entry.Type()/IsDir() reflect the link itself (Lstat-style
			// bits), always non-directory; Stat follows the link to learn
			// what it actually points at.
			info, err = os.Stat(full)
			if err != nil {
				w.errs.Add(full, err)
				continue
			}
			if !info.IsDir() {
				continue
			}
		} else {
			if !entry.IsDir() {
				continue
			}
			info, err = entry.Info()
			if err != nil {
				w.errs.Add(full, err)
				continue
			}
		}

		if w.opts.Matcher.Excluded(name) {
			continue
		}

		if w.emitIfMatch(full, name, info) {
			continue
		}

		w.wg.Add(1)
		go w.walkDir(ctx, full)
	}
}

// emitIfMatch classifies basename against the matcher; if it matches, a
// Result is sent and true is returned so the caller prunes the branch.
func (w *Walker) emitIfMatch(path, basename string, info os.FileInfo) bool {
	patternName, profile, ok := w.opts.Matcher.Match(basename)
	if !ok {
		return false
	}
	w.out <- model.Result{
		Path:      path,
		Target:    patternName,
		Profile:   profile,
		ModTime:   info.ModTime(),
		Sensitive: w.opts.Classifier.IsSensitive(path),
	}
	return true
}
