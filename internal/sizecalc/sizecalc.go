// Package sizecalc computes recursive byte and file counts for matched
// directories under a global concurrency semaphore, so thousands of
// simultaneous size tasks cannot thrash the filesystem. The bounded-permit
// worker shape repurposes a worker-pool pattern originally built for
// deleting files into one that sums their sizes instead.
package sizecalc

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cache-sweep/cachesweep/internal/model"
)

// Completion reports the outcome of one size computation, keyed by the
// stable index of the Result it was computed for.
type Completion struct {
	StableIndex int
	State       model.SizeState
}

// Computer runs bounded-concurrency recursive size computations.
type Computer struct {
	sem chan struct{}
	out chan Completion
}

// Options configures a Computer.
type Options struct {
	// Permits bounds concurrent in-flight computations; 0 = 2*NumCPU
	// clamped to [8, 32], per the configurable 8-32 range.
	Permits int
}

// New constructs a Computer. Its Completions channel receives one Completion
// per call to Submit; callers should range over it until it closes via
// Close (after all submitted work finishes).
func New(opts Options) *Computer {
	permits := opts.Permits
	if permits <= 0 {
		permits = clamp(2*runtime.NumCPU(), 8, 32)
	}
	return &Computer{
		sem: make(chan struct{}, permits),
		out: make(chan Completion, 64),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Completions returns the channel of size completions.
func (c *Computer) Completions() <-chan Completion { return c.out }

// Submit queues a size computation for path under stableIndex. Spawns its
// own goroutine; the caller does not block beyond semaphore acquisition
// wait, which itself happens inside the goroutine so Submit never blocks.
func (c *Computer) Submit(ctx context.Context, stableIndex int, path string) {
	go c.run(ctx, stableIndex, path)
}

// Close closes the completions channel. Callers must ensure all Submit
// calls have delivered their completion (e.g. by tracking a count) before
// calling Close, since sending on a closed channel panics.
func (c *Computer) Close() { close(c.out) }

func (c *Computer) run(ctx context.Context, stableIndex int, root string) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		c.out <- Completion{StableIndex: stableIndex, State: model.SizeState{Kind: model.SizeFailed, Reason: "cancelled"}}
		return
	}
	defer func() { <-c.sem }()

	bytes, files, err := sumTree(ctx, root)
	if err != nil {
		c.out <- Completion{StableIndex: stableIndex, State: model.SizeState{Kind: model.SizeFailed, Reason: err.Error()}}
		return
	}
	c.out <- Completion{
		StableIndex: stableIndex,
		State:       model.SizeState{Kind: model.SizeReady, Bytes: bytes, FileCount: files},
	}
}

// sumTree walks root iteratively (O(depth) memory via an explicit stack),
// summing regular-file sizes. Symlinks are not followed. Hard-linked
// files sharing a device/inode pair add their bytes once (every link
// still adds to the file count), using the same
// dev+inode dedup strategy as disk-usage tools that must not double-bill
// hardlinked files.
func sumTree(ctx context.Context, root string) (bytes int64, files int, err error) {
	seen := make(map[[2]uint64]struct{})
	stack := []string{root}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return bytes, files, errCancelled
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, readErr := os.ReadDir(dir)
		if readErr != nil {
			continue
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())

			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}
			if entry.IsDir() {
				stack = append(stack, full)
				continue
			}

			info, statErr := entry.Info()
			if statErr != nil {
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}

			if dedupKey, ok := hardlinkKey(full); ok {
				if _, dup := seen[dedupKey]; dup {
					files++
					continue
				}
				seen[dedupKey] = struct{}{}
			}

			bytes += info.Size()
			files++
		}
	}
	return bytes, files, nil
}

type cancelledError struct{}

func (cancelledError) Error() string { return "cancelled" }

var errCancelled = cancelledError{}
