// Package deleter performs the recursive removal of a matched result's
// path, combining plain os.Remove-based file deletion with a sensitivity
// refusal check into a single component: a path flagged sensitive is
// refused outright rather than deleted, and a dry-run reports success
// without ever touching the filesystem.
package deleter

import (
	"context"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Outcome is the result of one deletion attempt.
type Outcome struct {
	Kind OutcomeKind
	// OffendingPath is set on Failed, naming the specific sub-path whose
	// removal failed within the tree.
	OffendingPath string
	Reason        string
}

type OutcomeKind int

const (
	Deleted OutcomeKind = iota
	Failed
	Refused
)

// Deleter removes matched result directories.
type Deleter struct {
	DryRun        bool
	ShowProtected bool // when true, a sensitive path is not auto-refused
}

// New constructs a Deleter.
func New(dryRun, showProtected bool) *Deleter {
	return &Deleter{DryRun: dryRun, ShowProtected: showProtected}
}

// Delete recursively removes path. Symbolic links encountered inside the
// tree are removed as links, never followed. When sensitive is true and
// ShowProtected is false, the deletion is refused without touching the
// filesystem. In dry-run mode, only path itself is checked with Lstat (a
// missing path fails); the tree below it is not read and nothing is removed.
func (d *Deleter) Delete(ctx context.Context, path string, sensitive bool) Outcome {
	if sensitive && !d.ShowProtected {
		return Outcome{Kind: Refused, Reason: "path is marked sensitive"}
	}

	if d.DryRun {
		if _, err := os.Lstat(path); err != nil {
			return Outcome{Kind: Failed, OffendingPath: path, Reason: err.Error()}
		}
		return Outcome{Kind: Deleted}
	}

	if err := removeTree(ctx, path); err != nil {
		offending := path
		var pathErr *os.PathError
		if pe, ok := err.(*os.PathError); ok {
			pathErr = pe
			offending = pathErr.Path
		}
		return Outcome{Kind: Failed, OffendingPath: offending, Reason: err.Error()}
	}
	return Outcome{Kind: Deleted}
}

// removeTree removes path and everything under it, stopping early on
// cancellation. Unlike a bare os.RemoveAll, it never descends into a
// symlinked directory — the link itself is removed, its target is left
// alone.
func removeTree(ctx context.Context, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		return os.Remove(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		child, err := securejoin.SecureJoin(path, entry.Name())
		if err != nil {
			child = filepath.Join(path, entry.Name())
		}
		if err := removeTree(ctx, child); err != nil {
			return err
		}
	}
	return os.Remove(path)
}
