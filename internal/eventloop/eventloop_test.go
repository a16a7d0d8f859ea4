package eventloop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cache-sweep/cachesweep/internal/deleter"
	"github.com/cache-sweep/cachesweep/internal/display"
	"github.com/cache-sweep/cachesweep/internal/model"
	"github.com/cache-sweep/cachesweep/internal/sizecalc"
	"github.com/cache-sweep/cachesweep/internal/tui"
)

func newTestDeps(t *testing.T) (Deps, chan InputEvent, chan []model.Result) {
	t.Helper()
	input := make(chan InputEvent, 4)
	batches := make(chan []model.Result, 4)
	sizer := sizecalc.New(sizecalc.Options{Permits: 2})

	deps := Deps{
		Input:        input,
		Batches:      batches,
		Sizes:        sizer.Completions(),
		Display:      display.New(display.SortPathAsc),
		Sizer:        sizer,
		Deleter:      deleter.New(false, false),
		Render:       func(tui.Progress) {},
		TickInterval: time.Millisecond,
	}
	return deps, input, batches
}

func TestQuitStopsTheLoop(t *testing.T) {
	deps, input, batches := newTestDeps(t)
	loop := New(deps)

	input <- InputEvent{Key: KeyQuit}

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean quit, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop on quit")
	}
	close(batches)
}

func TestBatchAppendsAndSubmitsSizeTasks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "node_modules")
	os.MkdirAll(target, 0o755)
	os.WriteFile(filepath.Join(target, "f.txt"), []byte("hello"), 0o644)

	deps, input, batches := newTestDeps(t)
	loop := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	batches <- []model.Result{{Path: target, Target: "node_modules"}}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for size to complete")
		default:
		}
		if deps.Display.Len() == 1 {
			deps.Display.Rebuild()
			if deps.Display.SizeState(0).Kind == model.SizeReady {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	input <- InputEvent{Key: KeyQuit}
	cancel()
	<-done
}

func TestSensitiveResultsAreHiddenUntilProtectedToggled(t *testing.T) {
	deps, input, batches := newTestDeps(t)
	loop := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	batches <- []model.Result{{Path: "/tmp/does-not-exist-a", Target: "node_modules", Sensitive: true}}
	time.Sleep(30 * time.Millisecond)
	if got := deps.Display.Len(); got != 0 {
		t.Fatalf("expected a sensitive result to be filtered out before the toggle, display has %d rows", got)
	}

	input <- InputEvent{Key: KeyToggleProtected}
	time.Sleep(30 * time.Millisecond)

	batches <- []model.Result{{Path: "/tmp/does-not-exist-b", Target: "node_modules", Sensitive: true}}
	time.Sleep(30 * time.Millisecond)
	if got := deps.Display.Len(); got != 1 {
		t.Fatalf("expected a sensitive result to be appended after toggling show-protected, display has %d rows", got)
	}

	input <- InputEvent{Key: KeyQuit}
	cancel()
	<-done
	close(batches)
}

func TestDeleteMarkedRemovesEveryMarkedRow(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "node_modules")
	b := filepath.Join(root, "target")
	os.MkdirAll(a, 0o755)
	os.MkdirAll(b, 0o755)

	deps, input, batches := newTestDeps(t)
	loop := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	batches <- []model.Result{{Path: a, Target: "node_modules"}, {Path: b, Target: "target"}}

	deadline := time.After(2 * time.Second)
	for deps.Display.Len() < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for the batch to be appended")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	input <- InputEvent{Key: KeyMark}
	input <- InputEvent{Key: KeyDown}
	input <- InputEvent{Key: KeyMark}
	input <- InputEvent{Key: KeyDeleteMarked}

	deadline = time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for marked deletions to complete")
		default:
		}
		if deps.Display.DeleteState(0).Kind == model.DeleteDeleted && deps.Display.DeleteState(1).Kind == model.DeleteDeleted {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed from disk", a)
	}
	if _, err := os.Stat(b); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed from disk", b)
	}

	input <- InputEvent{Key: KeyQuit}
	cancel()
	<-done
	close(batches)
}

func TestDeleteDoesNotBlockInputWhileRunning(t *testing.T) {
	root := t.TempDir()
	big := filepath.Join(root, "node_modules")
	os.MkdirAll(big, 0o755)
	for i := 0; i < 50; i++ {
		os.WriteFile(filepath.Join(big, fmt.Sprintf("f%d.txt", i)), []byte("x"), 0o644)
	}

	deps, input, batches := newTestDeps(t)
	loop := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	batches <- []model.Result{{Path: big, Target: "node_modules"}}
	deadline := time.After(2 * time.Second)
	for deps.Display.Len() < 1 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for the batch to be appended")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	input <- InputEvent{Key: KeyDelete}

	// Queuing a delete must not stall the loop: a subsequent cursor move
	// should still be serviced promptly, proving deletion runs off-loop.
	moveDone := make(chan struct{})
	go func() {
		input <- InputEvent{Key: KeyUp}
		close(moveDone)
	}()
	select {
	case <-moveDone:
	case <-time.After(time.Second):
		t.Fatalf("input was not serviced promptly after queuing a delete")
	}

	input <- InputEvent{Key: KeyQuit}
	cancel()
	<-done
	close(batches)
}

func TestCancellationStopsTheLoop(t *testing.T) {
	deps, _, batches := newTestDeps(t)
	loop := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected context.Canceled, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop on cancellation")
	}
	close(batches)
}
