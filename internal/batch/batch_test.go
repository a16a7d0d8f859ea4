package batch

import (
	"testing"
	"time"

	"github.com/cache-sweep/cachesweep/internal/model"
)

func drain(t *testing.T, out <-chan []model.Result, timeout time.Duration) [][]model.Result {
	t.Helper()
	var got [][]model.Result
	for {
		select {
		case b, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, b)
		case <-time.After(timeout):
			t.Fatalf("timed out waiting for batches")
		}
	}
}

func TestFlushesOnSizeThreshold(t *testing.T) {
	in := make(chan model.Result, 10)
	b := New(in, Options{Size: 3, IdleTimeout: time.Second})
	out := b.Run()

	for i := 0; i < 6; i++ {
		in <- model.Result{StableIndex: i}
	}
	close(in)

	batches := drain(t, out, 2*time.Second)
	if len(batches) != 2 {
		t.Fatalf("expected 2 full batches, got %d: %+v", len(batches), batches)
	}
	for _, bt := range batches {
		if len(bt) != 3 {
			t.Errorf("expected batch of size 3, got %d", len(bt))
		}
	}
}

func TestFlushesPartialBatchOnIdleTimeout(t *testing.T) {
	in := make(chan model.Result)
	b := New(in, Options{Size: 100, IdleTimeout: 5 * time.Millisecond})
	out := b.Run()

	in <- model.Result{StableIndex: 1}

	select {
	case batch := <-out:
		if len(batch) != 1 {
			t.Fatalf("expected single-element idle-flushed batch, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatalf("idle timeout did not flush partial batch")
	}
	close(in)
	drain(t, out, time.Second)
}

func TestFlushesTrailingPartialBatchOnClose(t *testing.T) {
	in := make(chan model.Result, 2)
	b := New(in, Options{Size: 100, IdleTimeout: time.Second})
	out := b.Run()

	in <- model.Result{StableIndex: 1}
	in <- model.Result{StableIndex: 2}
	close(in)

	batches := drain(t, out, 2*time.Second)
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("expected one trailing batch of 2, got %+v", batches)
	}
}

func TestEmptyInputProducesNoBatches(t *testing.T) {
	in := make(chan model.Result)
	b := New(in, Options{})
	out := b.Run()
	close(in)

	batches := drain(t, out, time.Second)
	if len(batches) != 0 {
		t.Fatalf("expected no batches from empty input, got %+v", batches)
	}
}
