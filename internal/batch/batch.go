// Package batch groups a stream of walker results into fixed-size or
// idle-timeout-triggered batches for consumption by the display model.
// The size-threshold-with-sliding-continuation shape is grounded on the
// teacher engine's depth-batched deletion pipeline, adapted here from a
// bounded worker-dispatch queue into a plain batching relay: there is no
// downstream work to throttle against, only a display update cadence to
// smooth out.
package batch

import (
	"time"

	"github.com/cache-sweep/cachesweep/internal/model"
)

const (
	DefaultSize        = 50
	DefaultIdleTimeout = 8 * time.Millisecond
)

// Options configures a Batcher.
type Options struct {
	Size        int           // results per batch before an eager flush; 0 = DefaultSize
	IdleTimeout time.Duration // max wait before flushing a partial batch; 0 = DefaultIdleTimeout
}

// Batcher relays results from in to batches sent on the returned channel.
// A batch is flushed when it reaches Size, when IdleTimeout elapses after
// the first result of a partial batch arrived, or when in closes (a
// final partial batch is always flushed, even a single result).
type Batcher struct {
	size int
	idle time.Duration
	in   <-chan model.Result
	out  chan []model.Result
}

// New constructs a Batcher reading from in.
func New(in <-chan model.Result, opts Options) *Batcher {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Batcher{
		size: size,
		idle: idle,
		in:   in,
		out:  make(chan []model.Result, 4),
	}
}

// Run starts the batching loop in its own goroutine and returns the output
// channel at once. The loop runs until in closes, then closes the output
// channel after flushing any trailing partial batch.
func (b *Batcher) Run() <-chan []model.Result {
	go b.loop()
	return b.out
}

func (b *Batcher) loop() {
	defer close(b.out)

	pending := make([]model.Result, 0, b.size)
	timer := time.NewTimer(b.idle)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]model.Result, len(pending))
		copy(batch, pending)
		b.out <- batch
		pending = pending[:0]
		if timerActive {
			if !timer.Stop() {
				<-timer.C
			}
			timerActive = false
		}
	}

	for {
		select {
		case r, ok := <-b.in:
			if !ok {
				flush()
				return
			}
			pending = append(pending, r)
			if len(pending) >= b.size {
				flush()
				continue
			}
			if !timerActive {
				timer.Reset(b.idle)
				timerActive = true
			}
		case <-timer.C:
			timerActive = false
			flush()
		}
	}
}
