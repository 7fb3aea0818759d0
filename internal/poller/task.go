package poller

import (
	"context"
	"sync"
	"time"

	"thermo_dashboard/internal/logger"
)

// Spec describes one recurring fetch-and-apply job.
type Spec[T any] struct {
	Name     string
	Interval time.Duration
	// Immediate runs the first tick on Start instead of after one interval.
	Immediate bool
	// Before runs ahead of every fetch (e.g. to mark a region as loading).
	Before func()
	Fetch  func(ctx context.Context) (T, error)
	Apply  func(v T, err error)
	Log    *logger.Logger
}

// Handle controls a running task.
type Handle struct {
	name    string
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	seq     Sequence
	once    sync.Once
}

// Start launches the task loop. Each tick fetches in its own goroutine;
// overlapping ticks are allowed and stale results are discarded.
func Start[T any](ctx context.Context, spec Spec[T]) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		name:    spec.Name,
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	log := spec.Log.Named("task").With("task", spec.Name)

	go func() {
		defer close(h.done)
		if spec.Immediate {
			runTick(ctx, h, spec, log)
		}
		var tickC <-chan time.Time
		if spec.Interval > 0 {
			t := time.NewTicker(spec.Interval)
			defer t.Stop()
			tickC = t.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-tickC:
				runTick(ctx, h, spec, log)
			case <-h.trigger:
				runTick(ctx, h, spec, log)
			}
		}
	}()
	return h
}

// Trigger asks for an extra tick as soon as possible.
func (h *Handle) Trigger() {
	select {
	case h.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the task and waits for in-flight ticks to finish. Idempotent.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
		h.wg.Wait()
	})
}

// Dropped reports stale results discarded so far.
func (h *Handle) Dropped() uint64 { return h.seq.Dropped() }

func runTick[T any](ctx context.Context, h *Handle, spec Spec[T], log *logger.Logger) {
	seq := h.seq.Next()
	if spec.Before != nil {
		guard(log, "before", spec.Before)
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		v, err := spec.Fetch(ctx)
		if ctx.Err() != nil {
			// stopped while in flight: the page is gone
			return
		}
		applied := h.seq.Apply(seq, func() {
			guard(log, "apply", func() { spec.Apply(v, err) })
		})
		if !applied {
			log.Debugw("stale_result_dropped", "seq", seq)
		}
	}()
}

// guard keeps a panicking callback from taking the session down.
func guard(log *logger.Logger, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("task_callback_panic", "stage", stage, "panic", r)
		}
	}()
	fn()
}

// Every runs fn once per interval until the handle is stopped. fn owns its
// own result handling; use it for controllers with a single refresh entry point.
func Every(ctx context.Context, name string, interval time.Duration, log *logger.Logger, fn func(ctx context.Context)) *Handle {
	return Start(ctx, Spec[struct{}]{
		Name:     name,
		Interval: interval,
		Fetch: func(ctx context.Context) (struct{}, error) {
			fn(ctx)
			return struct{}{}, nil
		},
		Apply: func(struct{}, error) {},
		Log:   log,
	})
}
