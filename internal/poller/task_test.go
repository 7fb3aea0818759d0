package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"thermo_dashboard/internal/models"
)

func TestSequence_DropsStale(t *testing.T) {
	var s Sequence
	first, second := s.Next(), s.Next()

	var applied []uint64
	if !s.Apply(second, func() { applied = append(applied, second) }) {
		t.Fatalf("newest result must apply")
	}
	if s.Apply(first, func() { applied = append(applied, first) }) {
		t.Fatalf("older result must be dropped after a newer one applied")
	}
	if len(applied) != 1 || applied[0] != second {
		t.Fatalf("unexpected applies %v", applied)
	}
	if s.Dropped() != 1 {
		t.Fatalf("dropped=%d; want 1", s.Dropped())
	}
}

func TestTask_OutOfOrderResponseIsDiscarded(t *testing.T) {
	releaseFirst := make(chan struct{})
	var calls int32
	var mu sync.Mutex
	var applied []string
	secondApplied := make(chan struct{})

	h := Start(context.Background(), Spec[string]{
		Name:      "ooo",
		Immediate: true,
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				select {
				case <-releaseFirst:
				case <-ctx.Done():
				}
				return "first", nil
			}
			return "second", nil
		},
		Apply: func(v string, err error) {
			mu.Lock()
			applied = append(applied, v)
			mu.Unlock()
			if v == "second" {
				close(secondApplied)
			}
		},
	})
	defer h.Stop()

	// first tick is blocked; fire a second one
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	h.Trigger()
	select {
	case <-secondApplied:
	case <-time.After(2 * time.Second):
		t.Fatalf("second result never applied")
	}
	close(releaseFirst)
	waitFor(t, func() bool { return h.Dropped() == 1 })

	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 1 || applied[0] != "second" {
		t.Fatalf("applied=%v; want only [second]", applied)
	}
}

func TestTask_StopCancelsFurtherTicks(t *testing.T) {
	var calls int32
	h := Start(context.Background(), Spec[int]{
		Name:      "stop",
		Interval:  5 * time.Millisecond,
		Immediate: true,
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&calls, 1)), nil
		},
		Apply: func(int, error) {},
	})
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 })
	h.Stop()
	h.Stop() // idempotent

	after := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != after {
		t.Fatalf("ticks continued after Stop: %d -> %d", after, got)
	}
}

func TestTask_ApplyPanicIsContained(t *testing.T) {
	var calls int32
	h := Start(context.Background(), Spec[int]{
		Name:      "panic",
		Interval:  5 * time.Millisecond,
		Immediate: true,
		Fetch:     func(ctx context.Context) (int, error) { return 0, nil },
		Apply: func(int, error) {
			atomic.AddInt32(&calls, 1)
			panic("boom")
		},
	})
	defer h.Stop()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 })
}

type fakeSource struct {
	st  models.Status
	err error
}

func (f *fakeSource) Status(ctx context.Context) (models.Status, error) { return f.st, f.err }

type recordingSink struct {
	loading, rendered, failed int
	lastErr                   error
	panicOnRender             bool
}

func (s *recordingSink) Loading() { s.loading++ }
func (s *recordingSink) Render(models.Status) {
	s.rendered++
	if s.panicOnRender {
		panic("render failed")
	}
}
func (s *recordingSink) Fail(err error) { s.failed++; s.lastErr = err }

func TestStatusPoller_FansOut(t *testing.T) {
	a, b := &recordingSink{panicOnRender: true}, &recordingSink{}
	p := NewStatusPoller(&fakeSource{}, time.Second, "home", nil, nil, a, b)

	p.Poll(context.Background())

	if a.loading != 1 || b.loading != 1 {
		t.Fatalf("loading not signalled: a=%d b=%d", a.loading, b.loading)
	}
	if a.rendered != 1 || b.rendered != 1 {
		t.Fatalf("a panicking sink must not block its siblings: a=%d b=%d", a.rendered, b.rendered)
	}
}

func TestStatusPoller_FailureReachesEverySinkAndJournal(t *testing.T) {
	boom := errors.New("HTTP error! Status: 500")
	var events []models.DashboardEvent
	rec := recorderFunc(func(e models.DashboardEvent) { events = append(events, e) })

	s := &recordingSink{}
	p := NewStatusPoller(&fakeSource{err: boom}, time.Second, "pv_info", nil, rec, s)
	p.Poll(context.Background())

	if s.failed != 1 || !errors.Is(s.lastErr, boom) {
		t.Fatalf("sink did not receive failure: %+v", s)
	}
	if len(events) != 1 || events[0].Type != models.EventFetchError || events[0].Page != "pv_info" {
		t.Fatalf("unexpected journal events %+v", events)
	}
}

type recorderFunc func(e models.DashboardEvent)

func (f recorderFunc) Record(_ context.Context, e models.DashboardEvent) { f(e) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
