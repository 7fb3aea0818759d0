package poller

import (
	"context"
	"time"

	"thermo_dashboard/internal/journal"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
)

// StatusSource fetches the combined status snapshot.
type StatusSource interface {
	Status(ctx context.Context) (models.Status, error)
}

// Sink owns one page region fed by the status snapshot.
type Sink interface {
	// Loading marks the region as busy before a fetch.
	Loading()
	// Render shows a fresh snapshot.
	Render(st models.Status)
	// Fail shows err inline in the region.
	Fail(err error)
}

// StatusPoller fetches /status on an interval and fans the result out to
// the sinks of the active page.
type StatusPoller struct {
	src      StatusSource
	interval time.Duration
	page     string
	sinks    []Sink
	log      *logger.Logger
	rec      journal.Recorder
}

// NewStatusPoller wires src to sinks.
func NewStatusPoller(src StatusSource, interval time.Duration, page string, log *logger.Logger, rec journal.Recorder, sinks ...Sink) *StatusPoller {
	return &StatusPoller{
		src:      src,
		interval: interval,
		page:     page,
		sinks:    sinks,
		log:      log.Named("status_poller").With("page", page),
		rec:      journal.OrNop(rec),
	}
}

// Start runs the first poll immediately, then one per interval.
func (p *StatusPoller) Start(ctx context.Context) *Handle {
	return Start(ctx, Spec[models.Status]{
		Name:      "status:" + p.page,
		Interval:  p.interval,
		Immediate: true,
		Before:    p.loading,
		Fetch:     p.src.Status,
		Apply:     func(st models.Status, err error) { p.apply(ctx, st, err) },
		Log:       p.log,
	})
}

// Poll runs one synchronous fetch and apply.
func (p *StatusPoller) Poll(ctx context.Context) {
	p.loading()
	st, err := p.src.Status(ctx)
	p.apply(ctx, st, err)
}

func (p *StatusPoller) loading() {
	for _, s := range p.sinks {
		s := s
		guard(p.log, "loading", s.Loading)
	}
}

func (p *StatusPoller) apply(ctx context.Context, st models.Status, err error) {
	if err != nil {
		p.log.Errorw("status_fetch_failed", "err", err)
		p.rec.Record(ctx, journal.Event(models.EventFetchError, p.page, "status fetch failed: "+err.Error(), nil))
		for _, s := range p.sinks {
			s := s
			guard(p.log, "fail", func() { s.Fail(err) })
		}
		return
	}
	for _, s := range p.sinks {
		s := s
		guard(p.log, "render", func() { s.Render(st) })
	}
}
