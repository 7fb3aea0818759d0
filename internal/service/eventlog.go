package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/repository"
)

const (
	recordTimeout = 2 * time.Second
	maxListLimit  = 1000
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

type EventLogService struct {
	repo repository.JournalRepo
	log  *logger.Logger
}

func NewEventLogService(repo repository.JournalRepo, log *logger.Logger) *EventLogService {
	return &EventLogService{repo: repo, log: log.Named("journal")}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (repository.JournalFilter, error) {
	out := repository.JournalFilter{
		From:  normalizeToUTC(f.From),
		To:    normalizeToUTC(f.To),
		Type:  normalizeEventType(f.Type),
		Page:  strings.TrimSpace(f.Page),
		Limit: f.Limit,
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return repository.JournalFilter{}, errInvalidTimeRange
	}
	if out.Limit <= 0 || out.Limit > maxListLimit {
		out.Limit = maxListLimit
	}
	return out, nil
}

// Record stores e. Failures are logged, never returned; the caller's
// cancellation does not abort the write.
func (s *EventLogService) Record(ctx context.Context, e models.DashboardEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Warnw("journal_append_failed", "type", e.Type, "err", err)
	}
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DashboardEvent, error) {
	jf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, jf)
}

// RunRetention ticks at interval until ctx is canceled, deleting entries
// older than keep.
func (s *EventLogService) RunRetention(ctx context.Context, interval, keep time.Duration) {
	if interval <= 0 || keep <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.repo.Prune(ctx, now.Add(-keep))
			if err != nil {
				s.log.Warnw("journal_prune_failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Infow("journal_pruned", "deleted", n)
			}
		}
	}
}
