// Package journal defines how components report diagnostics events.
package journal

import (
	"context"
	"time"

	"thermo_dashboard/internal/models"
)

// Recorder stores diagnostics events. Implementations must not block for long
// and must swallow their own failures.
type Recorder interface {
	Record(ctx context.Context, e models.DashboardEvent)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e models.DashboardEvent)

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, e models.DashboardEvent) { f(ctx, e) }

// Nop discards events.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, models.DashboardEvent) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Event builds an entry stamped with the current time.
func Event(typ, page, description string, meta map[string]any) models.DashboardEvent {
	e := models.DashboardEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Page:        page,
		Description: description,
	}
	if len(meta) > 0 {
		e.Metadata = meta
	}
	return e
}
