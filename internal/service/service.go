package service

import (
	"context"
	"time"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/pages"
	"thermo_dashboard/internal/repository"
)

// LogFilter selects journal entries for the logs endpoint.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "FETCH_ERROR", "SAVE_FAILED", ...
	Page  string
	Limit int
}

// EventLog records dashboard diagnostics and lists them back.
type EventLog interface {
	Record(ctx context.Context, e models.DashboardEvent)
	List(ctx context.Context, f LogFilter) ([]models.DashboardEvent, error)
	// RunRetention prunes old entries every interval until ctx is cancelled.
	RunRetention(ctx context.Context, interval, keep time.Duration)
}

// Sessions tracks the page sessions of connected browsers.
type Sessions interface {
	Open(ctx context.Context, page string) (*pages.Session, error)
	Get(id string) (*pages.Session, bool)
	Close(id string)
	List() []pages.Info
	CloseAll()
}

// Service aggregates the sub-services used by the HTTP layer.
type Service struct {
	EventLog
	Sessions
}

// NewService wires the repository and the backend client into services.
// deps.Recorder is replaced by the journal service.
func NewService(repos *repository.Repository, deps pages.Deps, log *logger.Logger) *Service {
	journal := NewEventLogService(repos.Journal, log)
	deps.Recorder = journal
	return &Service{
		EventLog: journal,
		Sessions: NewSessionService(deps, log),
	}
}
