package repository

import (
	"context"
	"database/sql"
	"time"

	"thermo_dashboard/internal/models"
)

// JournalFilter selects journal entries. Zero values mean "no bound".
type JournalFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Page  string
	Limit int
}

// JournalRepo persists dashboard diagnostics events.
type JournalRepo interface {
	Append(ctx context.Context, e models.DashboardEvent) error
	List(ctx context.Context, f JournalFilter) ([]models.DashboardEvent, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	Journal JournalRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Journal: NewJournalSQLite(db),
	}
}
