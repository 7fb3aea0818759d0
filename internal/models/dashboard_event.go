package models

import "time"

// Journal event types.
const (
	EventFetchError      = "FETCH_ERROR"
	EventSaveRequested   = "SAVE_REQUESTED"
	EventSaveSucceeded   = "SAVE_SUCCEEDED"
	EventSaveFailed      = "SAVE_FAILED"
	EventValidationError = "VALIDATION_ERROR"
	EventSessionOpened   = "SESSION_OPENED"
	EventSessionClosed   = "SESSION_CLOSED"
)

// DashboardEvent is a single diagnostics journal entry.
type DashboardEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Page        string    `json:"page,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
