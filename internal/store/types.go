// Package store persists recipients and the reminder send queue in Postgres.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Recipient is a stored recipient row. Position preserves the row order of
// the source spreadsheet across list reloads.
type Recipient struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	SendFlag    bool      `json:"sendFlag"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Queue item states.
const (
	StatusQueued  = "queued"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Run trigger sources.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Run is one reminder send run.
type Run struct {
	ID          uuid.UUID `json:"id"`
	TriggeredBy string    `json:"triggered_by"`
	Total       int       `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueueItem is one pending or finished reminder inside a run.
type QueueItem struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	RecipientID uuid.UUID
	Name        string
	PhoneNumber string
	Status      string
	MessageSID  string
	LastError   string
}

// RunProgress summarizes a run's queue states.
type RunProgress struct {
	RunID  uuid.UUID `json:"run_id"`
	Total  int       `json:"total"`
	Queued int       `json:"queued"`
	Sent   int       `json:"sent"`
	Failed int       `json:"failed"`
}
