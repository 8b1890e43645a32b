package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLogEntry is one line of an asset's append-only history. Entries are
// only ever added through the lifecycle manager, never edited or removed.
type ActivityLogEntry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	// ReferenceID links the entry to the document that caused it
	// (maintenance, dismantle, handover or loan number).
	ReferenceID string `json:"referenceId,omitempty"`
}
