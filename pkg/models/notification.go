package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/satrianet/inventaris-backend/pkg/enums"
)

// Notification is one dispatched message, persisted so recipients can query
// their unread backlog.
type Notification struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Type        enums.NotificationType `json:"type"`
	ReferenceID string                 `json:"referenceId,omitempty"`
	Message     string                 `json:"message"`
	CreatedAt   time.Time              `json:"createdAt"`
	Read        bool                   `json:"read,omitempty"`
}
