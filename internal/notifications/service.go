// Package notifications persists and dispatches workflow notifications.
// Records are stored so recipients can query their unread backlog; when a
// publisher is wired (redis), each notification is additionally broadcast on
// the recipient's channel. Publish failures never fail the operation that
// notified.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
)

// Publisher broadcasts a notification payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Service is the notification dispatcher.
type Service struct {
	notifications *store.Collection[models.Notification]
	publisher     Publisher
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds the dispatcher. publisher may be nil.
func NewService(notifications *store.Collection[models.Notification], publisher Publisher, logg *logger.Logger, now func() time.Time) (*Service, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notifications collection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{notifications: notifications, publisher: publisher, logg: logg, now: now}, nil
}

// Notify records and dispatches one notification.
func (s *Service) Notify(ctx context.Context, recipientID string, kind enums.NotificationType, referenceID, message string) error {
	if recipientID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	notification := models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        kind,
		ReferenceID: referenceID,
		Message:     message,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Upsert(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notification")
	}

	if s.publisher != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			err = s.publisher.Publish(ctx, "notifications:"+recipientID, payload)
		}
		if err != nil {
			s.logg.Warn(ctx, "notification publish failed: "+err.Error())
		}
	}
	return nil
}

// ListUnread returns a recipient's unread notifications.
func (s *Service) ListUnread(ctx context.Context, recipientID string) ([]models.Notification, error) {
	if recipientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	items, err := s.notifications.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notifications")
	}
	var unread []models.Notification
	for _, item := range items {
		if item.RecipientID == recipientID && !item.Read {
			unread = append(unread, item)
		}
	}
	return unread, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	items, err := s.notifications.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notifications")
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			if err := s.notifications.Replace(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notifications")
			}
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
}
