package services

import (
	"context"
	"errors"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/event"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgNotificationNotFound = "لم يتم العثور على الإشعار"

type NotificationService struct {
	notifications repositories.NotificationRepository
}

func NewNotificationService(notifications repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Notify persists a notification and announces it for async delivery
// (websocket push, mail). The persisted record is the source of truth;
// delivery failures never surface to the caller.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, orderID *primitive.ObjectID, kind, title, message string) error {
	n := models.Notification{
		User:    userID,
		Order:   orderID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		return err
	}
	event.FireAsync(event.NotificationCreated, n)
	return nil
}

// ListForUser returns the caller's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	out, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return out, nil
}

// MarkRead flips the read flag on the caller's own notification. The
// operation is idempotent; a foreign notification reads as not found.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (models.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Notification{}, apperr.NewNotFound(msgNotificationNotFound)
		}
		return models.Notification{}, apperr.NewInternal(err)
	}
	return n, nil
}

// UnreadCount returns how many unread notifications the caller has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.NewInternal(err)
	}
	return count, nil
}
