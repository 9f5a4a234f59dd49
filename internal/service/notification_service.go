package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

// NotificationService serves the signed-in user's notification inbox.
// Every operation is scoped to the recipient; another user's notification
// behaves as if it did not exist.
type NotificationService interface {
	List(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page query.PageRequest) (*query.Page[domain.Notification], error)
	UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, recipient, id primitive.ObjectID) error
	Notify(ctx context.Context, n *domain.Notification) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	now           func() time.Time
}

func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page query.PageRequest) (*query.Page[domain.Notification], error) {
	result, err := s.notifications.List(ctx, recipient, unreadOnly, page)
	if err != nil {
		return nil, repoErr(err, "Notifications")
	}
	return result, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := s.notifications.UnreadCount(ctx, recipient)
	if err != nil {
		return 0, repoErr(err, "Notifications")
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	return repoErr(s.notifications.MarkRead(ctx, id, recipient, s.now().UTC()), "Notification")
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, recipient, s.now().UTC())
	if err != nil {
		return 0, repoErr(err, "Notifications")
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	return repoErr(s.notifications.Delete(ctx, id, recipient), "Notification")
}

// Notify stores a single notification for n.Recipient.
func (s *notificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.Recipient.IsZero() {
		return apperr.Validation("", apperr.FieldError{Field: "recipient", Message: "is required"})
	}
	if n.Title == "" {
		return apperr.Validation("", apperr.FieldError{Field: "title", Message: "is required"})
	}
	if n.Type == "" {
		n.Type = domain.NotifySystem
	}
	_, err := s.notifications.Create(ctx, n)
	return repoErr(err, "Notification")
}
