package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/storage"
)

// Patch applies a partial update, usually a decoded request body, onto a
// loaded record.
type Patch[T any] func(*T) error

// repoErr translates repository sentinels into apperr values for entity.
func repoErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(entity + " already exists")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict(entity + " was changed by another request")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal("Failed to access "+entity, err)
}

func duplicateEmail() error {
	return apperr.Validation("Email already in use", apperr.FieldError{Field: "email", Message: "is already in use"})
}

// effect is a best-effort follow-up of a committed write, such as an
// activity record or a notification.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// afterCommit runs effects in order once the primary write has succeeded.
// Failures are logged and counted, never returned.
func afterCommit(ctx context.Context, effects ...effect) int {
	failed := 0
	for _, e := range effects {
		if e.run == nil {
			continue
		}
		if err := e.run(ctx); err != nil {
			failed++
			logger.FromContext(ctx).Warn("side effect failed", "effect", e.name, "error", err)
		}
	}
	return failed
}

// Recorder writes the audit trail and staff notifications that follow writes.
type Recorder struct {
	activities    repository.ActivityRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	now           func() time.Time
}

func NewRecorder(activities repository.ActivityRepository, notifications repository.NotificationRepository, users repository.UserRepository) *Recorder {
	return &Recorder{activities: activities, notifications: notifications, users: users, now: time.Now}
}

// Activity records that actor performed action on ref.
func (r *Recorder) Activity(actor primitive.ObjectID, action, description string, ref *domain.EntityRef, meta map[string]any) effect {
	return effect{name: "activity:" + action, run: func(ctx context.Context) error {
		_, err := r.activities.Create(ctx, &domain.Activity{
			Actor:       actor,
			Action:      action,
			Description: description,
			Entity:      ref,
			Metadata:    meta,
			CreatedAt:   r.now().UTC(),
		})
		return err
	}}
}

// NotifyManagers sends n to every active admin and manager except the actor.
func (r *Recorder) NotifyManagers(actor primitive.ObjectID, n domain.Notification) effect {
	return effect{name: "notify:" + string(n.Type), run: func(ctx context.Context) error {
		users, err := r.users.ListActive(ctx, domain.RoleAdmin, domain.RoleManager)
		if err != nil {
			return err
		}
		batch := make([]domain.Notification, 0, len(users))
		for _, u := range users {
			if u.ID == actor {
				continue
			}
			item := n
			item.Recipient = u.ID
			if !actor.IsZero() {
				a := actor
				item.Actor = &a
			}
			batch = append(batch, item)
		}
		return r.notifications.CreateMany(ctx, batch)
	}}
}

// AvatarUploader turns an uploaded image into a stored square thumbnail.
type AvatarUploader struct {
	storage  storage.FileStorage
	maxBytes int64
	size     int
}

func NewAvatarUploader(fs storage.FileStorage, maxBytes int64, size int) *AvatarUploader {
	return &AvatarUploader{storage: fs, maxBytes: maxBytes, size: size}
}

// Upload stores the avatar of owner and returns its URL.
func (u *AvatarUploader) Upload(ctx context.Context, kind, ownerID string, r io.Reader) (string, error) {
	img, err := storage.ProcessAvatar(r, u.maxBytes, u.size)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return "", apperr.Validation("", apperr.FieldError{
			Field:   "avatar",
			Message: fmt.Sprintf("must be at most %d MB", u.maxBytes>>20),
		})
	case errors.Is(err, storage.ErrTooManyPixels):
		return "", apperr.Validation("", apperr.FieldError{
			Field:   "avatar",
			Message: "must be at most 4096x4096 pixels",
		})
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", apperr.Validation("", apperr.FieldError{Field: "avatar", Message: "must be a JPEG, PNG, GIF or WebP image"})
	case err != nil:
		return "", apperr.Internal("Failed to read upload", err)
	}

	url, err := u.storage.Save(ctx, storage.AvatarKey(kind, ownerID, img.Ext), img.ContentType, img.Reader())
	if err != nil {
		return "", apperr.Internal("Failed to store avatar", err)
	}
	return url, nil
}

// Discard deletes a previously stored avatar.
func (u *AvatarUploader) Discard(url string) effect {
	if u == nil || url == "" {
		return effect{name: "avatar:discard"}
	}
	return effect{name: "avatar:discard", run: func(ctx context.Context) error {
		key, ok := u.storage.KeyFromURL(url)
		if !ok {
			return nil
		}
		return u.storage.Delete(ctx, key)
	}}
}
