package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository"
)

// recorderFixture is a Recorder backed by in-memory stores.
type recorderFixture struct {
	recorder      *Recorder
	activities    *fakeActivities
	notifications *fakeNotifications
	users         *fakeUsers
}

func newRecorderFixture(users ...*domain.User) recorderFixture {
	f := recorderFixture{
		activities:    &fakeActivities{},
		notifications: &fakeNotifications{},
		users:         newFakeUsers(users...),
	}
	f.recorder = NewRecorder(f.activities, f.notifications, f.users)
	return f
}

func TestAfterCommit_LogsAndCountsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWriter(&buf, "debug", "json")
	t.Cleanup(func() { logger.Init("info", "text") })

	var ran []string
	ok := effect{name: "ok", run: func(ctx context.Context) error { ran = append(ran, "ok"); return nil }}
	bad := effect{name: "bad", run: func(ctx context.Context) error { ran = append(ran, "bad"); return errors.New("store down") }}

	failed := afterCommit(context.Background(), bad, effect{name: "skipped"}, ok)

	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"bad", "ok"}, ran, "a failing effect does not stop the rest")
	assert.Contains(t, buf.String(), "store down")
	assert.Contains(t, buf.String(), `"effect":"bad"`)
}

func TestRepoErr(t *testing.T) {
	assert.Nil(t, repoErr(nil, "Client"))
	assert.True(t, apperr.Is(repoErr(repository.ErrNotFound, "Client"), apperr.KindNotFound))
	assert.True(t, apperr.Is(repoErr(repository.ErrDuplicate, "Client"), apperr.KindConflict))
	assert.True(t, apperr.Is(repoErr(repository.ErrConflict, "Client"), apperr.KindConflict))
	assert.True(t, apperr.Is(repoErr(errors.New("boom"), "Client"), apperr.KindInternal))

	v := apperr.Validation("bad")
	assert.Same(t, v, repoErr(v, "Client"))
}

func TestRecorder_NotifyManagersSkipsActorAndStaff(t *testing.T) {
	admin := &domain.User{Email: "admin@gym.test", Role: domain.RoleAdmin, IsActive: true}
	manager := &domain.User{Email: "manager@gym.test", Role: domain.RoleManager, IsActive: true}
	staff := &domain.User{Email: "staff@gym.test", Role: domain.RoleStaff, IsActive: true}
	retired := &domain.User{Email: "old@gym.test", Role: domain.RoleManager}
	f := newRecorderFixture(admin, manager, staff, retired)

	failed := afterCommit(context.Background(), f.recorder.NotifyManagers(admin.ID, domain.Notification{
		Type:  domain.NotifySystem,
		Title: "hello",
	}))
	require.Zero(t, failed)

	require.Len(t, f.notifications.items, 1)
	n := f.notifications.items[0]
	assert.Equal(t, manager.ID, n.Recipient)
	require.NotNil(t, n.Actor)
	assert.Equal(t, admin.ID, *n.Actor)
}

func TestRecorder_Activity(t *testing.T) {
	f := newRecorderFixture()
	actor := primitive.NewObjectID()
	ref := domain.ClientRef(primitive.NewObjectID())

	require.Zero(t, afterCommit(context.Background(), f.recorder.Activity(actor, domain.ActionCreate, "Added client", ref, nil)))
	require.Len(t, f.activities.items, 1)
	a := f.activities.items[0]
	assert.Equal(t, actor, a.Actor)
	assert.Equal(t, ref, a.Entity)
	assert.False(t, a.CreatedAt.IsZero())
}
