package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
)

func newTrainer() *domain.Trainer {
	return &domain.Trainer{
		FirstName: "Max",
		LastName:  "Power",
		Email:     "max@gym.test",
		Phone:     "555-0101",
		Status:    domain.TrainerAvailable,
	}
}

func newTrainerFixture(trainers ...*domain.Trainer) (*trainerService, *fakeTrainers, *fakeClients, recorderFixture) {
	tr := newFakeTrainers(trainers...)
	cl := newFakeClients()
	rec := newRecorderFixture()
	svc := NewTrainerService(tr, cl, nil, rec.recorder).(*trainerService)
	svc.now = func() time.Time { return paymentNow }
	return svc, tr, cl, rec
}

func TestTrainerCreate(t *testing.T) {
	svc, _, _, rec := newTrainerFixture()
	ctx := context.Background()

	tr := newTrainer()
	tr.Email = "MAX@gym.test"
	created, err := svc.Create(ctx, primitive.NewObjectID(), tr)
	require.NoError(t, err)
	assert.Equal(t, "max@gym.test", created.Email)
	assert.Equal(t, paymentNow, created.HireDate)
	assert.NotNil(t, created.Schedule)
	assert.Contains(t, rec.activities.actions(), domain.ActionCreate)

	_, err = svc.Create(ctx, primitive.NewObjectID(), newTrainer())
	var fields []string
	if ae, ok := err.(*apperr.Error); ok {
		for _, f := range ae.Fields {
			fields = append(fields, f.Field)
		}
	}
	assert.Equal(t, []string{"email"}, fields, "duplicate email")
}

func TestTrainerCreate_ScheduleOverlap(t *testing.T) {
	svc, _, _, _ := newTrainerFixture()
	tr := newTrainer()
	tr.Schedule = []domain.ScheduleEntry{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "11:00"},
		{DayOfWeek: "monday", StartTime: "10:30", EndTime: "12:00"},
	}
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), tr)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestScheduleConflicts(t *testing.T) {
	assert.NoError(t, scheduleConflicts([]domain.ScheduleEntry{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: "monday", StartTime: "10:00", EndTime: "11:00"},
		{DayOfWeek: "tuesday", StartTime: "09:30", EndTime: "10:30"},
	}), "touching entries do not overlap")

	err := scheduleConflicts([]domain.ScheduleEntry{{DayOfWeek: "friday", StartTime: "18:00", EndTime: "17:00"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestTrainerDelete_BlockedByAssignedClients(t *testing.T) {
	trainer := newTrainer()
	svc, trainers, clients, _ := newTrainerFixture(trainer)
	ctx := context.Background()

	tid := trainer.ID
	clients.byID[primitive.NewObjectID()] = &domain.Client{FirstName: "Ann", AssignedTrainer: &tid}

	err := svc.Delete(ctx, primitive.NewObjectID(), trainer.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Contains(t, err.Error(), "1 assigned client")
	assert.Contains(t, trainers.byID, trainer.ID)

	clients.byID = map[primitive.ObjectID]*domain.Client{}
	require.NoError(t, svc.Delete(ctx, primitive.NewObjectID(), trainer.ID))
	assert.NotContains(t, trainers.byID, trainer.ID)

	assert.True(t, apperr.Is(svc.Delete(ctx, primitive.NewObjectID(), trainer.ID), apperr.KindNotFound))
}

func TestTrainerUpdate_KeepsManagedFields(t *testing.T) {
	trainer := newTrainer()
	trainer.Salary = 3000
	trainer.Schedule = []domain.ScheduleEntry{{ID: primitive.NewObjectID(), DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:00"}}
	svc, _, _, _ := newTrainerFixture(trainer)

	updated, err := svc.Update(context.Background(), primitive.NewObjectID(), trainer.ID, func(tr *domain.Trainer) error {
		tr.Bio = "Strength coach"
		tr.Salary = 1
		tr.Schedule = nil
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Strength coach", updated.Bio)
	assert.Equal(t, 3000.0, updated.Salary)
	assert.Len(t, updated.Schedule, 1)
}

func TestTrainerSchedule(t *testing.T) {
	trainer := newTrainer()
	trainer.Schedule = []domain.ScheduleEntry{{ID: primitive.NewObjectID(), DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:00"}}
	svc, trainers, _, _ := newTrainerFixture(trainer)
	ctx := context.Background()
	actor := primitive.NewObjectID()

	_, err := svc.AddScheduleEntry(ctx, actor, trainer.ID, domain.ScheduleEntry{DayOfWeek: "monday", StartTime: "09:30", EndTime: "10:30"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.AddScheduleEntry(ctx, actor, trainer.ID, domain.ScheduleEntry{DayOfWeek: "monday", StartTime: "9am", EndTime: "10:30"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	entry, err := svc.AddScheduleEntry(ctx, actor, trainer.ID, domain.ScheduleEntry{DayOfWeek: "monday", StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)
	assert.False(t, entry.ID.IsZero())
	assert.Len(t, trainers.byID[trainer.ID].Schedule, 2)

	require.NoError(t, svc.RemoveScheduleEntry(ctx, actor, trainer.ID, entry.ID))
	assert.Len(t, trainers.byID[trainer.ID].Schedule, 1)
}

func TestTrainerSalaryAndStatus(t *testing.T) {
	trainer := newTrainer()
	svc, _, _, _ := newTrainerFixture(trainer)
	ctx := context.Background()
	actor := primitive.NewObjectID()

	updated, err := svc.AddSalaryRecord(ctx, actor, trainer.ID, domain.SalaryRecord{Amount: 4200, Type: "raise"})
	require.NoError(t, err)
	assert.Equal(t, 4200.0, updated.Salary)
	require.Len(t, updated.SalaryHistory, 1)
	assert.Equal(t, actor, updated.SalaryHistory[0].RecordedBy)
	assert.Equal(t, paymentNow, updated.SalaryHistory[0].EffectiveDate)

	_, err = svc.AddSalaryRecord(ctx, actor, trainer.ID, domain.SalaryRecord{Amount: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err = svc.UpdateStatus(ctx, actor, trainer.ID, domain.TrainerOnLeave)
	require.NoError(t, err)
	assert.Equal(t, domain.TrainerOnLeave, updated.Status)

	_, err = svc.UpdateStatus(ctx, actor, trainer.ID, "sleeping")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
