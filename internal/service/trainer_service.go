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
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

// TrainerFilterKeys are the query parameters a trainer list can be filtered by.
var TrainerFilterKeys = []string{"status", "specialties", "gender", "hireDateFrom", "hireDateTo"}

var trainerSearchFields = []string{"firstName", "lastName", "email", "phone"}

type TrainerService interface {
	List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.Trainer], error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	Create(ctx context.Context, actor primitive.ObjectID, trainer *domain.Trainer) (*domain.Trainer, error)
	Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Trainer]) (*domain.Trainer, error)
	Delete(ctx context.Context, actor, id primitive.ObjectID) error
	ListClients(ctx context.Context, id primitive.ObjectID) ([]domain.Client, error)
	AddScheduleEntry(ctx context.Context, actor, id primitive.ObjectID, entry domain.ScheduleEntry) (*domain.ScheduleEntry, error)
	RemoveScheduleEntry(ctx context.Context, actor, id, entryID primitive.ObjectID) error
	AddSalaryRecord(ctx context.Context, actor, id primitive.ObjectID, record domain.SalaryRecord) (*domain.Trainer, error)
	UpdateStatus(ctx context.Context, actor, id primitive.ObjectID, status domain.TrainerStatus) (*domain.Trainer, error)
	UpdateAvatar(ctx context.Context, actor, id primitive.ObjectID, r io.Reader) (*domain.Trainer, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	trainers repository.TrainerRepository
	clients  repository.ClientRepository
	avatars  *AvatarUploader
	recorder *Recorder
	now      func() time.Time
}

func NewTrainerService(trainers repository.TrainerRepository, clients repository.ClientRepository, avatars *AvatarUploader, recorder *Recorder) TrainerService {
	return &trainerService{
		trainers: trainers,
		clients:  clients,
		avatars:  avatars,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *trainerService) List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.Trainer], error) {
	filter, err := listFilter(q, trainerSearchFields)
	if err != nil {
		return nil, err
	}
	result, err := s.trainers.List(ctx, filter, page)
	if err != nil {
		return nil, repoErr(err, "Trainers")
	}
	return result, nil
}

func (s *trainerService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	return trainer, nil
}

func (s *trainerService) Create(ctx context.Context, actor primitive.ObjectID, trainer *domain.Trainer) (*domain.Trainer, error) {
	trainer.Email = normalizeEmail(trainer.Email)
	trainer.CreatedBy = actor
	trainer.ApplyDefaults(s.now().UTC())
	for i := range trainer.Schedule {
		if trainer.Schedule[i].ID.IsZero() {
			trainer.Schedule[i].ID = primitive.NewObjectID()
		}
	}
	if err := domain.Validate(trainer); err != nil {
		return nil, err
	}
	if err := scheduleConflicts(trainer.Schedule); err != nil {
		return nil, err
	}
	if _, err := s.trainers.GetByEmail(ctx, trainer.Email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, repoErr(err, "Trainer")
	}

	if _, err := s.trainers.Create(ctx, trainer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "Trainer")
	}
	afterCommit(ctx,
		s.recorder.Activity(actor, domain.ActionCreate, "Added trainer "+trainer.FullName(), domain.TrainerRef(trainer.ID), nil),
		s.recorder.NotifyManagers(actor, domain.Notification{
			Type:      domain.NotifyTrainer,
			Title:     "New trainer",
			Message:   trainer.FullName() + " joined the team",
			Priority:  domain.PriorityLow,
			Reference: domain.TrainerRef(trainer.ID),
		}),
	)
	return trainer, nil
}

// Update merges patch into the trainer. Schedule and salary history are
// managed through their own operations and are not replaced here.
func (s *trainerService) Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Trainer]) (*domain.Trainer, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	before := *trainer
	if err := patch(trainer); err != nil {
		return nil, err
	}
	trainer.ID = before.ID
	trainer.CreatedAt = before.CreatedAt
	trainer.CreatedBy = before.CreatedBy
	trainer.Avatar = before.Avatar
	trainer.Schedule = before.Schedule
	trainer.SalaryHistory = before.SalaryHistory
	trainer.Salary = before.Salary
	trainer.Email = normalizeEmail(trainer.Email)

	if err := domain.Validate(trainer); err != nil {
		return nil, err
	}
	if trainer.Email != before.Email {
		if other, err := s.trainers.GetByEmail(ctx, trainer.Email); err == nil && other.ID != id {
			return nil, duplicateEmail()
		}
	}
	if err := s.trainers.Update(ctx, trainer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "Trainer")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Updated trainer "+trainer.FullName(), domain.TrainerRef(id), nil))
	return trainer, nil
}

// Delete refuses to remove a trainer that still has clients assigned.
func (s *trainerService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "Trainer")
	}
	assigned, err := s.clients.CountByTrainer(ctx, id)
	if err != nil {
		return repoErr(err, "Clients")
	}
	if assigned > 0 {
		return apperr.Conflict(fmt.Sprintf("Cannot delete trainer with %d assigned client(s). Reassign them first.", assigned))
	}
	if err := s.trainers.Delete(ctx, id); err != nil {
		return repoErr(err, "Trainer")
	}
	afterCommit(ctx,
		s.avatars.Discard(trainer.Avatar),
		s.recorder.Activity(actor, domain.ActionDelete, "Deleted trainer "+trainer.FullName(), domain.TrainerRef(id), nil),
	)
	return nil
}

func (s *trainerService) ListClients(ctx context.Context, id primitive.ObjectID) ([]domain.Client, error) {
	if _, err := s.trainers.GetByID(ctx, id); err != nil {
		return nil, repoErr(err, "Trainer")
	}
	clients, err := s.clients.ListByTrainer(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Clients")
	}
	return clients, nil
}

// scheduleConflicts rejects entries that end before they start or overlap
// another entry on the same day.
func scheduleConflicts(entries []domain.ScheduleEntry) error {
	for i, a := range entries {
		if a.EndTime <= a.StartTime {
			return apperr.Validation("", apperr.FieldError{Field: fmt.Sprintf("schedule[%d].endTime", i), Message: "must be after startTime"})
		}
		for _, b := range entries[:i] {
			if a.DayOfWeek == b.DayOfWeek && a.StartTime < b.EndTime && b.StartTime < a.EndTime {
				return apperr.Conflict(fmt.Sprintf("Schedule entry %s %s-%s overlaps %s-%s", a.DayOfWeek, a.StartTime, a.EndTime, b.StartTime, b.EndTime))
			}
		}
	}
	return nil
}

func (s *trainerService) AddScheduleEntry(ctx context.Context, actor, id primitive.ObjectID, entry domain.ScheduleEntry) (*domain.ScheduleEntry, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	entry.ID = primitive.NewObjectID()
	if err := domain.Validate(&entry); err != nil {
		return nil, err
	}
	if err := scheduleConflicts(append(append([]domain.ScheduleEntry{}, trainer.Schedule...), entry)); err != nil {
		return nil, err
	}
	if entry.ClientID != nil {
		if _, err := s.clients.GetByID(ctx, *entry.ClientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Validation("", apperr.FieldError{Field: "clientId", Message: "client does not exist"})
			}
			return nil, repoErr(err, "Client")
		}
	}
	if err := s.trainers.AddScheduleEntry(ctx, id, entry); err != nil {
		return nil, repoErr(err, "Trainer")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate,
		fmt.Sprintf("Scheduled %s %s-%s for %s", entry.DayOfWeek, entry.StartTime, entry.EndTime, trainer.FullName()),
		domain.TrainerRef(id), nil))
	return &entry, nil
}

func (s *trainerService) RemoveScheduleEntry(ctx context.Context, actor, id, entryID primitive.ObjectID) error {
	if err := s.trainers.RemoveScheduleEntry(ctx, id, entryID); err != nil {
		return repoErr(err, "Schedule entry")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Removed schedule entry", domain.TrainerRef(id), map[string]any{"entryId": entryID.Hex()}))
	return nil
}

func (s *trainerService) AddSalaryRecord(ctx context.Context, actor, id primitive.ObjectID, record domain.SalaryRecord) (*domain.Trainer, error) {
	record.ID = primitive.NewObjectID()
	record.RecordedBy = actor
	if record.EffectiveDate.IsZero() {
		record.EffectiveDate = s.now().UTC()
	}
	if err := domain.Validate(&record); err != nil {
		return nil, err
	}
	if err := s.trainers.AddSalaryRecord(ctx, id, record); err != nil {
		return nil, repoErr(err, "Trainer")
	}
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Updated salary of "+trainer.FullName(), domain.TrainerRef(id),
		map[string]any{"amount": record.Amount}))
	return trainer, nil
}

func (s *trainerService) UpdateStatus(ctx context.Context, actor, id primitive.ObjectID, status domain.TrainerStatus) (*domain.Trainer, error) {
	if !status.Valid() {
		return nil, apperr.Validation("", apperr.FieldError{Field: "status", Message: "must be one of: available, in_session, off_duty, on_leave, terminated"})
	}
	if err := s.trainers.SetStatus(ctx, id, status); err != nil {
		return nil, repoErr(err, "Trainer")
	}
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, trainer.FullName()+" is now "+string(status), domain.TrainerRef(id), nil))
	return trainer, nil
}

func (s *trainerService) UpdateAvatar(ctx context.Context, actor, id primitive.ObjectID, r io.Reader) (*domain.Trainer, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Trainer")
	}
	url, err := s.avatars.Upload(ctx, "trainers", id.Hex(), r)
	if err != nil {
		return nil, err
	}
	if err := s.trainers.SetAvatar(ctx, id, url); err != nil {
		return nil, repoErr(err, "Trainer")
	}
	old := trainer.Avatar
	trainer.Avatar = url
	afterCommit(ctx,
		s.avatars.Discard(old),
		s.recorder.Activity(actor, domain.ActionAvatar, "Updated photo of "+trainer.FullName(), domain.TrainerRef(id), nil),
	)
	return trainer, nil
}
