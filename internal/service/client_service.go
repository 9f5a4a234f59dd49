package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// ClientFilterKeys are the query parameters a client list can be filtered by.
var ClientFilterKeys = []string{"status", "membershipType", "fitnessGoal", "fitnessLevel", "gender", "assignedTrainer", "createdAtFrom", "createdAtTo"}

var clientSearchFields = []string{"firstName", "lastName", "email", "phone"}

// ListQuery is the filter part of a list request: raw filter values keyed by
// field name plus an optional free-text search term.
type ListQuery struct {
	Params map[string]string
	Search string
}

// ClientStats summarises the member base.
type ClientStats struct {
	Total         int64          `json:"total"`
	Active        int64          `json:"active"`
	Inactive      int64          `json:"inactive"`
	Suspended     int64          `json:"suspended"`
	Expired       int64          `json:"expired"`
	NewThisMonth  int64          `json:"newThisMonth"`
	ByMembership  []report.Group `json:"byMembership"`
	CheckInsToday int64          `json:"checkInsToday"`
}

type ClientService interface {
	List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.ClientRecord], error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	Create(ctx context.Context, actor primitive.ObjectID, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Client]) (*domain.Client, error)
	Delete(ctx context.Context, actor, id primitive.ObjectID) error
	RecordAttendance(ctx context.Context, actor, clientID primitive.ObjectID, entry *domain.AttendanceEntry) (*domain.AttendanceEntry, error)
	ListAttendance(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.AttendanceEntry], error)
	AddProgress(ctx context.Context, actor, clientID primitive.ObjectID, entry *domain.ProgressEntry) (*domain.ProgressEntry, error)
	ListProgress(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.ProgressEntry], error)
	UpdateAvatar(ctx context.Context, actor, id primitive.ObjectID, r io.Reader) (*domain.Client, error)
	Stats(ctx context.Context) (*ClientStats, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	clients    repository.ClientRepository
	trainers   repository.TrainerRepository
	attendance repository.AttendanceRepository
	progress   repository.ProgressRepository
	stats      repository.StatsRepository
	reports    repository.ReportRepository
	avatars    *AvatarUploader
	recorder   *Recorder
	now        func() time.Time
}

func NewClientService(
	clients repository.ClientRepository,
	trainers repository.TrainerRepository,
	attendance repository.AttendanceRepository,
	progress repository.ProgressRepository,
	stats repository.StatsRepository,
	reports repository.ReportRepository,
	avatars *AvatarUploader,
	recorder *Recorder,
) ClientService {
	return &clientService{
		clients:    clients,
		trainers:   trainers,
		attendance: attendance,
		progress:   progress,
		stats:      stats,
		reports:    reports,
		avatars:    avatars,
		recorder:   recorder,
		now:        time.Now,
	}
}

// listFilter builds the store predicate of a list request. idFields hold
// references that arrive as hex strings.
func listFilter(q ListQuery, searchFields []string, idFields ...string) (bson.M, error) {
	filter := query.BuildFilter(q.Params)
	if err := query.CoerceObjectIDs(filter, idFields...); err != nil {
		return nil, err
	}
	return query.AddSearch(filter, q.Search, searchFields...), nil
}

func (s *clientService) List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.ClientRecord], error) {
	filter, err := listFilter(q, clientSearchFields, "assignedTrainer")
	if err != nil {
		return nil, err
	}
	result, err := s.clients.List(ctx, filter, page)
	if err != nil {
		return nil, repoErr(err, "Clients")
	}
	return result, nil
}

func (s *clientService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Client")
	}
	return client, nil
}

// checkTrainer verifies that an assigned trainer exists.
func checkTrainer(ctx context.Context, trainers repository.TrainerRepository, id *primitive.ObjectID, field string) error {
	if id == nil || id.IsZero() {
		return nil
	}
	_, err := trainers.GetByID(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("", apperr.FieldError{Field: field, Message: "trainer does not exist"})
	}
	return repoErr(err, "Trainer")
}

func (s *clientService) Create(ctx context.Context, actor primitive.ObjectID, client *domain.Client) (*domain.Client, error) {
	client.Email = normalizeEmail(client.Email)
	client.ApplyDefaults(s.now().UTC())
	client.CreatedBy = actor
	if err := domain.Validate(client); err != nil {
		return nil, err
	}
	if _, err := s.clients.GetByEmail(ctx, client.Email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, repoErr(err, "Client")
	}
	if err := checkTrainer(ctx, s.trainers, client.AssignedTrainer, "assignedTrainer"); err != nil {
		return nil, err
	}

	if _, err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "Client")
	}

	afterCommit(ctx,
		s.recorder.Activity(actor, domain.ActionCreate, "Added client "+client.FullName(), domain.ClientRef(client.ID), nil),
		s.recorder.NotifyManagers(actor, domain.Notification{
			Type:      domain.NotifyClient,
			Title:     "New client",
			Message:   client.FullName() + " joined with a " + string(client.MembershipType) + " membership",
			Priority:  domain.PriorityLow,
			Reference: domain.ClientRef(client.ID),
		}),
	)
	return client, nil
}

func (s *clientService) Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Client]) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Client")
	}
	before := *client
	if err := patch(client); err != nil {
		return nil, err
	}
	// fields the caller may not change
	client.ID = before.ID
	client.CreatedAt = before.CreatedAt
	client.CreatedBy = before.CreatedBy
	client.Avatar = before.Avatar
	client.Email = normalizeEmail(client.Email)

	if err := domain.Validate(client); err != nil {
		return nil, err
	}
	if client.Email != before.Email {
		if other, err := s.clients.GetByEmail(ctx, client.Email); err == nil && other.ID != id {
			return nil, duplicateEmail()
		}
	}
	if client.AssignedTrainer != nil && (before.AssignedTrainer == nil || *before.AssignedTrainer != *client.AssignedTrainer) {
		if err := checkTrainer(ctx, s.trainers, client.AssignedTrainer, "assignedTrainer"); err != nil {
			return nil, err
		}
	}

	if err := s.clients.Update(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, repoErr(err, "Client")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Updated client "+client.FullName(), domain.ClientRef(id), nil))
	return client, nil
}

// Delete removes the client together with its attendance and progress history.
func (s *clientService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "Client")
	}
	if err := s.clients.Delete(ctx, id); err != nil {
		return repoErr(err, "Client")
	}
	afterCommit(ctx,
		effect{name: "attendance:purge", run: func(ctx context.Context) error { return s.attendance.DeleteByClient(ctx, id) }},
		effect{name: "progress:purge", run: func(ctx context.Context) error { return s.progress.DeleteByClient(ctx, id) }},
		s.avatars.Discard(client.Avatar),
		s.recorder.Activity(actor, domain.ActionDelete, "Deleted client "+client.FullName(), domain.ClientRef(id), nil),
	)
	return nil
}

func (s *clientService) RecordAttendance(ctx context.Context, actor, clientID primitive.ObjectID, entry *domain.AttendanceEntry) (*domain.AttendanceEntry, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, repoErr(err, "Client")
	}
	entry.ClientID = clientID
	entry.CreatedBy = actor
	if entry.CheckIn.IsZero() {
		entry.CheckIn = s.now().UTC()
	}
	if err := domain.Validate(entry); err != nil {
		return nil, err
	}
	if status := client.MembershipStatus(s.now()); status != domain.ClientActive {
		return nil, apperr.Conflict("Cannot check in a client whose membership is " + string(status))
	}
	if err := checkTrainer(ctx, s.trainers, entry.TrainerID, "trainerId"); err != nil {
		return nil, err
	}
	if _, err := s.attendance.Create(ctx, entry); err != nil {
		return nil, repoErr(err, "Attendance")
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionCheckIn, client.FullName()+" checked in", domain.ClientRef(clientID), nil))
	return entry, nil
}

func (s *clientService) ListAttendance(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.AttendanceEntry], error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, repoErr(err, "Client")
	}
	result, err := s.attendance.List(ctx, clientID, page)
	return result, repoErr(err, "Attendance")
}

func (s *clientService) AddProgress(ctx context.Context, actor, clientID primitive.ObjectID, entry *domain.ProgressEntry) (*domain.ProgressEntry, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, repoErr(err, "Client")
	}
	entry.ClientID = clientID
	entry.RecordedBy = actor
	if entry.Date.IsZero() {
		entry.Date = s.now().UTC()
	}
	if err := domain.Validate(entry); err != nil {
		return nil, err
	}
	if _, err := s.progress.Create(ctx, entry); err != nil {
		return nil, repoErr(err, "Progress")
	}

	effects := []effect{s.recorder.Activity(actor, domain.ActionProgress, "Recorded progress for "+client.FullName(), domain.ClientRef(clientID), nil)}
	if entry.Weight > 0 && entry.Weight != client.Weight {
		weight := entry.Weight
		effects = append(effects, effect{name: "client:weight", run: func(ctx context.Context) error {
			current, err := s.clients.GetByID(ctx, clientID)
			if err != nil {
				return err
			}
			current.Weight = weight
			return s.clients.Update(ctx, current)
		}})
	}
	afterCommit(ctx, effects...)
	return entry, nil
}

func (s *clientService) ListProgress(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.ProgressEntry], error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, repoErr(err, "Client")
	}
	result, err := s.progress.List(ctx, clientID, page)
	return result, repoErr(err, "Progress")
}

func (s *clientService) UpdateAvatar(ctx context.Context, actor, id primitive.ObjectID, r io.Reader) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Client")
	}
	url, err := s.avatars.Upload(ctx, "clients", id.Hex(), r)
	if err != nil {
		return nil, err
	}
	if err := s.clients.SetAvatar(ctx, id, url); err != nil {
		return nil, repoErr(err, "Client")
	}
	old := client.Avatar
	client.Avatar = url
	afterCommit(ctx,
		s.avatars.Discard(old),
		s.recorder.Activity(actor, domain.ActionAvatar, "Updated photo of "+client.FullName(), domain.ClientRef(id), nil),
	)
	return client, nil
}

func (s *clientService) Stats(ctx context.Context) (*ClientStats, error) {
	now := s.now().UTC()
	month := report.MonthToDate(now)
	today := report.Window{From: startOfDay(now), To: now}

	var st ClientStats
	count := func(dst *int64, filter bson.M) func() error {
		return func() error {
			n, err := s.stats.Count(ctx, domain.KindClient, filter)
			*dst = n
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	ctx = gctx
	g.Go(count(&st.Total, nil))
	g.Go(count(&st.Active, bson.M{"status": domain.ClientActive, "$or": bson.A{
		bson.M{"membershipEndDate": bson.M{"$exists": false}},
		bson.M{"membershipEndDate": bson.M{"$gte": now}},
	}}))
	g.Go(count(&st.Inactive, bson.M{"status": domain.ClientInactive}))
	g.Go(count(&st.Suspended, bson.M{"status": domain.ClientSuspended}))
	g.Go(count(&st.Expired, bson.M{
		"status": bson.M{"$ne": domain.ClientSuspended},
		"$or": bson.A{
			bson.M{"status": domain.ClientExpired},
			bson.M{"membershipEndDate": bson.M{"$lt": now}},
		},
	}))
	g.Go(count(&st.NewThisMonth, bson.M{"createdAt": bson.M{"$gte": month.From, "$lte": month.To}}))
	g.Go(func() error {
		groups, err := s.reports.MembershipDistribution(ctx)
		st.ByMembership = groups
		return err
	})
	g.Go(func() error {
		n, err := s.attendance.CountSince(ctx, today.From)
		st.CheckInsToday = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("Failed to load client statistics", err)
	}
	if st.ByMembership == nil {
		st.ByMembership = []report.Group{}
	}
	return &st, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
