package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/email"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

func pageOf[T any](items []T, page query.PageRequest) *query.Page[T] {
	return &query.Page[T]{Data: items, Pagination: query.NewPagination(page.Page, page.Limit, int64(len(items)))}
}

type fakeUsers struct {
	mu          sync.Mutex
	byID        map[primitive.ObjectID]*domain.User
	setOTPCalls []*domain.OTP
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	f.byID[user.ID] = user
	return user.ID, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return f.with(id, func(u *domain.User) { u.LastLogin = &at })
}

func (f *fakeUsers) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return f.with(id, func(u *domain.User) { u.PasswordHash, u.OTP = hash, nil })
}

func (f *fakeUsers) SetOTP(ctx context.Context, id primitive.ObjectID, otp *domain.OTP) error {
	f.mu.Lock()
	f.setOTPCalls = append(f.setOTPCalls, otp)
	f.mu.Unlock()
	return f.with(id, func(u *domain.User) { u.OTP = otp })
}

func (f *fakeUsers) IncrementOTPAttempts(ctx context.Context, id primitive.ObjectID) error {
	return f.with(id, func(u *domain.User) {
		if u.OTP != nil {
			u.OTP.Attempts++
		}
	})
}

func (f *fakeUsers) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return f.with(id, func(u *domain.User) { u.Avatar = url })
}

func (f *fakeUsers) ListActive(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if !u.IsActive {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUsers) with(id primitive.ObjectID, fn func(*domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

type fakeClients struct {
	mu            sync.Mutex
	byID          map[primitive.ObjectID]*domain.Client
	memberships   map[primitive.ObjectID]time.Time
	membershipErr error
}

func newFakeClients(clients ...*domain.Client) *fakeClients {
	f := &fakeClients{byID: map[primitive.ObjectID]*domain.Client{}, memberships: map[primitive.ObjectID]time.Time{}}
	for _, c := range clients {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeClients) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Email == client.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	client.ID = primitive.NewObjectID()
	f.byID[client.ID] = client
	return client.ID, nil
}

func (f *fakeClients) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClients) Update(ctx context.Context, client *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[client.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[client.ID] = client
	return nil
}

func (f *fakeClients) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeClients) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ClientRecord], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ClientRecord
	for _, c := range f.byID {
		out = append(out, domain.ClientRecord{Client: *c})
	}
	return pageOf(out, page), nil
}

func (f *fakeClients) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Client
	for _, c := range f.byID {
		if c.AssignedTrainer != nil && *c.AssignedTrainer == trainerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClients) CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error) {
	list, err := f.ListByTrainer(ctx, trainerID)
	return int64(len(list)), err
}

func (f *fakeClients) ExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Client
	for _, c := range f.byID {
		if c.Status != domain.ClientActive || c.MembershipEndDate == nil {
			continue
		}
		if !c.MembershipEndDate.Before(from) && !c.MembershipEndDate.After(to) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClients) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Avatar = url
	return nil
}

func (f *fakeClients) SetMembership(ctx context.Context, id primitive.ObjectID, membership domain.MembershipType, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.membershipErr != nil {
		return f.membershipErr
	}
	c, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.MembershipType = membership
	c.MembershipEndDate = &end
	f.memberships[id] = end
	return nil
}

type fakeTrainers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*domain.Trainer
}

func newFakeTrainers(trainers ...*domain.Trainer) *fakeTrainers {
	f := &fakeTrainers{byID: map[primitive.ObjectID]*domain.Trainer{}}
	for _, t := range trainers {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTrainers) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trainer.ID = primitive.NewObjectID()
	f.byID[trainer.ID] = trainer
	return trainer.ID, nil
}

func (f *fakeTrainers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTrainers) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if t.Email == email {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTrainers) Update(ctx context.Context, trainer *domain.Trainer) error {
	return f.with(trainer.ID, func(t *domain.Trainer) { *t = *trainer })
}

func (f *fakeTrainers) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTrainers) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.Trainer], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Trainer
	for _, t := range f.byID {
		out = append(out, *t)
	}
	return pageOf(out, page), nil
}

func (f *fakeTrainers) AddScheduleEntry(ctx context.Context, id primitive.ObjectID, entry domain.ScheduleEntry) error {
	return f.with(id, func(t *domain.Trainer) { t.Schedule = append(t.Schedule, entry) })
}

func (f *fakeTrainers) RemoveScheduleEntry(ctx context.Context, id, entryID primitive.ObjectID) error {
	return f.with(id, func(t *domain.Trainer) {
		kept := t.Schedule[:0]
		for _, e := range t.Schedule {
			if e.ID != entryID {
				kept = append(kept, e)
			}
		}
		t.Schedule = kept
	})
}

func (f *fakeTrainers) AddSalaryRecord(ctx context.Context, id primitive.ObjectID, record domain.SalaryRecord) error {
	return f.with(id, func(t *domain.Trainer) {
		t.SalaryHistory = append(t.SalaryHistory, record)
		t.Salary = record.Amount
	})
}

func (f *fakeTrainers) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.TrainerStatus) error {
	return f.with(id, func(t *domain.Trainer) { t.Status = status })
}

func (f *fakeTrainers) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return f.with(id, func(t *domain.Trainer) { t.Avatar = url })
}

func (f *fakeTrainers) with(id primitive.ObjectID, fn func(*domain.Trainer)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(t)
	return nil
}

type fakePayments struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*domain.Payment
	order   []primitive.ObjectID
	clients *fakeClients
}

func newFakePayments(clients *fakeClients) *fakePayments {
	return &fakePayments{byID: map[primitive.ObjectID]*domain.Payment{}, clients: clients}
}

func (f *fakePayments) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.InvoiceNumber == payment.InvoiceNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	payment.ID = primitive.NewObjectID()
	cp := *payment
	f.byID[payment.ID] = &cp
	f.order = append(f.order, payment.ID)
	return payment.ID, nil
}

func (f *fakePayments) record(p *domain.Payment) domain.PaymentRecord {
	rec := domain.PaymentRecord{Payment: *p}
	if f.clients != nil {
		if c, err := f.clients.GetByID(context.Background(), p.Client); err == nil {
			rec.ClientInfo = &domain.PersonSummary{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, Phone: c.Phone}
		}
	}
	return rec
}

func (f *fakePayments) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec := f.record(p)
	return &rec, nil
}

func (f *fakePayments) Update(ctx context.Context, payment *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[payment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status == domain.PaymentRefunded {
		return repository.ErrConflict
	}
	cp := *payment
	f.byID[payment.ID] = &cp
	return nil
}

func (f *fakePayments) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePayments) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.PaymentRecord], error) {
	all, err := f.FindAll(ctx, filter, page.Sort)
	if err != nil {
		return nil, err
	}
	return pageOf(all, page), nil
}

func (f *fakePayments) FindAll(ctx context.Context, filter bson.M, sort string) ([]domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PaymentRecord, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.record(f.byID[id]))
	}
	return out, nil
}

func (f *fakePayments) MarkRefunded(ctx context.Context, id primitive.ObjectID, refund domain.Refund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Status != domain.PaymentCompleted {
		return repository.ErrConflict
	}
	p.Status = domain.PaymentRefunded
	p.Refund = &refund
	return nil
}

type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

func (f *fakeCounters) Next(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = map[string]int64{}
	}
	f.values[key]++
	return f.values[key], nil
}

// fakeStats answers every count for a kind with the same number and records
// the filters it was asked about.
type fakeStats struct {
	mu      sync.Mutex
	counts  map[domain.EntityKind]int64
	filters []bson.M
	err     error
}

func (f *fakeStats) Count(ctx context.Context, kind domain.EntityKind, filter bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.counts[kind], f.err
}

type fakeReports struct {
	revenue     map[time.Time]report.Group
	series      []report.Group
	memberships []report.Group
	methods     []report.Group
	trainers    []report.TrainerPerformance
	growth      []report.Group
	baseline    int64
}

func (f *fakeReports) RevenueByPeriod(ctx context.Context, w report.Window, g report.Granularity) ([]report.Group, error) {
	return f.series, nil
}

// RevenueTotal looks the total up by the window start.
func (f *fakeReports) RevenueTotal(ctx context.Context, w report.Window) (report.Group, error) {
	return f.revenue[w.From], nil
}

func (f *fakeReports) MembershipDistribution(ctx context.Context) ([]report.Group, error) {
	return f.memberships, nil
}

func (f *fakeReports) TrainerPerformance(ctx context.Context, w report.Window) ([]report.TrainerPerformance, error) {
	return f.trainers, nil
}

func (f *fakeReports) ClientGrowth(ctx context.Context, w report.Window, g report.Granularity) ([]report.Group, int64, error) {
	return f.growth, f.baseline, nil
}

func (f *fakeReports) PaymentMethods(ctx context.Context, w report.Window) ([]report.Group, error) {
	return f.methods, nil
}

type fakeActivities struct {
	mu    sync.Mutex
	items []domain.Activity
	err   error
}

func (f *fakeActivities) Create(ctx context.Context, a *domain.Activity) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	a.ID = primitive.NewObjectID()
	f.items = append(f.items, *a)
	return a.ID, nil
}

func (f *fakeActivities) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ActivityRecord], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ActivityRecord, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0 && len(out) < page.Limit; i-- {
		out = append(out, domain.ActivityRecord{Activity: f.items[i]})
	}
	return pageOf(out, page), nil
}

func (f *fakeActivities) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, a.Action)
	}
	return out
}

type fakeNotifications struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (f *fakeNotifications) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	f.items = append(f.items, *n)
	return n.ID, nil
}

func (f *fakeNotifications) CreateMany(ctx context.Context, ns []domain.Notification) error {
	for i := range ns {
		if _, err := f.Create(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeNotifications) List(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page query.PageRequest) (*query.Page[domain.Notification], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.items {
		if n.Recipient == recipient && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return pageOf(out, page), nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].Recipient == recipient {
			f.items[i].Read = true
			f.items[i].ReadAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.items {
		if f.items[i].Recipient == recipient && !f.items[i].Read {
			f.items[i].Read = true
			f.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) Delete(ctx context.Context, id, recipient primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].Recipient == recipient {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	page, _ := f.List(ctx, recipient, true, query.PageRequest{Page: 1, Limit: 1000})
	return int64(len(page.Data)), nil
}

func (f *fakeNotifications) ExistsSince(ctx context.Context, recipient primitive.ObjectID, kind domain.NotificationType, ref domain.EntityRef, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.Recipient == recipient && n.Type == kind && n.Reference != nil && *n.Reference == ref && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeAttendance struct {
	mu      sync.Mutex
	items   []domain.AttendanceEntry
	deleted []primitive.ObjectID
}

func (f *fakeAttendance) Create(ctx context.Context, entry *domain.AttendanceEntry) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	f.items = append(f.items, *entry)
	return entry.ID, nil
}

func (f *fakeAttendance) List(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.AttendanceEntry], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AttendanceEntry
	for _, e := range f.items {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return pageOf(out, page), nil
}

func (f *fakeAttendance) CountSince(ctx context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.items {
		if !e.CheckIn.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttendance) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, clientID)
	return nil
}

type fakeProgress struct {
	mu      sync.Mutex
	items   []domain.ProgressEntry
	deleted []primitive.ObjectID
}

func (f *fakeProgress) Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	f.items = append(f.items, *entry)
	return entry.ID, nil
}

func (f *fakeProgress) List(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.ProgressEntry], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ProgressEntry
	for _, e := range f.items {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return pageOf(out, page), nil
}

func (f *fakeProgress) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, clientID)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var (
	_ repository.UserRepository         = (*fakeUsers)(nil)
	_ repository.ClientRepository       = (*fakeClients)(nil)
	_ repository.TrainerRepository      = (*fakeTrainers)(nil)
	_ repository.PaymentRepository      = (*fakePayments)(nil)
	_ repository.CounterRepository      = (*fakeCounters)(nil)
	_ repository.StatsRepository        = (*fakeStats)(nil)
	_ repository.ReportRepository       = (*fakeReports)(nil)
	_ repository.ActivityRepository     = (*fakeActivities)(nil)
	_ repository.NotificationRepository = (*fakeNotifications)(nil)
	_ repository.AttendanceRepository   = (*fakeAttendance)(nil)
	_ repository.ProgressRepository     = (*fakeProgress)(nil)
)
