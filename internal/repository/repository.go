package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConflict means a conditional write matched nothing because the
	// record's state changed since it was read.
	ErrConflict = RepositoryError("state conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ClientRepository defines the interface for interacting with client data.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ClientRecord], error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Client, error)
	CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error)
	// ExpiringBetween returns active clients whose membership ends in [from, to], soonest first.
	ExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]domain.Client, error)
	SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error
	SetMembership(ctx context.Context, id primitive.ObjectID, membership domain.MembershipType, end time.Time) error
}

// AttendanceRepository stores check-ins, one document per visit.
type AttendanceRepository interface {
	Create(ctx context.Context, entry *domain.AttendanceEntry) (primitive.ObjectID, error)
	List(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.AttendanceEntry], error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error
}

// ProgressRepository stores body-measurement entries, one document per entry.
type ProgressRepository interface {
	Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error)
	List(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.ProgressEntry], error)
	DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error
}

// TrainerRepository defines the interface for interacting with trainer data.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	Update(ctx context.Context, trainer *domain.Trainer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.Trainer], error)
	AddScheduleEntry(ctx context.Context, id primitive.ObjectID, entry domain.ScheduleEntry) error
	RemoveScheduleEntry(ctx context.Context, id, entryID primitive.ObjectID) error
	// AddSalaryRecord appends to the history and makes record.Amount the current salary.
	AddSalaryRecord(ctx context.Context, id primitive.ObjectID, record domain.SalaryRecord) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.TrainerStatus) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error
}

// PaymentRepository defines the interface for interacting with payment data.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PaymentRecord, error)
	// Update replaces a payment. ErrConflict when it has been refunded meanwhile.
	Update(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.PaymentRecord], error)
	// FindAll returns every match with client and trainer expanded, for exports.
	FindAll(ctx context.Context, filter bson.M, sort string) ([]domain.PaymentRecord, error)
	// MarkRefunded moves a completed payment to refunded. ErrConflict when the
	// payment is no longer completed.
	MarkRefunded(ctx context.Context, id primitive.ObjectID, refund domain.Refund) error
}

// UserRepository defines the interface for interacting with staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	// SetOTP stores otp, or removes any pending code when otp is nil.
	SetOTP(ctx context.Context, id primitive.ObjectID, otp *domain.OTP) error
	IncrementOTPAttempts(ctx context.Context, id primitive.ObjectID) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error
	ListActive(ctx context.Context, roles ...domain.Role) ([]domain.User, error)
}

// NotificationRepository stores per-user notifications. Every query is scoped by recipient.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, ns []domain.Notification) error
	List(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page query.PageRequest) (*query.Page[domain.Notification], error)
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error)
	Delete(ctx context.Context, id, recipient primitive.ObjectID) error
	UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	// ExistsSince reports whether recipient already got a notification of kind about ref since t.
	ExistsSince(ctx context.Context, recipient primitive.ObjectID, kind domain.NotificationType, ref domain.EntityRef, since time.Time) (bool, error)
}

// ActivityRepository stores the audit trail shown on the dashboard.
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.Activity) (primitive.ObjectID, error)
	List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ActivityRecord], error)
}

// CounterRepository hands out gap-tolerant, strictly increasing sequence numbers per key.
type CounterRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}

// StatsRepository counts documents of any entity kind.
type StatsRepository interface {
	Count(ctx context.Context, kind domain.EntityKind, filter bson.M) (int64, error)
}

// ReportRepository runs the aggregation pipelines from package report.
type ReportRepository interface {
	RevenueByPeriod(ctx context.Context, w report.Window, g report.Granularity) ([]report.Group, error)
	RevenueTotal(ctx context.Context, w report.Window) (report.Group, error)
	MembershipDistribution(ctx context.Context) ([]report.Group, error)
	TrainerPerformance(ctx context.Context, w report.Window) ([]report.TrainerPerformance, error)
	// ClientGrowth returns per-period new clients in w and the number created before w.
	ClientGrowth(ctx context.Context, w report.Window, g report.Granularity) (groups []report.Group, baseline int64, err error)
	PaymentMethods(ctx context.Context, w report.Window) ([]report.Group, error)
}
