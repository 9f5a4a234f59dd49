package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientStatus is the stored lifecycle state of a membership.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientInactive  ClientStatus = "inactive"
	ClientExpired   ClientStatus = "expired"
	ClientSuspended ClientStatus = "suspended"
)

type MembershipType string

const (
	MembershipBasic    MembershipType = "basic"
	MembershipStandard MembershipType = "standard"
	MembershipPremium  MembershipType = "premium"
	MembershipVIP      MembershipType = "vip"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// Client is a gym member.
type Client struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName        string             `bson:"firstName" json:"firstName" validate:"required,max=50"`
	LastName         string             `bson:"lastName" json:"lastName" validate:"max=50"`
	Email            string             `bson:"email" json:"email" validate:"required,email,max=100"`
	Phone            string             `bson:"phone" json:"phone" validate:"required,max=20"`
	DateOfBirth      *time.Time         `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender           string             `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address          Address            `bson:"address,omitempty" json:"address"`
	EmergencyContact EmergencyContact   `bson:"emergencyContact,omitempty" json:"emergencyContact"`

	// Fitness profile
	FitnessGoal       string       `bson:"fitnessGoal,omitempty" json:"fitnessGoal,omitempty" validate:"omitempty,oneof=weight_loss muscle_gain endurance flexibility general_fitness sports_performance rehabilitation"`
	Weight            float64      `bson:"weight,omitempty" json:"weight,omitempty" validate:"gte=0,lte=500"`
	Height            float64      `bson:"height,omitempty" json:"height,omitempty" validate:"gte=0,lte=300"`
	FitnessLevel      FitnessLevel `bson:"fitnessLevel,omitempty" json:"fitnessLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	MedicalConditions []string     `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty" validate:"max=20,dive,max=200"`

	// Membership
	MembershipType      MembershipType      `bson:"membershipType" json:"membershipType" validate:"required,oneof=basic standard premium vip"`
	MembershipStartDate time.Time           `bson:"membershipStartDate" json:"membershipStartDate"`
	MembershipEndDate   *time.Time          `bson:"membershipEndDate,omitempty" json:"membershipEndDate,omitempty"`
	AssignedTrainer     *primitive.ObjectID `bson:"assignedTrainer,omitempty" json:"assignedTrainer,omitempty"`
	Status              ClientStatus        `bson:"status" json:"status" validate:"required,oneof=active inactive expired suspended"`

	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Client) FullName() string { return fullName(c.FirstName, c.LastName) }

func (c *Client) Initials() string { return initials(c.FirstName, c.LastName) }

// Age is nil when no date of birth is on file.
func (c *Client) Age(now time.Time) *int { return ageAt(c.DateOfBirth, now) }

// MembershipStatus is the status shown to staff. Suspension always wins; otherwise
// a membership whose end date has passed reports expired whatever is stored.
func (c *Client) MembershipStatus(now time.Time) ClientStatus {
	if c.Status == ClientSuspended {
		return ClientSuspended
	}
	if c.MembershipEndDate != nil && c.MembershipEndDate.Before(now) {
		return ClientExpired
	}
	return c.Status
}

// DaysRemaining counts started days until the membership ends, 0 once past.
func (c *Client) DaysRemaining(now time.Time) int {
	if c.MembershipEndDate == nil {
		return 0
	}
	d := c.MembershipEndDate.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// ApplyDefaults fills the values a new client starts with.
func (c *Client) ApplyDefaults(now time.Time) {
	if c.Status == "" {
		c.Status = ClientActive
	}
	if c.MembershipStartDate.IsZero() {
		c.MembershipStartDate = now
	}
}

// AttendanceEntry is one gym visit. Stored in its own collection keyed by clientId.
type AttendanceEntry struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID  `bson:"clientId" json:"clientId"`
	CheckIn   time.Time           `bson:"checkIn" json:"checkIn" validate:"required"`
	CheckOut  *time.Time          `bson:"checkOut,omitempty" json:"checkOut,omitempty" validate:"omitempty,gtfield=CheckIn"`
	Activity  string              `bson:"activity,omitempty" json:"activity,omitempty" validate:"max=100"`
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=500"`
	CreatedBy primitive.ObjectID  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// DurationMinutes is 0 while the visit is still open.
func (a *AttendanceEntry) DurationMinutes() int {
	if a.CheckOut == nil {
		return 0
	}
	return int(a.CheckOut.Sub(a.CheckIn).Minutes())
}

// BodyMeasurements are optional tape measurements in centimetres.
type BodyMeasurements struct {
	Chest  float64 `bson:"chest,omitempty" json:"chest,omitempty" validate:"gte=0"`
	Waist  float64 `bson:"waist,omitempty" json:"waist,omitempty" validate:"gte=0"`
	Hips   float64 `bson:"hips,omitempty" json:"hips,omitempty" validate:"gte=0"`
	Arms   float64 `bson:"arms,omitempty" json:"arms,omitempty" validate:"gte=0"`
	Thighs float64 `bson:"thighs,omitempty" json:"thighs,omitempty" validate:"gte=0"`
}

// ProgressEntry is one progress check-in. Stored in its own collection keyed by clientId.
type ProgressEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	Date         time.Time          `bson:"date" json:"date"`
	Weight       float64            `bson:"weight,omitempty" json:"weight,omitempty" validate:"gte=0,lte=500"`
	BodyFat      float64            `bson:"bodyFat,omitempty" json:"bodyFat,omitempty" validate:"gte=0,lte=100"`
	MuscleMass   float64            `bson:"muscleMass,omitempty" json:"muscleMass,omitempty" validate:"gte=0,lte=500"`
	Measurements BodyMeasurements   `bson:"measurements,omitempty" json:"measurements"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	RecordedBy   primitive.ObjectID `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
