package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainerStatus string

const (
	TrainerAvailable  TrainerStatus = "available"
	TrainerInSession  TrainerStatus = "in_session"
	TrainerOffDuty    TrainerStatus = "off_duty"
	TrainerOnLeave    TrainerStatus = "on_leave"
	TrainerTerminated TrainerStatus = "terminated"
)

func (s TrainerStatus) Valid() bool {
	switch s {
	case TrainerAvailable, TrainerInSession, TrainerOffDuty, TrainerOnLeave, TrainerTerminated:
		return true
	}
	return false
}

// Specialty tags a trainer's area of expertise.
type Specialty string

const (
	SpecialtyWeightTraining Specialty = "weight_training"
	SpecialtyCardio         Specialty = "cardio"
	SpecialtyYoga           Specialty = "yoga"
	SpecialtyPilates        Specialty = "pilates"
	SpecialtyCrossfit       Specialty = "crossfit"
	SpecialtyMartialArts    Specialty = "martial_arts"
	SpecialtyNutrition      Specialty = "nutrition"
	SpecialtyRehabilitation Specialty = "rehabilitation"
	SpecialtyHIIT           Specialty = "hiit"
	SpecialtyBoxing         Specialty = "boxing"
	SpecialtySwimming       Specialty = "swimming"
	SpecialtyDance          Specialty = "dance"
)

type Certification struct {
	Name      string     `bson:"name" json:"name" validate:"required,max=100"`
	Issuer    string     `bson:"issuer,omitempty" json:"issuer,omitempty" validate:"max=100"`
	IssuedAt  *time.Time `bson:"issuedAt,omitempty" json:"issuedAt,omitempty"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// ScheduleEntry is a recurring weekly session slot. Times are "HH:MM" in gym local time.
type ScheduleEntry struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	DayOfWeek   string              `bson:"dayOfWeek" json:"dayOfWeek" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime   string              `bson:"startTime" json:"startTime" validate:"required,clock"`
	EndTime     string              `bson:"endTime" json:"endTime" validate:"required,clock"`
	SessionType string              `bson:"sessionType,omitempty" json:"sessionType,omitempty" validate:"omitempty,oneof=personal group class consultation"`
	ClientID    *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=300"`
}

// SalaryRecord is one entry of a trainer's pay history.
type SalaryRecord struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Amount        float64            `bson:"amount" json:"amount" validate:"gt=0"`
	EffectiveDate time.Time          `bson:"effectiveDate" json:"effectiveDate" validate:"required"`
	Type          string             `bson:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=base raise bonus adjustment"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty" validate:"max=300"`
	RecordedBy    primitive.ObjectID `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
}

// Trainer is a staff member who coaches clients.
type Trainer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"firstName" json:"firstName" validate:"required,max=50"`
	LastName    string             `bson:"lastName" json:"lastName" validate:"required,max=50"`
	Email       string             `bson:"email" json:"email" validate:"required,email,max=100"`
	Phone       string             `bson:"phone" json:"phone" validate:"required,max=20"`
	DateOfBirth *time.Time         `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address     Address            `bson:"address,omitempty" json:"address"`

	// Professional info
	Specialties    []Specialty     `bson:"specialties" json:"specialties" validate:"max=12,unique,dive,oneof=weight_training cardio yoga pilates crossfit martial_arts nutrition rehabilitation hiit boxing swimming dance"`
	Certifications []Certification `bson:"certifications,omitempty" json:"certifications,omitempty" validate:"dive"`
	Bio            string          `bson:"bio,omitempty" json:"bio,omitempty" validate:"max=1000"`
	HireDate       time.Time       `bson:"hireDate" json:"hireDate"`
	HourlyRate     float64         `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty" validate:"gte=0"`
	Salary         float64         `bson:"salary,omitempty" json:"salary,omitempty" validate:"gte=0"`
	Rating         float64         `bson:"rating,omitempty" json:"rating,omitempty" validate:"gte=0,lte=5"`
	MaxClients     int             `bson:"maxClients,omitempty" json:"maxClients,omitempty" validate:"gte=0,lte=200"`

	Schedule      []ScheduleEntry `bson:"schedule" json:"schedule" validate:"dive"`
	SalaryHistory []SalaryRecord  `bson:"salaryHistory" json:"salaryHistory" validate:"dive"`
	Status        TrainerStatus   `bson:"status" json:"status" validate:"required,oneof=available in_session off_duty on_leave terminated"`

	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Trainer) FullName() string { return fullName(t.FirstName, t.LastName) }

func (t *Trainer) Initials() string { return initials(t.FirstName, t.LastName) }

func (t *Trainer) Age(now time.Time) *int { return ageAt(t.DateOfBirth, now) }

// YearsOfService counts completed years since the hire date.
func (t *Trainer) YearsOfService(now time.Time) int {
	if t.HireDate.IsZero() {
		return 0
	}
	return *ageAt(&t.HireDate, now)
}

// ApplyDefaults fills the values a new trainer starts with.
func (t *Trainer) ApplyDefaults(now time.Time) {
	if t.Status == "" {
		t.Status = TrainerAvailable
	}
	if t.HireDate.IsZero() {
		t.HireDate = now
	}
	if t.Specialties == nil {
		t.Specialties = []Specialty{}
	}
	if t.Schedule == nil {
		t.Schedule = []ScheduleEntry{}
	}
	if t.SalaryHistory == nil {
		t.SalaryHistory = []SalaryRecord{}
	}
}
