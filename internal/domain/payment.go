package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentType string

const (
	PaymentMembership       PaymentType = "membership"
	PaymentPersonalTraining PaymentType = "personal_training"
	PaymentClass            PaymentType = "class"
	PaymentProduct          PaymentType = "product"
	PaymentOther            PaymentType = "other"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOnline       PaymentMethod = "online"
	MethodOther        PaymentMethod = "other"
)

// Refund records a reversal of a completed payment.
type Refund struct {
	Amount     float64            `bson:"amount" json:"amount"`
	Reason     string             `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundedAt time.Time          `bson:"refundedAt" json:"refundedAt"`
	RefundedBy primitive.ObjectID `bson:"refundedBy" json:"refundedBy"`
}

// PlanDetails describe the membership bought with a membership payment.
type PlanDetails struct {
	Name           string         `bson:"name,omitempty" json:"name,omitempty" validate:"max=100"`
	MembershipType MembershipType `bson:"membershipType" json:"membershipType" validate:"required,oneof=basic standard premium vip"`
	DurationMonths int            `bson:"durationMonths" json:"durationMonths" validate:"required,min=1,max=36"`
	StartDate      *time.Time     `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate        *time.Time     `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// Payment is one invoice line charged to a client.
type Payment struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	InvoiceNumber string              `bson:"invoiceNumber" json:"invoiceNumber"`
	Client        primitive.ObjectID  `bson:"client" json:"client" validate:"required"`
	Trainer       *primitive.ObjectID `bson:"trainer,omitempty" json:"trainer,omitempty"`
	Amount        float64             `bson:"amount" json:"amount" validate:"gt=0,lte=1000000"`
	Currency      string              `bson:"currency" json:"currency" validate:"required,len=3"`
	Type          PaymentType         `bson:"type" json:"type" validate:"required,oneof=membership personal_training class product other"`
	Method        PaymentMethod       `bson:"method" json:"method" validate:"required,oneof=cash card bank_transfer online other"`
	Status        PaymentStatus       `bson:"status" json:"status" validate:"required,oneof=pending completed failed refunded cancelled"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty" validate:"max=500"`
	DueDate       *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	PaidAt        *time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Plan          *PlanDetails        `bson:"plan,omitempty" json:"plan,omitempty"`
	Refund        *Refund             `bson:"refund,omitempty" json:"refund,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	ProcessedBy   primitive.ObjectID  `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CanRefund reports whether the payment may be refunded. Only completed payments can.
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentCompleted
}

// IsOverdue reports whether a pending payment is past its due date.
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentPending && p.DueDate != nil && p.DueDate.Before(now)
}

// ApplyDefaults fills status, currency and the paid timestamp for a new payment.
func (p *Payment) ApplyDefaults(now time.Time) {
	if p.Status == "" {
		p.Status = PaymentCompleted
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Status == PaymentCompleted && p.PaidAt == nil {
		paid := now
		p.PaidAt = &paid
	}
}

// InvoicePeriod is the year-month key invoice sequences are scoped by, e.g. "2610".
func InvoicePeriod(t time.Time) string {
	return t.Format("0601")
}

// FormatInvoiceNumber renders INV-{YY}{MM}-{seq} with a five digit sequence.
func FormatInvoiceNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%05d", InvoicePeriod(t), seq)
}
