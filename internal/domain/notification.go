package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyPayment    NotificationType = "payment"
	NotifyMembership NotificationType = "membership"
	NotifyClient     NotificationType = "client"
	NotifyTrainer    NotificationType = "trainer"
	NotifySystem     NotificationType = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NotificationTTL is how long a notification lives before the store expires it.
const NotificationTTL = 30 * 24 * time.Hour

// Notification is a per-user inbox item. Records are removed by a TTL index on ExpiresAt.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Recipient primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Type      NotificationType    `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Priority  Priority            `bson:"priority" json:"priority"`
	Read      bool                `bson:"read" json:"read"`
	ReadAt    *time.Time          `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Reference *EntityRef          `bson:"reference,omitempty" json:"reference,omitempty"`
	Actor     *primitive.ObjectID `bson:"actor,omitempty" json:"actor,omitempty"`
	ExpiresAt time.Time           `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// Activity is one line of the global audit log.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Actor       primitive.ObjectID `bson:"actor" json:"actor"`
	Action      string             `bson:"action" json:"action"`
	Description string             `bson:"description" json:"description"`
	Entity      *EntityRef         `bson:"entity,omitempty" json:"entity,omitempty"`
	Metadata    map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Audit actions.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionRefund   = "refund"
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionCheckIn  = "check_in"
	ActionProgress = "progress"
	ActionAvatar   = "avatar"
	ActionReminder = "reminder"
	ActionPassword = "password_change"
)
