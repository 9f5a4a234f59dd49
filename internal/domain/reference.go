package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntityKind names the kind of record an EntityRef points at.
type EntityKind string

const (
	KindClient  EntityKind = "client"
	KindTrainer EntityKind = "trainer"
	KindPayment EntityKind = "payment"
	KindUser    EntityKind = "user"
)

// Collection returns the collection that stores records of this kind.
func (k EntityKind) Collection() (string, error) {
	switch k {
	case KindClient:
		return "clients", nil
	case KindTrainer:
		return "trainers", nil
	case KindPayment:
		return "payments", nil
	case KindUser:
		return "users", nil
	}
	return "", fmt.Errorf("unknown entity kind %q", string(k))
}

// Valid reports whether k is one of the known kinds.
func (k EntityKind) Valid() bool {
	_, err := k.Collection()
	return err == nil
}

// EntityRef is a lookup-only back-reference from an Activity or Notification
// to the record it is about.
type EntityRef struct {
	Kind EntityKind         `bson:"kind" json:"kind"`
	ID   primitive.ObjectID `bson:"id" json:"id"`
}

func ClientRef(id primitive.ObjectID) *EntityRef  { return &EntityRef{Kind: KindClient, ID: id} }
func TrainerRef(id primitive.ObjectID) *EntityRef { return &EntityRef{Kind: KindTrainer, ID: id} }
func PaymentRef(id primitive.ObjectID) *EntityRef { return &EntityRef{Kind: KindPayment, ID: id} }
func UserRef(id primitive.ObjectID) *EntityRef    { return &EntityRef{Kind: KindUser, ID: id} }
