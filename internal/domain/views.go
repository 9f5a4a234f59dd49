package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// PersonSummary is the slice of a client, trainer or user that list views
// inline in place of a reference id.
type PersonSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

func (p *PersonSummary) FullName() string { return fullName(p.FirstName, p.LastName) }

// SummaryFields are the fields a PersonSummary is projected from.
var SummaryFields = []string{"firstName", "lastName", "email", "phone", "avatar"}

// ClientRecord is a client as listed, with its trainer expanded.
type ClientRecord struct {
	Client  `bson:",inline"`
	Trainer *PersonSummary `bson:"trainer,omitempty" json:"trainer,omitempty"`
}

// PaymentRecord is a payment as listed, with client and trainer expanded.
type PaymentRecord struct {
	Payment     `bson:",inline"`
	ClientInfo  *PersonSummary `bson:"clientInfo,omitempty" json:"clientInfo,omitempty"`
	TrainerInfo *PersonSummary `bson:"trainerInfo,omitempty" json:"trainerInfo,omitempty"`
}

// ActivityRecord is an activity as listed, with the acting user expanded.
type ActivityRecord struct {
	Activity  `bson:",inline"`
	ActorInfo *PersonSummary `bson:"actorInfo,omitempty" json:"actorInfo,omitempty"`
}
