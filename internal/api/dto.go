package api

import (
	"time"

	"alcyxob/gym-manager/internal/domain"
)

// ClientResponse is a client with the fields the dashboard derives from it.
type ClientResponse struct {
	domain.Client
	FullName         string              `json:"fullName"`
	Initials         string              `json:"initials"`
	Age              *int                `json:"age"`
	MembershipStatus domain.ClientStatus `json:"membershipStatus"`
	DaysRemaining    int                 `json:"daysRemaining"`
}

// ClientListItem is a listed client with its trainer inlined.
type ClientListItem struct {
	ClientResponse
	Trainer *domain.PersonSummary `json:"trainer,omitempty"`
}

type TrainerResponse struct {
	domain.Trainer
	FullName       string `json:"fullName"`
	Initials       string `json:"initials"`
	Age            *int   `json:"age"`
	YearsOfService int    `json:"yearsOfService"`
}

// UserResponse is a staff account. Password hash and reset codes never leave the server.
type UserResponse struct {
	domain.User
	FullName string `json:"fullName"`
	Initials string `json:"initials"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PaymentResponse struct {
	domain.PaymentRecord
	IsOverdue bool `json:"isOverdue"`
}

type ExpiringMembershipResponse struct {
	Client        ClientResponse `json:"client"`
	DaysRemaining int            `json:"daysRemaining"`
}

// MapClientToResponse converts a domain.Client to its response DTO as of now.
func MapClientToResponse(c *domain.Client, now time.Time) ClientResponse {
	return ClientResponse{
		Client:           *c,
		FullName:         c.FullName(),
		Initials:         c.Initials(),
		Age:              c.Age(now),
		MembershipStatus: c.MembershipStatus(now),
		DaysRemaining:    c.DaysRemaining(now),
	}
}

func MapClientsToResponse(clients []domain.Client, now time.Time) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = MapClientToResponse(&clients[i], now)
	}
	return out
}

func MapClientRecordsToResponse(records []domain.ClientRecord, now time.Time) []ClientListItem {
	out := make([]ClientListItem, len(records))
	for i := range records {
		out[i] = ClientListItem{
			ClientResponse: MapClientToResponse(&records[i].Client, now),
			Trainer:        records[i].Trainer,
		}
	}
	return out
}

func MapTrainerToResponse(t *domain.Trainer, now time.Time) TrainerResponse {
	return TrainerResponse{
		Trainer:        *t,
		FullName:       t.FullName(),
		Initials:       t.Initials(),
		Age:            t.Age(now),
		YearsOfService: t.YearsOfService(now),
	}
}

func MapTrainersToResponse(trainers []domain.Trainer, now time.Time) []TrainerResponse {
	out := make([]TrainerResponse, len(trainers))
	for i := range trainers {
		out[i] = MapTrainerToResponse(&trainers[i], now)
	}
	return out
}

// MapUserToResponse converts a domain.User to UserResponse DTO.
func MapUserToResponse(u *domain.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{User: *u, FullName: u.FullName(), Initials: u.Initials()}
}

func MapPaymentToResponse(p *domain.PaymentRecord, now time.Time) PaymentResponse {
	return PaymentResponse{PaymentRecord: *p, IsOverdue: p.IsOverdue(now)}
}

func MapPaymentsToResponse(records []domain.PaymentRecord, now time.Time) []PaymentResponse {
	out := make([]PaymentResponse, len(records))
	for i := range records {
		out[i] = MapPaymentToResponse(&records[i], now)
	}
	return out
}
