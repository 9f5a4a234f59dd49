package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Address is shared by clients and trainers.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty" validate:"max=200"`
	City    string `bson:"city,omitempty" json:"city,omitempty" validate:"max=100"`
	State   string `bson:"state,omitempty" json:"state,omitempty" validate:"max=100"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty" validate:"max=20"`
	Country string `bson:"country,omitempty" json:"country,omitempty" validate:"max=100"`
}

type EmergencyContact struct {
	Name         string `bson:"name,omitempty" json:"name,omitempty" validate:"max=100"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty" validate:"max=20"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty" validate:"max=50"`
}

// fullName joins first and last name with a single space, keeping the
// trailing space when the last name is empty.
func fullName(first, last string) string {
	return first + " " + last
}

// initials returns the upper-cased first letter of each non-empty name part.
func initials(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ageAt returns whole years between dob and now. The current year only counts
// once the birthday month/day has been reached.
func ageAt(dob *time.Time, now time.Time) *int {
	if dob == nil || dob.IsZero() {
		return nil
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}
