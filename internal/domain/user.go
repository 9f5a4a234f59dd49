package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between staff roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// OTP is a pending password-reset code. Only the bcrypt hash is stored.
type OTP struct {
	CodeHash  string    `bson:"codeHash" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"-"`
	Attempts  int       `bson:"attempts" json:"-"`
	Verified  bool      `bson:"verified" json:"-"`
}

// Expired reports whether the code can no longer be used at now.
func (o *OTP) Expired(now time.Time) bool {
	return o == nil || !now.Before(o.ExpiresAt)
}

type Preferences struct {
	EmailNotifications bool   `bson:"emailNotifications" json:"emailNotifications"`
	PushNotifications  bool   `bson:"pushNotifications" json:"pushNotifications"`
	Theme              string `bson:"theme,omitempty" json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	Language           string `bson:"language,omitempty" json:"language,omitempty" validate:"omitempty,max=10"`
}

// DefaultPreferences is what a freshly registered user gets.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, PushNotifications: true, Theme: "system", Language: "en"}
}

// User is a staff account that can sign in to the dashboard.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"firstName" json:"firstName" validate:"required,max=50"`
	LastName     string             `bson:"lastName" json:"lastName" validate:"max=50"`
	Email        string             `bson:"email" json:"email" validate:"required,email,max=100"` // unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role" validate:"required,oneof=admin manager staff"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"max=20"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	OTP          *OTP               `bson:"otp,omitempty" json:"-"`
	Preferences  Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string { return fullName(u.FirstName, u.LastName) }

func (u *User) Initials() string { return initials(u.FirstName, u.LastName) }

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
