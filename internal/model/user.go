package model

import "time"

// Gender values accepted on user profiles. An empty string means unset.
const (
	GenderMale           = "M"
	GenderFemale         = "F"
	GenderPreferNotToSay = "N"
)

// User is an account in the system. Email is the login identifier.
// PasswordHash is nil for accounts created through OTP login only.
type User struct {
	ID           string     `json:"-"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       string     `json:"gender"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	IsActive     bool       `json:"-"`
	IsStaff      bool       `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}
