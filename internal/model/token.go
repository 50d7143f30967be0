package model

import "time"

// AuthToken is an opaque API token. Only the SHA-256 hash of the key is
// stored; the raw key is returned to the client once at creation.
type AuthToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
}

// OTPToken is a short-lived one-time login code delivered by email.
type OTPToken struct {
	ID         string
	UserID     string
	Code       string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
