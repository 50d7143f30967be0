package model

import "time"

// Product priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Product is a wishable item owned by a user. Price is kept as a string in
// JSON to avoid floating-point drift on monetary values.
type Product struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Priority  string    `json:"priority"`
	Price     string    `json:"price"`
	Link      *string   `json:"link"`
	ImagePath *string   `json:"image"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
