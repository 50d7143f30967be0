package model

import "time"

// Wishlist groups products for an occasion. Products is populated on reads
// through the wishlist_products join table.
type Wishlist struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	OccasionDate *time.Time `json:"occasion_date"`
	Address      string     `json:"address,omitempty"`
	Products     []Product  `json:"products"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}
