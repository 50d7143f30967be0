package request

// ProductNested is a product payload embedded in wishlist create and
// update bodies. Existing products matching on name and price are reused
// rather than duplicated.
type ProductNested struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Priority string  `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	Price    string  `json:"price" validate:"required,price"`
	Link     *string `json:"link" validate:"omitempty,url"`
	Notes    string  `json:"notes"`
}
