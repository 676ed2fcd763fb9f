package models

import "time"

// Order is a placed order. BookingID is nil for take-away orders.
type Order struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	BookingID  *int64    `json:"booking_id,omitempty"`
	UserID     int64     `json:"user_id"`
	Notes      string    `json:"notes,omitempty"`
	TotalPrice float64   `json:"total_price"`
	IsTakeAway bool      `json:"is_take_away"`
	IsFinished bool      `json:"is_finished"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderMenu links one menu position to an order. Created atomically with it.
type OrderMenu struct {
	ID      int64 `json:"id"`
	OrderID int64 `json:"order_id"`
	MenuID  int64 `json:"menu_id"`
}

// Menu is a sellable dish from the catalog. Price is pre-computed and stored;
// it is never re-derived from ingredient cost at order time.
type Menu struct {
	ID          int64        `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Price       float64      `yaml:"price" json:"price"`
	Type        string       `yaml:"type" json:"type,omitempty"`
	Ingredients []Ingredient `yaml:"ingredients" json:"ingredients,omitempty"`
}

// Ingredient declares how much of a named stock a menu consumes.
type Ingredient struct {
	Stock    string  `yaml:"stock" json:"stock"`
	Quantity float64 `yaml:"quantity" json:"quantity"`
	Unit     string  `yaml:"unit" json:"unit"`
}
