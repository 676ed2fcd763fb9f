package models

import "time"

// Table is a physical table in the hall. Availability flips on allocation
// and release; CanBeUsed marks tables taken out of service.
type Table struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name,omitempty"`
	Capacity    int64     `json:"capacity"`
	IsAvailable bool      `json:"is_available"`
	CanBeUsed   bool      `json:"can_be_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Booking holds a table for a user at a given time. The four flags form the
// lifecycle: reserved -> seated -> pay enabled -> finished/paid.
type Booking struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	TableID         int64     `json:"table_id"`
	Time            time.Time `json:"time"`
	Seats           int64     `json:"seats"`
	IsClientOnPlace bool      `json:"is_client_on_place"`
	CanClientPay    bool      `json:"can_client_pay"`
	IsFinished      bool      `json:"is_finished"`
	IsPaid          bool      `json:"is_paid"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookingUpdate is a partial update: only non-nil fields are applied.
type BookingUpdate struct {
	Time            *time.Time `json:"time,omitempty"`
	Seats           *int64     `json:"seats,omitempty"`
	IsClientOnPlace *bool      `json:"is_client_on_place,omitempty"`
	CanClientPay    *bool      `json:"can_client_pay,omitempty"`
}

// IsEmpty reports whether the update carries no changes.
func (u BookingUpdate) IsEmpty() bool {
	return u.Time == nil && u.Seats == nil && u.IsClientOnPlace == nil && u.CanClientPay == nil
}
