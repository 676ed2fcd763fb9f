package models

import "time"

// StockItem tracks the quantity on hand for one named ingredient, expressed
// in the item's own unit. Quantity never goes below zero.
type StockItem struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	UnitPrice   float64    `json:"unit_price"`
	IsOrderable bool       `json:"is_orderable"`
	IsCookable  bool       `json:"is_cookable"`
	UseByMin    *time.Time `json:"use_by_min,omitempty"`
	UseByMax    *time.Time `json:"use_by_max,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Consumption is the outcome of one stock decrement. Depleted means the
// item hit zero, either exactly or because the decrement was clamped.
type Consumption struct {
	StockID   int64   `json:"stock_id"`
	StockName string  `json:"stock_name"`
	Taken     float64 `json:"taken"`
	Remaining float64 `json:"remaining"`
	Depleted  bool    `json:"depleted"`
}
