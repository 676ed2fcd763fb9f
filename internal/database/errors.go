package database

import "goodfork/internal/domain"

var (
	ErrNoTableAvailable = domain.Conflict("no available table with sufficient capacity")
	ErrBookingFinished  = domain.Conflict("booking is already finished")

	ErrTableNotFound   = domain.NotFound("table not found")
	ErrBookingNotFound = domain.NotFound("booking not found")
	ErrOrderNotFound   = domain.NotFound("order not found")
	ErrStockNotFound   = domain.NotFound("stock item not found")
	ErrUserNotFound    = domain.NotFound("user not found")
	ErrSalesNotFound   = domain.NotFound("no sales recorded for that day")
)
