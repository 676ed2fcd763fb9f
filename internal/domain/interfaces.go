package domain

import (
	"context"
	"time"

	"goodfork/internal/models"
)

// Repository is the persistent store the services operate on.
type Repository interface {
	// Tables / capacity allocation
	CreateTable(ctx context.Context, table *models.Table) error
	GetTable(ctx context.Context, id int64) (*models.Table, error)
	ListTables(ctx context.Context) ([]*models.Table, error)
	SetTableUsable(ctx context.Context, id int64, usable bool) error
	AllocateTable(ctx context.Context, seats int64) (*models.Table, error)
	ReleaseTable(ctx context.Context, id int64) error

	// Bookings
	CreateBookingWithTable(ctx context.Context, booking *models.Booking) (*models.Table, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, update models.BookingUpdate) error
	DeleteBookingAndRelease(ctx context.Context, id int64) error
	FinishBookingAndRecordSales(ctx context.Context, id int64) (float64, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetOverdueBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error)

	// Orders
	CreateOrder(ctx context.Context, order *models.Order, menuIDs []int64) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetBookingOrders(ctx context.Context, bookingID int64) ([]*models.Order, error)

	// Stock ledger
	GetOrCreateStockByName(ctx context.Context, name, unit string) (*models.StockItem, error)
	GetStockByName(ctx context.Context, name string) (*models.StockItem, error)
	ListStocks(ctx context.Context) ([]*models.StockItem, error)
	ConsumeStock(ctx context.Context, id int64, qty float64) (*models.Consumption, error)
	AdjustStock(ctx context.Context, id int64, delta float64) error

	// Sales statistics
	AddDailySales(ctx context.Context, day time.Time, amount float64) error
	GetDailySales(ctx context.Context, day time.Time) (*models.SalesStatistic, error)
	GetSalesRange(ctx context.Context, from, to time.Time) ([]*models.SalesStatistic, error)
}

// UserDirectory is the external user CRUD this core only reads from.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// MenuCatalog is the external menu CRUD this core only reads from.
type MenuCatalog interface {
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)
	GetMenuIngredients(ctx context.Context, id int64) ([]models.Ingredient, error)
}

// Converter turns a quantity from one unit into another.
type Converter interface {
	Convert(value float64, fromUnit, toUnit string) (float64, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter bounds per-user request bursts.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// ExportWorker schedules sales-export jobs.
type ExportWorker interface {
	EnqueueDay(ctx context.Context, day time.Time) error
}

// BookingService drives the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, userID int64, at time.Time, seats int64) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, update models.BookingUpdate) (*models.Booking, error)
	CancelBooking(ctx context.Context, id int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
}

// OrderService expands menu lists into orders and stock consumption.
type OrderService interface {
	PlaceOrder(ctx context.Context, bookingID *int64, userID int64, notes string, menuIDs []int64, takeAway bool) (*models.Order, error)
}

// PaymentService closes out take-away orders and bookings.
type PaymentService interface {
	PayTakeAway(ctx context.Context, userID int64, notes string, menuIDs []int64) (*models.Order, error)
	PayBooking(ctx context.Context, bookingID int64) error
}
