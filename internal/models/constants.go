package models

const (
	// TypeMass, TypeVolume and TypeOther name the built-in measurement types.
	// TypeOther is the sentinel for non-convertible units.
	TypeMass   = "mass"
	TypeVolume = "volume"
	TypeOther  = "other"

	// RefUnitMass and RefUnitVolume are the reference units conversions
	// route through.
	RefUnitMass   = "g"
	RefUnitVolume = "mL"
)

const (
	// NotesMaxLen bounds the free-text notes on an order.
	NotesMaxLen = 1000

	// MinPartySize is the smallest bookable party.
	MinPartySize = 1
)

// StockPolicyClamp documents the decrement policy: consuming more than is on
// hand clamps the quantity at zero instead of rejecting the order. A reject
// would permanently block ingredients auto-created as zero-quantity
// placeholders.
const StockPolicyClamp = true

const (
	TaskExportDay = "export_day"

	TaskStatusPending   = "pending"
	TaskStatusRetry     = "retry"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

const (
	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// RateLimitOrders количество заказов в окне
	RateLimitOrders = 20

	// RateLimitWindow окно ограничения частоты заказов
	RateLimitWindow = 60 // секунды
)
