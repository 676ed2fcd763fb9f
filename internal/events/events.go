package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingPaid      = "booking_paid"
	EventOrderPlaced      = "order_placed"
	EventStockDepleted    = "stock_depleted"
	EventSalesRecorded    = "sales_recorded"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	TableID   int64     `json:"table_id"`
	Seats     int64     `json:"seats"`
	Time      time.Time `json:"time"`
	Total     float64   `json:"total,omitempty"`
}

// OrderEventPayload describes a placed order.
type OrderEventPayload struct {
	OrderID    int64   `json:"order_id"`
	Reference  string  `json:"reference"`
	UserID     int64   `json:"user_id"`
	BookingID  *int64  `json:"booking_id,omitempty"`
	TotalPrice float64 `json:"total_price"`
	IsTakeAway bool    `json:"is_take_away"`
}

// StockEventPayload is published when a stock item hits zero.
type StockEventPayload struct {
	StockID   int64   `json:"stock_id"`
	StockName string  `json:"stock_name"`
	Taken     float64 `json:"taken"`
	Unit      string  `json:"unit"`
}

// SalesEventPayload reports benefits folded into a day.
type SalesEventPayload struct {
	Day      string  `json:"day"`
	Benefits float64 `json:"benefits"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
