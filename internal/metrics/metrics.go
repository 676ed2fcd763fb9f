package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted since start.",
		},
	)

	tablesAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "tables_allocated_total",
			Help:      "Tables taken by a booking.",
		},
	)

	tablesReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "tables_released_total",
			Help:      "Tables returned to the pool.",
		},
	)

	ordersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "orders_placed_total",
			Help:      "Orders by channel.",
		},
		[]string{"channel"},
	)

	stockDepleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "stock_depleted_total",
			Help:      "Stock items consumed down to zero.",
		},
	)

	salesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "sales_recorded_total",
			Help:      "Daily sales upserts.",
		},
	)

	exportTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goodfork",
			Name:      "export_tasks_total",
			Help:      "Sales export tasks by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			tablesAllocated,
			tablesReleased,
			ordersPlaced,
			stockDepleted,
			salesRecorded,
			exportTasks,
		)
	})
}

// IncBookingCreated counts an accepted booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncTableAllocated counts a table taken by a booking.
func IncTableAllocated() {
	tablesAllocated.Inc()
}

// IncTableReleased counts a table returned to the pool.
func IncTableReleased() {
	tablesReleased.Inc()
}

// IncOrderPlaced counts an order; channel is "dine_in" or "take_away".
func IncOrderPlaced(channel string) {
	ordersPlaced.WithLabelValues(channel).Inc()
}

// IncStockDepleted counts a stock item hitting zero.
func IncStockDepleted() {
	stockDepleted.Inc()
}

// IncSalesRecorded counts a daily sales upsert.
func IncSalesRecorded() {
	salesRecorded.Inc()
}

// IncExportTask counts an export task outcome.
func IncExportTask(status string) {
	exportTasks.WithLabelValues(status).Inc()
}
