package service

import (
	"context"
	"testing"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/events"
	"goodfork/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentService(e *testEnv, orders *OrderService, exports *mockExportWorker) *PaymentService {
	return NewPaymentService(e.db, orders, e.bus, exports, &e.logger)
}

func TestPayTakeAway(t *testing.T) {
	e := newTestEnv(t)
	orders := newOrderService(e, testMenus(), 100)
	exports := &mockExportWorker{}
	exports.On("EnqueueDay", mock.Anything, mock.Anything).Return(nil)
	svc := newPaymentService(e, orders, exports)
	recorded := e.countEvents(events.EventSalesRecorded)
	ctx := context.Background()

	order, err := svc.PayTakeAway(ctx, e.user.ID, "extra napkins", []int64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 16.50, order.TotalPrice, 1e-9)
	assert.True(t, order.IsTakeAway)
	assert.Equal(t, 1, *recorded)

	stat, err := e.db.GetDailySales(ctx, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 16.50, stat.Benefits, 1e-9)

	exports.AssertNumberOfCalls(t, "EnqueueDay", 1)
}

func TestPayBooking(t *testing.T) {
	e := newTestEnv(t)
	table := e.seedTable(t, "window", 4)
	orders := newOrderService(e, testMenus(), 100)
	exports := &mockExportWorker{}
	exports.On("EnqueueDay", mock.Anything, mock.Anything).Return(nil)
	svc := newPaymentService(e, orders, exports)
	bookings := newBookingService(e)
	paid := e.countEvents(events.EventBookingPaid)
	ctx := context.Background()

	booking, err := bookings.CreateBooking(ctx, e.user.ID, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)

	seated, pay := true, true
	_, err = bookings.UpdateBooking(ctx, booking.ID, models.BookingUpdate{IsClientOnPlace: &seated, CanClientPay: &pay})
	require.NoError(t, err)

	_, err = orders.PlaceOrder(ctx, &booking.ID, e.user.ID, "", []int64{1}, false)
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, &booking.ID, e.user.ID, "", []int64{2}, false)
	require.NoError(t, err)

	require.NoError(t, svc.PayBooking(ctx, booking.ID))
	assert.Equal(t, 1, *paid)

	got, err := e.db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFinished)
	assert.True(t, got.IsPaid)

	freed, err := e.db.GetTable(ctx, table.ID)
	require.NoError(t, err)
	assert.True(t, freed.IsAvailable, "paid booking must free its table")

	stat, err := e.db.GetDailySales(ctx, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 16.50, stat.Benefits, 1e-9)

	exports.AssertNumberOfCalls(t, "EnqueueDay", 1)
}

func TestPayBookingNotEnabled(t *testing.T) {
	e := newTestEnv(t)
	e.seedTable(t, "window", 4)
	svc := newPaymentService(e, newOrderService(e, testMenus(), 100), &mockExportWorker{})
	bookings := newBookingService(e)
	ctx := context.Background()

	booking, err := bookings.CreateBooking(ctx, e.user.ID, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.PayBooking(ctx, booking.ID), ErrPaymentNotEnabled)
}

func TestPayBookingTwice(t *testing.T) {
	e := newTestEnv(t)
	e.seedTable(t, "window", 4)
	exports := &mockExportWorker{}
	exports.On("EnqueueDay", mock.Anything, mock.Anything).Return(nil)
	orders := newOrderService(e, testMenus(), 100)
	svc := newPaymentService(e, orders, exports)
	bookings := newBookingService(e)
	ctx := context.Background()

	booking, err := bookings.CreateBooking(ctx, e.user.ID, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)

	seated, pay := true, true
	_, err = bookings.UpdateBooking(ctx, booking.ID, models.BookingUpdate{IsClientOnPlace: &seated, CanClientPay: &pay})
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, &booking.ID, e.user.ID, "", []int64{2}, false)
	require.NoError(t, err)

	require.NoError(t, svc.PayBooking(ctx, booking.ID))

	// finishing clears can_client_pay, the second attempt is refused
	assert.ErrorIs(t, svc.PayBooking(ctx, booking.ID), ErrPaymentNotEnabled)

	stat, err := e.db.GetDailySales(ctx, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 4.00, stat.Benefits, 1e-9, "sales must not be double counted")
}

func TestPayBookingNotFound(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentService(e, newOrderService(e, testMenus(), 100), &mockExportWorker{})

	assert.ErrorIs(t, svc.PayBooking(context.Background(), 999), database.ErrBookingNotFound)
}

func TestPayBookingWithoutOrders(t *testing.T) {
	e := newTestEnv(t)
	e.seedTable(t, "window", 4)
	exports := &mockExportWorker{}
	svc := newPaymentService(e, newOrderService(e, testMenus(), 100), exports)
	bookings := newBookingService(e)
	ctx := context.Background()

	booking, err := bookings.CreateBooking(ctx, e.user.ID, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)
	seated, pay := true, true
	_, err = bookings.UpdateBooking(ctx, booking.ID, models.BookingUpdate{IsClientOnPlace: &seated, CanClientPay: &pay})
	require.NoError(t, err)

	require.NoError(t, svc.PayBooking(ctx, booking.ID))

	// nothing ordered, nothing recorded and nothing exported
	_, err = e.db.GetDailySales(ctx, time.Now())
	assert.ErrorIs(t, err, database.ErrSalesNotFound)
	exports.AssertNotCalled(t, "EnqueueDay", mock.Anything, mock.Anything)
}
