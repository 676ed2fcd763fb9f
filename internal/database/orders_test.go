package database

import (
	"context"
	"testing"
	"time"

	"goodfork/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderLinksMenus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	order := &models.Order{Reference: "take-1", UserID: 7, Notes: "no onions", TotalPrice: 20.50, IsTakeAway: true}
	require.NoError(t, db.CreateOrder(ctx, order, []int64{3, 5}))
	require.NotZero(t, order.ID)

	got, err := db.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BookingID)
	assert.True(t, got.IsTakeAway)
	assert.InDelta(t, 20.50, got.TotalPrice, 1e-9)
	assert.Equal(t, "no onions", got.Notes)

	ids, err := db.GetOrderMenuIDs(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)
}

func TestGetBookingOrders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestTable(t, db, "t4", 4, true)
	booking, _ := createTestBooking(t, db, 1, 2)

	for i, price := range []float64{12.50, 8.00} {
		order := &models.Order{
			Reference:  "b-" + time.Now().Add(time.Duration(i)).Format("150405.000000000"),
			BookingID:  &booking.ID,
			UserID:     1,
			TotalPrice: price,
		}
		require.NoError(t, db.CreateOrder(ctx, order, []int64{int64(i + 1)}))
	}

	orders, err := db.GetBookingOrders(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	var sum float64
	for _, o := range orders {
		require.NotNil(t, o.BookingID)
		assert.Equal(t, booking.ID, *o.BookingID)
		sum += o.TotalPrice
	}
	assert.InDelta(t, 20.50, sum, 1e-9)
}

func TestGetOrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetOrder(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
