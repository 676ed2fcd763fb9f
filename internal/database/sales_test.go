package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDailySalesAccumulates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)

	require.NoError(t, db.AddDailySales(ctx, day, 20.50))
	require.NoError(t, db.AddDailySales(ctx, day, 10.00))
	// any time of the same day lands on the same row
	require.NoError(t, db.AddDailySales(ctx, day.Add(5*time.Hour), 1.25))

	stats, err := db.GetDailySales(ctx, day)
	require.NoError(t, err)
	assert.InDelta(t, 31.75, stats.Benefits, 1e-9)
	assert.Equal(t, "2026-08-30", stats.Day.Format("2006-01-02"))
}

func TestGetDailySalesMissingDay(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetDailySales(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrSalesNotFound)
}

func TestGetSalesRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.AddDailySales(ctx, base.AddDate(0, 0, i), float64(i+1)))
	}

	stats, err := db.GetSalesRange(ctx, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.InDelta(t, 2, stats[0].Benefits, 1e-9)
	assert.InDelta(t, 4, stats[2].Benefits, 1e-9)
}
