package service

import (
	"context"
	"io"
	"testing"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/events"
	"goodfork/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExportWorker struct {
	mock.Mock
}

func (m *mockExportWorker) EnqueueDay(ctx context.Context, day time.Time) error {
	return m.Called(ctx, day).Error(0)
}

type testEnv struct {
	db     *database.DB
	bus    *events.EventBus
	logger zerolog.Logger
	user   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user := &models.User{Name: "guest", Email: "guest@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), user))

	return &testEnv{
		db:     db,
		bus:    events.NewEventBus(),
		logger: logger,
		user:   user,
	}
}

func (e *testEnv) seedTable(t *testing.T, name string, capacity int64) *models.Table {
	t.Helper()
	table := &models.Table{Name: name, Capacity: capacity, IsAvailable: true, CanBeUsed: true}
	require.NoError(t, e.db.CreateTable(context.Background(), table))
	return table
}

// countEvents subscribes a counter for the event type; reads are safe after
// the synchronous Publish returns.
func (e *testEnv) countEvents(eventType string) *int {
	count := new(int)
	e.bus.Subscribe(eventType, func(_ *events.Event) error {
		*count++
		return nil
	})
	return count
}
