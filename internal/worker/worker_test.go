package worker

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/models"

	"github.com/rs/zerolog"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	reports := &fakeReports{}
	worker := NewSalesExportWorker(db, reports, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	day := time.Date(2026, 4, 1, 21, 0, 0, 0, time.UTC)
	if err := worker.EnqueueDay(ctx, day); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != models.TaskStatusCompleted {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if reports.calls != 1 {
		t.Fatalf("expected one report write, got %d", reports.calls)
	}
	if got := models.DayKey(reports.lastDay); got != "2026-04-01" {
		t.Fatalf("expected day 2026-04-01, got %s", got)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	reports := &fakeReports{err: errors.New("boom")}
	worker := NewSalesExportWorker(db, reports, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	if err := worker.EnqueueDay(ctx, time.Now()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != models.TaskStatusRetry {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	reports := &fakeReports{err: errors.New("fatal")}
	worker := NewSalesExportWorker(db, reports, nil, RetryPolicy{MaxRetries: 1}, nil)

	ctx := context.Background()
	if err := worker.EnqueueDay(ctx, time.Now()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != models.TaskStatusFailed {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestEnqueueDayValidation(t *testing.T) {
	db := newTestDB(t)
	worker := NewSalesExportWorker(db, &fakeReports{}, nil, RetryPolicy{}, nil)

	if err := worker.EnqueueDay(context.Background(), time.Time{}); err == nil {
		t.Fatalf("expected error for zero day")
	}
}

func TestEnqueueDayPersists(t *testing.T) {
	db := newTestDB(t)
	worker := NewSalesExportWorker(db, &fakeReports{}, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	if err := worker.EnqueueDay(ctx, time.Now()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := db.GetPendingExportTasks(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].TaskType != models.TaskExportDay {
		t.Fatalf("expected %s, got %s", models.TaskExportDay, tasks[0].TaskType)
	}
}

func TestDecodeDay(t *testing.T) {
	worker := NewSalesExportWorker(nil, nil, nil, RetryPolicy{}, nil)

	t.Run("ValidPayload", func(t *testing.T) {
		task := models.ExportTask{Payload: `{"day":"2026-04-01"}`}
		day, err := worker.decodeDay(&task)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if models.DayKey(day) != "2026-04-01" {
			t.Fatalf("unexpected day: %v", day)
		}
	})

	t.Run("FallsBackToTaskDay", func(t *testing.T) {
		task := models.ExportTask{Payload: `{}`, Day: "2026-04-02"}
		day, err := worker.decodeDay(&task)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if models.DayKey(day) != "2026-04-02" {
			t.Fatalf("unexpected day: %v", day)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		task := models.ExportTask{Payload: `invalid json`}
		if _, err := worker.decodeDay(&task); err == nil {
			t.Fatalf("expected error for invalid json")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

// Helpers

type fakeReports struct {
	err     error
	calls   int
	lastDay time.Time
}

func (f *fakeReports) WriteDay(ctx context.Context, day time.Time) (string, error) {
	f.calls++
	f.lastDay = day
	return "sales.xlsx", f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM export_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
