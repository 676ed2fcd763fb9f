package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goodfork/internal/database"
	"goodfork/internal/metrics"
	"goodfork/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ReportWriter renders one day of sales into a file and returns its path.
type ReportWriter interface {
	WriteDay(ctx context.Context, day time.Time) (string, error)
}

// exportPayload is persisted in ExportTask.Payload as JSON.
type exportPayload struct {
	Day string `json:"day"`
}

// SalesExportWorker consumes export_queue tasks and writes sales workbooks.
// Tasks go to redis when it is up, the in-memory channel otherwise; the
// sqlite row is the source of truth either way, so a crash loses nothing.
type SalesExportWorker struct {
	db            *database.DB
	reports       ReportWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.ExportTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewSalesExportWorker builds a worker with sane defaults.
func NewSalesExportWorker(db *database.DB, reports ReportWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SalesExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SalesExportWorker{
		db:            db,
		reports:       reports,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.ExportTask, models.WorkerQueueSize),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueDay persists a task for the day and schedules it via redis or
// the in-memory queue.
func (w *SalesExportWorker) EnqueueDay(ctx context.Context, day time.Time) error {
	if day.IsZero() {
		return errors.New("day is required")
	}

	dayKey := models.DayKey(day)
	payloadBytes, err := json.Marshal(exportPayload{Day: dayKey})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.ExportTask{
		TaskType:  models.TaskExportDay,
		Day:       dayKey,
		Payload:   string(payloadBytes),
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateExportTask(ctx, &task); err != nil {
		return fmt.Errorf("persist export task: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("export_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("export_worker: in-memory queue full, task dropped to polling")
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *SalesExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export_worker: started")
	defer w.logger.Info().Msg("export_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingExportTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("export_worker: fetch pending")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *SalesExportWorker) tryLocalQueue() (models.ExportTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.ExportTask{}, false
	}
}

func (w *SalesExportWorker) tryRedis(ctx context.Context) (models.ExportTask, bool) {
	if w.redis == nil {
		return models.ExportTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.ExportTask{}, false
		}
		w.logger.Error().Err(err).Msg("export_worker: redis BRPOP error")
		return models.ExportTask{}, false
	}
	if len(res) != 2 {
		return models.ExportTask{}, false
	}
	var task models.ExportTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("export_worker: decode redis task")
		return models.ExportTask{}, false
	}
	return task, true
}

func (w *SalesExportWorker) processTask(ctx context.Context, task *models.ExportTask) {
	day, err := w.decodeDay(task)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if task.TaskType != models.TaskExportDay {
		w.failTask(ctx, task, fmt.Errorf("unknown task type: %s", task.TaskType))
		return
	}

	if _, err := w.reports.WriteDay(ctx, day); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark completed")
	}
	metrics.IncExportTask(models.TaskStatusCompleted)
}

func (w *SalesExportWorker) retryOrFail(ctx context.Context, task *models.ExportTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.TaskStatusFailed, cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark failed")
		}
		metrics.IncExportTask(models.TaskStatusFailed)
		w.pushDeadLetter(ctx, task)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.TaskStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark retry")
	}
	metrics.IncExportTask(models.TaskStatusRetry)
}

func (w *SalesExportWorker) failTask(ctx context.Context, task *models.ExportTask, cause error) {
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.TaskStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark failed")
	}
	metrics.IncExportTask(models.TaskStatusFailed)
	w.pushDeadLetter(ctx, task)
}

func (w *SalesExportWorker) decodeDay(task *models.ExportTask) (time.Time, error) {
	var payload exportPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		return time.Time{}, err
	}
	if payload.Day == "" {
		payload.Day = task.Day
	}
	return time.Parse("2006-01-02", payload.Day)
}

func (w *SalesExportWorker) pushRedis(ctx context.Context, task models.ExportTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SalesExportWorker) pushDeadLetter(ctx context.Context, task *models.ExportTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: deadletter push")
	}
}
