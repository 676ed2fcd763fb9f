package models

import "time"

// SalesStatistic accumulates benefits for one calendar day.
// Rows are created lazily on the first write of the day.
type SalesStatistic struct {
	ID       int64     `json:"id"`
	Day      time.Time `json:"day"`
	Benefits float64   `json:"benefits"`
}

// DayKey formats a time as the sales_statistics day column value.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ExportTask is a queued sales-export job persisted in export_queue.
type ExportTask struct {
	ID          int64      `json:"id"`
	TaskType    string     `json:"task_type"`
	Day         string     `json:"day"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
