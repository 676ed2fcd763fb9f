package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goodfork/internal/models"
)

// AddDailySales accumulates an amount on the day's statistic row, creating
// the row lazily. The upsert makes concurrent first writes of the day safe.
func (db *DB) AddDailySales(ctx context.Context, day time.Time, amount float64) error {
	return addDailySales(ctx, db.DB, day, amount)
}

func addDailySales(ctx context.Context, ex execer, day time.Time, amount float64) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO sales_statistics (day, benefits) VALUES (?, ?)
         ON CONFLICT(day) DO UPDATE SET benefits = benefits + excluded.benefits`,
		models.DayKey(day), amount)
	if err != nil {
		return fmt.Errorf("failed to add daily sales: %w", err)
	}
	return nil
}

func (db *DB) GetDailySales(ctx context.Context, day time.Time) (*models.SalesStatistic, error) {
	var s models.SalesStatistic
	var dayStr string
	err := db.QueryRowContext(ctx,
		`SELECT id, day, benefits FROM sales_statistics WHERE day = ?`,
		models.DayKey(day)).Scan(&s.ID, &dayStr, &s.Benefits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSalesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}
	s.Day, err = time.Parse("2006-01-02", dayStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sales day %s: %w", dayStr, err)
	}
	return &s, nil
}

func (db *DB) GetSalesRange(ctx context.Context, from, to time.Time) ([]*models.SalesStatistic, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, day, benefits FROM sales_statistics WHERE day >= ? AND day <= ? ORDER BY day`,
		models.DayKey(from), models.DayKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get sales range: %w", err)
	}
	defer rows.Close()

	var stats []*models.SalesStatistic
	for rows.Next() {
		s := &models.SalesStatistic{}
		var dayStr string
		if err := rows.Scan(&s.ID, &dayStr, &s.Benefits); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		s.Day, err = time.Parse("2006-01-02", dayStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sales day %s: %w", dayStr, err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
