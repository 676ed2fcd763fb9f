package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goodfork/internal/models"
)

// GetOrCreateStockByName resolves a stock item, creating a zero-quantity
// placeholder in the caller-supplied unit when the name was never seen.
// The insert is an upsert, so two concurrent first orders of the same
// ingredient cannot collide.
func (db *DB) GetOrCreateStockByName(ctx context.Context, name, unit string) (*models.StockItem, error) {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		`INSERT INTO stocks (name, quantity, unit, created_at, updated_at) VALUES (?, 0, ?, ?, ?)
         ON CONFLICT(name) DO NOTHING`,
		name, unit, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert stock %q: %w", name, err)
	}
	return db.GetStockByName(ctx, name)
}

func (db *DB) GetStockByName(ctx context.Context, name string) (*models.StockItem, error) {
	query := `SELECT id, name, quantity, unit, unit_price, is_orderable, is_cookable, use_by_min, use_by_max, created_at, updated_at
              FROM stocks WHERE name = ?`
	return db.scanStock(db.QueryRowContext(ctx, query, name))
}

func (db *DB) GetStock(ctx context.Context, id int64) (*models.StockItem, error) {
	query := `SELECT id, name, quantity, unit, unit_price, is_orderable, is_cookable, use_by_min, use_by_max, created_at, updated_at
              FROM stocks WHERE id = ?`
	return db.scanStock(db.QueryRowContext(ctx, query, id))
}

func (db *DB) scanStock(row *sql.Row) (*models.StockItem, error) {
	var s models.StockItem
	var useByMin, useByMax sql.NullTime
	err := row.Scan(
		&s.ID, &s.Name, &s.Quantity, &s.Unit, &s.UnitPrice,
		&s.IsOrderable, &s.IsCookable, &useByMin, &useByMax,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if useByMin.Valid {
		s.UseByMin = &useByMin.Time
	}
	if useByMax.Valid {
		s.UseByMax = &useByMax.Time
	}
	return &s, nil
}

func (db *DB) ListStocks(ctx context.Context) ([]*models.StockItem, error) {
	query := `SELECT id, name, quantity, unit, unit_price, is_orderable, is_cookable, use_by_min, use_by_max, created_at, updated_at
              FROM stocks ORDER BY name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*models.StockItem
	for rows.Next() {
		var s models.StockItem
		var useByMin, useByMax sql.NullTime
		err := rows.Scan(
			&s.ID, &s.Name, &s.Quantity, &s.Unit, &s.UnitPrice,
			&s.IsOrderable, &s.IsCookable, &useByMin, &useByMax,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		if useByMin.Valid {
			s.UseByMin = &useByMin.Time
		}
		if useByMax.Valid {
			s.UseByMax = &useByMax.Time
		}
		stocks = append(stocks, &s)
	}
	return stocks, rows.Err()
}

// ConsumeStock decrements quantity by qty as a single conditional update,
// clamping at zero. The quantity column can never go negative.
func (db *DB) ConsumeStock(ctx context.Context, id int64, qty float64) (*models.Consumption, error) {
	if qty < 0 {
		return nil, fmt.Errorf("negative consumption: %f", qty)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE stocks
         SET quantity = CASE WHEN quantity >= ? THEN quantity - ? ELSE 0 END,
             updated_at = ?
         WHERE id = ?`,
		qty, qty, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to consume stock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrStockNotFound
	}

	stock, err := db.GetStock(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.Consumption{
		StockID:   id,
		StockName: stock.Name,
		Taken:     qty,
		Remaining: stock.Quantity,
		Depleted:  qty > 0 && stock.Quantity == 0,
	}, nil
}

// AdjustStock adds delta to quantity (deliveries, corrections). Negative
// results clamp at zero like consumption does.
func (db *DB) AdjustStock(ctx context.Context, id int64, delta float64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stocks SET quantity = MAX(0, quantity + ?), updated_at = ? WHERE id = ?`,
		delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrStockNotFound
	}
	return nil
}
