package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goodfork/internal/models"
)

// CreateOrder inserts the order and its menu links in one transaction;
// an order without its menus must never be observable.
func (db *DB) CreateOrder(ctx context.Context, order *models.Order, menuIDs []int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO orders (reference, booking_id, user_id, notes, total_price, is_take_away, is_finished, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		order.Reference,
		order.BookingID,
		order.UserID,
		order.Notes,
		order.TotalPrice,
		order.IsTakeAway,
		order.IsFinished,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	for _, menuID := range menuIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders_menus (order_id, menu_id) VALUES (?, ?)`, id, menuID); err != nil {
			return fmt.Errorf("failed to link menu %d: %w", menuID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	order.ID = id
	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (db *DB) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT id, reference, booking_id, user_id, notes, total_price, is_take_away, is_finished, created_at, updated_at
              FROM orders WHERE id = ?`
	var o models.Order
	var bookingID sql.NullInt64
	var notes sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Reference, &bookingID, &o.UserID, &notes, &o.TotalPrice,
		&o.IsTakeAway, &o.IsFinished, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if bookingID.Valid {
		o.BookingID = &bookingID.Int64
	}
	o.Notes = notes.String
	return &o, nil
}

func (db *DB) GetBookingOrders(ctx context.Context, bookingID int64) ([]*models.Order, error) {
	query := `SELECT id, reference, booking_id, user_id, notes, total_price, is_take_away, is_finished, created_at, updated_at
              FROM orders WHERE booking_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		var bid sql.NullInt64
		var notes sql.NullString
		err := rows.Scan(
			&o.ID, &o.Reference, &bid, &o.UserID, &notes, &o.TotalPrice,
			&o.IsTakeAway, &o.IsFinished, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if bid.Valid {
			o.BookingID = &bid.Int64
		}
		o.Notes = notes.String
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrderMenuIDs returns the menu ids linked to an order.
func (db *DB) GetOrderMenuIDs(ctx context.Context, orderID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT menu_id FROM orders_menus WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order menus: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order menu: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
