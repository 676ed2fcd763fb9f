package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"goodfork/internal/models"
)

// CreateBookingWithTable allocates a table and inserts the booking inside one
// transaction. Allocation failure aborts with no side effects.
func (db *DB) CreateBookingWithTable(ctx context.Context, booking *models.Booking) (*models.Table, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	table, err := allocateTable(ctx, tx, booking.Seats)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO bookings (
				user_id, table_id, time, seats,
				is_client_on_place, can_client_pay, is_finished, is_paid,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, 0, 0, 0, 0, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.UserID,
		table.ID,
		booking.Time,
		booking.Seats,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.TableID = table.ID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return table, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT id, user_id, table_id, time, seats,
	                 is_client_on_place, can_client_pay, is_finished, is_paid,
	                 created_at, updated_at
              FROM bookings WHERE id = ?`
	var b models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.TableID, &b.Time, &b.Seats,
		&b.IsClientOnPlace, &b.CanClientPay, &b.IsFinished, &b.IsPaid,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// UpdateBooking applies a partial update; only non-nil fields change.
func (db *DB) UpdateBooking(ctx context.Context, id int64, update models.BookingUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var sets []string
	var args []interface{}
	if update.Time != nil {
		sets = append(sets, "time = ?")
		args = append(args, *update.Time)
	}
	if update.Seats != nil {
		sets = append(sets, "seats = ?")
		args = append(args, *update.Seats)
	}
	if update.IsClientOnPlace != nil {
		sets = append(sets, "is_client_on_place = ?")
		args = append(args, *update.IsClientOnPlace)
	}
	if update.CanClientPay != nil {
		sets = append(sets, "can_client_pay = ?")
		args = append(args, *update.CanClientPay)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// DeleteBookingAndRelease frees the booking's table and removes the record as
// one transaction.
func (db *DB) DeleteBookingAndRelease(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var tableID int64
	err = tx.QueryRowContext(ctx, `SELECT table_id FROM bookings WHERE id = ?`, id).Scan(&tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load booking table: %w", err)
	}

	if err := releaseTable(ctx, tx, tableID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return tx.Commit()
}

// FinishBookingAndRecordSales marks the booking finished and paid, releases
// its table and adds the booking's order total to today's sales statistic.
// All three steps commit together. A booking already finished yields
// ErrBookingFinished and writes nothing.
func (db *DB) FinishBookingAndRecordSales(ctx context.Context, id int64) (float64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var tableID int64
	err = tx.QueryRowContext(ctx, `SELECT table_id FROM bookings WHERE id = ?`, id).Scan(&tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookingNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load booking: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET is_finished = 1, is_paid = 1, can_client_pay = 0, updated_at = ?
		 WHERE id = ? AND is_finished = 0`,
		time.Now(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to finish booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return 0, ErrBookingFinished
	}

	if err := releaseTable(ctx, tx, tableID); err != nil {
		return 0, err
	}

	var total float64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE booking_id = ?`, id).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booking orders: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET is_finished = 1, updated_at = ? WHERE booking_id = ?`,
		time.Now(), id); err != nil {
		return 0, fmt.Errorf("failed to finish booking orders: %w", err)
	}

	if total != 0 {
		if err := addDailySales(ctx, tx, time.Now(), total); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit payment: %w", err)
	}
	return total, nil
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT id, user_id, table_id, time, seats,
	                 is_client_on_place, can_client_pay, is_finished, is_paid,
	                 created_at, updated_at
              FROM bookings WHERE user_id = ? ORDER BY time DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.UserID, &b.TableID, &b.Time, &b.Seats,
			&b.IsClientOnPlace, &b.CanClientPay, &b.IsFinished, &b.IsPaid,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetOverdueBookings returns open bookings whose time passed before the
// cutoff and whose client never showed up.
func (db *DB) GetOverdueBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	query := `SELECT id, user_id, table_id, time, seats,
	                 is_client_on_place, can_client_pay, is_finished, is_paid,
	                 created_at, updated_at
              FROM bookings
              WHERE time < ? AND is_client_on_place = 0 AND is_finished = 0
              ORDER BY time`
	rows, err := db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.UserID, &b.TableID, &b.Time, &b.Seats,
			&b.IsClientOnPlace, &b.CanClientPay, &b.IsFinished, &b.IsPaid,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
