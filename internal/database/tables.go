package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goodfork/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (db *DB) CreateTable(ctx context.Context, table *models.Table) error {
	query := `INSERT INTO tables (name, capacity, is_available, can_be_used, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		table.Name,
		table.Capacity,
		table.IsAvailable,
		table.CanBeUsed,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	table.ID = id
	table.CreatedAt = now
	table.UpdatedAt = now
	return nil
}

func (db *DB) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	query := `SELECT id, name, capacity, is_available, can_be_used, created_at, updated_at
              FROM tables WHERE id = ?`
	var t models.Table
	var name sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &name, &t.Capacity, &t.IsAvailable, &t.CanBeUsed, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	t.Name = name.String
	return &t, nil
}

func (db *DB) ListTables(ctx context.Context) ([]*models.Table, error) {
	query := `SELECT id, name, capacity, is_available, can_be_used, created_at, updated_at
              FROM tables ORDER BY capacity, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		t := &models.Table{}
		var name sql.NullString
		if err := rows.Scan(&t.ID, &name, &t.Capacity, &t.IsAvailable, &t.CanBeUsed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t.Name = name.String
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (db *DB) SetTableUsable(ctx context.Context, id int64, usable bool) error {
	query := `UPDATE tables SET can_be_used = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, usable, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update table usability: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrTableNotFound
	}
	return nil
}

// AllocateTable reserves the smallest usable table seating at least the given
// party. Select-then-flip runs as a conditional update so two concurrent
// requests can never win the same table.
func (db *DB) AllocateTable(ctx context.Context, seats int64) (*models.Table, error) {
	return allocateTable(ctx, db.DB, seats)
}

func allocateTable(ctx context.Context, ex execer, seats int64) (*models.Table, error) {
	for {
		query := `SELECT id, name, capacity FROM tables
                  WHERE is_available = 1 AND can_be_used = 1 AND capacity >= ?
                  ORDER BY capacity ASC, id ASC LIMIT 1`
		var t models.Table
		var name sql.NullString
		err := ex.QueryRowContext(ctx, query, seats).Scan(&t.ID, &name, &t.Capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoTableAvailable
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select table: %w", err)
		}
		t.Name = name.String

		result, err := ex.ExecContext(ctx,
			`UPDATE tables SET is_available = 0, updated_at = ? WHERE id = ? AND is_available = 1`,
			time.Now(), t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve table: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 1 {
			t.IsAvailable = false
			t.CanBeUsed = true
			return &t, nil
		}
		// lost the flip to a concurrent allocation, pick again
	}
}

// ReleaseTable makes a table selectable again. Releasing an already
// available table is a no-op.
func (db *DB) ReleaseTable(ctx context.Context, id int64) error {
	return releaseTable(ctx, db.DB, id)
}

func releaseTable(ctx context.Context, ex execer, id int64) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE tables SET is_available = 1, updated_at = ? WHERE id = ? AND is_available = 0`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to release table: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		// distinguish a missing table from an idempotent release
		var exists int64
		err := ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check table: %w", err)
		}
		if exists == 0 {
			return ErrTableNotFound
		}
	}
	return nil
}

// SeedTables creates config-declared tables that are not present yet,
// matched by name. Existing rows keep their state.
func (db *DB) SeedTables(ctx context.Context, tables []models.Table) error {
	for i := range tables {
		t := tables[i]
		var id int64
		err := db.QueryRowContext(ctx, `SELECT id FROM tables WHERE name = ?`, t.Name).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check table %q: %w", t.Name, err)
		}

		t.IsAvailable = true
		t.CanBeUsed = true
		if err := db.CreateTable(ctx, &t); err != nil {
			return err
		}
		db.logger.Info().Str("name", t.Name).Int64("capacity", t.Capacity).Msg("table seeded")
	}
	return nil
}
