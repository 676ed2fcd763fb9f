package database

import (
	"context"
	"fmt"

	"goodfork/internal/models"
)

// SeedMeasurements upserts the unit and type registry rows. Called at
// startup with the engine's built-ins plus any config-supplied units.
func (db *DB) SeedMeasurements(ctx context.Context, types []models.MeasurementType, rows []models.MeasurementUnitType) error {
	for _, t := range types {
		_, err := db.ExecContext(ctx,
			`INSERT INTO measurement_types (name, ref_unit) VALUES (?, ?)
             ON CONFLICT(name) DO UPDATE SET ref_unit = excluded.ref_unit`,
			t.Name, t.RefUnit)
		if err != nil {
			return fmt.Errorf("failed to seed measurement type %q: %w", t.Name, err)
		}
	}

	for _, r := range rows {
		usable := r.TypeName != models.TypeOther
		_, err := db.ExecContext(ctx,
			`INSERT INTO measurement_units (name, usable_in_stock) VALUES (?, ?)
             ON CONFLICT(name) DO UPDATE SET usable_in_stock = excluded.usable_in_stock`,
			r.UnitName, usable)
		if err != nil {
			return fmt.Errorf("failed to seed measurement unit %q: %w", r.UnitName, err)
		}

		_, err = db.ExecContext(ctx,
			`INSERT INTO measurement_units_types (unit_name, type_name, as_ref_unit) VALUES (?, ?, ?)
             ON CONFLICT(unit_name, type_name) DO UPDATE SET as_ref_unit = excluded.as_ref_unit`,
			r.UnitName, r.TypeName, r.AsRefUnit)
		if err != nil {
			return fmt.Errorf("failed to seed unit type row %q: %w", r.UnitName, err)
		}
	}
	return nil
}

// LoadMeasurementRows reads the registry back for engine construction.
func (db *DB) LoadMeasurementRows(ctx context.Context) ([]models.MeasurementUnitType, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT unit_name, type_name, as_ref_unit FROM measurement_units_types ORDER BY unit_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load measurement rows: %w", err)
	}
	defer rows.Close()

	var result []models.MeasurementUnitType
	for rows.Next() {
		var r models.MeasurementUnitType
		if err := rows.Scan(&r.UnitName, &r.TypeName, &r.AsRefUnit); err != nil {
			return nil, fmt.Errorf("failed to scan measurement row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
