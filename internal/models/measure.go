package models

// MeasurementType groups compatible units around one reference unit.
// The "other" type is the sentinel for units that never convert.
type MeasurementType struct {
	ID      int64  `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	RefUnit string `yaml:"ref_unit" json:"ref_unit"`
}

// MeasurementUnit is a named unit; UsableInStock marks units that stock
// quantities may be expressed in directly.
type MeasurementUnit struct {
	ID            int64  `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	UsableInStock bool   `yaml:"usable_in_stock" json:"usable_in_stock"`
}

// MeasurementUnitType records a unit's multiplicative factor relative to its
// type's reference unit.
type MeasurementUnitType struct {
	UnitName  string  `yaml:"unit" json:"unit"`
	TypeName  string  `yaml:"type" json:"type"`
	AsRefUnit float64 `yaml:"as_ref_unit" json:"as_ref_unit"`
}
