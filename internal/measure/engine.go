package measure

import (
	"fmt"

	"goodfork/internal/domain"
	"goodfork/internal/models"
)

var (
	ErrUnknownUnit  = domain.NotFound("measurement unit is not registered")
	ErrIncompatible = domain.Conflict("units belong to incompatible measurement types")
	ErrUnsupported  = domain.Conflict("no conversion registered for destination unit")
)

// ConvertFunc maps a value expressed in a type's reference unit into a
// destination unit. Most units are linear; kitchen units like the teaspoon
// are empirically defined and get their own formula.
type ConvertFunc func(ref float64) float64

type unitEntry struct {
	name     string
	typeName string
	asRef    float64
}

// Engine is the unit registry and conversion arithmetic. Conversions route
// through the unit type's reference unit: value -> ref via the source unit's
// as_ref_unit factor, ref -> destination via the registered ConvertFunc.
type Engine struct {
	units   map[string]unitEntry
	fromRef map[string]ConvertFunc
}

func NewEngine() *Engine {
	return &Engine{
		units:   make(map[string]unitEntry),
		fromRef: make(map[string]ConvertFunc),
	}
}

// RegisterUnit adds a unit with its type and factor relative to the type's
// reference unit. Convertible units get a linear from-ref formula by default;
// units of the sentinel "other" type get none, they are never convertible.
func (e *Engine) RegisterUnit(name, typeName string, asRefUnit float64) {
	e.units[name] = unitEntry{name: name, typeName: typeName, asRef: asRefUnit}
	if typeName == models.TypeOther {
		return
	}
	if asRefUnit != 0 {
		factor := asRefUnit
		e.fromRef[name] = func(ref float64) float64 { return ref / factor }
	}
}

// RegisterFromRef overrides the ref -> unit formula, for units whose reverse
// mapping is not the plain inverse of as_ref_unit.
func (e *Engine) RegisterFromRef(name string, fn ConvertFunc) {
	e.fromRef[name] = fn
}

// Load registers a batch of unit/type rows, e.g. read back from the store.
func (e *Engine) Load(rows []models.MeasurementUnitType) {
	for _, row := range rows {
		e.RegisterUnit(row.UnitName, row.TypeName, row.AsRefUnit)
	}
}

// Rows returns the registered units as persistable unit/type rows.
func (e *Engine) Rows() []models.MeasurementUnitType {
	rows := make([]models.MeasurementUnitType, 0, len(e.units))
	for _, u := range e.units {
		rows = append(rows, models.MeasurementUnitType{UnitName: u.name, TypeName: u.typeName, AsRefUnit: u.asRef})
	}
	return rows
}

// Convert turns value from one unit into another. Identity conversions
// return the value untouched without any lookups.
func (e *Engine) Convert(value float64, fromUnit, toUnit string) (float64, error) {
	if fromUnit == toUnit {
		return value, nil
	}

	from, ok := e.units[fromUnit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, fromUnit)
	}
	to, ok := e.units[toUnit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, toUnit)
	}

	if from.typeName == models.TypeOther || to.typeName == models.TypeOther {
		return 0, fmt.Errorf("%w: %q or %q is countable", ErrIncompatible, fromUnit, toUnit)
	}
	if from.typeName != to.typeName {
		return 0, fmt.Errorf("%w: %s vs %s", ErrIncompatible, from.typeName, to.typeName)
	}

	fn, ok := e.fromRef[toUnit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupported, toUnit)
	}

	ref := value * from.asRef
	return fn(ref), nil
}
