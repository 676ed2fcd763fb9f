package measure

import "goodfork/internal/models"

// Empirical kitchen-unit definitions. A teaspoon is declared as 5 mL going
// into the reference unit, but the US customary teaspoon the kitchen actually
// uses holds 4.92892159375 mL, so the reverse mapping is not the plain
// inverse. Same story for the tablespoon and the pinch.
const (
	teaspoonML   = 4.92892159375
	tablespoonML = 14.78676478125
	pinchG       = 0.355625
)

// DefaultEngine builds the engine with the built-in mass, volume and
// "other" units. Adding a unit is a pure data change here.
func DefaultEngine() *Engine {
	e := NewEngine()

	// mass, reference unit g
	e.RegisterUnit("mg", models.TypeMass, 0.001)
	e.RegisterUnit(models.RefUnitMass, models.TypeMass, 1)
	e.RegisterUnit("kg", models.TypeMass, 1000)
	e.RegisterUnit("pinch", models.TypeMass, 0.36)
	e.RegisterFromRef("pinch", func(ref float64) float64 { return ref / pinchG })

	// volume, reference unit mL
	e.RegisterUnit(models.RefUnitVolume, models.TypeVolume, 1)
	e.RegisterUnit("cL", models.TypeVolume, 10)
	e.RegisterUnit("dL", models.TypeVolume, 100)
	e.RegisterUnit("L", models.TypeVolume, 1000)
	e.RegisterUnit("teaspoon", models.TypeVolume, 5)
	e.RegisterFromRef("teaspoon", func(ref float64) float64 { return ref / teaspoonML })
	e.RegisterUnit("tablespoon", models.TypeVolume, 15)
	e.RegisterFromRef("tablespoon", func(ref float64) float64 { return ref / tablespoonML })

	// countable units never convert
	e.RegisterUnit("piece", models.TypeOther, 1)
	e.RegisterUnit("slice", models.TypeOther, 1)
	e.RegisterUnit("unit", models.TypeOther, 1)

	return e
}

// DefaultTypes returns the built-in measurement types for seeding the store.
func DefaultTypes() []models.MeasurementType {
	return []models.MeasurementType{
		{ID: 1, Name: models.TypeMass, RefUnit: models.RefUnitMass},
		{ID: 2, Name: models.TypeVolume, RefUnit: models.RefUnitVolume},
		{ID: 3, Name: models.TypeOther, RefUnit: ""},
	}
}
