package measure

import (
	"testing"

	"goodfork/internal/domain"
	"goodfork/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertIdentity(t *testing.T) {
	e := NewEngine() // no units registered at all

	for _, unit := range []string{"kg", "mL", "piece", "made-up"} {
		got, err := e.Convert(42.5, unit, unit)
		require.NoError(t, err)
		assert.Equal(t, 42.5, got, "identity conversion must not touch the value for %s", unit)
	}
}

func TestConvertMass(t *testing.T) {
	e := DefaultEngine()

	got, err := e.Convert(1, "kg", "g")
	require.NoError(t, err)
	assert.InDelta(t, 1000, got, 1e-9)

	back, err := e.Convert(got, "g", "kg")
	require.NoError(t, err)
	assert.InDelta(t, 1, back, 1e-9)

	got, err = e.Convert(250, "mg", "g")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestConvertVolume(t *testing.T) {
	e := DefaultEngine()

	got, err := e.Convert(2, "L", "cL")
	require.NoError(t, err)
	assert.InDelta(t, 200, got, 1e-9)

	got, err = e.Convert(33, "cL", "mL")
	require.NoError(t, err)
	assert.InDelta(t, 330, got, 1e-9)
}

func TestConvertEmpiricalUnitsAreAsymmetric(t *testing.T) {
	e := DefaultEngine()

	// 1 teaspoon declares 5 mL toward the reference unit...
	ml, err := e.Convert(1, "teaspoon", "mL")
	require.NoError(t, err)
	assert.InDelta(t, 5, ml, 1e-9)

	// ...but the reverse goes through the empirical formula, so the
	// round trip does not land exactly on 1.
	back, err := e.Convert(ml, "mL", "teaspoon")
	require.NoError(t, err)
	assert.Greater(t, back, 1.0)
	assert.InDelta(t, 1.0144, back, 1e-3)
}

func TestConvertIncompatibleTypes(t *testing.T) {
	e := DefaultEngine()

	_, err := e.Convert(1, "kg", "mL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.True(t, domain.IsConflict(err))

	// regardless of value and direction
	_, err = e.Convert(0, "L", "g")
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestConvertOtherTypeNeverConverts(t *testing.T) {
	e := DefaultEngine()

	_, err := e.Convert(3, "piece", "slice")
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = e.Convert(3, "piece", "g")
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = e.Convert(3, "kg", "unit")
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestConvertUnknownUnit(t *testing.T) {
	e := DefaultEngine()

	_, err := e.Convert(1, "stone", "g")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.True(t, domain.IsNotFound(err))

	_, err = e.Convert(1, "g", "stone")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestConvertUnsupportedDestination(t *testing.T) {
	e := NewEngine()
	e.RegisterUnit("g", models.TypeMass, 1)
	// register a unit with a factor but strip its from-ref formula
	e.RegisterUnit("kg", models.TypeMass, 1000)
	delete(e.fromRef, "kg")

	_, err := e.Convert(500, "g", "kg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLoadAndRowsRoundTrip(t *testing.T) {
	rows := []models.MeasurementUnitType{
		{UnitName: "g", TypeName: models.TypeMass, AsRefUnit: 1},
		{UnitName: "kg", TypeName: models.TypeMass, AsRefUnit: 1000},
		{UnitName: "piece", TypeName: models.TypeOther, AsRefUnit: 1},
	}

	e := NewEngine()
	e.Load(rows)

	got, err := e.Convert(2, "kg", "g")
	require.NoError(t, err)
	assert.InDelta(t, 2000, got, 1e-9)

	assert.Len(t, e.Rows(), 3)
}
