package petro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankgauge/nsvmc/internal/errdefs"
)

func TestDensityFromAPI_Reference(t *testing.T) {
	rho, err := DensityFromAPI(14.9)
	require.NoError(t, err)
	assert.InDelta(t, 965.579, rho, 0.001)

	// API 10 is water.
	rho, err = DensityFromAPI(10)
	require.NoError(t, err)
	assert.InDelta(t, WaterDensity60, rho, 1e-9)
}

func TestDensityFromAPI_MonotonicDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for api := -131.0; api <= 100; api += 0.5 {
		rho, err := DensityFromAPI(api)
		require.NoError(t, err)
		if rho >= prev {
			t.Fatalf("density(%v) = %v not below density at previous API %v", api, rho, prev)
		}
		prev = rho
	}
}

func TestDensityFromAPI_OutOfDomain(t *testing.T) {
	for _, api := range []float64{-131.5, -200, math.NaN()} {
		_, err := DensityFromAPI(api)
		require.ErrorIs(t, err, errdefs.ErrInvalidParameter, "api=%v", api)
	}
}

func TestThermalShrinkageFactor(t *testing.T) {
	alpha, err := LookupMaterial(CarbonSteel)
	require.NoError(t, err)

	got := ThermalShrinkageFactor(alpha, 91.0, TRef)
	assert.InDelta(t, 1.000384437, got, 1e-9)
	assert.Equal(t, 1.0, ThermalShrinkageFactor(alpha, TRef, TRef))
}

func TestCTL_ZeroBIsUnity(t *testing.T) {
	for _, tl := range []float64{-40, 0, 59.99, 60, 91, 250} {
		assert.Equal(t, 1.0, CTL(0, tl, TRef), "tl=%v", tl)
	}
}

func TestCTL_Reference(t *testing.T) {
	rho, err := DensityFromAPI(14.9)
	require.NoError(t, err)
	k, err := LookupProduct(CrudeOil)
	require.NoError(t, err)
	b, err := VolumeCorrelation(k, rho)
	require.NoError(t, err)

	assert.InDelta(t, 3.658479e-4, b, 1e-9)
	ctl := CTL(b, 91.0, TRef)
	assert.InDelta(t, 0.988621, ctl, 1e-6)
	assert.Less(t, ctl, 1.0, "liquid above Tref shrinks when corrected")
	assert.Greater(t, CTL(b, 40, TRef), 1.0, "liquid below Tref expands when corrected")
}

func TestVolumeCorrelation(t *testing.T) {
	b, err := VolumeCorrelation(Coefficients{K0: 100, K1: 2, K2: 0.5}, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1+0.2+0.5, b, 1e-12)

	_, err = VolumeCorrelation(Coefficients{K0: 1}, 0)
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}

func TestCSW(t *testing.T) {
	got, err := CSW(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = CSW(0.35)
	require.NoError(t, err)
	assert.InDelta(t, 0.9965, got, 1e-12)

	for _, bsw := range []float64{-0.1, 100.1, math.NaN()} {
		_, err := CSW(bsw)
		require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
	}
}

func TestLookupMaterial(t *testing.T) {
	tests := []struct {
		key  string
		want float64
	}{
		{"acero al carbon", 0.00000620},
		{"INOX 304", 0.00000961},
		{"inox 316", 0.00000899},
		{" monel ", 0.00000720},
	}
	for _, tc := range tests {
		got, err := LookupMaterial(tc.key)
		require.NoError(t, err, tc.key)
		assert.Equal(t, tc.want, got, tc.key)
	}

	_, err := LookupMaterial("aluminio")
	require.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Contains(t, err.Error(), `"aluminio"`)

	assert.Equal(t, []string{"acero al carbon", "inox 304", "inox 316", "monel"}, Materials())
}

func TestLookupProduct_UnknownIsNotFound(t *testing.T) {
	_, err := LookupProduct("water")
	require.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Contains(t, err.Error(), `"water"`)
}

func TestProducts_ExtraEntries(t *testing.T) {
	p := NewProducts(map[string]Coefficients{
		"Gasoline": {K0: 192.4571, K1: 0.2438},
	})

	k, err := p.Lookup("gasoline")
	require.NoError(t, err)
	assert.Equal(t, 192.4571, k.K0)

	_, err = p.Lookup("crude oil")
	require.NoError(t, err)
	assert.Equal(t, []string{"crude oil", "gasoline"}, p.Keys())

	// The built-in table is untouched.
	_, err = LookupProduct("gasoline")
	require.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestThermometer_StdUncertainty(t *testing.T) {
	assert.InDelta(t, 0.30112, LiquidThermometer.StdUncertainty(91.4), 1e-5)
	assert.InDelta(t, 0.91684, AmbientThermometer.StdUncertainty(87.0), 1e-5)
}

func TestAPIStdUncertainty(t *testing.T) {
	assert.InDelta(t, 0.437255, APIStdUncertainty(14.9, 5), 1e-6)
}

func TestUnitHelpers(t *testing.T) {
	s, err := LevelSensitivity(435.73, 2383)
	require.NoError(t, err)
	assert.InDelta(t, 0.182849, s, 1e-6)

	_, err = LevelSensitivity(435.73, 0)
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)

	assert.InDelta(t, 0.61, NormalStd(1.22, 2), 1e-12)
	assert.InDelta(t, 5, RSS(3, 4), 1e-12)
	assert.InDelta(t, 0.331099, ThermalLevelError(0.0000062, 91.4, 68.99, 2383), 1e-6)
}
