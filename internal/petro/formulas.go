package petro

import (
	"math"

	"github.com/tankgauge/nsvmc/internal/errdefs"
)

const (
	// TRef is the standard reference temperature in °F.
	TRef = 60.0

	// CTLCorr is the temperature offset term of the CTL exponent.
	CTLCorr = 0.01374979547

	// WaterDensity60 is the density of water at 60 °F in kg/m³.
	WaterDensity60 = 999.016

	apiOffset    = 131.5
	apiNumerator = 141.5
)

// DensityFromAPI converts API gravity to density in kg/m³.
// API gravity must be greater than -131.5.
func DensityFromAPI(api float64) (float64, error) {
	if math.IsNaN(api) || api <= -apiOffset {
		return 0, errdefs.InvalidParameter("API gravity must be > %v, got %v", -apiOffset, api)
	}
	return apiNumerator / (api + apiOffset) * WaterDensity60, nil
}

// ThermalShrinkageFactor is the correction for thermal expansion of the tank
// shell (CTSh) for a shell with linear expansion coefficient alpha (1/°F) at
// liquid temperature tl and reference temperature tref.
func ThermalShrinkageFactor(alpha, tl, tref float64) float64 {
	dt := tl - tref
	return 1 + 2*alpha*dt + alpha*alpha*dt*dt
}

// VolumeCorrelation returns the thermal expansion coefficient B of the liquid
// at density rho from the product's K-coefficients.
func VolumeCorrelation(k Coefficients, rho float64) (float64, error) {
	if rho <= 0 || math.IsNaN(rho) {
		return 0, errdefs.InvalidParameter("density must be > 0, got %v", rho)
	}
	return k.K0/(rho*rho) + k.K1/rho + k.K2, nil
}

// CTL is the correction for the temperature of the liquid. b = 0 gives exactly 1.
func CTL(b, tl, tref float64) float64 {
	dt := tl - tref
	return math.Exp(-b * dt * (1 + 0.8*b*(dt+CTLCorr)))
}

// CSW is the correction for sediment and water for a BS&W percentage.
func CSW(bsw float64) (float64, error) {
	if math.IsNaN(bsw) || bsw < 0 || bsw > 100 {
		return 0, errdefs.InvalidParameter("bsw must be within [0, 100], got %v", bsw)
	}
	return 1 - bsw/100, nil
}
