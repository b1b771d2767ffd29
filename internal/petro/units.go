package petro

import (
	"math"

	"github.com/tankgauge/nsvmc/internal/errdefs"
)

// LevelSensitivity converts a level error in millimetres into a volume error:
// the average bbl/mm of the gauge table between the bottom and the gauged
// level.
func LevelSensitivity(volume, levelMM float64) (float64, error) {
	if levelMM <= 0 || math.IsNaN(levelMM) {
		return 0, errdefs.InvalidParameter("liquid level must be > 0 mm, got %v", levelMM)
	}
	return volume / levelMM, nil
}

// RectangularStd is the standard uncertainty of a rectangular distribution
// with half-width a.
func RectangularStd(a float64) float64 {
	return a / math.Sqrt(3)
}

// NormalStd converts an expanded uncertainty U quoted at coverage factor k
// (typically from a calibration certificate) into a standard uncertainty.
func NormalStd(u, k float64) float64 {
	return u / k
}

// RSS is the root sum of squares of independent standard uncertainties.
func RSS(us ...float64) float64 {
	var sum float64
	for _, u := range us {
		sum += u * u
	}
	return math.Sqrt(sum)
}

// FahrenheitDelta is the temperature difference a − b in °F.
func FahrenheitDelta(a, b float64) float64 {
	return a - b
}

// ThermalLevelError is the half-width, in millimetres, of the level error
// caused by the gauge tape expanding between its calibration temperature and
// the service temperature.
func ThermalLevelError(alpha, serviceTemp, calibrationTemp, levelMM float64) float64 {
	return alpha * FahrenheitDelta(serviceTemp, calibrationTemp) * levelMM
}

// Thermometer describes the components of a temperature reading's uncertainty.
// Calibration is an expanded uncertainty at CalibrationK; the rest are
// rectangular half-widths in °F. DriftFraction is a half-width proportional to
// the reading.
type Thermometer struct {
	Calibration    float64 `yaml:"calibration" toml:"calibration"`
	CalibrationK   float64 `yaml:"calibration_k" toml:"calibration_k"`
	Resolution     float64 `yaml:"resolution" toml:"resolution"`
	Observer       float64 `yaml:"observer" toml:"observer"`
	Stratification float64 `yaml:"stratification" toml:"stratification"`
	Drift          float64 `yaml:"drift" toml:"drift"`
	DriftFraction  float64 `yaml:"drift_fraction" toml:"drift_fraction"`
}

// LiquidThermometer is the reference liquid-temperature reading chain.
var LiquidThermometer = Thermometer{
	Calibration:   0.072,
	CalibrationK:  2,
	Resolution:    0.1,
	Observer:      0.506,
	DriftFraction: 0.0005,
}

// AmbientThermometer is the reference ambient-temperature reading chain.
var AmbientThermometer = Thermometer{
	Calibration:    0.07,
	CalibrationK:   2,
	Resolution:     0.1,
	Observer:       0.506,
	Stratification: 1.5,
	Drift:          0.0457,
}

// StdUncertainty combines the thermometer components for a reading at
// temperature t into one standard uncertainty in °F.
func (th Thermometer) StdUncertainty(t float64) float64 {
	k := th.CalibrationK
	if k == 0 {
		k = 2
	}
	return RSS(
		NormalStd(th.Calibration, k),
		RectangularStd(th.Resolution),
		RectangularStd(th.Observer),
		RectangularStd(th.Stratification),
		RectangularStd(th.Drift),
		RectangularStd(th.DriftFraction*t),
	)
}

// APIStdUncertainty is the standard uncertainty of an API gravity reading
// derived from a density tolerance of tol kg/m³ (rectangular), propagated
// through dAPI/dρ.
func APIStdUncertainty(api, tol float64) float64 {
	return RectangularStd((api + apiOffset) * (api + apiOffset) / (apiNumerator * 1000) * tol)
}
