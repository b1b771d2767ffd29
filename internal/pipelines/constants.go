package pipelines

import "github.com/tankgauge/nsvmc/internal/petro"

// Detailed holds the per-source constants of the detailed budgets. Level
// quantities are millimetres, volumes barrels, temperatures °F.
type Detailed struct {
	// Gauge tape calibration, expanded uncertainty and its coverage factor.
	TapeCalibration  float64 `yaml:"tape_calibration" toml:"tape_calibration"`
	TapeCalibrationK float64 `yaml:"tape_calibration_k" toml:"tape_calibration_k"`
	// Rectangular half-widths of tape resolution and observer reading.
	Resolution float64 `yaml:"resolution" toml:"resolution"`
	Observer   float64 `yaml:"observer" toml:"observer"`
	// Repeatability of the gauged level, standard deviation.
	Repeatability float64 `yaml:"repeatability" toml:"repeatability"`
	// Tape thermal expansion between calibration and service temperature.
	TapeAlpha           float64 `yaml:"tape_alpha" toml:"tape_alpha"`
	TapeCalibrationTemp float64 `yaml:"tape_calibration_temp" toml:"tape_calibration_temp"`
	// Datum plate movement, rectangular half-width.
	PlateMovement float64 `yaml:"plate_movement" toml:"plate_movement"`
	// Gauge table calibration (expanded, k=2) in barrels and table
	// resolution in millimetres of level.
	TableCalibration float64 `yaml:"table_calibration" toml:"table_calibration"`
	TableResolution  float64 `yaml:"table_resolution" toml:"table_resolution"`
	// FWSensitivity is bbl per mm of free-water cut.
	FWSensitivity float64 `yaml:"fw_sensitivity" toml:"fw_sensitivity"`

	// Shell expansivity used to propagate temperature errors into CTSh.
	ShellExpansivity float64 `yaml:"shell_expansivity" toml:"shell_expansivity"`
	AmbientTemp      float64 `yaml:"ambient_temp" toml:"ambient_temp"`

	// CTL sensitivities to liquid temperature (1/°F) and API gravity (1/°API).
	CTLTempSensitivity float64 `yaml:"ctl_temp_sensitivity" toml:"ctl_temp_sensitivity"`
	CTLAPISensitivity  float64 `yaml:"ctl_api_sensitivity" toml:"ctl_api_sensitivity"`
	// DensityTolerance is the hydrometer tolerance in kg/m³.
	DensityTolerance float64 `yaml:"density_tolerance" toml:"density_tolerance"`

	LiquidThermometer  petro.Thermometer `yaml:"liquid_thermometer" toml:"liquid_thermometer"`
	AmbientThermometer petro.Thermometer `yaml:"ambient_thermometer" toml:"ambient_thermometer"`
}

// Lumped holds one standard uncertainty per quantity for the lumped budgets.
type Lumped struct {
	TOV  float64 `yaml:"tov" toml:"tov"`
	FW   float64 `yaml:"fw" toml:"fw"`
	CTSh float64 `yaml:"ctsh" toml:"ctsh"`
	CTL  float64 `yaml:"ctl" toml:"ctl"`
}

// DefaultDetailed returns the reference constants of the detailed budgets.
func DefaultDetailed() Detailed {
	return Detailed{
		TapeCalibration:     0.33,
		TapeCalibrationK:    2.01,
		Resolution:          1,
		Observer:            1,
		Repeatability:       3.3333,
		TapeAlpha:           0.0000062,
		TapeCalibrationTemp: 68.99,
		PlateMovement:       0,
		TableCalibration:    1.22,
		TableResolution:     1,
		FWSensitivity:       0.2,
		ShellExpansivity:    0.00001,
		AmbientTemp:         87.0,
		CTLTempSensitivity:  -0.00040,
		CTLAPISensitivity:   -0.00020,
		DensityTolerance:    5,
		LiquidThermometer:   petro.LiquidThermometer,
		AmbientThermometer:  petro.AmbientThermometer,
	}
}

// DefaultLumped returns the reference lumped standard uncertainties, each an
// expanded uncertainty divided by its quoted coverage factor.
func DefaultLumped() Lumped {
	return Lumped{
		TOV:  petro.NormalStd(2.15, 2.30),
		FW:   petro.NormalStd(2.16, 3.0),
		CTSh: petro.NormalStd(0.000007, 2.0),
		CTL:  petro.NormalStd(0.00030, 2.0),
	}
}
