package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tankgauge/nsvmc/internal/petro"
	"github.com/tankgauge/nsvmc/internal/pipelines"
)

// Default values applied when fields are absent from the scenario file.
const (
	DefaultSamples    = 100000
	DefaultSeed       = 1
	DefaultModel      = string(pipelines.ModelDetailed)
	DefaultAPI        = 14.9
	DefaultLiquidTemp = 91.0
	DefaultTOV        = 435.73
	DefaultFW         = 0.0
	DefaultLevelMM    = 2383.0
	DefaultMaterial   = petro.CarbonSteel
	DefaultProduct    = petro.CrudeOil
	DefaultBSW        = 0.0
	DefaultPlotBins   = 50

	// MinSamples is the smallest sample count the reducer can summarise.
	MinSamples = 2
	// MaxSamples bounds memory: every leaf and composite holds n float64s.
	MaxSamples = 10_000_000
)

// Config is one simulation scenario. Fields map 1:1 to scenario.example.yaml.
type Config struct {
	// Samples is the number of Monte Carlo trials.
	Samples int `yaml:"samples" toml:"samples"`

	// Seed makes runs reproducible. Each leaf pipeline draws from its own
	// stream derived from this seed.
	Seed uint64 `yaml:"seed" toml:"seed"`

	// Model selects the budget variant: detailed | lumped.
	Model string `yaml:"model" toml:"model"`

	Measurement Measurement `yaml:"measurement" toml:"measurement"`

	// Products adds or overrides product K-coefficients by key.
	Products map[string]petro.Coefficients `yaml:"products" toml:"products"`

	// Detailed and Lumped override the constants of the two budget models.
	Detailed pipelines.Detailed `yaml:"detailed" toml:"detailed"`
	Lumped   pipelines.Lumped   `yaml:"lumped" toml:"lumped"`

	// Checks are acceptance rules evaluated against every result.
	Checks []CheckRule `yaml:"checks" toml:"checks"`

	Output Output `yaml:"output" toml:"output"`
}

// Measurement holds the observed tank data.
type Measurement struct {
	API        float64 `yaml:"api" toml:"api"`
	LiquidTemp float64 `yaml:"liquid_temp" toml:"liquid_temp"` // °F
	TOV        float64 `yaml:"tov" toml:"tov"`                 // bbl
	FW         float64 `yaml:"fw" toml:"fw"`                   // bbl
	LevelMM    float64 `yaml:"level_mm" toml:"level_mm"`

	// Material is the tank shell material: acero al carbon | inox 304 |
	// inox 316 | monel.
	Material string `yaml:"material" toml:"material"`

	// Product selects the K-coefficients, e.g. "crude oil".
	Product string `yaml:"product" toml:"product"`

	// BSW is the bottom sediment and water percentage.
	BSW float64 `yaml:"bsw" toml:"bsw"`

	// BSWUncertainty is the standard uncertainty of BSW in percent. When
	// positive, CSW is simulated instead of applied as a constant.
	BSWUncertainty float64 `yaml:"bsw_uncertainty" toml:"bsw_uncertainty"`
}

// CheckRule is one acceptance rule.
type CheckRule struct {
	// Name identifies the rule in logs and metrics.
	Name string `yaml:"name" toml:"name"`

	// Condition is "<quantity>.<field> <op> <value>", e.g.
	// "nsv.coverage_factor > 2.2" or "nsv.relative_expanded > 0.5".
	Condition string `yaml:"condition" toml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity" toml:"severity"`
}

// Output configures the optional sinks of a run.
type Output struct {
	// Plot is the histogram file (.png, .svg or .pdf). Empty disables it.
	Plot string `yaml:"plot" toml:"plot"`

	// PlotQuantity is the simulated quantity to plot (default nsv).
	PlotQuantity string `yaml:"plot_quantity" toml:"plot_quantity"`

	// PlotBins is the histogram bin count.
	PlotBins int `yaml:"plot_bins" toml:"plot_bins"`

	// Metrics is a Prometheus textfile path. Empty disables export.
	Metrics string `yaml:"metrics" toml:"metrics"`

	// Baseline is a previously exported textfile to compare against.
	Baseline string `yaml:"baseline" toml:"baseline"`
}

// Load reads and parses the scenario file at path. Files ending in .toml are
// decoded as TOML, everything else as YAML. Missing optional fields are
// filled with the reference scenario.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Defaults()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns the reference scenario.
func Defaults() *Config {
	return &Config{
		Samples: DefaultSamples,
		Seed:    DefaultSeed,
		Model:   DefaultModel,
		Measurement: Measurement{
			API:        DefaultAPI,
			LiquidTemp: DefaultLiquidTemp,
			TOV:        DefaultTOV,
			FW:         DefaultFW,
			LevelMM:    DefaultLevelMM,
			Material:   DefaultMaterial,
			Product:    DefaultProduct,
			BSW:        DefaultBSW,
		},
		Detailed: pipelines.DefaultDetailed(),
		Lumped:   pipelines.DefaultLumped(),
		Output: Output{
			PlotQuantity: pipelines.QNSV,
			PlotBins:     DefaultPlotBins,
		},
	}
}

// Validate checks required fields and structural constraints. Table lookups
// (material, product) are left to the run so the error names the key.
func (c *Config) Validate() error {
	if c.Samples < MinSamples || c.Samples > MaxSamples {
		return fmt.Errorf("samples must be within [%d, %d], got %d", MinSamples, MaxSamples, c.Samples)
	}
	if _, err := pipelines.ParseModel(c.Model); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	m := c.Measurement
	for name, v := range map[string]float64{
		"measurement.api":         m.API,
		"measurement.liquid_temp": m.LiquidTemp,
		"measurement.tov":         m.TOV,
		"measurement.fw":          m.FW,
		"measurement.level_mm":    m.LevelMM,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}
	if m.TOV <= 0 {
		return fmt.Errorf("measurement.tov must be positive")
	}
	if m.FW < 0 || m.FW > m.TOV {
		return fmt.Errorf("measurement.fw must be within [0, tov], got %v", m.FW)
	}
	if m.LevelMM <= 0 {
		return fmt.Errorf("measurement.level_mm must be positive")
	}
	if m.Material == "" {
		return fmt.Errorf("measurement.material is required")
	}
	if m.Product == "" {
		return fmt.Errorf("measurement.product is required")
	}
	if m.BSW < 0 || m.BSW > 100 {
		return fmt.Errorf("measurement.bsw must be within [0, 100], got %v", m.BSW)
	}
	if m.BSWUncertainty < 0 {
		return fmt.Errorf("measurement.bsw_uncertainty must be >= 0")
	}

	for i, rule := range c.Checks {
		if rule.Name == "" {
			return fmt.Errorf("checks[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("checks[%d] %q: condition is required", i, rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("checks[%d] %q: unknown severity %q", i, rule.Name, rule.Severity)
		}
	}

	if c.Output.PlotBins <= 0 {
		return fmt.Errorf("output.plot_bins must be positive")
	}
	return nil
}

// Params converts the scenario into pipeline parameters.
func (c *Config) Params() pipelines.Params {
	m := c.Measurement
	return pipelines.Params{
		API:            m.API,
		LiquidTemp:     m.LiquidTemp,
		TOV:            m.TOV,
		FW:             m.FW,
		LevelMM:        m.LevelMM,
		Material:       m.Material,
		Product:        m.Product,
		BSW:            m.BSW,
		BSWUncertainty: m.BSWUncertainty,
		Model:          pipelines.Model(strings.ToLower(strings.TrimSpace(c.Model))),
		Detailed:       c.Detailed,
		Lumped:         c.Lumped,
		Products:       petro.NewProducts(c.Products),
	}
}
