package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tankgauge/nsvmc/internal/config"
)

// overrides are the scenario flags shared by every command. Only flags the
// user actually set replace file values.
type overrides struct {
	configPath string

	samples        int
	seed           uint64
	model          string
	api            float64
	liquidTemp     float64
	tov            float64
	fw             float64
	levelMM        float64
	material       string
	product        string
	bsw            float64
	bswUncertainty float64

	flags *cobra.Command
}

func (o *overrides) register(cmd *cobra.Command) {
	o.flags = cmd
	f := cmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "scenario file (.yaml or .toml)")
	f.IntVarP(&o.samples, "samples", "n", config.DefaultSamples, "number of Monte Carlo trials")
	f.Uint64Var(&o.seed, "seed", config.DefaultSeed, "random seed")
	f.StringVar(&o.model, "model", config.DefaultModel, "budget model: detailed|lumped")
	f.Float64Var(&o.api, "api", config.DefaultAPI, "API gravity at 60 °F")
	f.Float64Var(&o.liquidTemp, "liquid-temp", config.DefaultLiquidTemp, "liquid temperature in °F")
	f.Float64Var(&o.tov, "tov", config.DefaultTOV, "total observed volume in bbl")
	f.Float64Var(&o.fw, "fw", config.DefaultFW, "free water in bbl")
	f.Float64Var(&o.levelMM, "level", config.DefaultLevelMM, "gauged liquid level in mm")
	f.StringVar(&o.material, "material", config.DefaultMaterial, "tank shell material")
	f.StringVar(&o.product, "product", config.DefaultProduct, "product key")
	f.Float64Var(&o.bsw, "bsw", config.DefaultBSW, "bottom sediment and water in %")
	f.Float64Var(&o.bswUncertainty, "bsw-uncertainty", 0, "standard uncertainty of BS&W in %")
}

// load builds the scenario: file (or defaults), then flag overrides, then
// validation.
func (o *overrides) load() (*config.Config, error) {
	cfg := config.Defaults()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
		slog.Info("config: loaded", "path", o.configPath, "samples", cfg.Samples, "model", cfg.Model)
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (o *overrides) apply(cfg *config.Config) {
	changed := o.flags.PersistentFlags().Changed
	m := &cfg.Measurement

	if changed("samples") {
		cfg.Samples = o.samples
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("model") {
		cfg.Model = o.model
	}
	if changed("api") {
		m.API = o.api
	}
	if changed("liquid-temp") {
		m.LiquidTemp = o.liquidTemp
	}
	if changed("tov") {
		m.TOV = o.tov
	}
	if changed("fw") {
		m.FW = o.fw
	}
	if changed("level") {
		m.LevelMM = o.levelMM
	}
	if changed("material") {
		m.Material = o.material
	}
	if changed("product") {
		m.Product = o.product
	}
	if changed("bsw") {
		m.BSW = o.bsw
	}
	if changed("bsw-uncertainty") {
		m.BSWUncertainty = o.bswUncertainty
	}
}
