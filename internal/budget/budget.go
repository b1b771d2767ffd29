// Package budget models the uncertainty budget of one physical quantity and
// propagates it by Monte Carlo.
//
// A Budget has a nominal value, an optional intermediate Stage whose sources
// are summed in their own unit (e.g. millimetres of level) and then converted
// once into the output unit, and a list of Direct sources already expressed in
// the output unit:
//
//	x[i] = Nominal + Stage.Conversion·Σ c_s·e_s[i] + Σ c_d·e_d[i]
//
// The two-stage form is kept as is: collapsing the conversion into each stage
// source would change which coefficient the analytic table reports.
//
// Sources may be perturbations centred at zero or may model the quantity
// directly, centred at its physical value; Expected returns the value the
// simulated mean converges to in either case.
package budget

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/sampler"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// Source is one independent error contribution.
type Source struct {
	Name        string
	Dist        sampler.Distribution
	Sensitivity float64 // native unit → budget (or stage) unit
}

// Stage groups sources that are combined in an intermediate unit before a
// single conversion into the budget's unit.
type Stage struct {
	Unit       string
	Sources    []Source
	Conversion float64
}

// Budget is the uncertainty budget for one quantity.
type Budget struct {
	Quantity string
	Unit     string
	Nominal  float64
	Stage    *Stage
	Direct   []Source
}

// Validate checks every source distribution and coefficient.
func (b *Budget) Validate() error {
	if b.Quantity == "" {
		return errdefs.InvalidParameter("budget quantity name is required")
	}
	if !finite(b.Nominal) {
		return errdefs.InvalidParameter("%s: nominal must be finite, got %v", b.Quantity, b.Nominal)
	}
	if b.Stage != nil {
		if !finite(b.Stage.Conversion) {
			return errdefs.InvalidParameter("%s: stage conversion must be finite, got %v", b.Quantity, b.Stage.Conversion)
		}
		for _, src := range b.Stage.Sources {
			if err := src.validate(); err != nil {
				return fmt.Errorf("%s: %w", b.Quantity, err)
			}
		}
	}
	for _, src := range b.Direct {
		if err := src.validate(); err != nil {
			return fmt.Errorf("%s: %w", b.Quantity, err)
		}
	}
	return nil
}

func (s Source) validate() error {
	if !finite(s.Sensitivity) {
		return errdefs.InvalidParameter("source %q: sensitivity must be finite, got %v", s.Name, s.Sensitivity)
	}
	if err := s.Dist.Validate(); err != nil {
		return fmt.Errorf("source %q: %w", s.Name, err)
	}
	return nil
}

// Expected is the value the simulated mean converges to.
func (b *Budget) Expected() float64 {
	v := b.Nominal
	if b.Stage != nil {
		var stage float64
		for _, src := range b.Stage.Sources {
			stage += src.Sensitivity * src.Dist.Center
		}
		v += b.Stage.Conversion * stage
	}
	for _, src := range b.Direct {
		v += src.Sensitivity * src.Dist.Center
	}
	return v
}

// Sources returns every source in draw order: stage sources first, then direct.
func (b *Budget) Sources() []Source {
	var out []Source
	if b.Stage != nil {
		out = append(out, b.Stage.Sources...)
	}
	return append(out, b.Direct...)
}

// Simulate draws n trials of the quantity. Sources are sampled in the order
// returned by Sources, each consuming n values from rng, so a fixed seed gives
// identical output.
func (b *Budget) Simulate(rng *rand.Rand, n int) (sampler.Samples, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errdefs.InvalidParameter("%s: sample count must be >= 0, got %d", b.Quantity, n)
	}

	out := make(sampler.Samples, n)
	floats.AddConst(b.Nominal, out)

	if b.Stage != nil {
		stage := make([]float64, n)
		for _, src := range b.Stage.Sources {
			xs, err := sampler.Draw(rng, src.Dist, n)
			if err != nil {
				return nil, fmt.Errorf("%s: source %q: %w", b.Quantity, src.Name, err)
			}
			floats.AddScaled(stage, src.Sensitivity, xs)
		}
		floats.AddScaled(out, b.Stage.Conversion, stage)
	}

	for _, src := range b.Direct {
		xs, err := sampler.Draw(rng, src.Dist, n)
		if err != nil {
			return nil, fmt.Errorf("%s: source %q: %w", b.Quantity, src.Name, err)
		}
		floats.AddScaled(out, src.Sensitivity, xs)
	}
	return out, nil
}

// Propagation is a simulated budget with its reduced statistics and the
// analytic (linear) budget for comparison.
type Propagation struct {
	Budget   *Budget
	Samples  sampler.Samples
	Stats    stats.Reduced
	Analytic Analytic
}

// Propagate simulates the budget and reduces the result.
func (b *Budget) Propagate(rng *rand.Rand, n int) (*Propagation, error) {
	xs, err := b.Simulate(rng, n)
	if err != nil {
		return nil, err
	}
	return &Propagation{
		Budget:   b,
		Samples:  xs,
		Stats:    stats.Reduce(xs),
		Analytic: b.Analytic(),
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
