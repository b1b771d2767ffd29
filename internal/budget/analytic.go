package budget

import (
	"math"

	"github.com/tankgauge/nsvmc/internal/sampler"
)

// Contribution is one row of the analytic budget table.
type Contribution struct {
	Name string
	Kind sampler.Kind
	// Unit is the source's native unit: the stage unit for stage sources,
	// the budget unit for direct ones.
	Unit string
	// StdUncertainty is u_i in the native unit.
	StdUncertainty float64
	// Sensitivity is the effective coefficient into the budget unit,
	// including the stage conversion.
	Sensitivity float64
	// Contribution is |c_i|·u_i in the budget unit.
	Contribution float64
	// Share is the fraction of the combined variance due to this source.
	Share float64
}

// Analytic is the first-order (GUM) combination of the budget.
type Analytic struct {
	Combined      float64
	Contributions []Contribution
}

// Analytic combines the sources linearly: u_c = sqrt(Σ (c_i·u_i)²). For the
// linear models used here it must agree with the Monte Carlo standard
// deviation up to sampling noise.
func (b *Budget) Analytic() Analytic {
	var rows []Contribution
	add := func(src Source, unit string, scale float64) {
		u := src.Dist.StdUncertainty()
		c := src.Sensitivity * scale
		rows = append(rows, Contribution{
			Name:           src.Name,
			Kind:           src.Dist.Kind,
			Unit:           unit,
			StdUncertainty: u,
			Sensitivity:    c,
			Contribution:   math.Abs(c) * u,
		})
	}
	if b.Stage != nil {
		for _, src := range b.Stage.Sources {
			add(src, b.Stage.Unit, b.Stage.Conversion)
		}
	}
	for _, src := range b.Direct {
		add(src, b.Unit, 1)
	}

	var variance float64
	for _, r := range rows {
		variance += r.Contribution * r.Contribution
	}
	if variance > 0 {
		for i := range rows {
			rows[i].Share = rows[i].Contribution * rows[i].Contribution / variance
		}
	}
	return Analytic{Combined: math.Sqrt(variance), Contributions: rows}
}
