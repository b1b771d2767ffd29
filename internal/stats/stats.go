// Package stats reduces a simulated sample array to the summary used for
// uncertainty reporting: mean, sample standard deviation, the 2.5/97.5
// percentiles, the expanded (95%) uncertainty and the empirical coverage
// factor.
//
// Reduce requires at least two samples. With fewer, every dispersion field is
// NaN. A constant array has StdDev exactly 0 and a NaN coverage factor, since
// the ratio is 0/0; Degenerate reports that case.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Interval bounds of the 95% coverage interval, as fractions.
const (
	LowerP = 0.025
	UpperP = 0.975
)

// GaussianK is the coverage factor a normal distribution would give for 95%.
const GaussianK = 1.959963984540054

// Reduced is the statistical summary of one sample array.
type Reduced struct {
	N              int
	Mean           float64
	StdDev         float64 // divisor n-1
	P2_5           float64
	P97_5          float64
	Expanded       float64 // (P97_5 - P2_5) / 2
	CoverageFactor float64 // Expanded / StdDev
}

// Degenerate reports whether the coverage factor is undefined, either because
// there were fewer than two samples or because the samples had no spread.
func (r Reduced) Degenerate() bool {
	return math.IsNaN(r.CoverageFactor)
}

// RelativeExpanded returns Expanded as a percentage of |Mean|, or NaN when the
// mean is zero.
func (r Reduced) RelativeExpanded() float64 {
	if r.Mean == 0 {
		return math.NaN()
	}
	return r.Expanded / math.Abs(r.Mean) * 100
}

// GaussianExpanded is the expanded uncertainty a k=1.96 normal assumption
// would report, for comparison with the empirical Expanded.
func (r Reduced) GaussianExpanded() float64 {
	return GaussianK * r.StdDev
}

// Reduce computes the summary of xs. It does not modify xs.
func Reduce(xs []float64) Reduced {
	n := len(xs)
	out := Reduced{N: n}
	if n == 0 {
		out.Mean = math.NaN()
	} else {
		out.Mean = stat.Mean(xs, nil)
	}
	if n < 2 {
		out.StdDev = math.NaN()
		out.P2_5 = math.NaN()
		out.P97_5 = math.NaN()
		out.Expanded = math.NaN()
		out.CoverageFactor = math.NaN()
		return out
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	out.P2_5 = Percentile(sorted, LowerP)
	out.P97_5 = Percentile(sorted, UpperP)
	out.Expanded = (out.P97_5 - out.P2_5) / 2

	if sorted[0] == sorted[n-1] {
		// Summing n copies of a value is not exact in floating point, so the
		// constant case is pinned here rather than left to the accumulators.
		out.Mean = sorted[0]
		out.StdDev = 0
		out.CoverageFactor = math.NaN()
		return out
	}

	out.StdDev = stat.StdDev(xs, nil)
	if out.StdDev == 0 {
		out.CoverageFactor = math.NaN()
	} else {
		out.CoverageFactor = out.Expanded / out.StdDev
	}
	return out
}

// Percentile returns the p-quantile (0 <= p <= 1) of an ascending slice using
// linear interpolation between the order statistics at position (n-1)·p.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0 || math.IsNaN(p):
		return math.NaN()
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
