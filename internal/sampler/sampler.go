package sampler

import (
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tankgauge/nsvmc/internal/errdefs"
)

// Kind identifies the shape of an error distribution.
type Kind int

const (
	Normal Kind = iota
	Uniform
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// ParseKind maps "normal" / "uniform" (also "gaussian", "rectangular") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "gaussian":
		return Normal, nil
	case "uniform", "rectangular":
		return Uniform, nil
	default:
		return 0, errdefs.InvalidParameter("unknown distribution kind %q", s)
	}
}

// Samples is one simulated quantity: n independent draws, index i belonging to
// simulation trial i. Producers never modify a Samples after returning it.
type Samples []float64

// Distribution describes where an error source's draws come from.
type Distribution struct {
	Kind   Kind
	Center float64
	Spread float64 // σ for Normal, half-width for Uniform
}

// NormalDist returns a normal distribution with standard deviation sigma.
func NormalDist(center, sigma float64) Distribution {
	return Distribution{Kind: Normal, Center: center, Spread: sigma}
}

// UniformDist returns a uniform distribution on [center-halfWidth, center+halfWidth].
func UniformDist(center, halfWidth float64) Distribution {
	return Distribution{Kind: Uniform, Center: center, Spread: halfWidth}
}

// Validate reports ErrInvalidParameter for a negative or non-finite spread,
// a non-finite center, or an unknown kind.
func (d Distribution) Validate() error {
	if math.IsNaN(d.Spread) || math.IsInf(d.Spread, 0) || d.Spread < 0 {
		return errdefs.InvalidParameter("%s spread must be finite and >= 0, got %v", d.Kind, d.Spread)
	}
	if math.IsNaN(d.Center) || math.IsInf(d.Center, 0) {
		return errdefs.InvalidParameter("%s center must be finite, got %v", d.Kind, d.Center)
	}
	if d.Kind != Normal && d.Kind != Uniform {
		return errdefs.InvalidParameter("unknown distribution kind %d", int(d.Kind))
	}
	return nil
}

// StdUncertainty is the standard deviation of the distribution:
// Spread for Normal, Spread/√3 for Uniform.
func (d Distribution) StdUncertainty() float64 {
	if d.Kind == Uniform {
		return d.Spread / math.Sqrt(3)
	}
	return d.Spread
}

// Draw returns n independent draws from d using rng.
//
// A zero spread yields a constant array equal to d.Center and consumes no
// randomness.
func Draw(rng *rand.Rand, d Distribution, n int) (Samples, error) {
	if n < 0 {
		return nil, errdefs.InvalidParameter("sample count must be >= 0, got %d", n)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	out := make(Samples, n)
	if d.Spread == 0 {
		for i := range out {
			out[i] = d.Center
		}
		return out, nil
	}

	var r distuv.Rander
	switch d.Kind {
	case Uniform:
		r = distuv.Uniform{Min: d.Center - d.Spread, Max: d.Center + d.Spread, Src: rng}
	default:
		r = distuv.Normal{Mu: d.Center, Sigma: d.Spread, Src: rng}
	}
	for i := range out {
		out[i] = r.Rand()
	}
	return out, nil
}

// NewRand returns a PCG-backed generator for the given run seed and stream.
// Distinct streams under one seed are independent and reproducible.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
