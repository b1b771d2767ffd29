package compose

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/sampler"
	"github.com/tankgauge/nsvmc/internal/stats"
)

type factorKind uint8

const (
	factorUnset factorKind = iota
	factorScalar
	factorSampled
)

// Factor is a multiplicative correction that is either a constant or a
// per-trial sample array. The zero Factor is unset and fails validation.
type Factor struct {
	kind    factorKind
	scalar  float64
	samples sampler.Samples
}

// Scalar returns a constant factor.
func Scalar(v float64) Factor {
	return Factor{kind: factorScalar, scalar: v}
}

// Sampled returns a factor that varies per trial.
func Sampled(xs sampler.Samples) Factor {
	return Factor{kind: factorSampled, samples: xs}
}

// IsSampled reports whether f carries a sample array.
func (f Factor) IsSampled() bool {
	return f.kind == factorSampled
}

// Value returns the factor for trial i.
func (f Factor) Value(i int) float64 {
	if f.kind == factorSampled {
		return f.samples[i]
	}
	return f.scalar
}

// Inputs are the aligned leaf sample arrays of one run.
type Inputs struct {
	TOV  sampler.Samples
	FW   sampler.Samples
	CTSh sampler.Samples
	CTL  sampler.Samples
	CSW  Factor
}

// Output holds the composite arrays and their summaries.
type Output struct {
	GSV      sampler.Samples
	NSV      sampler.Samples
	GSVStats stats.Reduced
	NSVStats stats.Reduced
}

// Validate checks that every array has the same length as TOV.
func (in Inputs) Validate() error {
	n := len(in.TOV)
	var bad []string
	check := func(name string, xs sampler.Samples) {
		if len(xs) != n {
			bad = append(bad, fmt.Sprintf("%s=%d", name, len(xs)))
		}
	}
	check("fw", in.FW)
	check("ctsh", in.CTSh)
	check("ctl", in.CTL)
	switch in.CSW.kind {
	case factorSampled:
		check("csw", in.CSW.samples)
	case factorUnset:
		bad = append(bad, "csw unset")
	}
	if len(bad) > 0 {
		return errdefs.ValidationFailed("sample arrays must share length tov=%d, got %s", n, strings.Join(bad, ", "))
	}
	return nil
}

// Compose computes GSV and NSV trial by trial and reduces both. It allocates
// new arrays and leaves the inputs untouched.
func Compose(in Inputs) (*Output, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	n := len(in.TOV)
	gsv := make(sampler.Samples, n)
	floats.SubTo(gsv, in.TOV, in.FW)
	floats.Mul(gsv, in.CTSh)
	floats.Mul(gsv, in.CTL)

	nsv := make(sampler.Samples, n)
	if in.CSW.IsSampled() {
		floats.MulTo(nsv, gsv, in.CSW.samples)
	} else {
		floats.ScaleTo(nsv, in.CSW.scalar, gsv)
	}

	out := &Output{
		GSV:      gsv,
		NSV:      nsv,
		GSVStats: stats.Reduce(gsv),
		NSVStats: stats.Reduce(nsv),
	}
	slog.Debug("compose: composite reduced",
		"samples", n,
		"gsv_mean", out.GSVStats.Mean,
		"nsv_mean", out.NSVStats.Mean,
		"csw_sampled", in.CSW.IsSampled(),
	)
	return out, nil
}
