// Package pipelines builds the concrete uncertainty budgets of a tank
// measurement: observed volume (TOV), free water (FW), shell thermal
// correction (CTSh), liquid thermal correction (CTL) and, when BS&W carries
// an uncertainty, sediment and water correction (CSW).
//
// Two budget models exist. "detailed" lists every physical error source;
// "lumped" draws each quantity from a single normal source centred at its
// nominal value. The model and all of its constants are scenario settings.
package pipelines

import (
	"fmt"
	"strings"

	"github.com/tankgauge/nsvmc/internal/budget"
	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/petro"
	"github.com/tankgauge/nsvmc/internal/sampler"
)

// Quantity names, also used as metric labels and check prefixes.
const (
	QTOV  = "tov"
	QFW   = "fw"
	QCTSh = "ctsh"
	QCTL  = "ctl"
	QCSW  = "csw"
	QGSV  = "gsv"
	QNSV  = "nsv"
)

// Model selects the budget variant.
type Model string

const (
	ModelDetailed Model = "detailed"
	ModelLumped   Model = "lumped"
)

// ParseModel validates a model name.
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case ModelDetailed, ModelLumped:
		return m, nil
	default:
		return "", errdefs.InvalidParameter("unknown budget model %q (want detailed or lumped)", s)
	}
}

// Params are the measurement inputs of one run.
type Params struct {
	API        float64
	LiquidTemp float64 // °F
	TOV        float64 // bbl
	FW         float64 // bbl
	LevelMM    float64 // gauged liquid level
	Material   string
	Product    string
	BSW        float64 // %
	// BSWUncertainty is the standard uncertainty of the BS&W reading in %.
	// Zero keeps CSW a constant factor.
	BSWUncertainty float64

	Model    Model
	Detailed Detailed
	Lumped   Lumped
	Products petro.Products
}

// Nominals are the deterministic correction factors of a run.
type Nominals struct {
	Density float64 // kg/m³
	B       float64 // liquid thermal expansion coefficient
	Alpha   float64 // shell expansion coefficient, 1/°F
	CTSh    float64
	CTL     float64
	CSW     float64
}

// ComputeNominals evaluates the physical formulas for p. Unknown material or
// product keys are errdefs.ErrNotFound.
func ComputeNominals(p Params) (Nominals, error) {
	var n Nominals

	products := p.Products
	if products == nil {
		products = petro.NewProducts(nil)
	}
	k, err := products.Lookup(p.Product)
	if err != nil {
		return n, err
	}
	if n.Alpha, err = petro.LookupMaterial(p.Material); err != nil {
		return n, err
	}
	if n.Density, err = petro.DensityFromAPI(p.API); err != nil {
		return n, err
	}
	if n.B, err = petro.VolumeCorrelation(k, n.Density); err != nil {
		return n, err
	}
	if n.CSW, err = petro.CSW(p.BSW); err != nil {
		return n, err
	}
	n.CTSh = petro.ThermalShrinkageFactor(n.Alpha, p.LiquidTemp, petro.TRef)
	n.CTL = petro.CTL(n.B, p.LiquidTemp, petro.TRef)
	return n, nil
}

// Set is the full collection of budgets for one run. CSW is nil when the
// correction is a constant.
type Set struct {
	Nominals Nominals
	TOV      *budget.Budget
	FW       *budget.Budget
	CTSh     *budget.Budget
	CTL      *budget.Budget
	CSW      *budget.Budget
}

// Leaves returns the non-nil budgets in stream order. The index of a budget
// in this slice is its random stream number, so it must stay stable.
func (s *Set) Leaves() []*budget.Budget {
	out := []*budget.Budget{s.TOV, s.FW, s.CTSh, s.CTL}
	if s.CSW != nil {
		out = append(out, s.CSW)
	}
	return out
}

// Build computes the nominals and every budget for p.
func Build(p Params) (*Set, error) {
	nom, err := ComputeNominals(p)
	if err != nil {
		return nil, err
	}
	if p.BSWUncertainty < 0 {
		return nil, errdefs.InvalidParameter("bsw uncertainty must be >= 0, got %v", p.BSWUncertainty)
	}

	set := &Set{Nominals: nom}
	switch p.Model {
	case ModelDetailed, "":
		if set.TOV, err = detailedTOV(p); err != nil {
			return nil, err
		}
		if set.FW, err = detailedFW(p); err != nil {
			return nil, err
		}
		set.CTSh = detailedCTSh(p, nom)
		set.CTL = detailedCTL(p, nom)
	case ModelLumped:
		set.TOV = lumped(QTOV, "bbl", p.TOV, p.Lumped.TOV)
		set.FW = lumped(QFW, "bbl", p.FW, p.Lumped.FW)
		set.CTSh = lumped(QCTSh, "", nom.CTSh, p.Lumped.CTSh)
		set.CTL = lumped(QCTL, "", nom.CTL, p.Lumped.CTL)
	default:
		return nil, errdefs.InvalidParameter("unknown budget model %q", p.Model)
	}

	if p.BSWUncertainty > 0 {
		set.CSW = &budget.Budget{
			Quantity: QCSW,
			Nominal:  nom.CSW,
			Direct: []budget.Source{
				{Name: "bsw reading", Dist: sampler.NormalDist(0, p.BSWUncertainty), Sensitivity: -1.0 / 100},
			},
		}
	}

	for _, b := range set.Leaves() {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("pipelines: %w", err)
		}
	}
	return set, nil
}

// lumped models the quantity directly: one normal source centred at the
// nominal value.
func lumped(q, unit string, nominal, sigma float64) *budget.Budget {
	return &budget.Budget{
		Quantity: q,
		Unit:     unit,
		Direct: []budget.Source{
			{Name: q, Dist: sampler.NormalDist(nominal, sigma), Sensitivity: 1},
		},
	}
}

// levelSources are the level-domain error sources shared by TOV and FW.
// All are centred at zero, in millimetres.
func levelSources(p Params, d Detailed) []budget.Source {
	// The tape is at the liquid temperature while gauging.
	thermal := petro.ThermalLevelError(d.TapeAlpha, p.LiquidTemp, d.TapeCalibrationTemp, p.LevelMM)
	if thermal < 0 {
		thermal = -thermal
	}
	return []budget.Source{
		{Name: "tape calibration", Dist: sampler.NormalDist(0, petro.NormalStd(d.TapeCalibration, d.TapeCalibrationK)), Sensitivity: 1},
		{Name: "tape resolution", Dist: sampler.UniformDist(0, d.Resolution), Sensitivity: 1},
		{Name: "observer reading", Dist: sampler.UniformDist(0, d.Observer), Sensitivity: 1},
		{Name: "repeatability", Dist: sampler.NormalDist(0, d.Repeatability), Sensitivity: 1},
		{Name: "tape temperature", Dist: sampler.UniformDist(0, thermal), Sensitivity: 1},
		{Name: "datum plate movement", Dist: sampler.UniformDist(0, d.PlateMovement), Sensitivity: 1},
	}
}

func detailedTOV(p Params) (*budget.Budget, error) {
	d := p.Detailed
	perMM, err := petro.LevelSensitivity(p.TOV, p.LevelMM)
	if err != nil {
		return nil, fmt.Errorf("pipelines: tov: %w", err)
	}
	return &budget.Budget{
		Quantity: QTOV,
		Unit:     "bbl",
		Nominal:  p.TOV,
		Stage: &budget.Stage{
			Unit:       "mm",
			Sources:    levelSources(p, d),
			Conversion: perMM,
		},
		Direct: []budget.Source{
			{Name: "gauge table calibration", Dist: sampler.NormalDist(0, petro.NormalStd(d.TableCalibration, 2)), Sensitivity: 1},
			{Name: "gauge table resolution", Dist: sampler.UniformDist(0, perMM*d.TableResolution), Sensitivity: 1},
		},
	}, nil
}

func detailedFW(p Params) (*budget.Budget, error) {
	d := p.Detailed
	// With no free water there is no gauge table interpolation to be wrong.
	var tableCal, tableRes float64
	if p.FW != 0 {
		if p.TOV <= 0 {
			return nil, errdefs.InvalidParameter("fw: tov must be > 0 to scale table calibration, got %v", p.TOV)
		}
		tableCal = petro.NormalStd(d.TableCalibration, 2) * p.FW / p.TOV
		tableRes = d.FWSensitivity * d.TableResolution
	}
	return &budget.Budget{
		Quantity: QFW,
		Unit:     "bbl",
		Nominal:  p.FW,
		Stage: &budget.Stage{
			Unit:       "mm",
			Sources:    levelSources(p, d),
			Conversion: d.FWSensitivity,
		},
		Direct: []budget.Source{
			{Name: "gauge table calibration", Dist: sampler.NormalDist(0, tableCal), Sensitivity: 1},
			{Name: "gauge table resolution", Dist: sampler.UniformDist(0, tableRes), Sensitivity: 1},
		},
	}, nil
}

func detailedCTSh(p Params, nom Nominals) *budget.Budget {
	d := p.Detailed
	e := d.ShellExpansivity
	return &budget.Budget{
		Quantity: QCTSh,
		Nominal:  nom.CTSh,
		Direct: []budget.Source{
			{Name: "liquid temperature", Dist: sampler.NormalDist(0, d.LiquidThermometer.StdUncertainty(p.LiquidTemp)), Sensitivity: e},
			{Name: "ambient temperature", Dist: sampler.NormalDist(0, d.AmbientThermometer.StdUncertainty(d.AmbientTemp)), Sensitivity: -e},
		},
	}
}

func detailedCTL(p Params, nom Nominals) *budget.Budget {
	d := p.Detailed
	return &budget.Budget{
		Quantity: QCTL,
		Nominal:  nom.CTL,
		Direct: []budget.Source{
			{Name: "liquid temperature", Dist: sampler.NormalDist(0, d.LiquidThermometer.StdUncertainty(p.LiquidTemp)), Sensitivity: d.CTLTempSensitivity},
			{Name: "api gravity", Dist: sampler.NormalDist(0, petro.APIStdUncertainty(p.API, d.DensityTolerance)), Sensitivity: d.CTLAPISensitivity},
		},
	}
}
