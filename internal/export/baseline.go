package export

import (
	"fmt"
	"io"
	"math"
	"os"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Snapshot is the content of an exported textfile.
type Snapshot struct {
	RunID string
	// Stats is keyed by quantity, then stat.
	Stats    map[string]map[string]float64
	Nominals map[string]float64
}

// Value returns one statistic, or NaN when absent.
func (s *Snapshot) Value(quantity, stat string) float64 {
	if v, ok := s.Stats[quantity][stat]; ok {
		return v
	}
	return math.NaN()
}

// Read parses the textfile at path.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open baseline: %w", err)
	}
	defer f.Close()

	mfs, err := parseMetrics(f)
	if err != nil {
		return nil, fmt.Errorf("export: %s: %w", path, err)
	}
	return snapshotFrom(mfs), nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

func snapshotFrom(mfs map[string]*dto.MetricFamily) *Snapshot {
	s := &Snapshot{
		Stats:    make(map[string]map[string]float64),
		Nominals: make(map[string]float64),
	}
	if mf := mfs[namespace+"_quantity"]; mf != nil {
		for _, m := range mf.GetMetric() {
			q, stat := label(m, "quantity"), label(m, "stat")
			if s.Stats[q] == nil {
				s.Stats[q] = make(map[string]float64)
			}
			s.Stats[q][stat] = gaugeValue(m)
		}
	}
	if mf := mfs[namespace+"_nominal"]; mf != nil {
		for _, m := range mf.GetMetric() {
			s.Nominals[label(m, "factor")] = gaugeValue(m)
		}
	}
	if mf := mfs[namespace+"_run_info"]; mf != nil && len(mf.GetMetric()) > 0 {
		s.RunID = label(mf.GetMetric()[0], "run_id")
	}
	return s
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func gaugeValue(m *dto.Metric) float64 {
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	}
	return math.NaN()
}

// Drift compares one quantity between two snapshots. Relative values are
// fractions of the baseline and NaN when the baseline value is zero or absent.
type Drift struct {
	Quantity       string
	BaselineRunID  string
	BaselineMean   float64
	CurrentMean    float64
	MeanRel        float64
	BaselineStdDev float64
	CurrentStdDev  float64
	StdDevRel      float64
}

// Compare computes the drift of quantity from baseline to current.
func Compare(baseline, current *Snapshot, quantity string) Drift {
	d := Drift{
		Quantity:       quantity,
		BaselineRunID:  baseline.RunID,
		BaselineMean:   baseline.Value(quantity, StatMean),
		CurrentMean:    current.Value(quantity, StatMean),
		BaselineStdDev: baseline.Value(quantity, StatStdDev),
		CurrentStdDev:  current.Value(quantity, StatStdDev),
	}
	d.MeanRel = relative(d.BaselineMean, d.CurrentMean)
	d.StdDevRel = relative(d.BaselineStdDev, d.CurrentStdDev)
	return d
}

func relative(before, after float64) float64 {
	if before == 0 || math.IsNaN(before) {
		return math.NaN()
	}
	return (after - before) / math.Abs(before)
}
