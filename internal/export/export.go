package export

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/tankgauge/nsvmc/internal/checks"
	"github.com/tankgauge/nsvmc/internal/model"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/stats"
)

const namespace = "nsvmc"

// Stat label values.
const (
	StatMean           = "mean"
	StatStdDev         = "stddev"
	StatP2_5           = "p2_5"
	StatP97_5          = "p97_5"
	StatExpanded       = "expanded"
	StatCoverageFactor = "coverage_factor"
	StatAnalyticStdDev = "analytic_stddev"
)

type collectors struct {
	quantity  *prometheus.GaugeVec
	nominal   *prometheus.GaugeVec
	checks    *prometheus.GaugeVec
	info      *prometheus.GaugeVec
	samples   prometheus.Gauge
	timestamp prometheus.Gauge
}

func newCollectors(reg prometheus.Registerer) *collectors {
	c := &collectors{
		quantity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quantity",
			Help:      "Reduced Monte Carlo statistics per simulated quantity.",
		}, []string{"quantity", "stat"}),
		nominal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nominal",
			Help:      "Deterministic correction factors of the run.",
		}, []string{"factor"}),
		checks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_fired",
			Help:      "1 when the acceptance rule fired, 0 otherwise.",
		}, []string{"rule", "severity"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Identity of the exported run.",
		}, []string{"run_id", "model"}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Number of Monte Carlo trials.",
		}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the run started.",
		}),
	}
	reg.MustRegister(c.quantity, c.nominal, c.checks, c.info, c.samples, c.timestamp)
	return c
}

func (c *collectors) setStats(q string, s stats.Reduced) {
	c.quantity.WithLabelValues(q, StatMean).Set(s.Mean)
	c.quantity.WithLabelValues(q, StatStdDev).Set(s.StdDev)
	c.quantity.WithLabelValues(q, StatP2_5).Set(s.P2_5)
	c.quantity.WithLabelValues(q, StatP97_5).Set(s.P97_5)
	c.quantity.WithLabelValues(q, StatExpanded).Set(s.Expanded)
	c.quantity.WithLabelValues(q, StatCoverageFactor).Set(s.CoverageFactor)
}

// Registry returns a registry populated with the gauges of res.
func Registry(res *model.Result, findings []checks.Finding) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	c := newCollectors(reg)

	for _, p := range res.Leaves {
		c.setStats(p.Budget.Quantity, p.Stats)
		c.quantity.WithLabelValues(p.Budget.Quantity, StatAnalyticStdDev).Set(p.Analytic.Combined)
	}
	c.setStats(pipelines.QGSV, res.GSVStats)
	c.setStats(pipelines.QNSV, res.NSVStats)

	n := res.Nominals
	c.nominal.WithLabelValues("density").Set(n.Density)
	c.nominal.WithLabelValues("b").Set(n.B)
	c.nominal.WithLabelValues("alpha").Set(n.Alpha)
	c.nominal.WithLabelValues(pipelines.QCTSh).Set(n.CTSh)
	c.nominal.WithLabelValues(pipelines.QCTL).Set(n.CTL)
	c.nominal.WithLabelValues(pipelines.QCSW).Set(n.CSW)

	for _, f := range findings {
		v := 0.0
		if f.Fired {
			v = 1
		}
		c.checks.WithLabelValues(f.Rule, f.Severity).Set(v)
	}

	modelName := ""
	if res.Scenario != nil {
		modelName = res.Scenario.Model
	}
	c.info.WithLabelValues(res.RunID, modelName).Set(1)
	c.samples.Set(float64(len(res.NSV)))
	c.timestamp.Set(float64(res.Started.Unix()))
	return reg
}

// Write exports res to the textfile at path.
func Write(path string, res *model.Result, findings []checks.Finding) error {
	if err := prometheus.WriteToTextfile(path, Registry(res, findings)); err != nil {
		return fmt.Errorf("export: write textfile: %w", err)
	}
	slog.Info("export: textfile written", "path", path, "run_id", res.RunID)
	return nil
}

// Current gathers the gauges of res into a Snapshot without touching disk.
func Current(res *model.Result) (*Snapshot, error) {
	mfs, err := Registry(res, nil).Gather()
	if err != nil {
		return nil, fmt.Errorf("export: gather: %w", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		byName[mf.GetName()] = mf
	}
	return snapshotFrom(byName), nil
}
