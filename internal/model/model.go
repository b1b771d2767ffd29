package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tankgauge/nsvmc/internal/budget"
	"github.com/tankgauge/nsvmc/internal/compose"
	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/sampler"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Scenario *config.Config
	Started  time.Time
	Elapsed  time.Duration

	Nominals pipelines.Nominals

	// Leaves holds the propagated budgets in stream order: tov, fw, ctsh,
	// ctl and, when BS&W is simulated, csw.
	Leaves []*budget.Propagation

	GSV      sampler.Samples
	NSV      sampler.Samples
	GSVStats stats.Reduced
	NSVStats stats.Reduced
}

// Leaf returns the propagation of quantity q, or nil if q was not simulated.
func (r *Result) Leaf(q string) *budget.Propagation {
	for _, p := range r.Leaves {
		if p.Budget.Quantity == q {
			return p
		}
	}
	return nil
}

// Stats returns the reduced statistics of any simulated quantity, leaf or
// composite. ok is false for unknown names and for a constant CSW.
func (r *Result) Stats(q string) (s stats.Reduced, ok bool) {
	switch q {
	case pipelines.QGSV:
		return r.GSVStats, true
	case pipelines.QNSV:
		return r.NSVStats, true
	}
	if p := r.Leaf(q); p != nil {
		return p.Stats, true
	}
	return stats.Reduced{}, false
}

// Samples returns the sample array of any simulated quantity.
func (r *Result) Samples(q string) (sampler.Samples, bool) {
	switch q {
	case pipelines.QGSV:
		return r.GSV, true
	case pipelines.QNSV:
		return r.NSV, true
	}
	if p := r.Leaf(q); p != nil {
		return p.Samples, true
	}
	return nil, false
}

// Run executes the scenario. The scenario is assumed to be validated.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	started := time.Now()

	set, err := pipelines.Build(cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	leaves, err := propagate(ctx, set.Leaves(), cfg.Seed, cfg.Samples)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	in := compose.Inputs{
		TOV:  leaves[0].Samples,
		FW:   leaves[1].Samples,
		CTSh: leaves[2].Samples,
		CTL:  leaves[3].Samples,
		CSW:  compose.Scalar(set.Nominals.CSW),
	}
	if set.CSW != nil {
		in.CSW = compose.Sampled(leaves[4].Samples)
	}
	out, err := compose.Compose(in)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	res := &Result{
		RunID:    uuid.NewString(),
		Scenario: cfg,
		Started:  started,
		Nominals: set.Nominals,
		Leaves:   leaves,
		GSV:      out.GSV,
		NSV:      out.NSV,
		GSVStats: out.GSVStats,
		NSVStats: out.NSVStats,
	}
	res.Elapsed = time.Since(started)

	slog.Info("model: run complete",
		"run_id", res.RunID,
		"samples", cfg.Samples,
		"model", cfg.Model,
		"nsv_mean", res.NSVStats.Mean,
		"nsv_expanded", res.NSVStats.Expanded,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// SimulateQuantity propagates the single leaf q. It uses the stream q would
// get in a full run, so its samples match Run's for the same seed.
func SimulateQuantity(ctx context.Context, cfg *config.Config, q string) (*budget.Propagation, error) {
	set, err := pipelines.Build(cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	for i, b := range set.Leaves() {
		if b.Quantity != q {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := b.Propagate(sampler.NewRand(cfg.Seed, uint64(i)), cfg.Samples)
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		logLeaf(p)
		return p, nil
	}
	if q == pipelines.QCSW {
		return nil, errdefs.InvalidParameter("csw is constant unless measurement.bsw_uncertainty > 0")
	}
	return nil, errdefs.NotFound("quantity", q)
}

// propagate simulates every leaf concurrently, one stream per leaf.
func propagate(ctx context.Context, leaves []*budget.Budget, seed uint64, n int) ([]*budget.Propagation, error) {
	out := make([]*budget.Propagation, len(leaves))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range leaves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := b.Propagate(sampler.NewRand(seed, uint64(i)), n)
			if err != nil {
				return err
			}
			logLeaf(p)
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func logLeaf(p *budget.Propagation) {
	slog.Debug("model: leaf simulated",
		"quantity", p.Budget.Quantity,
		"mean", p.Stats.Mean,
		"stddev", p.Stats.StdDev,
		"analytic_stddev", p.Analytic.Combined,
	)
}
