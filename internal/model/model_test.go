package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/pipelines"
)

func TestRun_ReferenceScenario(t *testing.T) {
	cfg := config.Defaults()
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.InDelta(t, 965.58, res.Nominals.Density, 0.01)
	assert.InDelta(t, 0.98862, res.Nominals.CTL, 1e-5)
	assert.Equal(t, 1.0, res.Nominals.CSW)

	require.Len(t, res.Leaves, 4)
	assert.Len(t, res.NSV, config.DefaultSamples)

	// CSW = 1 leaves NSV identical to GSV.
	assert.Equal(t, res.GSVStats.Mean, res.NSVStats.Mean)
	assert.Equal(t, res.GSVStats, res.NSVStats)

	want := 435.73 * res.Nominals.CTSh * res.Nominals.CTL
	assert.InDelta(t, want, res.NSVStats.Mean, 0.05)
	assert.LessOrEqual(t, res.NSVStats.P2_5, res.NSVStats.Mean)
	assert.LessOrEqual(t, res.NSVStats.Mean, res.NSVStats.P97_5)
	assert.Greater(t, res.NSVStats.CoverageFactor, 0.0)
}

func TestRun_Reproducible(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 5000
	cfg.Seed = 99

	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.NSV, b.NSV)
	for i := range a.Leaves {
		assert.Equal(t, a.Leaves[i].Samples, b.Leaves[i].Samples, "leaf %s", a.Leaves[i].Budget.Quantity)
	}
	assert.NotEqual(t, a.RunID, b.RunID)

	cfg.Seed = 100
	c, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.NSV, c.NSV)
}

func TestRun_UnknownProduct(t *testing.T) {
	cfg := config.Defaults()
	cfg.Measurement.Product = "water"
	_, err := Run(context.Background(), cfg)
	require.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Contains(t, err.Error(), "water")
}

func TestRun_StochasticCSW(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 20000
	cfg.Measurement.BSW = 0.5
	cfg.Measurement.BSWUncertainty = 0.05

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, res.Leaves, 5)

	csw := res.Leaf(pipelines.QCSW)
	require.NotNil(t, csw)
	assert.InDelta(t, 0.995, csw.Stats.Mean, 1e-4)
	assert.InDelta(t, res.GSVStats.Mean*0.995, res.NSVStats.Mean, 0.05)
	assert.Greater(t, res.NSVStats.StdDev, 0.0)
}

func TestRun_Lumped(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 20000
	cfg.Model = "lumped"

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	tov, ok := res.Stats(pipelines.QTOV)
	require.True(t, ok)
	assert.InDelta(t, 2.15/2.30, tov.StdDev, 0.02)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, config.Defaults())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimulateQuantity_MatchesFullRun(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 3000

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, q := range []string{pipelines.QTOV, pipelines.QFW, pipelines.QCTSh, pipelines.QCTL} {
		t.Run(q, func(t *testing.T) {
			p, err := SimulateQuantity(context.Background(), cfg, q)
			require.NoError(t, err)
			assert.Equal(t, res.Leaf(q).Samples, p.Samples)
		})
	}
}

func TestSimulateQuantity_Unavailable(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 100

	_, err := SimulateQuantity(context.Background(), cfg, pipelines.QCSW)
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)

	_, err = SimulateQuantity(context.Background(), cfg, "density")
	require.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestResult_Lookups(t *testing.T) {
	cfg := config.Defaults()
	cfg.Samples = 100
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	_, ok := res.Stats(pipelines.QCSW)
	assert.False(t, ok, "constant csw has no statistics")
	_, ok = res.Samples("bogus")
	assert.False(t, ok)

	xs, ok := res.Samples(pipelines.QGSV)
	require.True(t, ok)
	assert.Len(t, xs, 100)
}
