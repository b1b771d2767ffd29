package export

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankgauge/nsvmc/internal/checks"
	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/model"
	"github.com/tankgauge/nsvmc/internal/pipelines"
)

func runScenario(t *testing.T, seed uint64) *model.Result {
	t.Helper()
	cfg := config.Defaults()
	cfg.Samples = 2000
	cfg.Seed = seed
	res, err := model.Run(context.Background(), cfg)
	require.NoError(t, err)
	return res
}

func TestWriteRead_RoundTrip(t *testing.T) {
	res := runScenario(t, 1)
	findings := []checks.Finding{{Rule: "wide", Severity: "critical", Fired: true}}

	path := filepath.Join(t.TempDir(), "nsv.prom")
	require.NoError(t, Write(path, res, findings))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `nsvmc_check_fired{rule="wide",severity="critical"} 1`)
	assert.Contains(t, string(raw), "# TYPE nsvmc_quantity gauge")

	snap, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, snap.RunID)
	assert.Equal(t, res.NSVStats.Mean, snap.Value(pipelines.QNSV, StatMean))
	assert.Equal(t, res.NSVStats.StdDev, snap.Value(pipelines.QNSV, StatStdDev))
	assert.Equal(t, res.Nominals.CTL, snap.Nominals[pipelines.QCTL])
	assert.Equal(t, res.Leaf(pipelines.QTOV).Analytic.Combined, snap.Value(pipelines.QTOV, StatAnalyticStdDev))
	assert.True(t, math.IsNaN(snap.Value(pipelines.QCSW, StatMean)), "constant csw is not exported as a quantity")
}

func TestCurrent_MatchesWrittenFile(t *testing.T) {
	res := runScenario(t, 5)
	cur, err := Current(res)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nsv.prom")
	require.NoError(t, Write(path, res, nil))
	disk, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, disk.Stats[pipelines.QGSV], cur.Stats[pipelines.QGSV])
}

func TestCompare(t *testing.T) {
	base := &Snapshot{RunID: "a", Stats: map[string]map[string]float64{
		"nsv": {StatMean: 400, StatStdDev: 2},
	}}
	cur := &Snapshot{RunID: "b", Stats: map[string]map[string]float64{
		"nsv": {StatMean: 404, StatStdDev: 1},
	}}
	d := Compare(base, cur, "nsv")
	assert.Equal(t, "a", d.BaselineRunID)
	assert.InDelta(t, 0.01, d.MeanRel, 1e-12)
	assert.InDelta(t, -0.5, d.StdDevRel, 1e-12)

	missing := Compare(&Snapshot{}, cur, "nsv")
	assert.True(t, math.IsNaN(missing.MeanRel))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.prom"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.prom")
	require.NoError(t, os.WriteFile(path, []byte("{garbage\n"), 0o600))
	_, err = Read(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse prometheus text"))
}
