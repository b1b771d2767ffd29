package checks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/stats"
)

type fakeSource map[string]stats.Reduced

func (f fakeSource) Stats(q string) (stats.Reduced, bool) {
	s, ok := f[q]
	return s, ok
}

func nsvStats() stats.Reduced {
	return stats.Reduced{
		N: 1000, Mean: 430, StdDev: 1, P2_5: 428, P97_5: 432,
		Expanded: 2, CoverageFactor: 2,
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in      string
		want    Condition
		wantErr bool
	}{
		{in: "nsv.mean > 400", want: Condition{"nsv", "mean", ">", 400}},
		{in: "NSV.Coverage_Factor >= 2.2", want: Condition{"nsv", "coverage_factor", ">=", 2.2}},
		{in: "ctl.stddev != 0", want: Condition{"ctl", "stddev", "!=", 0}},
		{in: "nsv.mean > ", wantErr: true},
		{in: "nsv mean > 1", wantErr: true},
		{in: "density.mean > 1", wantErr: true},
		{in: "nsv.median > 1", wantErr: true},
		{in: "nsv.mean => 1", wantErr: true},
		{in: "nsv.mean > high", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCondition(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCondition_Eval(t *testing.T) {
	s := nsvStats()
	tests := []struct {
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"nsv.mean > 429", true, 430},
		{"nsv.mean < 429", false, 430},
		{"nsv.expanded >= 2", true, 2},
		{"nsv.p2_5 <= 428", true, 428},
		{"nsv.p97_5 == 432", true, 432},
		{"nsv.relative_expanded > 0.4", true, 2.0 / 430 * 100},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			c, err := ParseCondition(tc.cond)
			require.NoError(t, err)
			fires, v := c.Eval(s)
			assert.Equal(t, tc.wantFires, fires)
			assert.InDelta(t, tc.wantValue, v, 1e-12)
		})
	}
}

func TestCondition_NaNNeverFires(t *testing.T) {
	s := nsvStats()
	s.CoverageFactor = math.NaN()
	for _, op := range []string{">", "<", "!="} {
		c, err := ParseCondition("nsv.coverage_factor " + op + " 2")
		require.NoError(t, err)
		fires, v := c.Eval(s)
		assert.False(t, fires, op)
		assert.True(t, math.IsNaN(v))
	}
}

func TestNew_RejectsMalformedRule(t *testing.T) {
	_, err := New([]config.CheckRule{{Name: "broken", Condition: "nsv.mean >"}})
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "broken")
}

func TestEngine_Evaluate(t *testing.T) {
	e, err := New([]config.CheckRule{
		{Name: "wide", Condition: "nsv.relative_expanded > 0.1", Severity: SeverityCritical},
		{Name: "narrow", Condition: "nsv.stddev < 0.5", Severity: SeverityInfo},
		{Name: "default-sev", Condition: "nsv.mean > 1"},
		{Name: "csw", Condition: "csw.stddev > 0", Severity: SeverityCritical},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, e.Len())

	findings := e.Evaluate(fakeSource{"nsv": nsvStats()})
	require.Len(t, findings, 4)

	assert.True(t, findings[0].Fired)
	assert.Contains(t, findings[0].Message, "wide fired")
	assert.False(t, findings[1].Fired)
	assert.Equal(t, SeverityWarning, findings[2].Severity)
	assert.True(t, findings[2].Fired)
	assert.True(t, findings[3].Skipped)
	assert.False(t, findings[3].Fired)

	assert.True(t, Critical(findings))
	assert.False(t, Critical(findings[1:]), "a skipped critical rule does not count")
}

func TestEngine_NoRules(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, e.Evaluate(fakeSource{}))
	assert.False(t, Critical(nil))
}
