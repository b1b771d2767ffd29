package checks

import (
	"math"
	"strconv"
	"strings"

	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// Condition is a parsed rule expression.
type Condition struct {
	Quantity  string
	Field     string
	Op        string
	Threshold float64
}

var quantities = map[string]bool{
	pipelines.QTOV:  true,
	pipelines.QFW:   true,
	pipelines.QCTSh: true,
	pipelines.QCTL:  true,
	pipelines.QCSW:  true,
	pipelines.QGSV:  true,
	pipelines.QNSV:  true,
}

// ParseCondition parses "<quantity>.<field> <op> <value>".
func ParseCondition(s string) (Condition, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Condition{}, errdefs.InvalidParameter("condition %q: want \"<quantity>.<field> <op> <value>\"", s)
	}
	lhs, op, rhs := parts[0], parts[1], parts[2]

	q, field, ok := strings.Cut(strings.ToLower(lhs), ".")
	if !ok {
		return Condition{}, errdefs.InvalidParameter("condition %q: left side must be <quantity>.<field>", s)
	}
	if !quantities[q] {
		return Condition{}, errdefs.InvalidParameter("condition %q: unknown quantity %q", s, q)
	}
	if _, ok := fieldValue(field, stats.Reduced{}); !ok {
		return Condition{}, errdefs.InvalidParameter("condition %q: unknown field %q", s, field)
	}
	switch op {
	case ">", ">=", "<", "<=", "==", "!=":
	default:
		return Condition{}, errdefs.InvalidParameter("condition %q: unknown operator %q", s, op)
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return Condition{}, errdefs.InvalidParameter("condition %q: threshold %q is not a number", s, rhs)
	}
	return Condition{Quantity: q, Field: field, Op: op, Threshold: threshold}, nil
}

// Eval applies the condition to s and returns whether it fires and the
// observed value. A NaN value never fires.
func (c Condition) Eval(s stats.Reduced) (bool, float64) {
	v, _ := fieldValue(c.Field, s)
	if math.IsNaN(v) {
		return false, v
	}
	return compareFloat(v, c.Op, c.Threshold), v
}

func (c Condition) String() string {
	return c.Quantity + "." + c.Field + " " + c.Op + " " + strconv.FormatFloat(c.Threshold, 'g', -1, 64)
}

// fieldValue maps a field name to its value in s.
func fieldValue(field string, s stats.Reduced) (float64, bool) {
	switch field {
	case "mean":
		return s.Mean, true
	case "stddev":
		return s.StdDev, true
	case "expanded":
		return s.Expanded, true
	case "coverage_factor":
		return s.CoverageFactor, true
	case "p2_5":
		return s.P2_5, true
	case "p97_5":
		return s.P97_5, true
	case "relative_expanded":
		return s.RelativeExpanded(), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
