package checks

import (
	"fmt"
	"log/slog"

	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// Severities accepted by a rule. An empty severity is treated as warning.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Source yields the reduced statistics of a named quantity. ok is false when
// the quantity was not simulated in this run.
type Source interface {
	Stats(quantity string) (s stats.Reduced, ok bool)
}

// Finding is the outcome of one rule against one run.
type Finding struct {
	Rule      string
	Severity  string
	Condition Condition
	Value     float64
	Fired     bool
	// Skipped is set when the quantity has no statistics in this run, e.g.
	// csw while BS&W is a constant.
	Skipped bool
	Message string
}

type rule struct {
	name     string
	severity string
	cond     Condition
}

// Engine evaluates a fixed rule set. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	rules []rule
}

// New parses every rule. An Engine with no rules is valid and Evaluate
// returns nil.
func New(rules []config.CheckRule) (*Engine, error) {
	e := &Engine{rules: make([]rule, 0, len(rules))}
	for _, r := range rules {
		cond, err := ParseCondition(r.Condition)
		if err != nil {
			return nil, fmt.Errorf("checks: rule %q: %w", r.Name, err)
		}
		sev := r.Severity
		if sev == "" {
			sev = SeverityWarning
		}
		e.rules = append(e.rules, rule{name: r.Name, severity: sev, cond: cond})
	}
	return e, nil
}

// Len returns the number of rules.
func (e *Engine) Len() int { return len(e.rules) }

// Evaluate tests every rule against src, logging each finding that fires or
// is skipped.
func (e *Engine) Evaluate(src Source) []Finding {
	if len(e.rules) == 0 {
		return nil
	}

	out := make([]Finding, 0, len(e.rules))
	for _, r := range e.rules {
		f := Finding{Rule: r.name, Severity: r.severity, Condition: r.cond}

		s, ok := src.Stats(r.cond.Quantity)
		if !ok {
			f.Skipped = true
			f.Message = fmt.Sprintf("[%s] %s skipped: %s was not simulated", r.severity, r.name, r.cond.Quantity)
			slog.Warn("checks: rule skipped", "rule", r.name, "quantity", r.cond.Quantity)
			out = append(out, f)
			continue
		}

		f.Fired, f.Value = r.cond.Eval(s)
		if f.Fired {
			f.Message = fmt.Sprintf("[%s] %s fired: %s = %.6g", r.severity, r.name, r.cond, f.Value)
			logFired(r, f.Value)
		} else {
			f.Message = fmt.Sprintf("%s passed: %s.%s = %.6g", r.name, r.cond.Quantity, r.cond.Field, f.Value)
		}
		out = append(out, f)
	}
	return out
}

// Critical reports whether any critical rule fired.
func Critical(findings []Finding) bool {
	for _, f := range findings {
		if f.Fired && f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func logFired(r rule, value float64) {
	attrs := []any{"rule", r.name, "condition", r.cond.String(), "value", value, "severity", r.severity}
	switch r.severity {
	case SeverityCritical:
		slog.Error("checks: rule fired", attrs...)
	case SeverityInfo:
		slog.Info("checks: rule fired", attrs...)
	default:
		slog.Warn("checks: rule fired", attrs...)
	}
}
