// Package report renders run results as styled console tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tankgauge/nsvmc/internal/budget"
	"github.com/tankgauge/nsvmc/internal/checks"
	"github.com/tankgauge/nsvmc/internal/export"
	"github.com/tankgauge/nsvmc/internal/model"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// Options select the optional sections of a run report.
type Options struct {
	// Contributions adds the analytic budget table of every leaf.
	Contributions bool
	Findings      []checks.Finding
	// Drift, when set, adds the comparison against a baseline run.
	Drift *export.Drift
}

// Run writes the report of res to w.
func Run(w io.Writer, res *model.Result, opts Options) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NSV Monte Carlo uncertainty"))
	b.WriteByte('\n')
	if cfg := res.Scenario; cfg != nil {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf(
			"run %s · model %s · n = %d · seed %d · %s",
			res.RunID, cfg.Model, cfg.Samples, cfg.Seed, res.Elapsed.Round(time.Millisecond))))
	}

	section(&b, "Nominal factors")
	n := res.Nominals
	b.WriteString(grid([]string{"factor", "value"}, [][]string{
		{"density [kg/m³]", num(n.Density)},
		{"B [1/°F]", num(n.B)},
		{"alpha [1/°F]", num(n.Alpha)},
		{"CTSh", num(n.CTSh)},
		{"CTL", num(n.CTL)},
		{"CSW", num(n.CSW)},
	}))

	section(&b, "Simulated quantities")
	rows := make([][]string, 0, len(res.Leaves)+2)
	for _, p := range res.Leaves {
		rows = append(rows, quantityRow(p.Budget.Quantity, p.Budget.Unit, p.Stats, num(p.Analytic.Combined)))
	}
	rows = append(rows,
		quantityRow(pipelines.QGSV, "bbl", res.GSVStats, "-"),
		quantityRow(pipelines.QNSV, "bbl", res.NSVStats, "-"),
	)
	b.WriteString(grid(quantityHeaders, rows))

	s := res.NSVStats
	fmt.Fprintf(&b, "\nNSV = %s ± %s bbl (95 %%, k = %s); Gaussian 1.96σ = %s\n",
		num(s.Mean), num(s.Expanded), coverage(s), num(s.GaussianExpanded()))

	if opts.Contributions {
		for _, p := range res.Leaves {
			section(&b, fmt.Sprintf("Budget: %s", p.Budget.Quantity))
			b.WriteString(contributions(p.Analytic))
		}
	}

	if len(opts.Findings) > 0 {
		section(&b, "Checks")
		for _, f := range opts.Findings {
			b.WriteString(finding(f))
			b.WriteByte('\n')
		}
	}

	if d := opts.Drift; d != nil {
		section(&b, "Baseline drift")
		b.WriteString(grid([]string{"", "baseline", "current", "change"}, [][]string{
			{d.Quantity + " mean", num(d.BaselineMean), num(d.CurrentMean), pct(d.MeanRel)},
			{d.Quantity + " σ", num(d.BaselineStdDev), num(d.CurrentStdDev), pct(d.StdDevRel)},
		}))
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("baseline run "+d.BaselineRunID))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Propagation writes the report of a single simulated quantity.
func Propagation(w io.Writer, p *budget.Propagation) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quantity " + p.Budget.Quantity))
	b.WriteByte('\n')
	b.WriteString(grid(quantityHeaders, [][]string{
		quantityRow(p.Budget.Quantity, p.Budget.Unit, p.Stats, num(p.Analytic.Combined)),
	}))
	section(&b, "Analytic budget")
	b.WriteString(contributions(p.Analytic))
	_, err := io.WriteString(w, b.String())
	return err
}

var quantityHeaders = []string{"quantity", "unit", "mean", "σ (MC)", "σ (GUM)", "P2.5", "P97.5", "U95", "k", "1.96σ"}

func quantityRow(q, unit string, s stats.Reduced, analytic string) []string {
	if unit == "" {
		unit = "-"
	}
	return []string{
		q, unit,
		num(s.Mean), num(s.StdDev), analytic,
		num(s.P2_5), num(s.P97_5), num(s.Expanded),
		coverage(s), num(s.GaussianExpanded()),
	}
}

func contributions(a budget.Analytic) string {
	rows := make([][]string, 0, len(a.Contributions)+1)
	for _, c := range a.Contributions {
		unit := c.Unit
		if unit == "" {
			unit = "-"
		}
		rows = append(rows, []string{
			c.Name, c.Kind.String(), unit,
			num(c.StdUncertainty), num(c.Sensitivity), num(c.Contribution), share(c.Share),
		})
	}
	rows = append(rows, []string{"combined", "", "", "", "", num(a.Combined), share(1)})
	return grid([]string{"source", "dist", "unit", "u", "c", "|c|·u", "share"}, rows)
}

func finding(f checks.Finding) string {
	switch {
	case f.Skipped:
		return mutedStyle.Render("○ " + f.Message)
	case !f.Fired:
		return okStyle.Render("✓ " + f.Message)
	case f.Severity == checks.SeverityCritical:
		return errorStyle.Render("✗ " + f.Message)
	default:
		return warnStyle.Render("! " + f.Message)
	}
}

func grid(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case col == 0:
				return cellStyle
			default:
				return numberCellStyle
			}
		})
	return t.Render() + "\n"
}

func section(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteByte('\n')
}

// coverage formats k, which is undefined for a zero-variance quantity.
func coverage(s stats.Reduced) string {
	if s.Degenerate() {
		return "undefined"
	}
	return fmt.Sprintf("%.3f", s.CoverageFactor)
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.6g", v)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f%%", v*100)
}

func share(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
