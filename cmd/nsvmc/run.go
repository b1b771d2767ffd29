package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tankgauge/nsvmc/internal/checks"
	"github.com/tankgauge/nsvmc/internal/config"
	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/export"
	"github.com/tankgauge/nsvmc/internal/model"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/plot"
	"github.com/tankgauge/nsvmc/internal/report"
)

var runOpts struct {
	plot          string
	metrics       string
	baseline      string
	contributions bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the full NSV chain and print the uncertainty report",
	Long: `Simulate TOV, FW, CTSh, CTL (and CSW when bsw_uncertainty > 0), compose
GSV and NSV, evaluate the scenario's acceptance checks and print the report.

The command exits non-zero when a critical check fires.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scenario.load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("plot") {
			cfg.Output.Plot = runOpts.plot
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Output.Metrics = runOpts.metrics
		}
		if cmd.Flags().Changed("baseline") {
			cfg.Output.Baseline = runOpts.baseline
		}

		critical, err := execute(cmd.Context(), cfg, cmd.OutOrStdout(), runOpts.contributions)
		if err != nil {
			return err
		}
		if critical {
			return errCriticalCheck
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.plot, "plot", "", "write a histogram to this file (.png, .svg or .pdf)")
	f.StringVar(&runOpts.metrics, "metrics", "", "write a Prometheus textfile to this path")
	f.StringVar(&runOpts.baseline, "baseline", "", "compare NSV against a previously written textfile")
	f.BoolVar(&runOpts.contributions, "contributions", false, "print the analytic budget of every quantity")
}

// execute runs one scenario through every sink and reports whether a
// critical check fired.
func execute(ctx context.Context, cfg *config.Config, w io.Writer, contributions bool) (bool, error) {
	engine, err := checks.New(cfg.Checks)
	if err != nil {
		return false, err
	}

	res, err := model.Run(ctx, cfg)
	if err != nil {
		return false, err
	}
	findings := engine.Evaluate(res)

	if out := cfg.Output; out.Plot != "" {
		if err := savePlot(res, out); err != nil {
			if !errors.Is(err, errdefs.ErrInvalidParameter) {
				return false, err
			}
			slog.Warn("plot: skipped", "err", err)
		}
	}

	opts := report.Options{Contributions: contributions, Findings: findings}

	// The baseline is read before the textfile is written so both may name
	// the same path.
	if cfg.Output.Baseline != "" {
		base, err := export.Read(cfg.Output.Baseline)
		if err != nil {
			return false, err
		}
		cur, err := export.Current(res)
		if err != nil {
			return false, err
		}
		d := export.Compare(base, cur, pipelines.QNSV)
		opts.Drift = &d
		slog.Info("export: baseline compared",
			"baseline_run_id", d.BaselineRunID,
			"mean_rel", d.MeanRel,
			"stddev_rel", d.StdDevRel,
		)
	}

	if cfg.Output.Metrics != "" {
		if err := export.Write(cfg.Output.Metrics, res, findings); err != nil {
			return false, err
		}
	}

	if err := report.Run(w, res, opts); err != nil {
		return false, fmt.Errorf("report: %w", err)
	}
	return checks.Critical(findings), nil
}

func savePlot(res *model.Result, out config.Output) error {
	q := strings.ToLower(out.PlotQuantity)
	xs, ok := res.Samples(q)
	if !ok {
		return errdefs.InvalidParameter("plot: quantity %q was not simulated", q)
	}
	unit := "bbl"
	if leaf := res.Leaf(q); leaf != nil {
		unit = leaf.Budget.Unit
	}
	return plot.Save(out.Plot, xs, plot.Options{
		Variable: strings.ToUpper(q),
		Unit:     unit,
		Bins:     out.PlotBins,
	})
}
