package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tankgauge/nsvmc/internal/model"
	"github.com/tankgauge/nsvmc/internal/pipelines"
	"github.com/tankgauge/nsvmc/internal/plot"
	"github.com/tankgauge/nsvmc/internal/report"
)

var simulatePlot string

var simulateCmd = &cobra.Command{
	Use:       "simulate <quantity>",
	Short:     "Simulate a single quantity: tov, fw, ctsh, ctl or csw",
	Long:      "Propagate one leaf budget on its own and print its statistics and analytic budget.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{pipelines.QTOV, pipelines.QFW, pipelines.QCTSh, pipelines.QCTL, pipelines.QCSW},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scenario.load()
		if err != nil {
			return err
		}
		q := strings.ToLower(args[0])

		p, err := model.SimulateQuantity(cmd.Context(), cfg, q)
		if err != nil {
			return err
		}
		if simulatePlot != "" {
			if err := plot.Save(simulatePlot, p.Samples, plot.Options{
				Variable: strings.ToUpper(q),
				Unit:     p.Budget.Unit,
				Bins:     cfg.Output.PlotBins,
			}); err != nil {
				return err
			}
		}
		if err := report.Propagation(cmd.OutOrStdout(), p); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulatePlot, "plot", "", "write a histogram to this file (.png, .svg or .pdf)")
}
