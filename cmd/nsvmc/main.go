// Command nsvmc propagates measurement uncertainty through the net standard
// volume calculation of a crude oil storage tank by Monte Carlo simulation.
//
//	nsvmc run --config scenario.yaml
//	nsvmc simulate ctl --samples 200000
//	nsvmc watch --config scenario.yaml
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// errCriticalCheck makes the process exit non-zero after the report has been
// printed.
var errCriticalCheck = errors.New("critical acceptance check fired")

var (
	logLevel string
	scenario overrides
)

var rootCmd = &cobra.Command{
	Use:   "nsvmc",
	Short: "Monte Carlo uncertainty of tank net standard volume",
	Long: `nsvmc simulates the observed volume, free water and the thermal and
sediment corrections of a tank measurement, composes them into gross and net
standard volume and reports the resulting uncertainty.

Scenario values come from --config (YAML, or TOML for .toml files) on top of
the reference crude-oil tank; individual flags override the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	scenario.register(rootCmd)

	rootCmd.AddCommand(runCmd, simulateCmd, watchCmd)
}

// setupLogging installs the JSON logger on stderr so stdout carries only the
// report.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCriticalCheck) {
			fmt.Fprintln(os.Stderr, "nsvmc:", err)
		}
		os.Exit(1)
	}
}
