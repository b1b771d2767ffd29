package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tankgauge/nsvmc/internal/config"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the scenario every time the config file changes",
	Long: `Run the scenario once, then watch --config and re-run it on every save.
Invalid edits are logged and skipped. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scenario.configPath == "" {
			return errors.New("watch requires --config")
		}
		cfg, err := scenario.load()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		w := cmd.OutOrStdout()
		rerun := func(ctx context.Context, cfg *config.Config) {
			critical, err := execute(ctx, cfg, w, runOpts.contributions)
			if err != nil {
				slog.Error("watch: run failed", "err", err)
				return
			}
			if critical {
				slog.Warn("watch: critical check fired", "path", scenario.configPath)
			}
		}
		rerun(ctx, cfg)

		err = config.Watch(ctx, scenario.configPath, watchDebounce, func(updated *config.Config) {
			scenario.apply(updated)
			if err := updated.Validate(); err != nil {
				slog.Error("watch: overrides invalid for reloaded scenario", "err", err)
				return
			}
			rerun(ctx, updated)
		})
		slog.Info("watch: stopped")
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", config.DefaultDebounce, "quiet period before a change is re-run")
	watchCmd.Flags().BoolVar(&runOpts.contributions, "contributions", false, "print the analytic budget of every quantity")
}
