package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	configfile "github.com/atacama-labs/tenderwatch/internal/adapters/driven/config/file"
	"github.com/atacama-labs/tenderwatch/internal/core/services"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daily ingestion daemon",
	Long: `Runs until interrupted. Every day at the configured time, yesterday's
listings are ingested and scored; failed runs are retried with
exponential backoff. If a rule file is configured, edits to it are
picked up without a restart.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireIngestor(); err != nil {
		return err
	}

	scheduleCfg, err := appConfig.ScheduleConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := services.NewRetryController(scheduleCfg, ingestor)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return controller.Run(ctx)
	})

	if path := appConfig.Rules.Path; path != "" {
		watcher := configfile.NewRulesWatcher(path, func() error {
			rules, err := configfile.LoadRules(path)
			if err != nil {
				return err
			}
			if err := ruleStore.ReplaceAll(ctx, rules); err != nil {
				return err
			}
			return scorer.ReloadRules(ctx)
		})
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	} else {
		logger.Infof("no rule file configured; hot reload disabled")
	}

	cmd.Printf("Daemon running, daily ingestion at %s. Ctrl-C to stop.\n", appConfig.Scheduler.Time)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Daemon stopped.")
	return nil
}
