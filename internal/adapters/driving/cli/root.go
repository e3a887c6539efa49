package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/atacama-labs/tenderwatch/internal/adapters/driven/config/file"
	"github.com/atacama-labs/tenderwatch/internal/adapters/driven/storage/sqlite"
	"github.com/atacama-labs/tenderwatch/internal/connectors/mercadopublico"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driving"
	"github.com/atacama-labs/tenderwatch/internal/core/services"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Package-level services, wired once in initApp before any command runs.
var (
	appConfig *configfile.Config
	store     *sqlite.Store
	scorer    *services.Scorer
	ingestor  driving.Ingestor
	queries   driven.QueryRepository
	orgStore  driven.OrganizationStore
	ruleStore driven.RuleStore
	runStore  driven.RunStore
)

var (
	flagConfigDir string
	flagVerbose   bool
	flagJSONLog   bool
)

var rootCmd = &cobra.Command{
	Use:   "tenderwatch",
	Short: "Track and score Mercado Público tenders",
	Long: `tenderwatch ingests public tender listings from the Mercado Público
API, scores them against configurable keyword rules and keeps the
interesting ones in a local workflow database.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			store.Close()
		}
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.tenderwatch)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "log-json", false, "log in JSON instead of console format")
}

// initApp wires configuration, storage and the core services. Commands
// that never touch the pipeline still get a working logger and config.
func initApp(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(flagJSONLog, flagVerbose); err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}

	cfg, err := configfile.LoadConfig(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	appConfig = cfg

	s, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	store = s

	queries = s.QueryRepository()
	orgStore = s.OrganizationStore()
	ruleStore = s.RuleStore()
	runStore = s.RunStore()

	scorer = services.NewScorer(ruleStore)
	if err := scorer.ReloadRules(cmd.Context()); err != nil {
		return fmt.Errorf("loading scoring rules: %w", err)
	}

	// The API client is only built when a ticket is configured; read-only
	// commands work without one.
	if cfg.API.Ticket != "" {
		client, err := mercadopublico.NewClient(mercadopublico.Options{
			Ticket:      cfg.API.Ticket,
			MinInterval: cfg.MinRequestInterval(),
			MaxAttempts: cfg.API.MaxAttempts,
			Timeout:     cfg.RequestTimeout(),
		})
		if err != nil {
			return fmt.Errorf("building API client: %w", err)
		}

		ingestor = services.NewIngestOrchestrator(
			client,
			s.TenderStore(),
			queries,
			orgStore,
			runStore,
			scorer,
			services.IngestConfig{
				ScoreThreshold: cfg.Ingest.ScoreThreshold,
				DayPause:       cfg.DayPause(),
			},
		)
	}

	return nil
}

// requireIngestor guards commands that need the API pipeline.
func requireIngestor() error {
	if ingestor == nil {
		return errors.New("no API ticket configured; set api.ticket in " + appConfig.Path())
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
