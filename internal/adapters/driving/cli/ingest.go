package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const flagDateFormat = "2006-01-02"

var (
	flagIngestFrom string
	flagIngestTo   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest and score a date range of tender listings",
	Long: `Fetches the daily tender listings for an inclusive date range,
scores every entry against the keyword rules and stores the results.
Without flags, yesterday is ingested.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&flagIngestFrom, "from", "", "first day to ingest (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&flagIngestTo, "to", "", "last day to ingest (YYYY-MM-DD)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := requireIngestor(); err != nil {
		return err
	}

	start, end, err := resolveRange(flagIngestFrom, flagIngestTo)
	if err != nil {
		return err
	}

	stats, err := ingestor.ProcessDateRange(cmd.Context(), start, end, func(msg string) {
		cmd.Println(msg)
	})

	cmd.Printf("\nListings seen:    %d\n", stats.Listings)
	cmd.Printf("Details fetched:  %d\n", stats.DetailsFetched)
	cmd.Printf("Details pending:  %d\n", stats.DetailsPending)
	cmd.Printf("Omitted by title: %d\n", stats.Omitted)
	cmd.Printf("Errors:           %d\n", stats.Errors)

	if err != nil {
		return fmt.Errorf("ingestion interrupted: %w", err)
	}
	return nil
}

// resolveRange turns the flag pair into an inclusive range, defaulting to
// yesterday. A lone --from ingests from that day through yesterday.
func resolveRange(from, to string) (time.Time, time.Time, error) {
	yesterday := time.Now().AddDate(0, 0, -1)

	start := yesterday
	end := yesterday
	var err error

	if from != "" {
		start, err = time.Parse(flagDateFormat, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: want YYYY-MM-DD", from)
		}
	}
	if to != "" {
		end, err = time.Parse(flagDateFormat, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q: want YYYY-MM-DD", to)
		}
	}
	return start, end, nil
}
