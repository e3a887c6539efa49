package cli

import (
	"github.com/spf13/cobra"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent ingestion runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "maximum runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	runs, err := runStore.Recent(cmd.Context(), flagRunsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Printf("%-20s %-8s %9s %9s %9s %8s\n", "STARTED", "RESULT", "LISTINGS", "DETAILS", "PENDING", "ERRORS")
	for _, run := range runs {
		result := "ok"
		if !run.Success {
			result = "failed"
		}
		cmd.Printf("%-20s %-8s %9d %9d %9d %8d\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"), result,
			run.Stats.Listings, run.Stats.DetailsFetched, run.Stats.DetailsPending, run.Stats.Errors)
		if run.Error != "" {
			cmd.Printf("  %s\n", run.Error)
		}
	}
	return nil
}
