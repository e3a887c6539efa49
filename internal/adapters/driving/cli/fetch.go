package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

var flagFetchStage string

var fetchCmd = &cobra.Command{
	Use:   "fetch <code>",
	Short: "Fetch one tender by code and place it in a stage",
	Long: `Fetches a single tender's full detail from the API, scores it and
stores it directly in the given workflow stage. Useful for tenders found
outside the daily listings.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchStage, "stage", string(domain.StageCandidate),
		"target stage (candidate, follow_up, bid, ignored)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := requireIngestor(); err != nil {
		return err
	}

	stage, err := domain.ParseStage(flagFetchStage)
	if err != nil {
		return err
	}

	ok, message := ingestor.ProcessManual(cmd.Context(), args[0], stage, func(msg string) {
		cmd.Println(msg)
	})
	cmd.Println(message)
	if !ok {
		return errors.New("fetch failed")
	}
	return nil
}
