package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

var (
	flagListLimit  uint64
	flagListOffset uint64
	flagListActive bool
)

var listCmd = &cobra.Command{
	Use:   "list [stage]",
	Short: "List stored tenders by workflow stage",
	Long: `Lists tenders in a workflow stage, highest score first. Without a
stage argument, candidates are shown. With --active, tenders still open
upstream are shown regardless of stage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one tender in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var moveCmd = &cobra.Command{
	Use:   "move <code> <stage>",
	Short: "Move a tender to another workflow stage",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	listCmd.Flags().Uint64Var(&flagListLimit, "limit", 25, "maximum rows to show")
	listCmd.Flags().Uint64Var(&flagListOffset, "offset", 0, "rows to skip")
	listCmd.Flags().BoolVar(&flagListActive, "active", false, "show tenders still open upstream")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(moveCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	var (
		tenders []domain.Tender
		err     error
	)
	if flagListActive {
		tenders, err = queries.ListActive(cmd.Context())
	} else {
		stage := domain.StageCandidate
		if len(args) > 0 {
			stage, err = domain.ParseStage(args[0])
			if err != nil {
				return err
			}
		}
		tenders, err = queries.ListByStage(cmd.Context(), stage, flagListLimit, flagListOffset)
	}
	if err != nil {
		return err
	}
	if len(tenders) == 0 {
		cmd.Println("No tenders found.")
		return nil
	}

	cmd.Printf("%-16s %6s %-10s %-12s %s\n", "CODE", "SCORE", "STAGE", "CLOSES", "NAME")
	for _, t := range tenders {
		closes := "-"
		if t.ClosesAt != nil {
			closes = t.ClosesAt.Format("2006-01-02")
		}
		cmd.Printf("%-16s %6d %-10s %-12s %s\n", t.Code, t.Score, t.Stage, closes, truncate(t.Name, 60))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	detail, err := queries.GetByCode(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Code:         %s\n", detail.Code)
	cmd.Printf("Name:         %s\n", detail.Name)
	cmd.Printf("Stage:        %s\n", detail.Stage)
	cmd.Printf("Score:        %d\n", detail.Score)
	if detail.StateDescription != "" {
		cmd.Printf("State:        %s\n", detail.StateDescription)
	}
	if detail.OrgName != "" {
		cmd.Printf("Organization: %s (bias %+d)\n", detail.OrgName, detail.OrgScore)
	}
	if detail.ClosesAt != nil {
		cmd.Printf("Closes:       %s\n", detail.ClosesAt.Format("2006-01-02 15:04"))
	}
	if detail.Description != "" {
		cmd.Printf("\n%s\n", detail.Description)
	}
	if detail.ProductText != "" {
		cmd.Printf("\nItems:\n%s\n", detail.ProductText)
	}
	if detail.ScoreReasons != "" {
		cmd.Printf("\nScore breakdown:\n%s\n", detail.ScoreReasons)
	}
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	stage, err := domain.ParseStage(args[1])
	if err != nil {
		return err
	}
	if err := queries.MoveStage(cmd.Context(), args[0], stage); err != nil {
		return err
	}
	cmd.Printf("Tender %s moved to %s.\n", args[0], stage)
	return nil
}

// truncate shortens s to max runes. Counting runes, not bytes, keeps
// accented names from being cut mid-character.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
