package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/atacama-labs/tenderwatch/internal/adapters/driven/config/file"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the keyword scoring rules",
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the rule set from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesImport,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored scoring rules",
	RunE:  runRulesList,
}

var rulesBiasCmd = &cobra.Command{
	Use:   "bias <org-code> <score>",
	Short: "Set the score bias of an organization",
	Long: `Sets a per-organization score adjustment. The bias is added to the
combined score of every tender published by the organization, positive
or negative.`,
	Args: cobra.ExactArgs(2),
	RunE: runRulesBias,
}

func init() {
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesBiasCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	rules, err := configfile.LoadRules(args[0])
	if err != nil {
		return err
	}

	if err := ruleStore.ReplaceAll(cmd.Context(), rules); err != nil {
		return fmt.Errorf("storing rules: %w", err)
	}
	if err := scorer.ReloadRules(cmd.Context()); err != nil {
		return fmt.Errorf("activating rules: %w", err)
	}

	cmd.Printf("Imported %d rules (%d active).\n", len(rules), scorer.RuleCount())
	return nil
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	rules, err := ruleStore.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		cmd.Println("No rules stored. Import some with: tenderwatch rules import <file>")
		return nil
	}

	cmd.Printf("%-30s %-15s %7s %7s %7s\n", "PHRASE", "CATEGORY", "TITLE", "DESC", "PROD")
	for _, r := range rules {
		cmd.Printf("%-30s %-15s %7d %7d %7d\n",
			r.Phrase, r.Category, r.TitleWeight, r.DescriptionWeight, r.ProductWeight)
	}
	return nil
}

func runRulesBias(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid score %q: want an integer", args[1])
	}

	if err := orgStore.SetBias(cmd.Context(), args[0], score); err != nil {
		return err
	}

	org, err := orgStore.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Bias for %s (%s) set to %+d.\n", org.Name, org.Code, org.Score)
	return nil
}
