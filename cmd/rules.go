package cmd

import (
	"context"
	"fmt"

	"github.com/pyama86/YASE/domain/repository"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the escalation rules in the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := repository.NewConfigRepository(configPath)
		if err != nil {
			return err
		}
		rules, err := cfg.Rules(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Found %d rules:\n", len(rules))
		for i, rule := range rules {
			fmt.Printf("\n%d. %s\n", i+1, rule.DisplayName())
			fmt.Printf("   JQL: %s\n", rule.JQL)
			fmt.Printf("   Level: %d\n", rule.Level)
			fmt.Printf("   Max time in status: %d minutes\n", rule.MaxTimeInStatusMinutes)
			if rule.DaysToActivate > 0 {
				fmt.Printf("   Days to activate: %d\n", rule.DaysToActivate)
			}
			fmt.Printf("   Escalation paths (%d):\n", len(rule.EscalationPaths))
			for j, path := range rule.EscalationPaths {
				fmt.Printf("     %d. %s -> %s\n", j+1, path.Type, path.Recipient)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
