package cmd

import (
	"fmt"
	"log/slog"

	"github.com/pyama86/YASE/domain/repository"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the escalation history store",
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <issueKey>",
	Short: "Delete all history entries for an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := repository.NewConfigRepository(configPath)
		if err != nil {
			return err
		}
		history, err := newHistoryRepository(cfg)
		if err != nil {
			return err
		}
		if err := history.DeleteIssue(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete history for %s: %w", args[0], err)
		}
		slog.Info("Deleted escalation history", slog.String("issue", args[0]))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := repository.NewConfigRepository(configPath)
		if err != nil {
			return err
		}
		history, err := newHistoryRepository(cfg)
		if err != nil {
			return err
		}
		if err := history.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		slog.Info("Cleared escalation history")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
