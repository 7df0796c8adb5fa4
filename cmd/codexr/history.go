package main

import (
	"fmt"
	"time"

	"github.com/ashureev/codexr/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear a user's saved answers",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "user identifier (email)")
	_ = cmd.MarkPersistentFlagRequired("user")

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent questions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			records, err := store.Load(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			out := cmd.OutOrStdout()
			records = history.Recent(records, limit)
			if len(records) == 0 {
				printf(out, "No history for %s\n", user)
				return nil
			}
			printHeading(out, "History for %s", user)
			for i, rec := range records {
				ts := time.Unix(rec.Timestamp, 0).Format("2006-01-02 15:04")
				printf(out, "%2d. [%s] %s (%s)\n", i+1, ts, rec.Query, rec.Answer.Context)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 8, "maximum records to show (0 for all)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context(), user); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			printOK(cmd.OutOrStdout(), "✓ History cleared")
			return nil
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func openHistory() (*history.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.NewFileStore(cfg.HistoryDir)
}
