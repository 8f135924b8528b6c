package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crosspost-cli/crosspost/internal/config"
	"github.com/crosspost-cli/crosspost/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent posting activity",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := history.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	records, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No posts recorded yet.")
		return nil
	}

	for _, rec := range records {
		when := rec.CreatedAt.Local().Format("2006-01-02 15:04")
		if rec.Success {
			fmt.Printf("%s  ok      %-10s %s (%s)\n", when, rec.Platform, rec.PostID, rec.ContentKind)
		} else {
			fmt.Printf("%s  failed  %-10s %s\n", when, rec.Platform, rec.Error)
		}
	}

	total, succeeded, err := store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count history: %w", err)
	}
	fmt.Printf("\n%d records, %d successful\n", total, succeeded)
	return nil
}
