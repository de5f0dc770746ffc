// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past runs and the processed-file ledger",
	Long: `History manages the local SQLite database that records pipeline runs
and the processed-file ledger used by run --skip-processed.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent pipeline runs",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyPath(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-27s  %-19s  %-8s  %-7s  %-8s  %-4s  %s\n",
		"Run", "Started", "Scanned", "Valid", "Skipped", "Dups", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))

	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-27s  %-19s  %-8d  %-7d  %-8d  %-4d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Stats.Scanned, r.Stats.Accepted, r.Stats.Skipped(),
			r.Stats.DuplicatesSkipped, r.Status)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

// --- mark subcommand ---

var historyMarkCmd = &cobra.Command{
	Use:   "mark [file]",
	Short: "Add a feed file to the processed ledger by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.MarkProcessed(context.Background(), args[0], ""); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "marked %s processed\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().String("history-db", "", "run-history database path (default bifeed.db)")

	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (default 20)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyMarkCmd)

	rootCmd.AddCommand(historyCmd)
}
