// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/ingest"
	"github.com/pdiddy/bifeed/internal/parse"
)

var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Parse a feed document and submit records to the ingestion API",
	Long: `Push runs the extraction engine over a local feed file and submits the
records to the ingestion API in batches. Throttled responses are retried
with backoff; a failed batch is counted and reported, and the remaining
batches still go out. The API key is read from .secrets/ingest-api-key.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().String("endpoint", "", "ingestion API batch endpoint URL")
	pushCmd.Flags().Int("batch-size", 0, "records per request (default 100)")
	pushCmd.Flags().Int("max-retries", 0, "retry budget per throttled batch (default 5)")
	pushCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg := ingestConfig(cmd)
	if cfg.Endpoint == "" {
		return fmt.Errorf("ingestion endpoint required: set --endpoint or ingest.endpoint config")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading feed %s: %w", args[0], err)
	}

	out := parse.Parse(string(data), parse.DefaultSchema(), os.Stderr)
	if len(out.Records) == 0 {
		fmt.Fprintln(os.Stdout, "No valid programs. Nothing to push.")
		return nil
	}

	client := ingest.NewClient(cfg)
	report, err := client.Push(context.Background(), out.Records, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\n%d batches: %d accepted, %d errors\n",
		report.Batches, report.Accepted, report.Errors)
	if report.HasErrors() {
		return fmt.Errorf("%d record(s) failed ingestion", report.Errors)
	}
	return nil
}
