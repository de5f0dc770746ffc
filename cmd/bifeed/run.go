// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/export"
	"github.com/pdiddy/bifeed/internal/history"
	"github.com/pdiddy/bifeed/internal/parse"
	"github.com/pdiddy/bifeed/internal/transport"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, parse, export, upload",
	Long: `Run chains the whole nightly job: locate and download the feed from the
SFTP drop, extract program records, write the fully-quoted CSV, upload it
back to the drop, and record the run in the local history database.

With --skip-processed, a feed file already in the processed ledger is
skipped; the ledger is updated after each successful run.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("host", "", "SFTP host")
	runCmd.Flags().Int("port", 0, "SFTP port (default 22)")
	runCmd.Flags().String("username", "", "SFTP username")
	runCmd.Flags().String("feed-file", "", "feed filename to locate (default PartenaireBI.xml)")
	runCmd.Flags().Int("scan-depth", 0, "directory scan depth when known paths fail (default 3)")
	runCmd.Flags().String("upload-path", "", "remote CSV path (default /PartenaireBI.csv)")
	runCmd.Flags().Bool("no-upload", false, "skip the CSV upload step")
	runCmd.Flags().Bool("skip-processed", false, "skip feed files already in the processed ledger")
	runCmd.Flags().String("history-db", "", "run-history database path (default bifeed.db)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := transportConfig(cmd)
	if cfg.Host == "" || cfg.Username == "" {
		return fmt.Errorf("transport host and username required: set flags or transport.* config")
	}
	if cfg.Password == "" {
		return fmt.Errorf("FTP password not set: create .secrets/ftp-password or set BIFEED_TRANSPORT_PASSWORD")
	}

	ctx := context.Background()
	startedAt := time.Now()

	store, err := history.Open(historyPath(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := transport.Connect(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	remote, err := client.Locate(cfg.FeedFile, cfg.ScanDepth, os.Stderr)
	if err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("skip-processed"); skip {
		done, err := store.IsProcessed(ctx, remote)
		if err != nil {
			return err
		}
		if done {
			fmt.Fprintf(os.Stdout, "%s already processed, skipping\n", remote)
			return nil
		}
	}

	text, err := client.Download(remote)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "downloaded %s (%d characters)\n", remote, len(text))

	out := parse.Parse(text, parse.DefaultSchema(), os.Stderr)

	runID := history.NewRunID()
	record := func(status string) {
		if err := store.RecordRun(ctx, history.Run{
			ID:         runID,
			FeedFile:   remote,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Stats:      out.Stats,
			Status:     status,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run: %v\n", err)
		}
	}

	if len(out.Records) == 0 {
		fmt.Fprintln(os.Stdout, "No valid programs. No CSV created.")
		record("EMPTY")
		return nil
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, out.Records); err != nil {
		record("FAILED")
		return err
	}

	if noUpload, _ := cmd.Flags().GetBool("no-upload"); !noUpload {
		remoteCSV := flagOrConfig(cmd, "upload-path", "export.upload_path", defaultUploadPath)
		if err := client.Upload(remoteCSV, buf.String()); err != nil {
			record("FAILED")
			return err
		}
		fmt.Fprintf(os.Stdout, "%d programs -> %s\n", len(out.Records), remoteCSV)
	}

	record("SUCCESS")
	if err := store.MarkProcessed(ctx, remote, runID); err != nil {
		fmt.Fprintf(os.Stderr, "warning: updating processed ledger: %v\n", err)
	}
	return nil
}
