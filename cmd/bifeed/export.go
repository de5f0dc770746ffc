// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/export"
	"github.com/pdiddy/bifeed/internal/parse"
	"github.com/pdiddy/bifeed/internal/transport"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Parse a feed document and write CSV or XLSX",
	Long: `Export runs the extraction engine over a local feed file and writes the
records as fully-quoted CSV (the import activity's shape) or XLSX.
With --upload the CSV is also written back to the SFTP drop.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().String("output", "", "local output path (default: PartenaireBI.csv / .xlsx)")
	exportCmd.Flags().Bool("upload", false, "upload the CSV to the SFTP drop")
	exportCmd.Flags().String("upload-path", "", "remote CSV path (default /PartenaireBI.csv)")
	exportCmd.Flags().String("host", "", "SFTP host (for --upload)")
	exportCmd.Flags().Int("port", 0, "SFTP port (default 22)")
	exportCmd.Flags().String("username", "", "SFTP username (for --upload)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading feed %s: %w", args[0], err)
	}

	out := parse.Parse(string(data), parse.DefaultSchema(), os.Stderr)
	if len(out.Records) == 0 {
		fmt.Fprintln(os.Stdout, "No valid programs. Nothing exported.")
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	switch format {
	case "csv", "":
		if output == "" {
			output = "PartenaireBI.csv"
		}
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, out.Records); err != nil {
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(os.Stdout, "wrote %d rows, %d bytes -> %s\n", len(out.Records), buf.Len(), output)

		if upload, _ := cmd.Flags().GetBool("upload"); upload {
			return uploadCSV(cmd, buf.String())
		}
		return nil
	case "xlsx":
		if output == "" {
			output = "PartenaireBI.xlsx"
		}
		if err := export.WriteXLSX(output, out.Records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %d rows -> %s\n", len(out.Records), output)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use csv or xlsx", format)
	}
}

func uploadCSV(cmd *cobra.Command, content string) error {
	cfg := transportConfig(cmd)
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("upload needs transport host, username, and ftp-password secret")
	}

	remote := flagOrConfig(cmd, "upload-path", "export.upload_path", defaultUploadPath)

	client, err := transport.Connect(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Upload(remote, content); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "uploaded %d bytes -> %s\n", len(content), remote)
	return nil
}
