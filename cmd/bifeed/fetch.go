// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/transport"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the feed document from the SFTP drop",
	Long: `Fetch connects to the SFTP drop, locates the feed file (probing the
known paths, then scanning the tree), and writes it locally. The FTP
password is read from .secrets/ftp-password or the config file.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("host", "", "SFTP host")
	fetchCmd.Flags().Int("port", 0, "SFTP port (default 22)")
	fetchCmd.Flags().String("username", "", "SFTP username")
	fetchCmd.Flags().String("feed-file", "", "feed filename to locate (default PartenaireBI.xml)")
	fetchCmd.Flags().Int("scan-depth", 0, "directory scan depth when known paths fail (default 3)")
	fetchCmd.Flags().String("output", "", "local output path (default: the feed filename)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := transportConfig(cmd)
	if cfg.Host == "" || cfg.Username == "" {
		return fmt.Errorf("transport host and username required: set flags or transport.* config")
	}
	if cfg.Password == "" {
		return fmt.Errorf("FTP password not set: create .secrets/ftp-password or set BIFEED_TRANSPORT_PASSWORD")
	}

	client, err := transport.Connect(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	remote, err := client.Locate(cfg.FeedFile, cfg.ScanDepth, os.Stderr)
	if err != nil {
		return err
	}

	text, err := client.Download(remote)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.FeedFile
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Fprintf(os.Stdout, "downloaded %s (%d characters) -> %s\n", remote, len(text), output)
	return nil
}
