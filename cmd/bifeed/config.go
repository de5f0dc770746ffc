// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bifeed/internal/secrets"
	"github.com/pdiddy/bifeed/pkg/types"
)

const (
	defaultFeedFile   = "PartenaireBI.xml"
	defaultUploadPath = "/PartenaireBI.csv"
	defaultUserAgent  = "bifeed/0.1"
	defaultTimeout    = 60 * time.Second
)

// flagOrConfig returns the flag value when set, otherwise the viper key,
// otherwise fallback. Flags win over the config file, which wins over
// the built-in default.
func flagOrConfig(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func intFlagOrConfig(cmd *cobra.Command, flag, key string, fallback int) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// transportConfig assembles the SFTP settings from flags, config, and
// secrets.
func transportConfig(cmd *cobra.Command) types.TransportConfig {
	return types.TransportConfig{
		Host:      flagOrConfig(cmd, "host", "transport.host", ""),
		Port:      intFlagOrConfig(cmd, "port", "transport.port", 22),
		Username:  flagOrConfig(cmd, "username", "transport.username", ""),
		Password:  secretDefault(secrets.KeyFTPPassword, viper.GetString("transport.password")),
		FeedFile:  flagOrConfig(cmd, "feed-file", "transport.feed_file", defaultFeedFile),
		ScanDepth: intFlagOrConfig(cmd, "scan-depth", "transport.scan_depth", 3),
	}
}

// ingestConfig assembles the ingestion API settings.
func ingestConfig(cmd *cobra.Command) types.IngestConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return types.IngestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Endpoint:   flagOrConfig(cmd, "endpoint", "ingest.endpoint", ""),
		APIKey:     secretDefault(secrets.KeyIngestAPIKey, viper.GetString("ingest.api_key")),
		BatchSize:  intFlagOrConfig(cmd, "batch-size", "ingest.batch_size", 100),
		MaxRetries: intFlagOrConfig(cmd, "max-retries", "ingest.max_retries", 0),
	}
}

// historyPath returns the run-history database path.
func historyPath(cmd *cobra.Command) string {
	return flagOrConfig(cmd, "history-db", "history.path", "bifeed.db")
}
