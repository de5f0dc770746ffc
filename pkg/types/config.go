// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bifeed/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// TransportConfig holds settings for the SFTP feed drop.
type TransportConfig struct {
	// Host is the SFTP server hostname.
	Host string `json:"host" yaml:"host"`

	// Port is the SFTP server port (default 22).
	Port int `json:"port" yaml:"port"`

	// Username authenticates the SFTP session.
	Username string `json:"username" yaml:"username"`

	// Password authenticates the SFTP session. Usually supplied through
	// the ftp-password secret file rather than configuration.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// FeedFile is the feed filename to locate on the drop (default
	// "PartenaireBI.xml").
	FeedFile string `json:"feed_file" yaml:"feed_file"`

	// ScanDepth bounds the recursive directory scan used when none of the
	// known feed paths exist (default 3).
	ScanDepth int `json:"scan_depth" yaml:"scan_depth"`
}

// ExportConfig holds settings for tabular output.
type ExportConfig struct {
	// UploadPath is the remote CSV destination (default "/PartenaireBI.csv").
	UploadPath string `json:"upload_path" yaml:"upload_path"`
}

// IngestConfig holds settings for the remote ingestion API client.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the batch ingestion URL records are POSTed to.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey authenticates ingestion requests. Usually supplied through
	// the ingest-api-key secret file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of records per request (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRetries is the retry budget per batch for throttled responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// HistoryConfig holds settings for the local run-history database.
type HistoryConfig struct {
	// Path is the SQLite database file (default "bifeed.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Transport TransportConfig `json:"transport" yaml:"transport"`
	Export    ExportConfig    `json:"export" yaml:"export"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
