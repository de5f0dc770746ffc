// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest submits extracted records to the remote ingestion API
// in batches. A failed batch is counted and reported, never fatal to the
// run; retry of throttled responses is delegated to httputil.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/bifeed/internal/httputil"
	"github.com/pdiddy/bifeed/pkg/types"
)

const defaultBatchSize = 100

// Client pushes record batches to the ingestion endpoint.
type Client struct {
	cfg  types.IngestConfig
	http *http.Client
}

// NewClient returns a Client for cfg.
func NewClient(cfg types.IngestConfig) *Client {
	return &Client{cfg: cfg, http: httputil.NewClient(cfg.HTTPConfig)}
}

// Report holds the accept/error accounting for one push run.
type Report struct {
	// Batches is the number of requests sent.
	Batches int

	// Accepted is the number of records the API acknowledged.
	Accepted int

	// Errors is the number of records rejected or lost to failed batches.
	Errors int
}

// HasErrors reports whether any records failed ingestion.
func (r Report) HasErrors() bool {
	return r.Errors > 0
}

// batchRequest is the wire shape of one ingestion request.
type batchRequest struct {
	Records []wireRecord `json:"records"`
}

// wireRecord mirrors the downstream table columns.
type wireRecord struct {
	URL        string `json:"program_url"`
	Ref        string `json:"program_ref"`
	Name       string `json:"program_name"`
	City       string `json:"program_city"`
	ZipCode    string `json:"program_zip_code"`
	Department string `json:"program_department"`
	Arguments  string `json:"program_arguments"`
	ScrapeDate string `json:"scraping_date"`
	Status     string `json:"scraping_status"`
	ErrorMsg   string `json:"error_message"`
	Image      string `json:"program_image"`
}

// batchResponse is the wire shape of the API's per-batch accounting.
type batchResponse struct {
	Accepted int      `json:"accepted"`
	Errors   int      `json:"errors"`
	Messages []string `json:"messages,omitempty"`
}

// Push submits records in batches and returns the aggregate report.
// Individual batch failures are written to w and counted as errors;
// only context cancellation aborts the run.
func (c *Client) Push(ctx context.Context, records []types.ProgramRecord, w io.Writer) (Report, error) {
	size := c.cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	var report Report
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		report.Batches++
		resp, err := c.pushBatch(ctx, batch)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			fmt.Fprintf(w, "warning: batch %d failed: %v\n", report.Batches, err)
			report.Errors += len(batch)
			continue
		}

		report.Accepted += resp.Accepted
		report.Errors += resp.Errors
		for _, msg := range resp.Messages {
			fmt.Fprintf(w, "  api: %s\n", msg)
		}
		fmt.Fprintf(w, "batch %d: %d accepted, %d errors\n", report.Batches, resp.Accepted, resp.Errors)
	}

	return report, nil
}

func (c *Client) pushBatch(ctx context.Context, batch []types.ProgramRecord) (batchResponse, error) {
	wire := make([]wireRecord, len(batch))
	for i, r := range batch {
		wire[i] = wireRecord{
			URL:        r.URL,
			Ref:        r.Ref,
			Name:       r.Name,
			City:       r.City,
			ZipCode:    r.ZipCode,
			Department: r.Department,
			Arguments:  r.Arguments,
			ScrapeDate: r.CapturedAt.Format(types.ScrapeDateLayout),
			Status:     r.Status,
			ErrorMsg:   r.ErrorMessage,
			Image:      r.Image,
		}
	}

	body, err := json.Marshal(batchRequest{Records: wire})
	if err != nil {
		return batchResponse{}, fmt.Errorf("marshaling batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return batchResponse{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return batchResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return batchResponse{}, fmt.Errorf("ingestion API returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var parsed batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return batchResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	return parsed, nil
}
