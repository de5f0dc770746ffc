package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/bifeed/pkg/types"
)

func makeRecords(n int) []types.ProgramRecord {
	records := make([]types.ProgramRecord, n)
	for i := range records {
		records[i] = types.ProgramRecord{
			URL:        fmt.Sprintf("https://promoter.example/programme-neuf-%d", i),
			Ref:        fmt.Sprintf("R%d", i),
			Name:       "Les Terrasses",
			City:       "Bordeaux",
			ZipCode:    "33000",
			Department: "33",
			Arguments:  "N/A",
			CapturedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			Status:     "SUCCESS",
			Image:      "NO IMAGE",
		}
	}
	return records
}

func testClient(url string, batchSize int) *Client {
	return NewClient(types.IngestConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"},
		Endpoint:   url,
		APIKey:     "key-123",
		BatchSize:  batchSize,
		MaxRetries: 1,
	})
}

func TestPushBatching(t *testing.T) {
	var sizes []int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		sizes = append(sizes, len(req.Records))
		json.NewEncoder(w).Encode(batchResponse{Accepted: len(req.Records)})
	}))
	defer ts.Close()

	report, err := testClient(ts.URL, 4).Push(context.Background(), makeRecords(10), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if report.Batches != 3 || report.Accepted != 10 || report.Errors != 0 {
		t.Errorf("report = %+v, want 3 batches, 10 accepted, 0 errors", report)
	}
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Errorf("batch sizes = %v, want [4 4 2]", sizes)
	}
}

func TestPushSendsAuthAndWireShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test/0.1" {
			t.Errorf("User-Agent = %q", got)
		}

		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Records) != 1 {
			t.Fatalf("records = %d, want 1", len(req.Records))
		}
		rec := req.Records[0]
		if rec.Ref != "R0" || rec.ScrapeDate != "2026-03-14 09:26:53" || rec.Status != "SUCCESS" {
			t.Errorf("wire record = %+v", rec)
		}
		json.NewEncoder(w).Encode(batchResponse{Accepted: 1})
	}))
	defer ts.Close()

	if _, err := testClient(ts.URL, 0).Push(context.Background(), makeRecords(1), &bytes.Buffer{}); err != nil {
		t.Fatalf("Push: %v", err)
	}
}

func TestPushFailedBatchCountedAndRunContinues(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "bad batch", http.StatusBadRequest)
			return
		}
		var req batchRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(batchResponse{Accepted: len(req.Records)})
	}))
	defer ts.Close()

	var log bytes.Buffer
	report, err := testClient(ts.URL, 3).Push(context.Background(), makeRecords(6), &log)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	// The failed batch loses all 3 of its records; the second batch lands.
	if report.Batches != 2 || report.Accepted != 3 || report.Errors != 3 {
		t.Errorf("report = %+v, want 2 batches, 3 accepted, 3 errors", report)
	}
	if !report.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if !strings.Contains(log.String(), "warning: batch 1 failed") {
		t.Errorf("log missing warning:\n%s", log.String())
	}
	if !strings.Contains(log.String(), "bad batch") {
		t.Errorf("log missing API body:\n%s", log.String())
	}
}

func TestPushAggregatesAPIErrorCounts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchResponse{
			Accepted: 1,
			Errors:   1,
			Messages: []string{"record R1: duplicate key"},
		})
	}))
	defer ts.Close()

	var log bytes.Buffer
	report, err := testClient(ts.URL, 2).Push(context.Background(), makeRecords(2), &log)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if report.Accepted != 1 || report.Errors != 1 {
		t.Errorf("report = %+v, want 1 accepted, 1 error", report)
	}
	if !strings.Contains(log.String(), "api: record R1: duplicate key") {
		t.Errorf("log missing API message:\n%s", log.String())
	}
}

func TestPushContextCancelledAborts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchResponse{Accepted: 1})
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(ts.URL, 1).Push(ctx, makeRecords(3), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Push with cancelled context returned nil error")
	}
}

func TestPushNoRecords(t *testing.T) {
	report, err := testClient("http://unused.invalid", 0).Push(context.Background(), nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if report.Batches != 0 || report.HasErrors() {
		t.Errorf("report = %+v, want empty", report)
	}
}
