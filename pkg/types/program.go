// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bifeed pipeline.
package types

import "time"

// ScrapeDateLayout is the timestamp layout used in exports and the
// ingestion payload. It matches the format the downstream import
// activity has consumed since the CloudPage era.
const ScrapeDateLayout = "2006-01-02 15:04:05"

// StatusSuccess is the only status an emitted record carries. The engine
// has no partial-failure record shape: a block either becomes a full
// record or is not emitted at all.
const StatusSuccess = "SUCCESS"

// NoImageSentinel is stored in Image when no perspective URL was found.
const NoImageSentinel = "NO IMAGE"

// ProgramRecord is one extracted real-estate program. Records are built
// at most once per (Ref, URL) pair and are immutable after extraction.
type ProgramRecord struct {
	// URL is the canonical "new program" page URL. Always contains the
	// program marker path fragment.
	URL string `json:"url" yaml:"url"`

	// Ref is the program reference (REF_OPERATION, or NUMERO as fallback).
	Ref string `json:"ref" yaml:"ref"`

	// Name is the marketing name of the program.
	Name string `json:"name" yaml:"name"`

	// City is the program city.
	City string `json:"city" yaml:"city"`

	// ZipCode is the postal code.
	ZipCode string `json:"zip_code" yaml:"zip_code"`

	// Department is the two-character department code.
	Department string `json:"department" yaml:"department"`

	// Arguments is free marketing text: the highlight bullets joined with
	// " | ", or the first non-empty descriptive fallback, or "N/A".
	Arguments string `json:"arguments" yaml:"arguments"`

	// CapturedAt is the wall-clock time the record was built.
	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`

	// Status is always StatusSuccess for emitted records.
	Status string `json:"status" yaml:"status"`

	// ErrorMessage is always empty for emitted records. The column exists
	// because the downstream table schema has it.
	ErrorMessage string `json:"error_message" yaml:"error_message"`

	// Image is the first perspective image URL, or NoImageSentinel.
	Image string `json:"image" yaml:"image"`
}

// RunStats holds the aggregate counters for one extraction run.
type RunStats struct {
	// Scanned counts fully-closed PROGRAMME blocks seen by the segmenter.
	Scanned int `json:"scanned" yaml:"scanned"`

	// Accepted counts blocks that became records.
	Accepted int `json:"accepted" yaml:"accepted"`

	// SkippedMissingField counts blocks missing one of the six required fields.
	SkippedMissingField int `json:"skipped_missing_field" yaml:"skipped_missing_field"`

	// SkippedMarkerAbsent counts blocks whose URL lacked the program marker.
	SkippedMarkerAbsent int `json:"skipped_marker_absent" yaml:"skipped_marker_absent"`

	// DuplicatesSkipped counts blocks dropped because their (ref, url)
	// composite key was already seen. The first occurrence is kept.
	DuplicatesSkipped int `json:"duplicates_skipped" yaml:"duplicates_skipped"`
}

// Skipped returns the combined rejection count, the single "skipped"
// number the legacy job reported.
func (s RunStats) Skipped() int {
	return s.SkippedMissingField + s.SkippedMarkerAbsent
}
