// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts, validates, and deduplicates program records
// from a raw feed document.
//
// The engine is a pure, synchronous scan over an immutable in-memory
// document: it performs no I/O and keeps no state across invocations.
// Each field lookup re-scans from a cursor rather than tokenizing once,
// so cost grows with blocks × fields × document length.
package parse

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/bifeed/internal/feedxml"
	"github.com/pdiddy/bifeed/pkg/types"
)

// timeNow stamps capture timestamps. Tests override it for deterministic
// records.
var timeNow = time.Now

// Output holds the records and counters from one extraction run.
type Output struct {
	Records []types.ProgramRecord
	Stats   types.RunStats

	// EndMarkerFound reports whether the terminal document marker was
	// present. Its absence is non-fatal; the full text is scanned.
	EndMarkerFound bool

	// DroppedTail reports that a trailing block-open marker had no close
	// marker and the partial tail was discarded. Diagnostic only, not a
	// legacy counter.
	DroppedTail bool
}

// Parse runs the extraction engine over raw and returns the accepted
// records in block scan order. Per-block progress and rejections are
// written to w. Zero accepted records is a valid outcome, not an error;
// no block-level condition aborts the run.
func Parse(raw string, sc Schema, w io.Writer) Output {
	var out Output

	// Defensive bound: discard anything after the feed's logical end.
	endTag := "</" + sc.EndTag + ">"
	if end := strings.Index(raw, endTag); end > -1 {
		raw = raw[:end+len(endTag)]
		out.EndMarkerFound = true
	}

	openTag := "<" + sc.BlockTag + ">"
	closeTag := "</" + sc.BlockTag + ">"

	seen := make(map[string]bool)
	pos := 0

	for {
		ps := strings.Index(raw[pos:], openTag)
		if ps < 0 {
			break
		}
		ps += pos
		pe := strings.Index(raw[ps:], closeTag)
		if pe < 0 {
			// Unmatched tail: dropped without a counter, as the legacy
			// consumer did.
			out.DroppedTail = true
			break
		}
		pe += ps + len(closeTag)
		pos = pe
		out.Stats.Scanned++

		block := raw[ps:pe]

		ref := ""
		for _, tag := range sc.RefTags {
			if ref = feedxml.TagValue(block, tag); ref != "" {
				break
			}
		}

		name := feedxml.TagValue(block, sc.NameTag)
		city := feedxml.TagValue(block, sc.CityTag)
		zip := feedxml.TagValue(block, sc.ZipTag)
		dept := feedxml.TagValue(block, sc.DepartmentTag)
		url := programURL(block, sc)

		if missing := missingFields(ref, name, city, zip, dept, url); len(missing) > 0 {
			out.Stats.SkippedMissingField++
			if out.Stats.Scanned <= 5 {
				fmt.Fprintf(w, "skip block #%d: missing %s\n", out.Stats.Scanned, strings.Join(missing, ", "))
			}
			continue
		}

		if !strings.Contains(url, sc.URLMarker) {
			out.Stats.SkippedMarkerAbsent++
			continue
		}

		key := ref + "||" + url
		if seen[key] {
			out.Stats.DuplicatesSkipped++
			continue
		}
		seen[key] = true

		lim := sc.Limits
		out.Records = append(out.Records, types.ProgramRecord{
			URL:          cut(url, lim.URL),
			Ref:          cut(ref, lim.Ref),
			Name:         cut(name, lim.Name),
			City:         cut(city, lim.City),
			ZipCode:      cut(zip, lim.ZipCode),
			Department:   cut(dept, lim.Department),
			Arguments:    cut(buildArguments(block, name, sc), lim.Arguments),
			CapturedAt:   timeNow(),
			Status:       types.StatusSuccess,
			ErrorMessage: "",
			Image:        cut(programImage(block, sc, types.NoImageSentinel), lim.Image),
		})
		out.Stats.Accepted++
	}

	fmt.Fprintf(w, "scanned: %d, accepted: %d, skipped: %d, duplicates: %d\n",
		out.Stats.Scanned, out.Stats.Accepted, out.Stats.Skipped(), out.Stats.DuplicatesSkipped)
	return out
}

// missingFields names the empty required fields, in the order the legacy
// job logged them.
func missingFields(ref, name, city, zip, dept, url string) []string {
	var missing []string
	if ref == "" {
		missing = append(missing, "ref")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if city == "" {
		missing = append(missing, "city")
	}
	if zip == "" {
		missing = append(missing, "zip")
	}
	if dept == "" {
		missing = append(missing, "dept")
	}
	if url == "" {
		missing = append(missing, "url")
	}
	return missing
}
