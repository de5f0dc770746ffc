// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/bifeed/internal/feedxml"
)

// programURL finds the canonical program URL inside one block. Blocks can
// carry several URL-tagged values (images, landing pages); the canonical
// one is whichever contains the program marker. The search locates the
// marker first, walks backward to the nearest preceding open tag, then
// forward to the next close tag.
func programURL(block string, sc Schema) string {
	hit := strings.Index(block, sc.URLMarker)
	if hit < 0 {
		return ""
	}

	openTag := "<" + sc.URLTag + ">"
	closeTag := "</" + sc.URLTag + ">"

	s := strings.LastIndex(block[:hit], openTag)
	if s < 0 {
		return ""
	}
	s += len(openTag)
	e := strings.Index(block[s:], closeTag)
	if e < 0 {
		return ""
	}
	return feedxml.Decode(block[s : s+e])
}

// subBlock returns the "<tag>...</tag>" span inside block, including the
// delimiters, or "" when the pair is absent. Scoping item lookups to this
// span keeps same-named tags elsewhere in the block out of the result.
func subBlock(block, tag string) string {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"

	s := strings.Index(block, openTag)
	if s < 0 {
		return ""
	}
	e := strings.Index(block[s:], closeTag)
	if e < 0 {
		return ""
	}
	return block[s : s+e+len(closeTag)]
}

// highlights returns the marketing bullet values from the highlights
// sub-block, in document order.
func highlights(block string, sc Schema) []string {
	span := subBlock(block, sc.HighlightsTag)
	if span == "" {
		return nil
	}
	return feedxml.AllTagValues(span, sc.HighlightItemTag)
}

// buildArguments derives the free-text arguments field: highlight bullets
// joined with " | " when present, otherwise the first non-empty cleaned
// fallback tag, otherwise the program name, otherwise "N/A".
func buildArguments(block, name string, sc Schema) string {
	if pfs := highlights(block, sc); len(pfs) > 0 {
		return feedxml.CleanText(strings.Join(pfs, " | "))
	}

	candidates := make([]string, 0, len(sc.FallbackTags)+1)
	for _, tag := range sc.FallbackTags {
		candidates = append(candidates, feedxml.TagValue(block, tag))
	}
	candidates = append(candidates, name)

	for _, c := range candidates {
		if cleaned := feedxml.CleanText(c); cleaned != "" {
			return cleaned
		}
	}
	return "N/A"
}

// programImage returns the first non-empty URL value inside the
// perspectives sub-block, or the sentinel when there is none.
func programImage(block string, sc Schema, sentinel string) string {
	span := subBlock(block, sc.PerspectivesTag)
	if span == "" {
		return sentinel
	}
	for _, u := range feedxml.AllTagValues(span, sc.URLTag) {
		if u != "" {
			return u
		}
	}
	return sentinel
}

// cut truncates v to at most n characters. The limit counts code points,
// the way the legacy job sliced its strings, so a truncated value is
// always valid UTF-8. No grapheme awareness: a combining mark can still
// be cut off its base character at the boundary.
func cut(v string, n int) string {
	if utf8.RuneCountInString(v) <= n {
		return v
	}
	return string([]rune(v)[:n])
}
