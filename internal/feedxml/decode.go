// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedxml scans the partner BI feed with literal substring search.
//
// The feed is XML-shaped but not reliably well-formed, and the CloudPage
// consumer that defined the output contract parsed it with offset-based
// string operations rather than a structural parser. This package keeps
// those exact semantics: tag lookups match literal "<TAG>"/"</TAG>" pairs
// with no nesting awareness, so a tag that nests inside itself resolves to
// the nearest following close tag. That is a precondition of the feed's
// tag schema, not a bug to fix here.
package feedxml

import (
	"regexp"
	"strings"
)

var (
	cdataRE = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	// Whitespace includes the Unicode separators; French copy is full of
	// non-breaking spaces ("250 000 €") that must collapse like ASCII ones.
	whitespaceRE = regexp.MustCompile(`[\s\p{Z}\x{85}]+`)
	markupRE     = regexp.MustCompile(`<[^>]*>`)
)

// entityReplacer translates the five escape sequences the feed uses.
// Anything else (numeric references, named entities beyond these) passes
// through untouched, as it always has.
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Decode normalizes one raw feed fragment: unwraps CDATA (single pass,
// nested wrappers are not unwrapped), translates the five known escape
// sequences, collapses whitespace runs to a single space, and trims.
// Decoding already-decoded text is a no-op; empty input yields "".
func Decode(v string) string {
	if v == "" {
		return ""
	}
	v = cdataRE.ReplaceAllString(v, "$1")
	v = entityReplacer.Replace(v)
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(v, " "))
}

// CleanText decodes v, strips any residual angle-bracket markup, and
// collapses whitespace again. Used for highlight bullets and the
// descriptive fallback fields, which may embed HTML.
func CleanText(v string) string {
	v = Decode(v)
	v = markupRE.ReplaceAllString(v, " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(v, " "))
}
