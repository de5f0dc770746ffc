// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedxml

import "strings"

// TagValue returns the decoded text between the first "<tag>" and the
// first "</tag>" after it, or "" when either delimiter is missing.
//
// There is no structural awareness: if the tag recurs before a matching
// close, the value runs to the nearest following close tag, which is only
// the true boundary for non-nested tags.
func TagValue(xml, tag string) string {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"

	s := strings.Index(xml, openTag)
	if s < 0 {
		return ""
	}
	s += len(openTag)
	e := strings.Index(xml[s:], closeTag)
	if e < 0 {
		return ""
	}
	return Decode(xml[s : s+e])
}

// AllTagValues returns every decoded "<tag>...</tag>" value in document
// order. Each search restarts just after the previous close tag; an open
// tag with no following close tag ends the scan.
func AllTagValues(xml, tag string) []string {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"

	var out []string
	p := 0
	for {
		s := strings.Index(xml[p:], openTag)
		if s < 0 {
			break
		}
		s += p + len(openTag)
		e := strings.Index(xml[s:], closeTag)
		if e < 0 {
			break
		}
		out = append(out, Decode(xml[s:s+e]))
		p = s + e + len(closeTag)
	}
	return out
}
