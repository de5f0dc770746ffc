package parse

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/bifeed/pkg/types"
)

// programBlock builds one well-formed feed block. extra is appended after
// the standard fields, before the close marker.
func programBlock(ref, name, city, zip, dept, url, extra string) string {
	var b strings.Builder
	b.WriteString("<PROGRAMME>")
	if ref != "" {
		b.WriteString("<REF_OPERATION>" + ref + "</REF_OPERATION>")
	}
	if name != "" {
		b.WriteString("<NOM>" + name + "</NOM>")
	}
	if city != "" {
		b.WriteString("<VILLE>" + city + "</VILLE>")
	}
	if zip != "" {
		b.WriteString("<CP>" + zip + "</CP>")
	}
	if dept != "" {
		b.WriteString("<DEPARTEMENT>" + dept + "</DEPARTEMENT>")
	}
	if url != "" {
		b.WriteString("<URL>" + url + "</URL>")
	}
	b.WriteString(extra)
	b.WriteString("</PROGRAMME>")
	return b.String()
}

func validBlock(ref string) string {
	return programBlock(ref, "Les Terrasses", "Bordeaux", "33000", "33",
		"https://promoter.example/programme-neuf-"+ref, "")
}

func TestParseAcceptsValidBlock(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	old := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = old }()

	raw := programBlock("A1", "Les Terrasses", "Bordeaux", "33000", "33",
		"https://promoter.example/programme-neuf-bordeaux-a1",
		"<POINTS_FORTS><PF>Piscine</PF><PF>Garage</PF></POINTS_FORTS>"+
			"<PERSPECTIVES><URL>https://cdn.example/a1.jpg</URL></PERSPECTIVES>")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}

	got := out.Records[0]
	want := types.ProgramRecord{
		URL:          "https://promoter.example/programme-neuf-bordeaux-a1",
		Ref:          "A1",
		Name:         "Les Terrasses",
		City:         "Bordeaux",
		ZipCode:      "33000",
		Department:   "33",
		Arguments:    "Piscine | Garage",
		CapturedAt:   fixed,
		Status:       "SUCCESS",
		ErrorMessage: "",
		Image:        "https://cdn.example/a1.jpg",
	}
	if got != want {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	if out.Stats.Scanned != 1 || out.Stats.Accepted != 1 {
		t.Errorf("stats = %+v, want 1 scanned, 1 accepted", out.Stats)
	}
}

func TestParseDeduplicatesByRefAndURL(t *testing.T) {
	raw := validBlock("A1") + validBlock("A1") + validBlock("B2")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(out.Records))
	}
	if out.Records[0].Ref != "A1" || out.Records[1].Ref != "B2" {
		t.Errorf("refs = %s, %s; want A1, B2", out.Records[0].Ref, out.Records[1].Ref)
	}
	if out.Stats.DuplicatesSkipped != 1 {
		t.Errorf("duplicates = %d, want 1", out.Stats.DuplicatesSkipped)
	}
	if out.Stats.Scanned != 3 || out.Stats.Accepted != 2 {
		t.Errorf("stats = %+v, want 3 scanned, 2 accepted", out.Stats)
	}
}

func TestParseSameRefDifferentURLKeepsBoth(t *testing.T) {
	raw := programBlock("A1", "Phase 1", "Bordeaux", "33000", "33",
		"https://promoter.example/programme-neuf-phase-1", "") +
		programBlock("A1", "Phase 2", "Bordeaux", "33000", "33",
			"https://promoter.example/programme-neuf-phase-2", "")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(out.Records))
	}
	if out.Stats.DuplicatesSkipped != 0 {
		t.Errorf("duplicates = %d, want 0", out.Stats.DuplicatesSkipped)
	}
}

func TestParseArgumentsFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{
			"highlights joined",
			"<POINTS_FORTS><PF>Piscine</PF><PF>Garage</PF></POINTS_FORTS>",
			"Piscine | Garage",
		},
		{
			"descriptive fallback",
			"<PROMESSE_PROGRAMME>Bel appartement</PROMESSE_PROGRAMME>",
			"Bel appartement",
		},
		{"name when nothing else", "", "Les Terrasses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := programBlock("A1", "Les Terrasses", "Bordeaux", "33000", "33",
				"https://promoter.example/programme-neuf-a1", tt.extra)
			out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
			if len(out.Records) != 1 {
				t.Fatalf("records = %d, want 1", len(out.Records))
			}
			if got := out.Records[0].Arguments; got != tt.want {
				t.Errorf("Arguments = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRefFallsBackToNumero(t *testing.T) {
	raw := "<PROGRAMME><NUMERO>N-42</NUMERO><NOM>Villa Emma</NOM><VILLE>Nantes</VILLE>" +
		"<CP>44000</CP><DEPARTEMENT>44</DEPARTEMENT>" +
		"<URL>https://promoter.example/programme-neuf-n42</URL></PROGRAMME>"

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	if out.Records[0].Ref != "N-42" {
		t.Errorf("Ref = %q, want N-42", out.Records[0].Ref)
	}
}

func TestParseSkipsBlockWithMissingField(t *testing.T) {
	// No VILLE tag.
	raw := programBlock("A1", "Les Terrasses", "", "33000", "33",
		"https://promoter.example/programme-neuf-a1", "") + validBlock("B2")

	var log bytes.Buffer
	out := Parse(raw, DefaultSchema(), &log)
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	if out.Stats.SkippedMissingField != 1 {
		t.Errorf("skipped missing = %d, want 1", out.Stats.SkippedMissingField)
	}
	if !strings.Contains(log.String(), "skip block #1: missing city") {
		t.Errorf("log missing skip line, got:\n%s", log.String())
	}
}

func TestParseSkipsBlockWhenMarkerOutsideURL(t *testing.T) {
	// The marker appears in the block but the enclosed URL value itself
	// does not carry it.
	raw := programBlock("A1", "Les Terrasses", "Bordeaux", "33000", "33",
		"https://promoter.example/page", "/programme-neuf-ailleurs")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 0 {
		t.Fatalf("records = %d, want 0", len(out.Records))
	}
	if out.Stats.SkippedMarkerAbsent != 1 {
		t.Errorf("skipped marker = %d, want 1", out.Stats.SkippedMarkerAbsent)
	}
}

func TestParseStopsAtEndMarker(t *testing.T) {
	raw := validBlock("A1") + "</REPONSE>" + validBlock("B2")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	if !out.EndMarkerFound {
		t.Error("EndMarkerFound = false, want true")
	}
	if out.Stats.Scanned != 1 {
		t.Errorf("scanned = %d, want 1", out.Stats.Scanned)
	}
}

func TestParseWithoutEndMarkerScansEverything(t *testing.T) {
	raw := validBlock("A1") + validBlock("B2")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if out.EndMarkerFound {
		t.Error("EndMarkerFound = true, want false")
	}
	if out.Stats.Scanned != 2 || out.Stats.Accepted != 2 {
		t.Errorf("stats = %+v, want 2 scanned, 2 accepted", out.Stats)
	}
}

func TestParseDropsUnmatchedTail(t *testing.T) {
	raw := validBlock("A1") + "<PROGRAMME><NOM>tronqué"

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	if !out.DroppedTail {
		t.Error("DroppedTail = false, want true")
	}
	// The partial block never counts as scanned.
	if out.Stats.Scanned != 1 {
		t.Errorf("scanned = %d, want 1", out.Stats.Scanned)
	}
}

func TestParseTruncatesFields(t *testing.T) {
	longName := strings.Repeat("N", 300)
	raw := programBlock("A1", longName, "Bordeaux", "33000", "331",
		"https://promoter.example/programme-neuf-a1", "")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	if got := out.Records[0].Name; len(got) != 255 {
		t.Errorf("len(Name) = %d, want 255", len(got))
	}
	if got := out.Records[0].Department; got != "33" {
		t.Errorf("Department = %q, want 33", got)
	}
}

func TestParseTruncatesByCharacterNotByte(t *testing.T) {
	// 300 two-byte characters: the limit counts characters, so the name
	// keeps 255 of them and stays valid UTF-8.
	raw := programBlock("A1", strings.Repeat("é", 300), "Bordeaux", "33000", "33",
		"https://promoter.example/programme-neuf-a1", "")

	out := Parse(raw, DefaultSchema(), &bytes.Buffer{})
	if len(out.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(out.Records))
	}
	name := out.Records[0].Name
	if got := utf8.RuneCountInString(name); got != 255 {
		t.Errorf("rune count = %d, want 255", got)
	}
	if !utf8.ValidString(name) {
		t.Error("truncated name is not valid UTF-8")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	var log bytes.Buffer
	out := Parse("", DefaultSchema(), &log)
	if len(out.Records) != 0 {
		t.Fatalf("records = %d, want 0", len(out.Records))
	}
	if out.Stats != (types.RunStats{}) {
		t.Errorf("stats = %+v, want zero", out.Stats)
	}
	if !strings.Contains(log.String(), "scanned: 0, accepted: 0") {
		t.Errorf("missing summary line, got:\n%s", log.String())
	}
}
