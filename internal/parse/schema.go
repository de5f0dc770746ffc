// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

// FieldLimits holds the per-column truncation lengths, counted in
// characters the way the legacy job sliced them.
type FieldLimits struct {
	URL        int
	Ref        int
	Name       int
	City       int
	ZipCode    int
	Department int
	Arguments  int
	Image      int
}

// Schema carries every fixed name the extraction engine searches for.
// It is an immutable value threaded through the engine; nothing here is
// process-wide mutable state.
type Schema struct {
	// BlockTag delimits one candidate program ("PROGRAMME").
	BlockTag string

	// EndTag is the terminal document marker ("REPONSE"). Text after its
	// close tag is discarded before scanning.
	EndTag string

	// RefTags are tried in order for the program reference; the first
	// tag with a non-empty decoded value wins.
	RefTags []string

	// NameTag, CityTag, ZipTag, DepartmentTag are direct lookups.
	NameTag       string
	CityTag       string
	ZipTag        string
	DepartmentTag string

	// URLTag encloses URL values; URLMarker is the path fragment that
	// identifies the canonical "new program" URL among them.
	URLTag    string
	URLMarker string

	// HighlightsTag is the sub-block of marketing bullets; HighlightItemTag
	// is the per-bullet tag inside it.
	HighlightsTag    string
	HighlightItemTag string

	// PerspectivesTag is the sub-block of candidate image URLs.
	PerspectivesTag string

	// FallbackTags are tried in order for the arguments text when no
	// highlights exist.
	FallbackTags []string

	Limits FieldLimits
}

// DefaultSchema returns the legacy partner BI feed schema.
func DefaultSchema() Schema {
	return Schema{
		BlockTag:      "PROGRAMME",
		EndTag:        "REPONSE",
		RefTags:       []string{"REF_OPERATION", "NUMERO"},
		NameTag:       "NOM",
		CityTag:       "VILLE",
		ZipTag:        "CP",
		DepartmentTag: "DEPARTEMENT",

		URLTag:    "URL",
		URLMarker: "/programme-neuf-",

		HighlightsTag:    "POINTS_FORTS",
		HighlightItemTag: "PF",
		PerspectivesTag:  "PERSPECTIVES",

		FallbackTags: []string{
			"PROMESSE_PROGRAMME",
			"DESCRIPTIF_COURT",
			"DESCRIPTIF_LONG",
			"DESCRIPTIF_CENTRE_D_APPEL",
		},

		Limits: FieldLimits{
			URL:        500,
			Ref:        50,
			Name:       255,
			City:       100,
			ZipCode:    10,
			Department: 2,
			Arguments:  4000,
			Image:      500,
		},
	}
}
