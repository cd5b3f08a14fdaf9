package morph

import "strings"

// caseMarkers maps the start of a word in a morpho description to the
// English case name. French (morphos.fr) and English (morphos.en)
// descriptions are both recognized.
var caseMarkers = []struct {
	prefix string
	name   string
}{
	{"nominati", "nominative"},
	{"vocati", "vocative"},
	{"accusati", "accusative"},
	{"génitif", "genitive"},
	{"genitiv", "genitive"},
	{"genitif", "genitive"},
	{"datif", "dative"},
	{"dativ", "dative"},
	{"ablati", "ablative"},
	{"locati", "locative"},
}

// CaseOf extracts the grammatical case named in a morpho description such
// as "accusatif singulier". It returns "" for caseless morphos (finite
// verb forms, invariables).
func CaseOf(description string) string {
	for _, w := range strings.Fields(strings.ToLower(description)) {
		for _, m := range caseMarkers {
			if strings.HasPrefix(w, m.prefix) {
				return m.name
			}
		}
	}
	return ""
}
