package morph

import "strings"

// quantityReplacer drops vowel-quantity marks: precomposed macron and
// breve vowels in both cases, and the combining breve U+0306 used for
// common (ancipitia) vowels.
var quantityReplacer = strings.NewReplacer(
	"ā", "a", "ă", "a",
	"ē", "e", "ĕ", "e",
	"ī", "i", "ĭ", "i",
	"ō", "o", "ŏ", "o",
	"ū", "u", "ŭ", "u",
	"ȳ", "y", "ў", "y",
	"Ā", "A", "Ă", "A",
	"Ē", "E", "Ĕ", "E",
	"Ī", "I", "Ĭ", "I",
	"Ō", "O", "Ŏ", "O",
	"Ū", "U", "Ŭ", "U",
	"Ȳ", "Y", "Ў", "Y",
	"\u0306", "",
)

// Atone removes vowel-quantity marks from s.
func Atone(s string) string {
	return quantityReplacer.Replace(s)
}

// classicalReplacer maps Ramist letters to the classical alphabet and
// expands ligatures: j→i, v→u, æ→ae, œ→oe, and the silent ụ of suauis.
var classicalReplacer = strings.NewReplacer(
	"J", "I", "j", "i",
	"V", "U", "v", "u",
	"æ", "ae", "Æ", "Ae",
	"œ", "oe", "Œ", "Oe",
	"ụ", "u",
)

// Deramise rewrites s in classical spelling (no j, no v, no ligatures).
func Deramise(s string) string {
	return classicalReplacer.Replace(s)
}

// Key returns the lookup key of a dictionary entry or word form.
func Key(s string) string {
	return Atone(Deramise(s))
}
