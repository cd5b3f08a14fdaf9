package enumeratio

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// editorialReplacer removes markup and editorial signs that mislead the
// analyzer: angle and square brackets, parentheses, quotes and asterisks.
var editorialReplacer = strings.NewReplacer(
	"<", "", ">", "",
	"[", "", "]", "",
	"(", "", ")", "",
	"'", "", `"`, "",
	"*", "",
)

// reSpaceRun matches any run of ASCII whitespace, vertical tab included.
var reSpaceRun = regexp.MustCompile(`[\t\n\v\f\r ]+`)

// Normalize prepares text for the analyzer. It drops editorial signs and
// every non-ASCII character (embedded Greek quotations are lost on
// purpose), collapses whitespace runs to one space and removes a space
// left in front of a comma.
//
// The same function must be applied to the text sent to the analyzer and
// to the text used for line matching.
func Normalize(text string) string {
	s := editorialReplacer.Replace(text)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = reSpaceRun.ReplaceAllString(s, " ")
	return strings.ReplaceAll(s, " ,", ",")
}

// Fingerprint returns the normalized text with all whitespace removed.
// Token surfaces of a reconstructed line concatenate to this value.
func Fingerprint(text string) string {
	return stripSpace(Normalize(text))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ligatureReplacer expands the ligatures found in Latin editions.
var ligatureReplacer = strings.NewReplacer(
	"æ", "ae",
	"Æ", "Ae",
	"œ", "oe",
	"Œ", "Oe",
)

// FoldASCII rewrites text in ASCII so that it survives Normalize.
// Diacritics (macrons, breves, diaereses, accents) are stripped, Latin
// ligatures expanded, and everything else transliterated: Greek becomes
// Latin letters, the dagger and typographic quotes and dashes their ASCII
// look-alikes.
func FoldASCII(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return unidecode.Unidecode(ligatureReplacer.Replace(folded))
}
