package enumeratio

import (
	"strconv"
	"strings"
)

// Exclusions is a set of part-of-speech tags left out of scoring.
type Exclusions []string

// NewExclusions validates tags. An empty tag would exclude every token
// under substring matching and is rejected.
func NewExclusions(tags []string) (Exclusions, error) {
	ex := make(Exclusions, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return nil, NewConfigurationError("excluded_parts_of_speech", "entry %d is empty", i)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		ex = append(ex, tag)
	}
	return ex, nil
}

// Has reports whether pos equals one of the excluded tags.
func (e Exclusions) Has(pos string) bool {
	for _, tag := range e {
		if tag == pos {
			return true
		}
	}
	return false
}

// Matches reports whether any excluded tag is a substring of pos, so that
// excluding "noun" also excludes "proper_noun".
func (e Exclusions) Matches(pos string) bool {
	for _, tag := range e {
		if strings.Contains(pos, tag) {
			return true
		}
	}
	return false
}

// Result is the enumerativeness of one line.
type Result struct {
	// TopCase is the frequency of the most common case value.
	TopCase int `json:"top_case"`
	// Considered is the number of tokens counted as words.
	Considered int `json:"tokens"`
	// Enumerativeness is TopCase/Considered rounded to three decimals, or
	// nil when no token was considered.
	Enumerativeness *float64 `json:"enumerativeness"`
}

// Value returns the enumerativeness and whether it is defined.
func (r Result) Value() (float64, bool) {
	if r.Enumerativeness == nil {
		return 0, false
	}
	return *r.Enumerativeness, true
}

// Score computes the enumerativeness of a line's tokens.
//
// Case values are collected from tokens whose tag is not one of ex (exact
// match); every value of an ambiguous token counts. Words are tokens that
// are not punctuation and whose tag contains none of ex as a substring.
func Score(tokens []Token, ex Exclusions) Result {
	counts := make(map[string]int)
	top := 0
	for _, t := range tokens {
		if ex.Has(t.POS) || !t.HasCases() {
			continue
		}
		for _, c := range t.Cases {
			counts[c]++
			if counts[c] > top {
				top = counts[c]
			}
		}
	}

	considered := 0
	for _, t := range tokens {
		if t.POS == PunctuationPOS || ex.Matches(t.POS) {
			continue
		}
		considered++
	}

	res := Result{TopCase: top, Considered: considered}
	if considered > 0 {
		v := round3(float64(top) / float64(considered))
		res.Enumerativeness = &v
	}
	return res
}

// round3 rounds x to three decimals, half to even on the exact binary
// value, which matches Python's round(x, 3).
func round3(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return v
}
