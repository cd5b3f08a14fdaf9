package morph

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// POS is the part of speech of a lemma, coded as in lemmes.la.
type POS rune

const (
	Noun         POS = 'n'
	Verb         POS = 'v'
	Adjective    POS = 'a'
	Pronoun      POS = 'p'
	Adverb       POS = 'd'
	Conjunction  POS = 'c'
	Exclamation  POS = 'e'
	Interjection POS = 'i'
	Numeral      POS = 'm'
	Preposition  POS = 'r'
	Unknown      POS = '-'
)

// String returns the tag written to output rows, e.g. "noun".
func (p POS) String() string {
	switch p {
	case Noun:
		return "noun"
	case Verb:
		return "verb"
	case Adjective:
		return "adjective"
	case Pronoun:
		return "pronoun"
	case Adverb:
		return "adverb"
	case Conjunction:
		return "conjunction"
	case Exclamation:
		return "exclamation"
	case Interjection:
		return "interjection"
	case Numeral:
		return "numeral"
	case Preposition:
		return "preposition"
	default:
		return "unknown"
	}
}

// Stem is a radical of a lemma to which endings attach.
type Stem struct {
	Quantified string // with quantity marks
	Plain      string // Atone(Quantified)
	Num        int
	Lemma      *Lemma
}

// Irregular is an inflected form stored verbatim in irregs.la.
type Irregular struct {
	Quantified string
	Plain      string
	// Exclusive forms replace the regular forms of their morphos.
	Exclusive bool
	Lemma     *Lemma
	Morphos   []int
}

// Lemma is a dictionary headword.
type Lemma struct {
	Key        string // lookup key, see Key
	Quantified string // canonical form with quantity marks
	Plain      string // canonical form without marks or homonym number
	Info       string // morphological information field of lemmes.la
	POS        POS
	Homonym    int
	Frequency  int // occurrence count from lemmes.la, 0 when unknown

	paradigmName string
	paradigm     *Paradigm
	alternates   []string // further canonical forms, e.g. tempto,tento
	stems        map[int][]*Stem
	exclusive    map[int]bool // morphos covered by exclusive irregulars
}

// Paradigm returns the inflection paradigm of the lemma, or nil.
func (l *Lemma) Paradigm() *Paradigm {
	return l.paradigm
}

// StemsAt returns the stems registered under radical number n.
func (l *Lemma) StemsAt(n int) []*Stem {
	return l.stems[n]
}

// reCrossRef matches a trailing "cf. word" reference.
var reCrossRef = regexp.MustCompile(`cf\.\s+(\w+)$`)

// parseLemma reads one lemmes.la entry:
//
//	key=quantified|paradigm|stem1|stem2|info[|frequency]
//
// The "key=" part is optional. It returns nil for malformed entries.
func parseLemma(line string) *Lemma {
	fields := strings.Split(line, "|")
	if len(fields) < 5 {
		return nil
	}
	key, quantified, found := strings.Cut(fields[0], "=")
	if !found {
		quantified = key
	}

	l := &Lemma{
		Key:          Key(key),
		paradigmName: fields[1],
		Info:         fields[4],
		stems:        make(map[int][]*Stem),
		exclusive:    make(map[int]bool),
	}

	forms := strings.Split(quantified, ",")
	l.Quantified, l.Homonym = splitHomonym(forms[0])
	l.Plain = Atone(l.Quantified)
	for _, alt := range forms[1:] {
		if alt = strings.TrimSpace(alt); alt != "" {
			l.alternates = append(l.alternates, alt)
		}
	}

	// fields 2 and 3 hold explicit stems for radicals 1 and 2
	for num := 1; num <= 2; num++ {
		for _, s := range strings.Split(fields[num+1], ",") {
			if s == "" {
				continue
			}
			l.stems[num] = append(l.stems[num], &Stem{Quantified: s, Plain: Atone(s), Num: num, Lemma: l})
		}
	}

	l.POS = posFromInfo(l.Info)
	if len(fields) > 5 && fields[5] != "" {
		l.Frequency, _ = strconv.Atoi(fields[5])
	}
	return l
}

// splitHomonym strips a trailing homonym digit: "ius2" → ("ius", 2).
func splitHomonym(g string) (string, int) {
	rs := []rune(g)
	if len(rs) == 0 || !unicode.IsDigit(rs[len(rs)-1]) {
		return g, 0
	}
	n, _ := strconv.Atoi(string(rs[len(rs)-1]))
	if n == 0 {
		return g, 0
	}
	return string(rs[:len(rs)-1]), n
}

// posFromInfo infers the part of speech from the information field.
func posFromInfo(info string) POS {
	switch {
	case strings.Contains(info, "adj."):
		return Adjective
	case strings.Contains(info, "conj"):
		return Conjunction
	case strings.Contains(info, "excl"):
		return Exclamation
	case strings.Contains(info, "interj"):
		return Interjection
	case strings.Contains(info, "num."):
		return Numeral
	case strings.Contains(info, "pron."):
		return Pronoun
	case strings.Contains(info, "prép"):
		return Preposition
	case strings.Contains(info, "adv"):
		return Adverb
	case strings.Contains(info, " nom ") || strings.Contains(info, "npr."):
		return Noun
	default:
		return Unknown
	}
}

// CrossRef returns the headword referenced by "cf. word", if any.
func (l *Lemma) CrossRef() string {
	if m := reCrossRef.FindStringSubmatch(l.Info); m != nil {
		return m[1]
	}
	return ""
}
