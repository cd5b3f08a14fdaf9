package morph

import (
	"context"
	"strings"
	"unicode"

	"github.com/cours-de-latin/enumeratio"
)

// encliticTags gives the lemma and tag of a detached enclitic.
var encliticTags = map[string]struct{ lemma, pos string }{
	"que": {"que", Conjunction.String()},
	"ue":  {"ue", Conjunction.String()},
	"ve":  {"ue", Conjunction.String()},
	"ne":  {"ne", Adverb.String()},
}

// Tagger turns sentences into tagged tokens. Words become one token, or
// two when an enclitic is detached; digit runs are numerals; every other
// non-space character is a punctuation token. The surfaces of the tokens
// therefore spell the input exactly, minus whitespace.
type Tagger struct {
	engine *Engine
}

// NewTagger returns a Tagger backed by engine.
func NewTagger(engine *Engine) *Tagger {
	return &Tagger{engine: engine}
}

// Engine returns the underlying morphological engine.
func (t *Tagger) Engine() *Engine {
	return t.engine
}

// Analyze implements enumeratio.Analyzer. The first word of text is
// treated as the start of a sentence.
func (t *Tagger) Analyze(ctx context.Context, text string) ([]enumeratio.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := []enumeratio.Token{}
	first := true
	for _, p := range scan(text) {
		switch p.kind {
		case pieceWord:
			tokens = append(tokens, t.word(p.text, first)...)
			first = false
		case pieceNumber:
			tokens = append(tokens, enumeratio.Token{Surface: p.text, Lemma: p.text, POS: Numeral.String()})
		default:
			tokens = append(tokens, enumeratio.Token{Surface: p.text, Lemma: p.text, POS: enumeratio.PunctuationPOS})
		}
	}
	return tokens, nil
}

func (t *Tagger) word(form string, sentenceStart bool) []enumeratio.Token {
	base, enc, ok := t.engine.SplitEnclitic(form, sentenceStart)
	if !ok {
		return []enumeratio.Token{t.tag(form, sentenceStart)}
	}
	tag := encliticTags[strings.ToLower(enc)]
	return []enumeratio.Token{
		t.tag(base, sentenceStart),
		{Surface: enc, Lemma: tag.lemma, POS: tag.pos},
	}
}

// tag reads form with its most frequent lemma. Unknown forms keep their
// lower-cased spelling as lemma and the "unknown" tag.
func (t *Tagger) tag(form string, sentenceStart bool) enumeratio.Token {
	readings := t.engine.Lemmatize(form, sentenceStart)
	if len(readings) == 0 {
		return enumeratio.Token{Surface: form, Lemma: strings.ToLower(form), POS: Unknown.String()}
	}
	best := readings[0]
	return enumeratio.Token{
		Surface: form,
		Lemma:   best.Lemma.Plain,
		POS:     best.Lemma.POS.String(),
		Cases:   best.Cases(),
	}
}

type pieceKind int

const (
	pieceWord pieceKind = iota
	pieceNumber
	pieceMark
)

type piece struct {
	kind pieceKind
	text string
}

// scan splits text into letter runs, digit runs and single marks,
// dropping whitespace.
func scan(text string) []piece {
	var out []piece
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i + 1
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
			out = append(out, piece{pieceWord, string(rs[i:j])})
			i = j
		case unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			out = append(out, piece{pieceNumber, string(rs[i:j])})
			i = j
		default:
			out = append(out, piece{pieceMark, string(r)})
			i++
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Mn, r)
}
