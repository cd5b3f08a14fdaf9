package enumeratio

import (
	"context"
	"strings"
	"unicode"
)

// wordAnalyzer is a minimal Analyzer for tests: letter and digit runs are
// "word" tokens, other characters are punctuation. Words found in cases
// get those case values.
type wordAnalyzer struct {
	cases map[string][]string
	calls []string
}

func (a *wordAnalyzer) Analyze(_ context.Context, text string) ([]Token, error) {
	a.calls = append(a.calls, text)
	var tokens []Token
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		tokens = append(tokens, Token{Surface: w, Lemma: strings.ToLower(w), POS: "word", Cases: a.cases[w]})
		word.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, Token{Surface: string(r), Lemma: string(r), POS: PunctuationPOS})
		}
	}
	flush()
	return tokens, nil
}

// sliceSource replays fixed sentences.
type sliceSource struct {
	sentences [][]Token
}

func (s *sliceSource) Next(context.Context) ([]Token, error) {
	if len(s.sentences) == 0 {
		return nil, ErrExhausted
	}
	next := s.sentences[0]
	s.sentences = s.sentences[1:]
	return next, nil
}

func words(ws ...string) []Token {
	out := make([]Token, len(ws))
	for i, w := range ws {
		out[i] = Token{Surface: w, Lemma: w, POS: "word"}
	}
	return out
}

func surfaces(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Surface)
	}
	return b.String()
}
