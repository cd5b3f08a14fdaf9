// Package enumeratio tags Latin verse lines and scores their
// "enumerativeness": the share of a line's words that carry its single most
// frequent grammatical case.
//
// An Analyzer works on whole sentences, not verse lines. A Stream pulls one
// sentence of annotations at a time, and a Reconstructor regroups those
// tokens back into the original line boundaries before Score is applied.
package enumeratio

import (
	"context"
	"strings"
)

// PunctuationPOS is the part-of-speech tag analyzers give to punctuation.
// Punctuation is never counted as a word by Score.
const PunctuationPOS = "punctuation"

// Token is one annotated unit produced by an Analyzer.
type Token struct {
	// Surface is the token as it appears in the analyzed text.
	Surface string `json:"string"`
	// Lemma is the dictionary form.
	Lemma string `json:"lemma"`
	// POS is the part-of-speech tag, e.g. "noun" or "punctuation".
	POS string `json:"pos"`
	// Cases lists the grammatical case values of the token in analyzer
	// order. A nil or empty slice means the token has no case.
	Cases []string `json:"case"`
}

// HasCases reports whether the token carries at least one case value.
func (t Token) HasCases() bool {
	return len(t.Cases) > 0
}

// Render returns "surface [pos, C1, C2 case]" or "surface [pos]".
func (t Token) Render() string {
	if !t.HasCases() {
		return t.Surface + " [" + t.POS + "]"
	}
	return t.Surface + " [" + t.POS + ", " + strings.Join(t.Cases, ", ") + " case]"
}

// Line is a verse line rebuilt from analyzer tokens.
type Line struct {
	// Text is the original, unnormalized line.
	Text string `json:"text"`
	// Annotated interleaves each surface form with its tags.
	Annotated string `json:"text_parsed"`
	// Tokens are the tokens assigned to this line, in analyzer order.
	Tokens []Token `json:"tags"`
}

// Analyzer annotates a piece of normalized text. Implementations return
// the tokens in text order; together their surfaces must cover every
// non-space character of the input.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]Token, error)
}

// AnalyzerFunc adapts an ordinary function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, text string) ([]Token, error)

// Analyze calls f(ctx, text).
func (f AnalyzerFunc) Analyze(ctx context.Context, text string) ([]Token, error) {
	return f(ctx, text)
}

// TokenSource yields token lists one sentence at a time. Next returns
// ErrExhausted once no sentences remain; an empty slice with a nil error is
// a valid sentence without tokens.
type TokenSource interface {
	Next(ctx context.Context) ([]Token, error)
}
