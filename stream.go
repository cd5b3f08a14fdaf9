package enumeratio

import (
	"context"
	"strings"
)

// Stream is the annotation adapter for one section. It segments the
// section's lines into sentences up front and analyzes them lazily, one
// sentence per call to Next. A Stream is single-pass; build a new one to
// start over.
type Stream struct {
	analyzer  Analyzer
	sentences []string
	next      int
}

// NewStream joins lines with single spaces and segments the result into
// sentences. No analysis happens until Next is called.
func NewStream(analyzer Analyzer, lines []string) *Stream {
	return &Stream{
		analyzer:  analyzer,
		sentences: SegmentSentences(strings.Join(lines, " ")),
	}
}

// Next analyzes the next sentence and returns its tokens. It returns
// ErrExhausted when all sentences have been consumed. A sentence that
// yields no tokens is returned as an empty, non-nil slice. Analyzer
// failures are wrapped in an *AnalyzerError; the failed sentence is
// skipped by the following call.
func (s *Stream) Next(ctx context.Context) ([]Token, error) {
	if s.next >= len(s.sentences) {
		return nil, ErrExhausted
	}
	i := s.next
	s.next++

	text := Normalize(s.sentences[i])
	tokens, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, &AnalyzerError{Sentence: i, Text: text, Err: err}
	}
	if tokens == nil {
		tokens = []Token{}
	}
	return tokens, nil
}

// Len returns the total number of sentences in the section.
func (s *Stream) Len() int {
	return len(s.sentences)
}

// Remaining returns the number of sentences not yet analyzed.
func (s *Stream) Remaining() int {
	return len(s.sentences) - s.next
}
