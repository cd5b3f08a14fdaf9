package enumeratio

import (
	"strings"
	"unicode"
)

// isSentenceEnd reports whether r closes a sentence. Latin editions use the
// colon and semicolon as strong stops, so they end sentences too.
func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

// isCloser reports whether r may trail a sentence end and still belong to
// the sentence, e.g. a closing quote after a full stop.
func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '>', '’', '”', '»':
		return true
	}
	return false
}

// SegmentSentences splits text into sentences. A boundary falls after a
// run of sentence-ending punctuation (plus trailing closers) that is
// followed by whitespace or the end of text. Sentences are trimmed; every
// non-space character of text belongs to exactly one sentence.
func SegmentSentences(text string) []string {
	var sentences []string
	rs := []rune(text)
	start := 0
	for i := 0; i < len(rs); i++ {
		if !isSentenceEnd(rs[i]) {
			continue
		}
		j := i + 1
		for j < len(rs) && (isSentenceEnd(rs[j]) || isCloser(rs[j])) {
			j++
		}
		if j < len(rs) && !unicode.IsSpace(rs[j]) {
			i = j - 1
			continue
		}
		if s := strings.TrimSpace(string(rs[start:j])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
