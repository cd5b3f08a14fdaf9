package enumeratio

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned by a TokenSource with no sentences left.
	ErrExhausted = errors.New("token source exhausted")
	// ErrMatchExhausted indicates a line could not be matched before the
	// token source ran dry.
	ErrMatchExhausted = errors.New("line match exhausted")
	// ErrAnalyzer indicates the external analyzer failed.
	ErrAnalyzer = errors.New("analyzer failure")
	// ErrConfiguration indicates an invalid configuration value.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrUndrained indicates tokens were left over after the last line.
	ErrUndrained = errors.New("token buffer not drained")
)

// MatchExhaustionError reports a line whose fingerprint was never reached
// by the concatenated token surfaces.
type MatchExhaustionError struct {
	Line   int    // 0-based index of the line within its section
	Text   string // original line text
	Target string // fingerprint that was expected
	Got    string // concatenated surfaces accumulated when input ran out
}

func (e *MatchExhaustionError) Error() string {
	return fmt.Sprintf("line %d %q: token stream exhausted before match (want %q, have %q)",
		e.Line, e.Text, e.Target, e.Got)
}

func (e *MatchExhaustionError) Unwrap() error {
	return ErrMatchExhausted
}

// AnalyzerError wraps a failure of the Analyzer on one sentence.
type AnalyzerError struct {
	Sentence int    // 0-based index of the sentence in the section
	Text     string // normalized sentence handed to the analyzer
	Err      error  // underlying analyzer error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("analyze sentence %d %q: %v", e.Sentence, e.Text, e.Err)
}

// Unwrap exposes both the analyzer's own error and ErrAnalyzer.
func (e *AnalyzerError) Unwrap() []error {
	return []error{ErrAnalyzer, e.Err}
}

// ConfigurationError reports an invalid configuration field.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration %s: %s", e.Field, e.Message)
	}
	return "configuration: " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UndrainedError reports tokens that no line consumed.
type UndrainedError struct {
	Leftover []Token
}

func (e *UndrainedError) Error() string {
	return fmt.Sprintf("%d token(s) left after the last line", len(e.Leftover))
}

func (e *UndrainedError) Unwrap() error {
	return ErrUndrained
}
