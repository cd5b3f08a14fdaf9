package enumeratio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// lineState is the state of one line being rebuilt.
type lineState int

const (
	stateAccumulating lineState = iota
	stateMatched
	stateEmitted
	stateExhausted
)

func (s lineState) String() string {
	switch s {
	case stateAccumulating:
		return "accumulating"
	case stateMatched:
		return "matched"
	case stateEmitted:
		return "emitted"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("lineState(%d)", int(s))
	}
}

// accumulator collects tokens for one line until their surfaces spell the
// line's fingerprint.
type accumulator struct {
	state  lineState
	target string
	got    strings.Builder
	tokens []Token
}

func newAccumulator(target string) *accumulator {
	return &accumulator{target: target, tokens: []Token{}}
}

func (a *accumulator) take(t Token) {
	a.tokens = append(a.tokens, t)
	a.got.WriteString(stripSpace(t.Surface))
}

func (a *accumulator) matched() bool {
	return a.got.String() == a.target
}

// Reconstructor regroups a section's sentence-level tokens into its
// original verse lines. Tokens are consumed strictly in source order and
// never reassigned. A Reconstructor owns its staged buffer and must not be
// shared between sections or goroutines.
type Reconstructor struct {
	lines  []string
	src    TokenSource
	staged []Token
	next   int
	pulled int
	err    error
}

// NewReconstructor creates a Reconstructor for lines fed by src.
func NewReconstructor(lines []string, src TokenSource) *Reconstructor {
	return &Reconstructor{lines: lines, src: src}
}

// Next rebuilds the next line. It returns io.EOF after the last line.
// Any other error is permanent: the section cannot be completed and later
// calls return the same error.
func (r *Reconstructor) Next(ctx context.Context) (Line, error) {
	if r.err != nil {
		return Line{}, r.err
	}
	if r.next >= len(r.lines) {
		return Line{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return Line{}, err
	}
	line, err := r.reconstruct(ctx, r.next)
	if err != nil {
		r.err = err
		return Line{}, err
	}
	r.next++
	return line, nil
}

func (r *Reconstructor) reconstruct(ctx context.Context, idx int) (Line, error) {
	text := r.lines[idx]
	acc := newAccumulator(Fingerprint(text))
	for {
		switch acc.state {
		case stateAccumulating:
			if acc.matched() {
				acc.state = stateMatched
				continue
			}
			if len(r.staged) == 0 {
				tokens, err := r.src.Next(ctx)
				if errors.Is(err, ErrExhausted) {
					acc.state = stateExhausted
					continue
				}
				if err != nil {
					return Line{}, err
				}
				r.staged = append(r.staged[:0], tokens...)
				r.pulled += len(tokens)
				continue
			}
			acc.take(r.staged[0])
			r.staged = r.staged[1:]

		case stateMatched:
			acc.state = stateEmitted
			return Line{
				Text:      text,
				Annotated: Annotate(acc.tokens),
				Tokens:    acc.tokens,
			}, nil

		case stateExhausted:
			return Line{}, &MatchExhaustionError{
				Line:   idx,
				Text:   text,
				Target: acc.target,
				Got:    acc.got.String(),
			}

		default:
			return Line{}, fmt.Errorf("line %d: unexpected state %s", idx, acc.state)
		}
	}
}

// Finish checks that the section was consumed exactly. It pulls any
// sentences left in the source and fails with an *UndrainedError if a
// token was never assigned to a line.
func (r *Reconstructor) Finish(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	if r.next < len(r.lines) {
		return fmt.Errorf("finish: %d of %d line(s) not reconstructed", len(r.lines)-r.next, len(r.lines))
	}
	leftover := append([]Token(nil), r.staged...)
	r.staged = nil
	for {
		tokens, err := r.src.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			r.err = err
			return err
		}
		r.pulled += len(tokens)
		leftover = append(leftover, tokens...)
	}
	if len(leftover) > 0 {
		r.err = &UndrainedError{Leftover: leftover}
		return r.err
	}
	return nil
}

// Pulled returns the number of tokens read from the source so far.
func (r *Reconstructor) Pulled() int {
	return r.pulled
}

// Staged returns the number of tokens pulled but not yet assigned.
func (r *Reconstructor) Staged() int {
	return len(r.staged)
}

// Annotate renders tokens as "surface [pos, CASE case]" joined by spaces.
func Annotate(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Render()
	}
	return strings.Join(parts, " ")
}

// ReconstructAll rebuilds every line of a section with analyzer and checks
// that the token stream was drained.
func ReconstructAll(ctx context.Context, analyzer Analyzer, lines []string) ([]Line, error) {
	r := NewReconstructor(lines, NewStream(analyzer, lines))
	out := make([]Line, 0, len(lines))
	for {
		line, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
	if err := r.Finish(ctx); err != nil {
		return out, err
	}
	return out, nil
}
