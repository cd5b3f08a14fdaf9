// Package assemble turns an author record into batches of scored rows.
// Each eligible section is rebuilt line by line from sentence-level
// analyses, scored, and grouped into fixed-size batches that never span
// two sections.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/corpus"
	"github.com/cours-de-latin/enumeratio/internal/logging"
)

// DefaultBatchSize is the number of rows per batch when none is set.
const DefaultBatchSize = 10

// Options configures an Assembler.
type Options struct {
	AllowedMeters corpus.MeterFilter
	Excluded      enumeratio.Exclusions
	BatchSize     int
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.BatchSize < 1 {
		return enumeratio.NewConfigurationError("batch_size", "must be a positive integer, got %d", o.BatchSize)
	}
	for i, tag := range o.Excluded {
		if tag == "" {
			return enumeratio.NewConfigurationError("excluded_parts_of_speech", "entry %d is empty", i)
		}
	}
	return nil
}

// SectionFailure records a section whose rows could not all be produced.
type SectionFailure struct {
	Work string
	Href string
	Err  error
}

// Summary describes one Run.
type Summary struct {
	Sections int // sections processed, failed ones included
	Filtered int // sections skipped by the meter filter
	Rows     int // rows emitted
	Batches  int
	Failures []SectionFailure
}

// Failed reports whether any section failed.
func (s Summary) Failed() bool {
	return len(s.Failures) > 0
}

// Assembler converts author records. It holds no per-section state, so
// one Assembler may be reused, but a Run must not be shared between
// goroutines unless the Analyzer allows concurrent calls.
type Assembler struct {
	analyzer enumeratio.Analyzer
	opts     Options
}

// New returns an Assembler, or a *ConfigurationError for invalid options.
func New(analyzer enumeratio.Analyzer, opts Options) (*Assembler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{analyzer: analyzer, opts: opts}, nil
}

// Options returns the options the Assembler was built with.
func (a *Assembler) Options() Options {
	return a.opts
}

// Run processes every allowed section of author and passes full batches
// to emit as they fill; a section's last, partial batch is emitted once
// the section is complete.
//
// A section failing with a match exhaustion, analyzer or undrained-buffer
// error is abandoned: its pending rows are dropped, a SectionFailure is
// recorded and Run continues with the next section. Errors from emit and
// context cancellation stop the run.
func (a *Assembler) Run(ctx context.Context, author *corpus.Author, emit func(Batch) error) (Summary, error) {
	var sum Summary
	for _, w := range author.Works {
		sections := a.opts.AllowedMeters.Sections(w)
		sum.Filtered += len(w.Sections) - len(sections)
		if len(sections) == 0 {
			logging.DebugContext(ctx, "no section of work met the meter filter", "work", w.Name)
			continue
		}
		for _, s := range sections {
			sum.Sections++
			err := a.section(ctx, author, w, s, emit, &sum)
			if err == nil {
				continue
			}
			if cerr := ctx.Err(); cerr != nil {
				return sum, cerr
			}
			if !isSectionError(err) {
				return sum, err
			}
			logging.SectionFailed(ctx, s.Href, err, "work", w.Name)
			sum.Failures = append(sum.Failures, SectionFailure{Work: w.Name, Href: s.Href, Err: err})
		}
	}
	return sum, nil
}

// errEmit marks a failure of the caller's emit function.
type errEmit struct{ err error }

func (e errEmit) Error() string { return "emit batch: " + e.err.Error() }
func (e errEmit) Unwrap() error { return e.err }

func isSectionError(err error) bool {
	var ee errEmit
	if errors.As(err, &ee) {
		return false
	}
	return errors.Is(err, enumeratio.ErrMatchExhausted) ||
		errors.Is(err, enumeratio.ErrAnalyzer) ||
		errors.Is(err, enumeratio.ErrUndrained)
}

func (a *Assembler) section(ctx context.Context, author *corpus.Author, w corpus.Work, s corpus.Section, emit func(Batch) error, sum *Summary) error {
	logging.SectionStarted(ctx, s.Href, s.Meter, len(s.Lines))

	r := enumeratio.NewReconstructor(s.Lines, enumeratio.NewStream(a.analyzer, s.Lines))
	pending := make([]Row, 0, a.opts.BatchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := emit(Batch{SectionURL: s.Href, Rows: pending}); err != nil {
			return errEmit{err}
		}
		sum.Rows += len(pending)
		sum.Batches++
		pending = make([]Row, 0, a.opts.BatchSize)
		return nil
	}

	for n := 0; ; n++ {
		line, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("section %s: %w", s.Href, err)
		}
		res := enumeratio.Score(line.Tokens, a.opts.Excluded)
		pending = append(pending, Row{
			Text:            line.Text,
			TextParsed:      line.Annotated,
			Tags:            line.Tokens,
			LineNumber:      n,
			Enumerativeness: res.Enumerativeness,
			Tokens:          res.Considered,
			TopCase:         res.TopCase,
			AuthorName:      author.Name,
			AuthorDate:      author.Date,
			AuthorID:        author.ID,
			WorkName:        w.Name,
			WorkEdition:     w.Edition,
			SectionURL:      s.Href,
			SectionMeter:    s.Meter,
		})
		if len(pending) >= a.opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := r.Finish(ctx); err != nil {
		return fmt.Errorf("section %s: %w", s.Href, err)
	}
	return flush()
}
