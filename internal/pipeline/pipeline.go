// Package pipeline converts many corpus files concurrently. Each worker
// owns its own Assembler pass; the Analyzer and the optional SQLite store
// are shared.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/assemble"
	"github.com/cours-de-latin/enumeratio/internal/corpus"
	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/internal/sink"
)

// Config controls where output goes and how files are scheduled.
type Config struct {
	// OutputDir receives one <stem>.csv per input file when WriteCSV is set.
	OutputDir string
	WriteCSV  bool
	// Store, if set, receives every row and a record of each run.
	Store *sink.Store
	// Workers is the number of files processed at once; 0 means one per CPU.
	Workers int
	// Force reprocesses files that already have output. Their CSV files
	// are rewritten from scratch.
	Force bool
}

// Outcome is the result for one input file.
type Outcome struct {
	Path    string
	RunID   string
	Skipped string // reason the file was skipped, "" if processed
	Summary assemble.Summary
	Err     error
}

// Report aggregates the outcomes of a Run in input order.
type Report struct {
	Outcomes []Outcome
}

// Counts returns the number of processed, skipped and failed files.
func (r Report) Counts() (processed, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Skipped != "":
			skipped++
		default:
			processed++
		}
	}
	return processed, skipped, failed
}

// Rows returns the total number of rows written.
func (r Report) Rows() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Summary.Rows
	}
	return n
}

// Err joins the errors of failed files.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Path, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Pipeline runs an Assembler over files.
type Pipeline struct {
	asm *assemble.Assembler
	cfg Config
}

// New validates cfg and returns a Pipeline.
func New(analyzer enumeratio.Analyzer, opts assemble.Options, cfg Config) (*Pipeline, error) {
	asm, err := assemble.New(analyzer, opts)
	if err != nil {
		return nil, err
	}
	if !cfg.WriteCSV && cfg.Store == nil {
		return nil, enumeratio.NewConfigurationError("output", "neither CSV output nor a database is configured")
	}
	if cfg.WriteCSV && cfg.OutputDir == "" {
		return nil, enumeratio.NewConfigurationError("output_dir", "required for CSV output")
	}
	if cfg.Workers < 0 {
		return nil, enumeratio.NewConfigurationError("workers", "must not be negative, got %d", cfg.Workers)
	}
	return &Pipeline{asm: asm, cfg: cfg}, nil
}

// CSVPath returns the CSV output path for an input file.
func (p *Pipeline) CSVPath(input string) string {
	return filepath.Join(p.cfg.OutputDir, corpus.Stem(input)+".csv")
}

// Run converts files with a pool of workers. A failure in one file does
// not stop the others; cancellation of ctx does.
func (p *Pipeline) Run(ctx context.Context, files []string) (Report, error) {
	opts := p.asm.Options()
	logging.RunStarted(ctx, len(files), opts.Excluded, opts.AllowedMeters.Names(), "output_dir", p.cfg.OutputDir)

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	outcomes := make([]Outcome, len(files))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.index] = p.file(ctx, j.path)
			}
		}()
	}

	fed := 0
feed:
	for i, f := range files {
		select {
		case jobs <- job{index: i, path: f}:
			fed++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	report := Report{Outcomes: outcomes}
	if err := ctx.Err(); err != nil {
		for i := fed; i < len(files); i++ {
			outcomes[i] = Outcome{Path: files[i], Err: err}
		}
		return report, err
	}
	return report, nil
}

func (p *Pipeline) file(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	csvPath := p.CSVPath(path)
	if !p.cfg.Force && p.cfg.WriteCSV {
		if _, err := os.Stat(csvPath); err == nil {
			out.Skipped = "output exists"
			logging.FileSkipped(ctx, path, out.Skipped)
			return out
		}
	}

	var hash string
	if p.cfg.Store != nil {
		h, err := corpus.Hash(path)
		if err != nil {
			out.Err = err
			return out
		}
		hash = h
		if !p.cfg.Force {
			done, err := p.cfg.Store.Completed(ctx, hash)
			if err != nil {
				out.Err = err
				return out
			}
			if done {
				out.Skipped = "already converted"
				logging.FileSkipped(ctx, path, out.Skipped)
				return out
			}
		}
	}

	author, err := corpus.Load(path)
	if err != nil {
		out.Err = err
		return out
	}

	out.RunID = uuid.New().String()
	ctx = logging.WithRunID(ctx, out.RunID)
	logging.InfoContext(ctx, "converting file", "path", path, "lines", author.LineCount())

	sinks, finish, err := p.open(ctx, out.RunID, path, hash, csvPath)
	if err != nil {
		out.Err = err
		return out
	}

	out.Summary, err = p.asm.Run(ctx, author, func(b assemble.Batch) error {
		if err := sinks.Write(ctx, b); err != nil {
			return err
		}
		logging.BatchWritten(ctx, b.SectionURL, len(b.Rows))
		return nil
	})
	out.Err = finish(out.Summary, err)
	if out.Err == nil {
		processed := out.Summary.Sections - len(out.Summary.Failures)
		logging.InfoContext(ctx, "file converted", "path", path, "rows", out.Summary.Rows,
			"sections", processed, "failed_sections", len(out.Summary.Failures))
	}
	return out
}

// open starts the sinks of one file. finish closes them, records the final
// run status and returns the first error among runErr and its own.
func (p *Pipeline) open(ctx context.Context, runID, path, hash, csvPath string) (sink.Sink, func(assemble.Summary, error) error, error) {
	var sinks sink.Multi
	if p.cfg.WriteCSV {
		openCSV := sink.OpenCSV
		if p.cfg.Force {
			openCSV = sink.CreateCSV
		}
		c, err := openCSV(csvPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, c)
	}
	if s := p.cfg.Store; s != nil {
		opts := p.asm.Options()
		err := s.BeginRun(ctx, sink.Run{
			ID:            runID,
			InputPath:     path,
			InputHash:     hash,
			StartedAt:     time.Now(),
			ExcludedPOS:   opts.Excluded,
			AllowedMeters: opts.AllowedMeters.Names(),
		})
		if err != nil {
			sinks.Close()
			return nil, nil, err
		}
		sinks = append(sinks, s.Lines(runID))
	}

	finish := func(sum assemble.Summary, runErr error) error {
		closeErr := sinks.Close()
		if p.cfg.Store != nil {
			status := sink.StatusCompleted
			switch {
			case runErr != nil || closeErr != nil:
				status = sink.StatusFailed
			case sum.Failed():
				status = sink.StatusPartial
			}
			// the run context may be canceled; the status must still land
			if err := p.cfg.Store.FinishRun(context.WithoutCancel(ctx), runID, status); err != nil && runErr == nil {
				runErr = err
			}
		}
		if runErr != nil {
			return runErr
		}
		return closeErr
	}
	return sinks, finish, nil
}
