package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/assemble"
	"github.com/cours-de-latin/enumeratio/internal/corpus"
	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/internal/pipeline"
	"github.com/cours-de-latin/enumeratio/internal/sink"
)

// ConvertCmd runs the conversion pipeline.
type ConvertCmd struct {
	Inputs        []string `arg:"" help:"Corpus files or directories" type:"existingpath"`
	Output        string   `short:"o" default:"output" help:"Output directory for CSV files" type:"path"`
	NoCSV         bool     `name:"no-csv" help:"Write no CSV files; requires --db"`
	DB            string   `name:"db" help:"SQLite database receiving runs and rows" type:"path"`
	Workers       int      `short:"w" help:"Files processed at once (0 = one per CPU)"`
	Force         bool     `short:"f" help:"Reprocess files that already have output"`
	AllowedMeters []string `name:"allowed-meters" default:"all" help:"Meters to process, or 'all'"`
	Excluded      []string `name:"excluded-parts-of-speech" help:"Part-of-speech tags left out of scoring"`
	BatchSize     int      `name:"batch-size" default:"10" help:"Rows per batch"`

	Analyzer AnalyzerFlags `embed:""`
}

// options validates the scoring flags.
func (c *ConvertCmd) options() (assemble.Options, error) {
	meters, err := corpus.ParseMeters(c.AllowedMeters)
	if err != nil {
		return assemble.Options{}, err
	}
	ex, err := enumeratio.NewExclusions(c.Excluded)
	if err != nil {
		return assemble.Options{}, err
	}
	opts := assemble.Options{AllowedMeters: meters, Excluded: ex, BatchSize: c.BatchSize}
	return opts, opts.Validate()
}

// expandInputs replaces directories by the corpus files they contain.
func expandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		found, err := corpus.Discover(in)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

func (c *ConvertCmd) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	files, err := expandInputs(c.Inputs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no corpus files in %v", c.Inputs)
	}
	logging.Debug("input files", "count", len(files), "inputs", c.Inputs)

	cfg := pipeline.Config{WriteCSV: !c.NoCSV, Workers: c.Workers, Force: c.Force}
	if cfg.WriteCSV {
		cfg.OutputDir = c.Output
		if err := os.MkdirAll(c.Output, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if c.DB != "" {
		store, err := sink.OpenStore(c.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Store = store
	}

	analyzer, err := c.Analyzer.analyzer()
	if err != nil {
		return err
	}
	p, err := pipeline.New(analyzer, opts, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	report, err := p.Run(ctx, files)
	printReport(report)
	if err != nil {
		return err
	}
	if _, _, failed := report.Counts(); failed > 0 {
		logging.Warn("some files failed", "failed", failed, "files", len(files))
	}
	return report.Err()
}

func printReport(r pipeline.Report) {
	for _, o := range r.Outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("FAIL %s: %v\n", o.Path, o.Err)
		case o.Skipped != "":
			fmt.Printf("SKIP %s (%s)\n", o.Path, o.Skipped)
		default:
			fmt.Printf("OK   %s: %d rows", o.Path, o.Summary.Rows)
			if n := len(o.Summary.Failures); n > 0 {
				fmt.Printf(", %d failed section(s)", n)
			}
			fmt.Println()
		}
	}
	processed, skipped, failed := r.Counts()
	fmt.Printf("\n%d processed, %d skipped, %d failed, %d rows\n", processed, skipped, failed, r.Rows())
}
