package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cours-de-latin/enumeratio"
)

// ScoreCmd scores a text file, one verse line per input line.
type ScoreCmd struct {
	File     string   `arg:"" optional:"" default:"-" help:"Text file, '-' for stdin"`
	Out      string   `short:"o" default:"-" help:"Output file, '-' for stdout" type:"path"`
	JSON     bool     `help:"Output JSON lines"`
	Excluded []string `name:"excluded-parts-of-speech" help:"Part-of-speech tags left out of scoring"`

	Analyzer AnalyzerFlags `embed:""`
}

// scoredLine is one JSON output record.
type scoredLine struct {
	LineNumber int `json:"line_number"`
	enumeratio.Line
	enumeratio.Result
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (c *ScoreCmd) Run() error {
	ex, err := enumeratio.NewExclusions(c.Excluded)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	lines, err := readLines(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	analyzer, err := c.Analyzer.analyzer()
	if err != nil {
		return err
	}
	rebuilt, err := enumeratio.ReconstructAll(context.Background(), analyzer, lines)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if c.Out != "-" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for i, l := range rebuilt {
		res := enumeratio.Score(l.Tokens, ex)
		if c.JSON {
			if err := enc.Encode(scoredLine{LineNumber: i, Line: l, Result: res}); err != nil {
				return err
			}
			continue
		}
		value := "-"
		if v, ok := res.Value(); ok {
			value = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\n", i, value, res.TopCase, res.Considered, l.Annotated)
	}
	return w.Flush()
}
