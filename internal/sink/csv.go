package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cours-de-latin/enumeratio/internal/assemble"
)

// numericColumns are written bare; every other field is quoted.
var numericColumns = map[string]bool{
	"line_number":     true,
	"enumerativeness": true,
	"tokens":          true,
	"top_case":        true,
	"author_id":       true,
}

// CSV appends rows to a CSV file. The header is written only when the
// file is created, so successive runs extend the same table.
type CSV struct {
	path string
	f    *os.File
	w    *bufio.Writer
	rows int
}

// OpenCSV opens path for appending, creating it and its directory as
// needed.
func OpenCSV(path string) (*CSV, error) {
	return openCSV(path, os.O_APPEND)
}

// CreateCSV is OpenCSV for a file that is rewritten from scratch: an
// existing file is truncated and gets a fresh header.
func CreateCSV(path string) (*CSV, error) {
	return openCSV(path, os.O_TRUNC)
}

func openCSV(path string, mode int) (*CSV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	_, err := os.Stat(path)
	isNew := errors.Is(err, fs.ErrNotExist) || mode == os.O_TRUNC
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat csv: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, 0644)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	c := &CSV{path: path, f: f, w: bufio.NewWriter(f)}
	if isNew {
		c.writeRecord(assemble.Columns, true)
		if err := c.w.Flush(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return c, nil
}

// Path returns the file being written.
func (c *CSV) Path() string {
	return c.path
}

// Rows returns the number of rows written through c.
func (c *CSV) Rows() int {
	return c.rows
}

// Write appends the rows of b and flushes them to disk.
func (c *CSV) Write(_ context.Context, b assemble.Batch) error {
	for _, r := range b.Rows {
		rec, err := r.Record()
		if err != nil {
			return fmt.Errorf("csv row %d of %s: %w", r.LineNumber, r.SectionURL, err)
		}
		c.writeRecord(rec, false)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	c.rows += len(b.Rows)
	return nil
}

// writeRecord writes one line. Header fields are always quoted; data
// fields are quoted unless their column is numeric.
func (c *CSV) writeRecord(fields []string, header bool) {
	for i, field := range fields {
		if i > 0 {
			c.w.WriteByte(',')
		}
		if !header && numericColumns[assemble.Columns[i]] {
			c.w.WriteString(field)
			continue
		}
		c.w.WriteByte('"')
		c.w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		c.w.WriteByte('"')
	}
	c.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (c *CSV) Close() error {
	if err := c.w.Flush(); err != nil {
		c.f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return c.f.Close()
}
