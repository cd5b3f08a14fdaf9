// Package sink persists batches of scored rows: appended to CSV files the
// way the original exports were written, and stored in SQLite together
// with a record of each conversion run.
package sink

import (
	"context"
	"errors"

	"github.com/cours-de-latin/enumeratio/internal/assemble"
)

// Sink receives batches in order. Close flushes and releases resources.
type Sink interface {
	Write(ctx context.Context, b assemble.Batch) error
	Close() error
}

// Multi fans each batch out to every sink in order, stopping at the first
// error.
type Multi []Sink

func (m Multi) Write(ctx context.Context, b assemble.Batch) error {
	for _, s := range m {
		if err := s.Write(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
