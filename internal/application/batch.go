package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/stwcert/internal/domain"
	"golang.org/x/sync/errgroup"
)

type BatchResult struct {
	Entry   domain.SiteEntry
	Outcome domain.UploadOutcome
	Err     error
}

// RenewAll renews every entry with at most concurrency uploads in flight.
// A failing entry does not stop the others. Results follow the order of
// entries; the returned error joins every failure.
func (r *Renewer) RenewAll(ctx context.Context, entries []domain.SiteEntry, concurrency int) ([]BatchResult, error) {
	results := make([]BatchResult, len(entries))

	var group errgroup.Group
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	for i, entry := range entries {
		group.Go(func() error {
			outcome, err := r.RenewEntry(ctx, entry)
			results[i] = BatchResult{Entry: entry, Outcome: outcome, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Entry.Domain, result.Err))
		}
	}

	return results, errors.Join(errs...)
}
