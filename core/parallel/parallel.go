// Package parallel provides the chunked fan-out used by row-wise transforms.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Workers resolves a requested worker count for items units of work.
// nJobs <= 0 means one worker per CPU. The result is never larger than items
// and never smaller than 1.
func Workers(nJobs, items int) int {
	numWorkers := nJobs
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	return numWorkers
}

// Parallelize divides items into contiguous ranges, one per worker, and runs
// fn on each range (start, end). With a single worker fn runs on the calling
// goroutine. The first error cancels the ranges that have not started and is
// returned; a panic inside fn is recovered into a PanicError.
func Parallelize(ctx context.Context, items, nJobs int, fn func(ctx context.Context, start, end int) error) error {
	if items == 0 {
		return nil
	}

	numWorkers := Workers(nJobs, items)
	if numWorkers == 1 {
		return runChunk(ctx, fn, 0, items)
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle
		if start >= end {
			continue
		}

		eg.Go(func() error {
			return runChunk(egCtx, fn, start, end)
		})
	}

	return eg.Wait()
}

// ForEach runs fn for every index in [0, items) using at most nJobs workers.
// Indices are independent, so the result does not depend on nJobs.
func ForEach(items, nJobs int, fn func(i int) error) error {
	return Parallelize(context.Background(), items, nJobs, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}

func runChunk(ctx context.Context, fn func(ctx context.Context, start, end int) error, start, end int) (err error) {
	defer serrors.Recover(&err, "parallel chunk")
	return fn(ctx, start, end)
}
