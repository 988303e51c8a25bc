// Package batch runs per-file processing over a bounded worker pool.
// Results land in a per-index slice, so no counter is ever shared between
// workers; the caller aggregates after Wait.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"logfix/internal/transaction"
)

// Run processes every file with at most workers goroutines. workers <= 1
// degenerates to sequential processing; workers == 0 uses GOMAXPROCS.
// Two tasks never touch the same file because each path appears once in
// files. The only error Run can return is context cancellation; per-file
// failures are carried inside their FileResult.
func Run(ctx context.Context, files []string, workers int, process func(path string) transaction.FileResult) ([]transaction.FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]transaction.FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i] = process(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
