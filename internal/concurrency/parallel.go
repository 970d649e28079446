package concurrency

import (
	"context"
	"sync"
)

// Options configures parallel processing.
type Options struct {
	// MaxWorkers caps the number of concurrent workers.
	MaxWorkers int
}

func DefaultOptions() Options {
	return Options{MaxWorkers: 8}
}

// Map runs itemFunc over items with a bounded worker pool and returns
// results indexed like the input, so callers keep deterministic order
// regardless of scheduling. Errors are returned per item in the same
// positions; callers decide what an item failure means.
func Map[T any, R any](
	ctx context.Context,
	items []T,
	opts Options,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultOptions().MaxWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int, len(items))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					errs[i] = ctx.Err()
				default:
					results[i], errs[i] = itemFunc(ctx, i, items[i])
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
