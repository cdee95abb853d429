package app

import (
	"context"
	"fmt"
	"sync"
)

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartialLimit runs fns with at most limit in flight and collects
// every outcome. results[i] always belongs to fns[i]. A panicking fn or one
// still queued when ctx ends yields an error result instead of aborting the
// batch.
//
// Example:
//
//	results := ParallelPartialLimit(ctx, 5, lookups...)
//	for i, r := range results {
//	    if r.Err != nil {
//	        // lookups[i] failed
//	    }
//	}
func ParallelPartialLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	if limit < 1 {
		limit = 1
	}

	results := make([]PartialResult[T], len(fns))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, fn := range fns {
		wg.Go(func() {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = PartialResult[T]{Err: ctx.Err()}
				return
			}

			defer func() { <-sem }()

			results[i] = runIsolated(ctx, fn)
		})
	}

	wg.Wait()

	return results
}

func runIsolated[T any](ctx context.Context, fn func(context.Context) (T, error)) (res PartialResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = PartialResult[T]{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	value, err := fn(ctx)

	return PartialResult[T]{Value: value, Err: err}
}
