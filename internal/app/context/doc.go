// Package context provides request-scoped memoization for orchestration
// services.
//
// A RequestContext lives for one request. Fetches keyed by the same string
// run once, and concurrent callers for that key wait on the single
// in-flight fetch:
//
//	rc := context.FromContext(ctx)
//	display, err := context.Fetch(ctx, rc, ref.String(), func(ctx context.Context) (*domain.VerseDisplay, error) {
//	    return lookup.LookupVerse(ctx, ref)
//	})
//
// Only successful results are memoized; a failed fetch is retried by the
// next caller.
package context
