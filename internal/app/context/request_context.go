package context

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type ctxKey struct{}

// RequestContext memoizes fetches for the lifetime of one request.
type RequestContext struct {
	cache sync.Map
	group singleflight.Group
}

// New creates an empty RequestContext.
func New() *RequestContext {
	return &RequestContext{}
}

// FromContext extracts RequestContext, returns nil if not present.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return rc
	}
	return nil
}

// WithContext stores RequestContext in the context.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// Ensure returns the RequestContext stored in ctx, attaching a new one if absent.
func Ensure(ctx context.Context) (context.Context, *RequestContext) {
	if rc := FromContext(ctx); rc != nil {
		return ctx, rc
	}

	rc := New()
	return WithContext(ctx, rc), rc
}

// GetOrFetch returns the memoized value for key or runs fetchFn once to produce it.
// Concurrent callers with the same key share one fetchFn call and its error.
func (rc *RequestContext) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if cached, ok := rc.cache.Load(key); ok {
		return cached, nil
	}

	value, err, _ := rc.group.Do(key, func() (any, error) {
		if cached, ok := rc.cache.Load(key); ok {
			return cached, nil
		}

		v, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}

		rc.cache.Store(key, v)
		return v, nil
	})

	return value, err
}

// Fetch is the typed form of GetOrFetch.
func Fetch[T any](ctx context.Context, rc *RequestContext, key string, fetchFn func(context.Context) (T, error)) (T, error) {
	var zero T

	value, err := rc.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("request context key %q holds %T", key, value)
	}

	return typed, nil
}
