package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelPartialLimit(t *testing.T) {
	boom := errors.New("boom")

	results := ParallelPartialLimit(context.Background(), 2,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { panic("oops") },
		func(context.Context) (int, error) { return 4, nil },
	)

	require.Len(t, results, 4)
	assert.Equal(t, 1, results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "panic: oops")
	assert.Equal(t, 4, results[3].Value)
}

func TestParallelPartialLimit_CancelledWhileQueued(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	blocking := func(context.Context) (int, error) {
		<-release
		return 1, nil
	}

	done := make(chan []PartialResult[int])
	go func() { done <- ParallelPartialLimit(ctx, 1, blocking, blocking) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	results := <-done
	require.Len(t, results, 2)

	// one fn holds the only slot, the other is still queued at cancellation
	var ok, cancelled int
	for _, r := range results {
		switch {
		case r.Err == nil:
			ok++
		case errors.Is(r.Err, context.Canceled):
			cancelled++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, cancelled)
}

func TestParallelPartialLimit_ZeroLimit(t *testing.T) {
	results := ParallelPartialLimit(context.Background(), 0,
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "b", nil },
	)

	assert.Equal(t, "a", results[0].Value)
	assert.Equal(t, "b", results[1].Value)
}
