// Package task wraps long-running operations in channel-backed handles and
// provides the batch preview pre-cache sweep.
package task

import (
	"context"

	"github.com/rs/zerolog"
)

// Task is a handle to a computation running in its own goroutine. The
// result is available once Done is closed.
type Task[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Run starts fn and returns its handle.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = fn(ctx)
	}()
	return t
}

// Done is closed when the computation has finished.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the computation finishes or ctx is cancelled. On
// cancellation the computation keeps running; only the wait is abandoned.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Precacher warms the preview cache for a batch of textures. Work is
// chunked so cancellation takes effect at the next chunk boundary instead
// of mid-conversion.
type Precacher struct {
	// Warm produces (or verifies) the preview for one texture path.
	Warm func(ctx context.Context, path string) error

	// ChunkSize is how many textures run between cancellation checks.
	// Zero means 8.
	ChunkSize int

	Log zerolog.Logger
}

// Result summarizes a pre-cache sweep.
type Result struct {
	Warmed int
	Failed int
}

// Run warms previews for every path. Individual failures are logged and
// counted, not fatal; a cancelled context stops the sweep at the next
// chunk boundary and returns what was done so far along with ctx.Err().
func (p *Precacher) Run(ctx context.Context, paths []string) (Result, error) {
	chunk := p.ChunkSize
	if chunk <= 0 {
		chunk = 8
	}

	var res Result
	for start := 0; start < len(paths); start += chunk {
		if err := ctx.Err(); err != nil {
			p.Log.Info().Int("warmed", res.Warmed).Msg("pre-cache cancelled")
			return res, err
		}

		end := start + chunk
		if end > len(paths) {
			end = len(paths)
		}
		for _, path := range paths[start:end] {
			if err := p.Warm(ctx, path); err != nil {
				p.Log.Warn().Str("path", path).Err(err).Msg("pre-cache failed for texture")
				res.Failed++
				continue
			}
			res.Warmed++
		}
	}
	return res, nil
}
