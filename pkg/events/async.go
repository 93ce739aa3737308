package events

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Awaitable is a handler result that completes later.
type Awaitable interface {
	Wait(ctx context.Context) (any, error)
}

// Future is an Awaitable backed by a goroutine.
type Future struct {
	done   chan struct{}
	result any
	err    error
}

// Go runs fn in a new goroutine and returns its Future.
// Handlers return the Future to have DispatchAsync await it.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Wait blocks until the future completes or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DispatchAsync runs the same walk as Dispatch, then awaits every
// Awaitable result concurrently. Results are returned in invocation order;
// failed invocations leave a nil result. All failures, synchronous or
// awaited, are joined into one listener error.
func (t *Target) DispatchAsync(ctx context.Context, evt *Event) ([]any, error) {
	var (
		results []any
		errs    []error
		pending []int
	)
	t.walk(ctx, evt, func(v any, err error) {
		if _, ok := v.(Awaitable); ok && err == nil {
			pending = append(pending, len(results))
		}
		results = append(results, v)
		errs = append(errs, err)
	})

	// Each failure is kept in its listener's slot and joined below, so
	// the goroutines report nil and one failure never cancels the others.
	var g errgroup.Group
	for _, idx := range pending {
		idx := idx
		aw := results[idx].(Awaitable)
		g.Go(func() error {
			v, err := aw.Wait(ctx)
			results[idx] = v
			errs[idx] = err
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err != nil {
			results[i] = nil
		}
	}
	return results, listenerError(evt, multierr.Combine(errs...))
}
