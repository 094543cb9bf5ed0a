package pipeline

import (
	"context"
	"time"
)

// Map transforms each value using fn.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &mapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
// An error from fn ends the pipeline.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &tapIter[T]{source: p.create(ctx), fn: fn}
		},
	}
}

// Pace keeps at least interval between consecutive values by waiting before
// handing out the next one. Values are never dropped. A zero interval
// passes values straight through.
func Pace[T any](p *Pipeline[T], interval time.Duration) *Pipeline[T] {
	if interval <= 0 {
		return p
	}
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &paceIter[T]{source: p.create(ctx), interval: interval}
		},
	}
}

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		var zero T
		return zero, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

type paceIter[T any] struct {
	source   Iterator[T]
	interval time.Duration
	lastEmit time.Time
}

func (it *paceIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if !it.lastEmit.IsZero() {
		if wait := it.interval - time.Since(it.lastEmit); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				var zero T
				return zero, false, ctx.Err()
			}
		}
	}
	val, ok, err := it.source.Next(ctx)
	if ok && err == nil {
		it.lastEmit = time.Now()
	}
	return val, ok, err
}

func (it *paceIter[T]) Close() error { return it.source.Close() }
