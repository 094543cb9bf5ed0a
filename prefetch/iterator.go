package prefetch

import (
	"context"

	"github.com/kbukum/datafeed/errors"
)

// BatchIterator walks batches from a started Prefetcher. It ends cleanly
// when the limit is reached or the Prefetcher is closed.
type BatchIterator struct {
	p     *Prefetcher
	limit int
	n     int
}

// Batches returns an iterator over the next limit batches. A limit <= 0
// iterates until Close.
func (p *Prefetcher) Batches(limit int) *BatchIterator {
	return &BatchIterator{p: p, limit: limit}
}

// Next returns the next batch. The batch is only valid until the following
// call.
func (it *BatchIterator) Next(ctx context.Context) (*Batch, bool, error) {
	if it.limit > 0 && it.n >= it.limit {
		return nil, false, nil
	}
	b, err := it.p.NextBatch(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeClosed) {
			return nil, false, nil
		}
		return nil, false, err
	}
	it.n++
	return b, true, nil
}

// Close does not close the Prefetcher.
func (it *BatchIterator) Close() error { return nil }
