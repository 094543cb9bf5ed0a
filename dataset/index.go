package dataset

import (
	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/rng"
)

// Index is an ordered list of examples with a cursor. Next wraps at the end
// of the list; each wrap starts a new epoch and reshuffles when enabled.
type Index struct {
	examples []Example
	src      rng.Source
	shuffle  bool
	cursor   int
	epoch    int
}

// NewIndex creates an index over a copy of examples. src drives shuffling
// and skipping.
func NewIndex(examples []Example, src rng.Source, shuffle bool) (*Index, error) {
	if len(examples) == 0 {
		return nil, errors.EmptyIndex("index")
	}
	return &Index{
		examples: append([]Example(nil), examples...),
		src:      src,
		shuffle:  shuffle,
	}, nil
}

// Size returns the number of examples.
func (x *Index) Size() int { return len(x.examples) }

// Cursor returns the position of the next example.
func (x *Index) Cursor() int { return x.cursor }

// Epoch returns the number of completed passes.
func (x *Index) Epoch() int { return x.epoch }

// Examples returns the examples in their current order.
func (x *Index) Examples() []Example {
	return append([]Example(nil), x.examples...)
}

// Shuffle permutes the examples in place.
func (x *Index) Shuffle() {
	rng.Shuffle(x.src, len(x.examples), func(i, j int) {
		x.examples[i], x.examples[j] = x.examples[j], x.examples[i]
	})
}

// SkipAhead moves the cursor forward by a random amount below maxSkip and
// returns it. maxSkip <= 0 is a no-op; maxSkip >= Size is SKIP_OUT_OF_RANGE.
func (x *Index) SkipAhead(maxSkip int) (int, error) {
	if maxSkip <= 0 {
		return 0, nil
	}
	if maxSkip >= len(x.examples) {
		return 0, errors.SkipOutOfRange(maxSkip, len(x.examples))
	}
	skip := int(x.src.Uint64() % uint64(maxSkip))
	x.cursor = skip
	return skip, nil
}

// Seek moves the cursor to pos, which must lie in [0, Size).
func (x *Index) Seek(pos int) error {
	if pos < 0 || pos >= len(x.examples) {
		return errors.SkipOutOfRange(pos, len(x.examples))
	}
	x.cursor = pos
	return nil
}

// Next returns the example at the cursor and advances it. Reaching the end
// wraps to 0, bumps the epoch and reshuffles if enabled, so the next call
// already sees the new order.
func (x *Index) Next() Example {
	ex := x.examples[x.cursor]
	x.cursor++
	if x.cursor >= len(x.examples) {
		x.cursor = 0
		x.epoch++
		if x.shuffle {
			x.Shuffle()
		}
	}
	return ex
}
