package prefetch

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of pipeline counters.
type Stats struct {
	RunID           string        `json:"run_id"`
	State           string        `json:"state"`
	Seed            uint64        `json:"seed"`
	IndexSize       int           `json:"index_size"`
	Streams         int           `json:"streams"`
	Shapes          []string      `json:"shapes,omitempty"`
	Batches         int64         `json:"batches"`
	ItemsFilled     int64         `json:"items_filled"`
	ItemsSkipped    int64         `json:"items_skipped"`
	DecodeErrors    int64         `json:"decode_errors"`
	ShapeMismatches int64         `json:"shape_mismatches"`
	StorageErrors   int64         `json:"storage_errors"`
	Epochs          int64         `json:"epochs"`
	Consumed        int64         `json:"consumed"`
	ConsumerWait    time.Duration `json:"consumer_wait_ns"`
	LastFill        time.Duration `json:"last_fill_ns"`
}

type counters struct {
	batches         atomic.Int64
	itemsFilled     atomic.Int64
	itemsSkipped    atomic.Int64
	decodeErrors    atomic.Int64
	shapeMismatches atomic.Int64
	storageErrors   atomic.Int64
	epochs          atomic.Int64
	consumed        atomic.Int64
	consumerWait    atomic.Int64
	lastFill        atomic.Int64
	lastFilled      atomic.Int64
}

func (c *counters) snapshot(s *Stats) {
	s.Batches = c.batches.Load()
	s.ItemsFilled = c.itemsFilled.Load()
	s.ItemsSkipped = c.itemsSkipped.Load()
	s.DecodeErrors = c.decodeErrors.Load()
	s.ShapeMismatches = c.shapeMismatches.Load()
	s.StorageErrors = c.storageErrors.Load()
	s.Epochs = c.epochs.Load()
	s.Consumed = c.consumed.Load()
	s.ConsumerWait = time.Duration(c.consumerWait.Load())
	s.LastFill = time.Duration(c.lastFill.Load())
}

func (c *counters) reset() {
	for _, n := range []*atomic.Int64{
		&c.batches, &c.itemsFilled, &c.itemsSkipped, &c.decodeErrors, &c.shapeMismatches,
		&c.storageErrors, &c.epochs, &c.consumed, &c.consumerWait, &c.lastFill, &c.lastFilled,
	} {
		n.Store(0)
	}
}
