package prefetch

import (
	"time"

	"github.com/kbukum/datafeed/dataset"
	"github.com/kbukum/datafeed/tensor"
)

// Batch is one filled batch across every stream. A batch returned by
// NextBatch belongs to the consumer until its next NextBatch or Close.
type Batch struct {
	// Seq numbers batches from 0 in fill order.
	Seq int64
	// Epoch is the index epoch of the batch's first example.
	Epoch int

	Primary *tensor.Blob
	Labels  []*tensor.Blob

	// Valid marks slots that hold a decoded example. Invalid slots are zero.
	Valid []bool
	// Examples names the example drawn for each slot, valid or not.
	Examples []dataset.Example

	ReadTime      time.Duration
	TransformTime time.Duration
	FillTime      time.Duration
}

func newBatch(size int, shapes []tensor.Shape) *Batch {
	b := &Batch{
		Valid:    make([]bool, size),
		Examples: make([]dataset.Example, size),
	}
	if shapes != nil {
		b.allocate(shapes)
	}
	return b
}

func (b *Batch) allocate(shapes []tensor.Shape) {
	b.Primary = tensor.New(shapes[0])
	b.Labels = make([]*tensor.Blob, len(shapes)-1)
	for i := range b.Labels {
		b.Labels[i] = tensor.New(shapes[i+1])
	}
}

// Size returns the number of slots.
func (b *Batch) Size() int { return len(b.Valid) }

// Streams returns 1+K.
func (b *Batch) Streams() int { return 1 + len(b.Labels) }

// Stream returns stream i: 0 is the primary stream, i > 0 is label i-1.
func (b *Batch) Stream(i int) *tensor.Blob {
	if i == 0 {
		return b.Primary
	}
	return b.Labels[i-1]
}

// Blobs returns every stream in order.
func (b *Batch) Blobs() []*tensor.Blob {
	return append([]*tensor.Blob{b.Primary}, b.Labels...)
}

// Filled returns the number of valid slots.
func (b *Batch) Filled() int {
	n := 0
	for _, v := range b.Valid {
		if v {
			n++
		}
	}
	return n
}

// reset prepares a recycled batch for the next fill.
func (b *Batch) reset() {
	clear(b.Valid)
	clear(b.Examples)
	b.ReadTime, b.TransformTime, b.FillTime = 0, 0, 0
}

// invalidate zeroes slot i in every allocated stream.
func (b *Batch) invalidate(i int) {
	b.Valid[i] = false
	if b.Primary == nil {
		return
	}
	b.Primary.ZeroSlot(i)
	for _, l := range b.Labels {
		l.ZeroSlot(i)
	}
}
