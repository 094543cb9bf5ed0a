package tensor

import (
	"fmt"
	"slices"
)

// Shape is a 4-D batch shape.
type Shape struct {
	N, C, H, W int
}

// Count returns the number of elements in the shape.
func (s Shape) Count() int { return s.N * s.C * s.H * s.W }

// SlotCount returns the number of elements in one item.
func (s Shape) SlotCount() int { return s.C * s.H * s.W }

// Valid reports whether every dimension is positive.
func (s Shape) Valid() bool { return s.N > 0 && s.C > 0 && s.H > 0 && s.W > 0 }

func (s Shape) String() string {
	return fmt.Sprintf("[%d %d %d %d]", s.N, s.C, s.H, s.W)
}

// Blob is a dense float32 tensor.
type Blob struct {
	shape Shape
	data  []float32
}

// New allocates a zeroed blob. It panics on a non-positive dimension.
func New(shape Shape) *Blob {
	if !shape.Valid() {
		panic(fmt.Sprintf("tensor: invalid shape %v", shape))
	}
	return &Blob{shape: shape, data: make([]float32, shape.Count())}
}

// Shape returns the blob's shape.
func (b *Blob) Shape() Shape { return b.shape }

// Count returns the number of elements.
func (b *Blob) Count() int { return len(b.data) }

// Data returns the backing slice. Writes through it are visible to every
// slot view.
func (b *Blob) Data() []float32 { return b.data }

// Offset returns the flat index of (n, c, h, w).
func (b *Blob) Offset(n, c, h, w int) int {
	s := b.shape
	return ((n*s.C+c)*s.H+h)*s.W + w
}

// At returns the element at (n, c, h, w).
func (b *Blob) At(n, c, h, w int) float32 { return b.data[b.Offset(n, c, h, w)] }

// Set stores v at (n, c, h, w).
func (b *Blob) Set(n, c, h, w int, v float32) { b.data[b.Offset(n, c, h, w)] = v }

// Slot returns a view of item n.
func (b *Blob) Slot(n int) Slot {
	if n < 0 || n >= b.shape.N {
		panic(fmt.Sprintf("tensor: slot %d out of range [0,%d)", n, b.shape.N))
	}
	size := b.shape.SlotCount()
	return Slot{
		C: b.shape.C, H: b.shape.H, W: b.shape.W,
		Data: b.data[n*size : (n+1)*size : (n+1)*size],
	}
}

// ZeroSlot clears item n.
func (b *Blob) ZeroSlot(n int) {
	clear(b.Slot(n).Data)
}

// SlotEqual reports whether item n of b and other hold identical values.
func (b *Blob) SlotEqual(other *Blob, n int) bool {
	if b.shape != other.shape {
		return false
	}
	return slices.Equal(b.Slot(n).Data, other.Slot(n).Data)
}

// Slot is a [C,H,W] view of one item of a blob.
type Slot struct {
	C, H, W int
	Data    []float32
}

// Index returns the flat index of (c, h, w) within the slot.
func (s Slot) Index(c, h, w int) int { return (c*s.H+h)*s.W + w }

// At returns the element at (c, h, w).
func (s Slot) At(c, h, w int) float32 { return s.Data[s.Index(c, h, w)] }

// Set stores v at (c, h, w).
func (s Slot) Set(c, h, w int, v float32) { s.Data[s.Index(c, h, w)] = v }
