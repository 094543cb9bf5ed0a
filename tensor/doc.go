// Package tensor holds batch data as dense float32 arrays in [N,C,H,W]
// layout. A Slot is a view of one item of a batch.
package tensor
