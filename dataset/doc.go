// Package dataset loads example manifests and walks them in epochs.
//
// A manifest holds one example per line: a primary image path followed by
// a fixed number of label image paths, whitespace separated. Tokens past the
// label paths (for example bounding box coordinates) are kept as extras.
//
// An Index owns the example order and the cursor. It is not safe for
// concurrent use; the prefetch worker is its only caller.
package dataset
