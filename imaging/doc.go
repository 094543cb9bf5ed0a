// Package imaging decodes stored images into rasters and transforms rasters
// into batch tensor slots.
//
// A Codec turns a path plus target size and color mode into a Raster. A
// Transformer crops, mirrors and normalizes a Raster into one [C,H,W] slot
// of a tensor.Blob, driven by an Augmentation drawn from the pipeline's
// random source. Drawing and applying are separate steps so one draw can be
// shared by every stream of an example.
package imaging
