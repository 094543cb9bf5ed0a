// Package rng provides the single seeded random source a pipeline draws
// from: shuffles, the start-offset skip, crop offsets and mirror flips all
// consume the same stream, so a fixed seed reproduces a whole run.
package rng
