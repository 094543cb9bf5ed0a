// Package errors provides the structured error type shared by every datafeed
// package.
//
// Each AppError carries a machine-readable ErrorCode. The code decides the
// error's Kind, which is how the prefetch pipeline routes it:
//
//   - KindFatal: setup cannot proceed (bad manifest, empty index, bad config).
//     Returned synchronously from Prefetcher.Start.
//   - KindRecoverable: one example could not be decoded or did not fit the
//     batch shape. Logged by the worker and absorbed; the slot stays unfilled.
//   - KindStructural: the caller used the pipeline out of order (a batch was
//     requested before Start, or after Close).
//
// Retryable marks transient storage failures that resilience.Retry may repeat.
package errors
