// Package resilience retries transient failures with exponential backoff.
//
// By default only errors marked retryable are retried, which in datafeed
// means storage reads and writes. Decode failures are final on the first
// attempt.
//
//	data, err := resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 3},
//	    func() ([]byte, error) { return store.Download(ctx, path) })
package resilience
