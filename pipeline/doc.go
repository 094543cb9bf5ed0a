// Package pipeline composes pull-based consumer stages over an Iterator.
//
// Pipelines are lazy: nothing is pulled until Drain or ForEach runs.
// Each stage pulls from the one before it, so a slow consumer naturally slows
// the producer. The prefetcher's batch iterator plugs in with From.
//
// # Stages
//
//   - Map: convert each value
//   - Tap: side effect that passes the value through (dumps, logging)
//   - Pace: keep at least an interval between values (simulated step time)
//
// # Usage
//
//	batches := pipeline.From[*prefetch.Batch](p.Batches(100))
//	dumped := pipeline.Tap(batches, writer.Write)
//	paced := pipeline.Pace(dumped, 20*time.Millisecond)
//	err := pipeline.Drain(paced, train).Run(ctx)
package pipeline
