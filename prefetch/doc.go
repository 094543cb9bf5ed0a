// Package prefetch feeds a consumer loop with fixed-shape multi-stream
// batches filled by a background worker.
//
// A Prefetcher owns two batches. At any instant each one belongs to exactly
// one side: the worker filling it, the consumer reading it, or one of the
// two single-slot channels handing it over. Start fills the first batch
// synchronously, so the first NextBatch never waits on an empty pipeline;
// afterwards the worker fills one batch ahead of the consumer.
//
// Examples come from a Source, opened once at Start with the pipeline's
// random source. ImageOpener builds the standard Source: a manifest loaded
// from storage, decoded with an imaging.Codec.
//
//	p, err := prefetch.New(cfg, prefetch.ImageOpener(cfg, store.Bytes))
//	if err := p.Start(ctx); err != nil {
//		return err // fatal setup error
//	}
//	defer p.Close()
//	for {
//		batch, err := p.NextBatch(ctx)
//		...
//	}
//
// Items that fail to decode or do not fit the batch shape are logged and
// left zeroed with Valid[i] == false; the consumer never sees those errors.
package prefetch
