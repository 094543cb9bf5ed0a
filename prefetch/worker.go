package prefetch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/tensor"
)

// fill reads BatchSize examples into b. An example that fails to decode or
// does not fit the batch shape leaves its slot zeroed and invalid; the
// cursor has still moved past it. The only errors returned are context
// errors and failures to establish the batch shape.
func (p *Prefetcher) fill(ctx context.Context, b *Batch) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanBatchFill)
	defer span.End()

	start := time.Now()
	epoch := p.src.Epoch()
	b.Epoch = epoch
	filled, skipped := 0, 0

	for i := range b.Valid {
		if err := ctx.Err(); err != nil {
			return err
		}

		// teardown cancels ctx, which also aborts a decode in flight; the
		// batch being filled is discarded either way
		readStart := time.Now()
		item, err := p.src.Next(ctx)
		b.ReadTime += time.Since(readStart)
		b.Examples[i] = item.Example

		if err == nil && p.shapes == nil {
			if err := p.establish(item, b); err != nil {
				observability.SetSpanError(ctx, err)
				return err
			}
		}
		if err == nil {
			err = p.check(item)
		}
		if err == nil {
			transformStart := time.Now()
			err = p.write(item, b, i)
			b.TransformTime += time.Since(transformStart)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.skip(ctx, b, i, err)
			skipped++
			continue
		}
		b.Valid[i] = true
		filled++
	}

	b.Seq = p.seq
	p.seq++
	b.FillTime = time.Since(start)

	p.stats.batches.Add(1)
	p.stats.itemsFilled.Add(int64(filled))
	p.stats.itemsSkipped.Add(int64(skipped))
	p.stats.lastFill.Store(int64(b.FillTime))
	p.stats.lastFilled.Store(int64(filled))
	p.metrics.RecordBatch(ctx, filled, skipped, b.ReadTime, b.TransformTime, b.FillTime)

	for e := epoch; e < p.src.Epoch(); e++ {
		p.stats.epochs.Add(1)
		p.metrics.RecordEpoch(ctx)
		p.log.Debug("restarting data prefetching from start", logger.Fields(logger.FieldEpoch, e+1))
	}

	observability.SetSpanAttribute(ctx, observability.AttrBatchSeq, b.Seq)
	observability.SetSpanAttribute(ctx, observability.AttrEpoch, b.Epoch)
	observability.SetSpanAttribute(ctx, observability.AttrFilled, filled)
	observability.SetSpanAttribute(ctx, observability.AttrSkipped, skipped)

	if p.log.Enabled(zerolog.DebugLevel) {
		fields := logger.TimingFields(b.ReadTime, b.TransformTime)
		fields[logger.FieldBatch] = b.Seq
		fields[logger.FieldFilled] = filled
		fields[logger.FieldSkipped] = skipped
		fields[logger.FieldDuration] = b.FillTime.Milliseconds()
		p.log.Debug("prefetch batch", fields)
	}
	return nil
}

// establish fixes the per-stream batch shapes from the first decoded item
// and allocates b's blobs.
func (p *Prefetcher) establish(item Item, b *Batch) error {
	if len(item.Rasters) != len(p.transforms) {
		return errors.Internal(fmt.Errorf("item has %d rasters, want %d", len(item.Rasters), len(p.transforms)))
	}
	shapes := make([]tensor.Shape, len(item.Rasters))
	for s, r := range item.Rasters {
		if err := p.transforms[s].Validate(r.Channels); err != nil {
			return err
		}
		c, h, w := p.transforms[s].OutputShape(r)
		shapes[s] = tensor.Shape{N: p.cfg.BatchSize, C: c, H: h, W: w}
		p.log.Info(fmt.Sprintf("output data size: %d,%d,%d,%d", p.cfg.BatchSize, c, h, w),
			logger.Fields(logger.FieldStream, s))
	}
	p.shapes = shapes
	b.allocate(shapes)
	return nil
}

func (p *Prefetcher) check(item Item) error {
	if len(item.Rasters) != len(p.shapes) {
		return errors.Internal(fmt.Errorf("item has %d rasters, want %d", len(item.Rasters), len(p.shapes)))
	}
	for s, r := range item.Rasters {
		if err := p.transforms[s].Check(r, s, p.shapes[s]); err != nil {
			return err
		}
	}
	return nil
}

// write transforms every stream of item into slot i. Streams share the
// primary stream's crop offsets and mirror decision unless augmentation is
// independent or a stream's raster size differs from the primary's.
func (p *Prefetcher) write(item Item, b *Batch, i int) error {
	primary := item.Rasters[0]
	var shared imaging.Augmentation
	if !p.cfg.IndependentAugmentation {
		shared = p.transforms[0].Draw(p.random, primary.Height, primary.Width)
	}
	for s, r := range item.Rasters {
		aug := shared
		if p.cfg.IndependentAugmentation || r.Height != primary.Height || r.Width != primary.Width {
			aug = p.transforms[s].Draw(p.random, r.Height, r.Width)
		}
		if err := p.transforms[s].Apply(r, aug, b.Stream(s).Slot(i)); err != nil {
			return err
		}
	}
	return nil
}

// skip zeroes slot i in every stream and accounts for err.
func (p *Prefetcher) skip(ctx context.Context, b *Batch, i int, err error) {
	b.invalidate(i)

	code := errors.ErrCodeInternal
	if appErr, ok := errors.AsAppError(err); ok {
		code = appErr.Code
	}
	switch code {
	case errors.ErrCodeDecode:
		p.stats.decodeErrors.Add(1)
	case errors.ErrCodeShapeMismatch:
		p.stats.shapeMismatches.Add(1)
	case errors.ErrCodeStorage:
		p.stats.storageErrors.Add(1)
	}
	p.metrics.RecordItemError(ctx, string(code))

	fields := logger.ErrorFields("fill", err)
	fields[logger.FieldSlot] = i
	fields[logger.FieldBatch] = p.seq
	fields[logger.FieldPath] = b.Examples[i].Primary
	p.log.Warn("could not load image", fields)
}
