package dump

import (
	"context"
	"fmt"
	"path"

	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/prefetch"
	"github.com/kbukum/datafeed/storage"
)

// Writer dumps every Display-th batch it is given. It is not safe for
// concurrent use.
type Writer struct {
	cfg     Config
	store   storage.ByteClient
	log     *logger.Logger
	runID   string
	counter int
}

// Option configures a Writer.
type Option func(*Writer)

// WithRunID names the run directory used when Config.PerRun is set.
func WithRunID(id string) Option {
	return func(w *Writer) { w.runID = id }
}

// NewWriter creates a writer uploading to store.
func NewWriter(cfg Config, store storage.ByteClient, log *logger.Logger, opts ...Option) *Writer {
	cfg.ApplyDefaults()
	w := &Writer{cfg: cfg, store: store, log: log.WithComponent("dump")}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Counter returns the number of batches seen so far.
func (w *Writer) Counter() int { return w.counter }

// Name returns the storage path of slot n of stream i at iteration it.
func (w *Writer) Name(it, n, i int) string {
	name := fmt.Sprintf("%s-it%d-batchid%d-bottom%d.jpg", w.cfg.FileName, it, n, i)
	if w.cfg.PerRun && w.runID != "" {
		dir, file := path.Split(name)
		return dir + w.runID + "/" + file
	}
	return name
}

// Write dumps b when the iteration counter is a multiple of Display, then
// advances the counter. Streams with other than one or three channels are
// skipped.
func (w *Writer) Write(ctx context.Context, b *prefetch.Batch) error {
	it := w.counter
	w.counter++
	if !w.cfg.Enabled || it%w.cfg.Display != 0 {
		return nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanBatchDump)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBatchSeq, b.Seq)

	files := 0
	for i, blob := range b.Blobs() {
		shape := blob.Shape()
		if shape.C != 1 && shape.C != 3 {
			w.log.Error(fmt.Sprintf("the image has %d channels instead of 1 or 3, skipping", shape.C),
				logger.Fields(logger.FieldStream, i))
			continue
		}
		t := w.cfg.transformation(i)
		for n := 0; n < shape.N; n++ {
			data, err := imaging.EncodeJPEG(blob.Slot(n), t.Upscale, t.MeanToAdd, w.cfg.Quality)
			if err != nil {
				observability.SetSpanError(ctx, err)
				return fmt.Errorf("encoding slot %d of stream %d: %w", n, i, err)
			}
			name := w.Name(it, n, i)
			if err := w.store.Upload(ctx, name, data); err != nil {
				observability.SetSpanError(ctx, err)
				return err
			}
			w.log.Debug("saved one batch slice", logger.Fields(logger.FieldPath, name))
			files++
		}
	}
	w.log.Info("dumped batch", logger.Fields(
		logger.FieldIteration, it,
		logger.FieldBatch, b.Seq,
		"files", files,
	))
	return nil
}
