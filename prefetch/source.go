package prefetch

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/datafeed/dataset"
	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/resilience"
	"github.com/kbukum/datafeed/rng"
	"github.com/kbukum/datafeed/storage"
)

// Item is one example decoded across every stream.
type Item struct {
	Example dataset.Example
	// Rasters holds the primary raster followed by one raster per label.
	Rasters []*imaging.Raster
}

// Source yields decoded examples in index order. Only the prefetch worker
// calls it.
type Source interface {
	// Streams returns 1+K.
	Streams() int
	// Next decodes the example at the cursor and advances it. A non-nil
	// error is recoverable for that item only; the cursor has already moved
	// and Item.Example still names the example.
	Next(ctx context.Context) (Item, error)
	// Epoch returns the number of completed passes.
	Epoch() int
	// Size returns the number of examples.
	Size() int
}

// Opener builds the Source at Start. src is the pipeline's only random
// source; the Source may keep it for shuffling.
type Opener func(ctx context.Context, src rng.Source) (Source, error)

// DecodeOptions are the decode parameters applied to every stream.
type DecodeOptions struct {
	RootFolder string
	Height     int
	Width      int
	IsColor    bool
}

// ImageSource decodes manifest examples with a Codec.
type ImageSource struct {
	index   *dataset.Index
	codec   imaging.Codec
	opts    DecodeOptions
	streams int
}

// NewImageSource creates a source over index. streams is 1+K.
func NewImageSource(index *dataset.Index, codec imaging.Codec, streams int, opts DecodeOptions) *ImageSource {
	return &ImageSource{index: index, codec: codec, opts: opts, streams: streams}
}

func (s *ImageSource) Streams() int { return s.streams }
func (s *ImageSource) Epoch() int   { return s.index.Epoch() }
func (s *ImageSource) Size() int    { return s.index.Size() }

// Next decodes the primary image, then each label. The first failure ends
// the item.
func (s *ImageSource) Next(ctx context.Context) (Item, error) {
	item := Item{Example: s.index.Next()}
	paths := item.Example.Paths(s.opts.RootFolder)
	if len(paths) != s.streams {
		return item, errors.Internal(fmt.Errorf("example has %d paths, want %d", len(paths), s.streams))
	}
	item.Rasters = make([]*imaging.Raster, len(paths))
	for i, p := range paths {
		r, err := s.codec.Decode(ctx, p, s.opts.Height, s.opts.Width, s.opts.IsColor)
		if err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				appErr.WithDetail("stream", i)
			}
			return item, err
		}
		item.Rasters[i] = r
	}
	return item, nil
}

// OpenerOption configures ImageOpener.
type OpenerOption func(*openerOptions)

type openerOptions struct {
	codec imaging.Codec
	log   *logger.Logger
}

// WithCodec replaces the storage-backed codec.
func WithCodec(c imaging.Codec) OpenerOption {
	return func(o *openerOptions) { o.codec = c }
}

// WithOpenerLogger sets the logger for setup messages.
func WithOpenerLogger(l *logger.Logger) OpenerOption {
	return func(o *openerOptions) { o.log = l }
}

// ImageOpener returns an Opener that loads cfg.ManifestPath through the
// client returned by store, shuffles when enabled and applies the skip
// policy. store is called at open time so it can follow a storage component
// started after the pipeline was built.
func ImageOpener(cfg Config, store func() storage.ByteClient, opts ...OpenerOption) Opener {
	o := &openerOptions{log: logger.GetGlobalLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return func(ctx context.Context, src rng.Source) (Source, error) {
		log := o.log.WithComponent("prefetch")
		bc := store()
		if bc == nil {
			return nil, errors.Internal(fmt.Errorf("storage is not started"))
		}

		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.FetchAttempts
		retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("retrying storage read", logger.Fields("attempt", attempt, logger.FieldError, err.Error(), "backoff", backoff.String()))
		}

		log.Info("opening manifest", logger.Fields(logger.FieldIndexSource, cfg.ManifestPath))
		examples, err := resilience.Retry(ctx, retry, func() ([]dataset.Example, error) {
			return dataset.Load(ctx, bc, cfg.ManifestPath, cfg.LabelStreamCount)
		})
		if err != nil {
			return nil, err
		}

		idx, err := dataset.NewIndex(examples, src, cfg.Shuffle)
		if err != nil {
			return nil, err
		}
		if cfg.Shuffle {
			log.Info("shuffling data")
			idx.Shuffle()
		}
		log.Info(fmt.Sprintf("a total of %d examples", idx.Size()))

		switch cfg.SkipPolicy {
		case SkipExact:
			if cfg.RandSkip > 0 {
				if err := idx.Seek(cfg.RandSkip); err != nil {
					return nil, err
				}
				log.Info(fmt.Sprintf("skipping first %d data points", cfg.RandSkip))
			}
		default:
			skip, err := idx.SkipAhead(cfg.RandSkip)
			if err != nil {
				return nil, err
			}
			if cfg.RandSkip > 0 {
				log.Info(fmt.Sprintf("skipping first %d data points", skip))
			}
		}

		codec := o.codec
		if codec == nil {
			codec = imaging.NewStdCodec(bc, imaging.WithRetry(retry))
		}
		return NewImageSource(idx, codec, cfg.Streams(), DecodeOptions{
			RootFolder: cfg.RootFolder,
			Height:     cfg.NewHeight,
			Width:      cfg.NewWidth,
			IsColor:    cfg.Color(),
		}), nil
	}
}
