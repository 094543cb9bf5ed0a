package prefetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/rng"
	"github.com/kbukum/datafeed/tensor"
)

type state int32

const (
	stateNew state = iota
	stateRunning
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateRunning:
		return "running"
	default:
		return "closed"
	}
}

// Option configures a Prefetcher.
type Option func(*Prefetcher)

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Prefetcher) { p.log = l }
}

// WithMetrics records batch and item metrics on m.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(p *Prefetcher) { p.metrics = m }
}

// WithName sets the component name. The default is "prefetch".
func WithName(name string) Option {
	return func(p *Prefetcher) { p.name = name }
}

// setupInfo is published once Start succeeds and never changes after.
type setupInfo struct {
	indexSize int
	shapes    []string
}

// Prefetcher fills batches in a background worker while the consumer reads
// the previous one.
type Prefetcher struct {
	cfg     Config
	opener  Opener
	name    string
	log     *logger.Logger
	metrics *observability.PipelineMetrics
	runID   string
	seed    uint64

	// transforms holds one transformer per stream.
	transforms []*imaging.Transformer

	// Owned by Start, then by the worker goroutine.
	src    Source
	random rng.Source
	shapes []tensor.Shape
	seq    int64

	// free carries batches back to the worker, ready carries filled batches
	// to the consumer. Each holds at most one batch.
	free  chan *Batch
	ready chan *Batch

	lifecycle sync.Mutex
	state     atomic.Int32
	cancel    context.CancelFunc
	done      chan struct{}
	workerErr error

	consumer sync.Mutex
	held     *Batch

	info  atomic.Pointer[setupInfo]
	stats counters
}

// New validates cfg and creates a stopped Prefetcher. Nothing is read until
// Start.
func New(cfg Config, opener Opener, opts ...Option) (*Prefetcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opener == nil {
		return nil, errors.InvalidConfig("", "an opener is required")
	}

	p := &Prefetcher{
		cfg:    cfg,
		opener: opener,
		name:   "prefetch",
		log:    logger.GetGlobalLogger(),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent(p.name).WithFields(logger.Fields("run_id", p.runID))

	if cfg.Seed != nil {
		p.seed = *cfg.Seed
	} else {
		p.seed = rng.DefaultSeed()
	}

	p.transforms = make([]*imaging.Transformer, cfg.Streams())
	p.transforms[0] = imaging.NewTransformer(cfg.PrimaryTransform())
	for i := 1; i < len(p.transforms); i++ {
		p.transforms[i] = imaging.NewTransformer(cfg.LabelTransformConfig())
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Prefetcher) Config() Config { return p.cfg }

// RunID identifies this pipeline instance in logs, traces and dumps.
func (p *Prefetcher) RunID() string { return p.runID }

// Seed returns the seed of the pipeline's random source.
func (p *Prefetcher) Seed() uint64 { return p.seed }

// Start opens the source, fills the first batch synchronously, fixes the
// batch shapes and launches the worker. Any error is fatal and leaves the
// Prefetcher stopped.
func (p *Prefetcher) Start(ctx context.Context) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	switch state(p.state.Load()) {
	case stateRunning:
		return errors.Internal(fmt.Errorf("prefetcher already started"))
	case stateClosed:
		return errors.Closed()
	}

	// a failed earlier Start may have fixed shapes or counted batches
	p.src, p.shapes, p.seq = nil, nil, 0
	p.stats.reset()

	started := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineSetup)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, p.runID)

	p.random = rng.New(p.seed)
	src, err := p.opener(ctx, p.random)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	if src.Streams() != p.cfg.Streams() {
		err := errors.InvalidConfig("label_stream_count",
			fmt.Sprintf("source has %d streams, want %d", src.Streams(), p.cfg.Streams()))
		observability.SetSpanError(ctx, err)
		return err
	}
	p.src = src
	observability.SetSpanAttribute(ctx, observability.AttrIndexSize, src.Size())

	first := newBatch(p.cfg.BatchSize, nil)
	if err := p.fill(ctx, first); err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	if p.shapes == nil {
		err := errors.New(errors.ErrCodeEmptyIndex, "no example in the first batch could be decoded")
		observability.SetSpanError(ctx, err)
		return err
	}

	p.free = make(chan *Batch, 1)
	p.ready = make(chan *Batch, 1)
	p.ready <- first
	p.free <- newBatch(p.cfg.BatchSize, p.shapes)

	shapes := make([]string, len(p.shapes))
	for i, s := range p.shapes {
		shapes[i] = s.String()
	}
	p.info.Store(&setupInfo{indexSize: src.Size(), shapes: shapes})

	workerCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state.Store(int32(stateRunning))
	go p.run(workerCtx)

	p.log.Info("prefetcher started", logger.Fields(
		"seed", p.seed,
		"index_size", src.Size(),
		"streams", len(p.shapes),
		"shapes", strings.Join(shapes, " "),
		logger.FieldFilled, first.Filled(),
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	return nil
}

// run is the worker loop. It exits when the context is canceled or a fill
// fails for a reason other than a bad item.
func (p *Prefetcher) run(ctx context.Context) {
	defer close(p.done)
	for {
		var b *Batch
		select {
		case <-ctx.Done():
			return
		case b = <-p.free:
		}

		b.reset()
		if err := p.fill(ctx, b); err != nil {
			if ctx.Err() == nil {
				p.workerErr = err
				p.log.Error("prefetch worker stopped", logger.ErrorFields("fill", err))
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case p.ready <- b:
		}
	}
}

// NextBatch hands the previous batch back to the worker and blocks until the
// next filled batch is ready. Before Start it fails with NOT_READY, after
// Close with CLOSED. The returned batch stays valid until the next call.
func (p *Prefetcher) NextBatch(ctx context.Context) (*Batch, error) {
	switch state(p.state.Load()) {
	case stateNew:
		return nil, errors.NotReady()
	case stateClosed:
		return nil, errors.Closed()
	}

	p.consumer.Lock()
	defer p.consumer.Unlock()

	start := time.Now()
	if p.held != nil {
		select {
		case p.free <- p.held:
			p.held = nil
		case <-p.done:
			return nil, p.stoppedErr()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	select {
	case b := <-p.ready:
		if state(p.state.Load()) == stateClosed {
			return nil, errors.Closed()
		}
		wait := time.Since(start)
		p.held = b
		p.stats.consumed.Add(1)
		p.stats.consumerWait.Add(int64(wait))
		p.metrics.RecordWait(ctx, wait)
		return b, nil
	case <-p.done:
		return nil, p.stoppedErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Prefetcher) stoppedErr() error {
	if p.workerErr != nil {
		return p.workerErr
	}
	return errors.Closed()
}

// Close stops the worker and waits for it to exit. A fill in progress is
// abandoned after the current item. Close is idempotent.
func (p *Prefetcher) Close() error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	prev := state(p.state.Swap(int32(stateClosed)))
	if prev != stateRunning {
		return nil
	}
	p.cancel()
	<-p.done

	s := p.Stats()
	p.log.Info("prefetcher stopped", logger.Fields(
		"batches", s.Batches,
		"items_filled", s.ItemsFilled,
		"items_skipped", s.ItemsSkipped,
		"epochs", s.Epochs,
	))
	return nil
}

// Stats returns a snapshot of the pipeline counters. It is safe to call
// from any goroutine.
func (p *Prefetcher) Stats() Stats {
	s := Stats{
		RunID:   p.runID,
		State:   state(p.state.Load()).String(),
		Seed:    p.seed,
		Streams: p.cfg.Streams(),
	}
	if info := p.info.Load(); info != nil {
		s.IndexSize = info.indexSize
		s.Shapes = info.shapes
	}
	p.stats.snapshot(&s)
	return s
}
