// Command datafeed runs the prefetch pipeline against a manifest and
// consumes batches the way a training loop would.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/datafeed/bootstrap"
	"github.com/kbukum/datafeed/config"
	"github.com/kbukum/datafeed/dump"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/pipeline"
	"github.com/kbukum/datafeed/prefetch"
	"github.com/kbukum/datafeed/sse"
	"github.com/kbukum/datafeed/status"
	"github.com/kbukum/datafeed/storage"
	_ "github.com/kbukum/datafeed/storage/local"
	_ "github.com/kbukum/datafeed/storage/memory"
	_ "github.com/kbukum/datafeed/storage/s3"
	"github.com/kbukum/datafeed/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "datafeed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("datafeed", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to the config file")
	envFile := flags.String("env", "", "path to a .env file")
	iterations := flags.Int("iterations", -1, "batches to consume (0 runs until interrupted)")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version.Full())
		return nil
	}

	var cfg Config
	opts := []config.LoaderOption{config.WithEnvPrefix("DATAFEED")}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig("datafeed", &cfg, opts...); err != nil {
		return err
	}
	if *iterations >= 0 {
		cfg.Iterations = *iterations
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	return serve(context.Background(), app)
}

// serve wires storage, the prefetcher and the status server into app and
// runs the consumer loop.
func serve(ctx context.Context, app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger

	shutdown, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, version.Short(), cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry_shutdown", err))
		}
	}()

	metrics, err := observability.NewPipelineMetrics(observability.Meter())
	if err != nil {
		return err
	}

	store := storage.NewComponent(cfg.Storage, cfg.providerConfig(), log)
	store.SetMetrics(metrics)
	if err := app.RegisterComponent(store); err != nil {
		return err
	}

	p, err := prefetch.New(cfg.Prefetch,
		prefetch.ImageOpener(cfg.Prefetch, store.Bytes, prefetch.WithOpenerLogger(log)),
		prefetch.WithLogger(log),
		prefetch.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(p); err != nil {
		return err
	}

	var events sse.Publisher
	if cfg.Status.Enabled {
		hub := sse.NewComponent("/events", log)
		if err := app.RegisterComponent(hub); err != nil {
			return err
		}
		srv := status.New(cfg.Status, cfg.Name, app.Components, func() any { return p.Stats() }, log,
			status.WithEvents(hub.Hub()))
		if err := app.RegisterComponent(srv); err != nil {
			return err
		}
		events = hub.Hub()
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		return consume(ctx, cfg, p, store, events, log)
	})
}

// step is what the consumer loop keeps of each batch.
type step struct {
	seq      int64
	epoch    int
	filled   int
	size     int
	fillTime time.Duration
}

// consume pulls cfg.Iterations batches, dumping them when enabled and
// publishing progress to events when it is set.
func consume(ctx context.Context, cfg *Config, p *prefetch.Prefetcher, store *storage.Component, events sse.Publisher, log *logger.Logger) error {
	publish := func(eventType string, data any) {
		if events == nil {
			return
		}
		if err := events.Publish(eventType, data); err != nil {
			log.Debug("event not published", logger.Fields("type", eventType, logger.FieldError, err.Error()))
		}
	}

	batches := pipeline.From[*prefetch.Batch](p.Batches(cfg.Iterations))

	if cfg.Dump.Enabled {
		w := dump.NewWriter(cfg.Dump, store.Bytes(), log, dump.WithRunID(p.RunID()))
		batches = pipeline.Tap(batches, func(ctx context.Context, b *prefetch.Batch) error {
			return w.Write(ctx, b)
		})
	}
	// a batch is only valid until the next pull, so keep what progress needs
	steps := pipeline.Map(batches, func(_ context.Context, b *prefetch.Batch) (step, error) {
		return step{seq: b.Seq, epoch: b.Epoch, filled: b.Filled(), size: b.Size(), fillTime: b.FillTime}, nil
	})
	steps = pipeline.Pace(steps, cfg.StepDelay)

	start := time.Now()
	var n, filled int
	epoch := -1
	err := pipeline.ForEach(ctx, steps, func(_ context.Context, s step) error {
		n++
		filled += s.filled
		if s.epoch != epoch {
			epoch = s.epoch
			publish(sse.EventEpoch, sse.EpochEvent{Epoch: s.epoch, Seq: s.seq})
		}
		publish(sse.EventBatch, sse.BatchEvent{
			Iteration: n,
			Seq:       s.seq,
			Epoch:     s.epoch,
			Filled:    s.filled,
			Size:      s.size,
			FillTime:  s.fillTime,
		})
		if n%cfg.LogEvery == 0 {
			log.Info("consumed batches", logger.Fields("iteration", n, "seq", s.seq, "epoch", s.epoch))
		}
		return nil
	})
	elapsed := time.Since(start)

	st := p.Stats()
	fields := logger.Fields(
		"batches", n,
		"examples", filled,
		"elapsed", elapsed.String(),
		"skipped", st.ItemsSkipped,
		"epochs", st.Epochs,
		"consumer_wait", st.ConsumerWait.String(),
	)
	finished := sse.FinishedEvent{Batches: n, Examples: filled, Elapsed: elapsed.String()}
	if secs := elapsed.Seconds(); secs > 0 {
		finished.Rate = float64(filled) / secs
		fields["examples_per_sec"] = finished.Rate
	}
	if err != nil {
		finished.Error = err.Error()
	}
	log.Info("run finished", fields)
	publish(sse.EventFinished, finished)

	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
