package prefetch

import (
	"context"
	"fmt"

	"github.com/kbukum/datafeed/component"
)

var (
	_ component.Component   = (*Prefetcher)(nil)
	_ component.Describable = (*Prefetcher)(nil)
)

// Name implements component.Component.
func (p *Prefetcher) Name() string { return p.name }

// Stop closes the pipeline, giving up waiting for the worker when ctx ends.
func (p *Prefetcher) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		_ = p.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping prefetcher: %w", ctx.Err())
	}
}

// Health reports unhealthy before Start, after Close and once the worker has
// stopped on its own. A running pipeline whose last batch came out empty is
// degraded.
func (p *Prefetcher) Health(_ context.Context) component.Health {
	h := component.Health{Name: p.name, Status: component.StatusHealthy}
	switch state(p.state.Load()) {
	case stateNew:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
		return h
	case stateClosed:
		h.Status, h.Message = component.StatusUnhealthy, "closed"
		return h
	}
	select {
	case <-p.done:
		h.Status, h.Message = component.StatusUnhealthy, "worker stopped"
		if p.workerErr != nil {
			h.Message = fmt.Sprintf("worker stopped: %v", p.workerErr)
		}
		return h
	default:
	}
	if p.stats.lastFilled.Load() == 0 {
		h.Status, h.Message = component.StatusDegraded, "last batch had no valid examples"
	}
	return h
}

// Describe implements component.Describable.
func (p *Prefetcher) Describe() component.Description {
	return component.Description{
		Name: "Prefetch",
		Type: "pipeline",
		Details: fmt.Sprintf("manifest=%s batch=%d streams=%d shuffle=%t",
			p.cfg.ManifestPath, p.cfg.BatchSize, p.cfg.Streams(), p.cfg.Shuffle),
	}
}
