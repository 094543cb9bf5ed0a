package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/util"
)

// Component wraps Storage and implements component.Component for lifecycle management.
type Component struct {
	cfg         Config
	providerCfg any
	metrics     *observability.PipelineMetrics
	log         *logger.Logger

	mu      sync.RWMutex
	storage Storage
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log.WithComponent("storage"),
	}
}

// SetMetrics instruments downloads of the backend created by Start.
func (c *Component) SetMetrics(m *observability.PipelineMetrics) {
	c.metrics = m
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// Bytes returns a ByteClient over the started backend honoring max_file_size.
func (c *Component) Bytes() ByteClient {
	s := c.Storage()
	if s == nil {
		return nil
	}
	return NewByteClient(s, c.cfg.MaxBytes())
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage component is disabled")
		return nil
	}

	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.mu.Lock()
	c.storage = WithMetrics(s, c.cfg.Provider, c.metrics)
	c.mu.Unlock()
	return nil
}

// Stop releases the storage backend.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.storage = nil
	c.mu.Unlock()
	return nil
}

// Health returns the current health status of the storage component.
func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusHealthy,
			Message: "disabled",
		}
	}

	s := c.Storage()
	if s == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}

	if _, err := s.URL(ctx, ".health"); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s max_file_size=%s", c.cfg.Provider, util.FormatSize(c.cfg.MaxBytes()))
	switch {
	case c.cfg.Provider == ProviderLocal:
		details += fmt.Sprintf(" base_path=%s", c.cfg.BasePath)
	default:
		if bp, ok := c.providerCfg.(BucketDescriber); ok && bp.GetBucket() != "" {
			details += fmt.Sprintf(" bucket=%s", bp.GetBucket())
		}
	}

	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: details,
	}
}

// BucketDescriber is optionally implemented by provider configs that use a bucket.
type BucketDescriber interface {
	GetBucket() string
}
