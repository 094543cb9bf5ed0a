package main

import (
	"fmt"
	"time"

	"github.com/kbukum/datafeed/config"
	"github.com/kbukum/datafeed/dump"
	"github.com/kbukum/datafeed/observability"
	"github.com/kbukum/datafeed/prefetch"
	"github.com/kbukum/datafeed/status"
	"github.com/kbukum/datafeed/storage"
	"github.com/kbukum/datafeed/storage/s3"
	"github.com/kbukum/datafeed/validation"
)

// Config is the datafeed binary configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Storage   storage.Config       `yaml:"storage" mapstructure:"storage"`
	S3        s3.Config            `yaml:"s3" mapstructure:"s3"`
	Prefetch  prefetch.Config      `yaml:"prefetch" mapstructure:"prefetch"`
	Dump      dump.Config          `yaml:"dump" mapstructure:"dump"`
	Status    status.Config        `yaml:"status" mapstructure:"status"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`

	// Iterations is the number of batches to consume; 0 runs until
	// interrupted.
	Iterations int `yaml:"iterations" mapstructure:"iterations"`
	// StepDelay paces the consumer to simulate a training step.
	StepDelay time.Duration `yaml:"step_delay" mapstructure:"step_delay"`
	// LogEvery logs progress every n batches.
	LogEvery int `yaml:"log_every" mapstructure:"log_every"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Storage.Enabled = true
	c.Storage.ApplyDefaults()
	if c.Storage.Provider == storage.ProviderS3 {
		c.S3.ApplyDefaults()
	}
	c.Prefetch.ApplyDefaults()
	c.Dump.ApplyDefaults()
	c.Status.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.LogEvery == 0 {
		c.LogEvery = 100
	}
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.Provider == storage.ProviderS3 {
		if err := c.S3.Validate(); err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	}
	if err := c.Prefetch.Validate(); err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	if err := c.Dump.Validate(); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if err := validation.Validate(&c.Telemetry); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	v := validation.New().
		Min("iterations", c.Iterations, 0).
		Positive("log_every", float64(c.LogEvery)).
		Custom(c.StepDelay >= 0, "step_delay", "must not be negative")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// providerConfig returns the backend-specific config handed to the storage
// factory.
func (c *Config) providerConfig() any {
	if c.Storage.Provider == storage.ProviderS3 {
		return &c.S3
	}
	return nil
}
