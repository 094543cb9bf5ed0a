package storage

import (
	"fmt"

	"github.com/kbukum/datafeed/util"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal  = "local"
	ProviderS3     = "s3"
	ProviderMemory = "memory"
)

// Default configuration values.
const (
	DefaultProvider    = ProviderLocal
	DefaultBasePath    = "."
	DefaultMaxFileSize = "64MB"
)

// Config holds storage configuration. Provider-specific settings (e.g.
// s3.Config) are passed separately to New.
type Config struct {
	// Enabled controls whether the storage component is active.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Provider selects the storage backend: "local", "s3" or "memory".
	Provider string `mapstructure:"provider" json:"provider"`

	// BasePath is the root directory for local storage. Absolute object
	// paths bypass it.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// MaxFileSize caps the bytes read for a single object, e.g. "64MB".
	MaxFileSize string `mapstructure:"max_file_size" json:"max_file_size"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	if n, err := util.ParseSize(c.MaxFileSize); err != nil || n <= 0 {
		return fmt.Errorf("storage: max_file_size must be a positive size (got %q)", c.MaxFileSize)
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return fmt.Errorf("storage: base_path is required for local provider")
		}
	case ProviderS3, ProviderMemory:
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}

// MaxBytes returns MaxFileSize in bytes, falling back to the default when it
// does not parse.
func (c *Config) MaxBytes() int64 {
	n, err := util.ParseSize(c.MaxFileSize)
	if err != nil || n <= 0 {
		n, _ = util.ParseSize(DefaultMaxFileSize)
	}
	return n
}
