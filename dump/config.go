package dump

import (
	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/validation"
)

// Transformation maps a stream's values back to pixels as
// clamp(v*upscale + mean_to_add, 0, 255).
type Transformation struct {
	Upscale   float64 `mapstructure:"upscale" json:"upscale"`
	MeanToAdd float64 `mapstructure:"mean_to_add" json:"mean_to_add"`
}

// Config configures the batch dump.
type Config struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// FileName is the storage path prefix of every dumped image.
	FileName string `mapstructure:"file_name" json:"file_name" validate:"required_if=Enabled true"`
	// Display writes every Display-th batch.
	Display int `mapstructure:"display" json:"display" validate:"gte=0"`
	Quality int `mapstructure:"quality" json:"quality" validate:"gte=0,lte=100"`
	// PerRun places each run's images under a directory named by the run id.
	PerRun bool `mapstructure:"per_run" json:"per_run"`
	// Transformations holds one entry per stream; streams past the end use
	// the last entry.
	Transformations []Transformation `mapstructure:"transformations" json:"transformations"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Display <= 0 {
		c.Display = 1
	}
	if c.Quality == 0 {
		c.Quality = imaging.DefaultJPEGQuality
	}
	if len(c.Transformations) == 0 {
		c.Transformations = []Transformation{{Upscale: 1}}
	}
}

// Validate checks the configuration. A disabled dump is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}

func (c *Config) transformation(stream int) Transformation {
	return c.Transformations[min(len(c.Transformations)-1, stream)]
}
