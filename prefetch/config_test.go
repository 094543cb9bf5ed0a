package prefetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/imaging"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{ManifestPath: "train.txt", BatchSize: 4}
	cfg.ApplyDefaults()

	assert.True(t, cfg.Color())
	assert.Equal(t, SkipRandom, cfg.SkipPolicy)
	assert.Equal(t, imaging.PhaseTrain, cfg.Phase)
	assert.Equal(t, DefaultFetchAttempts, cfg.FetchAttempts)
	assert.Equal(t, 1, cfg.Streams())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing manifest", func(c *Config) { c.ManifestPath = "" }, "manifest_path"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"negative labels", func(c *Config) { c.LabelStreamCount = -1 }, "label_stream_count"},
		{"height without width", func(c *Config) { c.NewHeight = 8 }, "new_height"},
		{"crop larger than resize", func(c *Config) { c.NewHeight, c.NewWidth, c.CropSize = 8, 8, 9 }, "crop_size"},
		{"two mean values", func(c *Config) { c.Transform.MeanValues = []float32{1, 2} }, "transform.mean_values"},
		{"label mean values", func(c *Config) {
			c.LabelTransform = &imaging.Normalization{MeanValues: []float32{1, 2, 3, 4}}
		}, "label_transform.mean_values"},
		{"unknown skip policy", func(c *Config) { c.SkipPolicy = "sometimes" }, "skip_policy"},
		{"unknown phase", func(c *Config) { c.Phase = "eval" }, "phase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ManifestPath: "train.txt", BatchSize: 4}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			appErr, ok := errors.AsAppError(err)
			if assert.True(t, ok, "got %v", err) {
				assert.Equal(t, errors.ErrCodeInvalidConfig, appErr.Code)
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestConfig_Transforms(t *testing.T) {
	cfg := Config{
		CropSize: 4,
		Phase:    imaging.PhaseTest,
		Transform: TransformSection{
			Mirror:        true,
			Normalization: imaging.Normalization{Scale: 0.5, MeanValues: []float32{1}},
		},
	}
	primary := cfg.PrimaryTransform()
	assert.Equal(t, 4, primary.CropSize)
	assert.True(t, primary.Mirror)
	assert.Equal(t, float32(0.5), primary.Scale)

	assert.Equal(t, primary, cfg.LabelTransformConfig())

	cfg.LabelTransform = &imaging.Normalization{Scale: 2}
	label := cfg.LabelTransformConfig()
	assert.Equal(t, float32(2), label.Scale)
	assert.Empty(t, label.MeanValues)
	assert.True(t, label.Mirror)
	assert.Equal(t, imaging.PhaseTest, label.Phase)
}
