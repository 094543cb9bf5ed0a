package prefetch

import (
	"fmt"

	"github.com/kbukum/datafeed/imaging"
	"github.com/kbukum/datafeed/util"
	"github.com/kbukum/datafeed/validation"
)

// SkipPolicy decides how rand_skip moves the starting cursor.
type SkipPolicy string

const (
	// SkipRandom starts at a random offset below rand_skip.
	SkipRandom SkipPolicy = "random"
	// SkipExact starts at rand_skip itself.
	SkipExact SkipPolicy = "exact"
)

// Defaults.
const (
	DefaultFetchAttempts = 3
	DefaultSkipPolicy    = SkipRandom
)

// TransformSection configures augmentation and normalization of the
// primary stream.
type TransformSection struct {
	Mirror                bool `mapstructure:"mirror" json:"mirror"`
	imaging.Normalization `mapstructure:",squash"`
}

// Config configures a Prefetcher and the image source behind it.
type Config struct {
	// ManifestPath locates the manifest in storage.
	ManifestPath string `mapstructure:"manifest_path" json:"manifest_path" validate:"required"`
	// LabelStreamCount is K, the number of label paths per line.
	LabelStreamCount int `mapstructure:"label_stream_count" json:"label_stream_count" validate:"gte=0"`
	BatchSize        int `mapstructure:"batch_size" json:"batch_size" validate:"gt=0"`
	// NewHeight and NewWidth force the decode size; both zero keeps the
	// natural size.
	NewHeight int   `mapstructure:"new_height" json:"new_height" validate:"gte=0"`
	NewWidth  int   `mapstructure:"new_width" json:"new_width" validate:"gte=0"`
	IsColor   *bool `mapstructure:"is_color" json:"is_color"`
	// CropSize overrides the spatial batch shape when positive.
	CropSize int  `mapstructure:"crop_size" json:"crop_size" validate:"gte=0"`
	Shuffle  bool `mapstructure:"shuffle" json:"shuffle"`
	RandSkip int  `mapstructure:"rand_skip" json:"rand_skip" validate:"gte=0"`
	// RootFolder is prepended verbatim to every manifest path.
	RootFolder string `mapstructure:"root_folder" json:"root_folder"`
	// Seed pins the random source; nil derives one from the process.
	Seed *uint64 `mapstructure:"seed" json:"seed,omitempty"`

	SkipPolicy SkipPolicy       `mapstructure:"skip_policy" json:"skip_policy" validate:"omitempty,oneof=random exact"`
	Phase      imaging.Phase    `mapstructure:"phase" json:"phase" validate:"omitempty,oneof=train test"`
	Transform  TransformSection `mapstructure:"transform" json:"transform"`
	// LabelTransform overrides normalization for label streams.
	LabelTransform *imaging.Normalization `mapstructure:"label_transform" json:"label_transform,omitempty"`
	// IndependentAugmentation draws mirror and crop separately per stream
	// instead of once per example.
	IndependentAugmentation bool `mapstructure:"independent_augmentation" json:"independent_augmentation"`
	// FetchAttempts bounds storage reads per object, including the first.
	FetchAttempts int `mapstructure:"fetch_attempts" json:"fetch_attempts" validate:"gte=0"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.IsColor == nil {
		c.IsColor = util.Ptr(true)
	}
	if c.SkipPolicy == "" {
		c.SkipPolicy = DefaultSkipPolicy
	}
	if c.Phase == "" {
		c.Phase = imaging.PhaseTrain
	}
	if c.FetchAttempts == 0 {
		c.FetchAttempts = DefaultFetchAttempts
	}
}

// Validate checks field ranges and cross-field rules. Errors are
// INVALID_CONFIG with per-field details.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(c))
	v.Pair("new_height", c.NewHeight, "new_width", c.NewWidth)
	v.LenIn("transform.mean_values", len(c.Transform.MeanValues), 1, 3)
	if c.LabelTransform != nil {
		v.LenIn("label_transform.mean_values", len(c.LabelTransform.MeanValues), 1, 3)
	}
	if c.CropSize > 0 && c.NewHeight > 0 {
		v.Custom(c.CropSize <= c.NewHeight && c.CropSize <= c.NewWidth, "crop_size",
			fmt.Sprintf("must not exceed new_height x new_width (%dx%d)", c.NewHeight, c.NewWidth))
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Streams returns the number of streams per example, 1+K.
func (c *Config) Streams() int { return 1 + c.LabelStreamCount }

// Color reports whether images decode as color. Unset means color.
func (c *Config) Color() bool { return util.DerefOr(c.IsColor, true) }

// PrimaryTransform returns the transform for the primary stream.
func (c *Config) PrimaryTransform() imaging.TransformConfig {
	return imaging.TransformConfig{
		CropSize:      c.CropSize,
		Mirror:        c.Transform.Mirror,
		Phase:         c.Phase,
		Normalization: c.Transform.Normalization,
	}
}

// LabelTransformConfig returns the transform for label streams. Crop and
// mirror always follow the primary stream.
func (c *Config) LabelTransformConfig() imaging.TransformConfig {
	t := c.PrimaryTransform()
	if c.LabelTransform != nil {
		t.Normalization = *c.LabelTransform
	}
	return t
}
