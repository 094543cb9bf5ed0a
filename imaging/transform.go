package imaging

import (
	"fmt"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/rng"
	"github.com/kbukum/datafeed/tensor"
)

// Phase selects how crop offsets are drawn.
type Phase string

const (
	// PhaseTrain draws random crop offsets.
	PhaseTrain Phase = "train"
	// PhaseTest uses the center crop.
	PhaseTest Phase = "test"
)

// Normalization maps a pixel p of channel c to (p - mean[c]) * scale.
type Normalization struct {
	// Scale multiplies the mean-subtracted value. Zero means 1.
	Scale float32 `mapstructure:"scale" json:"scale"`
	// MeanValues holds one value for all channels or one per channel.
	MeanValues []float32 `mapstructure:"mean_values" json:"mean_values"`
}

func (n Normalization) scale() float32 {
	if n.Scale == 0 {
		return 1
	}
	return n.Scale
}

func (n Normalization) mean(c int) float32 {
	switch len(n.MeanValues) {
	case 0:
		return 0
	case 1:
		return n.MeanValues[0]
	}
	if c < len(n.MeanValues) {
		return n.MeanValues[c]
	}
	return 0
}

// TransformConfig configures a Transformer.
type TransformConfig struct {
	CropSize int
	Mirror   bool
	Phase    Phase
	Normalization
}

// Augmentation is one random draw: whether to mirror and where to crop.
type Augmentation struct {
	Mirror bool
	OffH   int
	OffW   int
}

// Transformer writes rasters into tensor slots.
type Transformer struct {
	cfg TransformConfig
}

// NewTransformer creates a transformer. An empty phase means train.
func NewTransformer(cfg TransformConfig) *Transformer {
	if cfg.Phase == "" {
		cfg.Phase = PhaseTrain
	}
	return &Transformer{cfg: cfg}
}

// Config returns the transformer's configuration.
func (t *Transformer) Config() TransformConfig { return t.cfg }

// OutputShape returns the slot dimensions for a raster of the given size.
// A positive crop size overrides the spatial dimensions.
func (t *Transformer) OutputShape(r *Raster) (c, h, w int) {
	if t.cfg.CropSize > 0 {
		return r.Channels, t.cfg.CropSize, t.cfg.CropSize
	}
	return r.Channels, r.Height, r.Width
}

// Validate reports whether the normalization fits rasters with the given
// number of channels.
func (t *Transformer) Validate(channels int) error {
	if n := len(t.cfg.MeanValues); n > 1 && n != channels {
		return errors.InvalidConfig("mean_values",
			fmt.Sprintf("%d values for %d channels; specify 1 or one per channel", n, channels))
	}
	return nil
}

// Draw takes an augmentation for a height x width raster from src. The mirror
// flag is drawn first, then the crop offsets. Test crops are centered and
// draw nothing.
func (t *Transformer) Draw(src rng.Source, height, width int) Augmentation {
	var aug Augmentation
	if t.cfg.Mirror {
		aug.Mirror = src.IntN(2) == 1
	}
	crop := t.cfg.CropSize
	if crop <= 0 || height < crop || width < crop {
		return aug
	}
	if t.cfg.Phase == PhaseTrain {
		aug.OffH = src.IntN(height - crop + 1)
		aug.OffW = src.IntN(width - crop + 1)
	} else {
		aug.OffH = (height - crop) / 2
		aug.OffW = (width - crop) / 2
	}
	return aug
}

// Check verifies that r can fill a slot of the batch shape want. With a crop
// the channels must match and the raster must be at least crop sized;
// otherwise channels and size must match exactly.
func (t *Transformer) Check(r *Raster, stream int, want tensor.Shape) error {
	ok := r.Channels == want.C
	if t.cfg.CropSize > 0 {
		ok = ok && r.Height >= want.H && r.Width >= want.W
	} else {
		ok = ok && r.Height == want.H && r.Width == want.W
	}
	if !ok {
		return errors.ShapeMismatch(stream, fmt.Sprintf("%dx%dx%d", want.C, want.H, want.W), r)
	}
	return nil
}

// Apply writes r into slot in CHW order using aug. The slot must match the
// output shape for r and aug must fit inside r.
func (t *Transformer) Apply(r *Raster, aug Augmentation, slot tensor.Slot) error {
	if r.Channels != slot.C || aug.OffH+slot.H > r.Height || aug.OffW+slot.W > r.Width || aug.OffH < 0 || aug.OffW < 0 {
		return fmt.Errorf("imaging: raster %v at offset (%d,%d) does not cover slot %dx%dx%d",
			r, aug.OffH, aug.OffW, slot.C, slot.H, slot.W)
	}
	scale := t.cfg.scale()
	for c := 0; c < slot.C; c++ {
		mean := t.cfg.mean(c)
		for h := 0; h < slot.H; h++ {
			row := ((aug.OffH+h)*r.Width + aug.OffW) * r.Channels
			for w := 0; w < slot.W; w++ {
				dw := w
				if aug.Mirror {
					dw = slot.W - 1 - w
				}
				p := float32(r.Pix[row+w*r.Channels+c])
				slot.Set(c, h, dw, (p-mean)*scale)
			}
		}
	}
	return nil
}
