package imaging

import (
	"bytes"
	"image/jpeg"
	"math"

	"github.com/kbukum/datafeed/tensor"
)

// DefaultJPEGQuality matches the usual libjpeg default.
const DefaultJPEGQuality = 95

// SlotRaster converts a slot back to 8-bit pixels with
// clamp(v*upscale + meanToAdd, 0, 255), truncating toward zero.
func SlotRaster(slot tensor.Slot, upscale, meanToAdd float64) *Raster {
	r := NewRaster(slot.H, slot.W, slot.C)
	for h := 0; h < slot.H; h++ {
		for w := 0; w < slot.W; w++ {
			for c := 0; c < slot.C; c++ {
				v := float64(slot.At(c, h, w))*upscale + meanToAdd
				r.Set(h, w, c, uint8(math.Min(255, math.Max(0, v))))
			}
		}
	}
	return r
}

// EncodeJPEG renders slot as a JPEG. Slots with other than one or three
// channels return an error.
func EncodeJPEG(slot tensor.Slot, upscale, meanToAdd float64, quality int) ([]byte, error) {
	img, err := SlotRaster(slot, upscale, meanToAdd).Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
