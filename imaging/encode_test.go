package imaging

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/kbukum/datafeed/tensor"
)

func TestSlotRasterClampsAndTruncates(t *testing.T) {
	b := tensor.New(tensor.Shape{N: 1, C: 1, H: 1, W: 3})
	copy(b.Data(), []float32{-1, 0.5, 2})
	r := SlotRaster(b.Slot(0), 100, 10)
	if r.Pix[0] != 0 || r.Pix[1] != 60 || r.Pix[2] != 210 {
		t.Errorf("unexpected pixels %v", r.Pix)
	}

	copy(b.Data(), []float32{5, 5, 5})
	if r := SlotRaster(b.Slot(0), 100, 0); r.Pix[0] != 255 {
		t.Errorf("expected clamp to 255, got %d", r.Pix[0])
	}
}

func TestEncodeJPEG(t *testing.T) {
	b := tensor.New(tensor.Shape{N: 2, C: 3, H: 4, W: 6})
	data, err := EncodeJPEG(b.Slot(1), 1, 128, DefaultJPEGQuality)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}

	two := tensor.New(tensor.Shape{N: 1, C: 2, H: 1, W: 1})
	if _, err := EncodeJPEG(two.Slot(0), 1, 0, DefaultJPEGQuality); err == nil {
		t.Error("expected error for two channels")
	}
}
