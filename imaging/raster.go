package imaging

import (
	"fmt"
	"image"
	"image/draw"
)

// Raster is a decoded pixel grid with interleaved channels (HWC). Color
// rasters hold R, G, B in that order.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(height, width, channels int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, height*width*channels),
	}
}

// At returns the value of channel c at row h, column w.
func (r *Raster) At(h, w, c int) uint8 {
	return r.Pix[(h*r.Width+w)*r.Channels+c]
}

// Set stores v at row h, column w, channel c.
func (r *Raster) Set(h, w, c int, v uint8) {
	r.Pix[(h*r.Width+w)*r.Channels+c] = v
}

func (r *Raster) String() string {
	return fmt.Sprintf("%dx%dx%d", r.Channels, r.Height, r.Width)
}

// FromImage converts img into a raster, three channels when isColor is true
// and one luminance channel otherwise.
func FromImage(img image.Image, isColor bool) *Raster {
	b := img.Bounds()
	if isColor {
		rgba, ok := img.(*image.RGBA)
		if !ok || rgba.Rect.Min != (image.Point{}) {
			rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
		}
		r := NewRaster(b.Dy(), b.Dx(), 3)
		for y := 0; y < b.Dy(); y++ {
			src := rgba.Pix[y*rgba.Stride:]
			dst := r.Pix[y*b.Dx()*3:]
			for x := 0; x < b.Dx(); x++ {
				dst[x*3] = src[x*4]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+2]
			}
		}
		return r
	}

	gray, ok := img.(*image.Gray)
	if !ok || gray.Rect.Min != (image.Point{}) {
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)
	}
	r := NewRaster(b.Dy(), b.Dx(), 1)
	for y := 0; y < b.Dy(); y++ {
		copy(r.Pix[y*b.Dx():(y+1)*b.Dx()], gray.Pix[y*gray.Stride:])
	}
	return r
}

// Image returns the raster as an image.Image. Rasters with other than one or
// three channels cannot be represented.
func (r *Raster) Image() (image.Image, error) {
	switch r.Channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
		copy(img.Pix, r.Pix)
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
		for i := 0; i < r.Width*r.Height; i++ {
			img.Pix[i*4] = r.Pix[i*3]
			img.Pix[i*4+1] = r.Pix[i*3+1]
			img.Pix[i*4+2] = r.Pix[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	default:
		return nil, fmt.Errorf("imaging: %d channels cannot be rendered, want 1 or 3", r.Channels)
	}
}
