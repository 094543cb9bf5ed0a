package imaging

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/resilience"
	"github.com/kbukum/datafeed/storage"
)

// Codec decodes the image stored at path. Zero height and width keep the
// natural size; otherwise both are positive and the image is resized.
type Codec interface {
	Decode(ctx context.Context, path string, height, width int, isColor bool) (*Raster, error)
}

// StdCodec decodes png, jpeg, gif, bmp, tiff and webp images read through a
// storage.ByteClient.
type StdCodec struct {
	store storage.ByteClient
	retry resilience.RetryConfig
}

// CodecOption configures a StdCodec.
type CodecOption func(*StdCodec)

// WithRetry retries transient storage failures. Decode failures are never retried.
func WithRetry(cfg resilience.RetryConfig) CodecOption {
	return func(c *StdCodec) { c.retry = cfg }
}

// NewStdCodec creates a codec reading from store. Without WithRetry each
// object is read once.
func NewStdCodec(store storage.ByteClient, opts ...CodecOption) *StdCodec {
	c := &StdCodec{store: store, retry: resilience.RetryConfig{MaxAttempts: 1}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode reads and decodes path. Missing objects and undecodable data are
// DECODE_ERROR; exhausted storage retries are STORAGE_ERROR.
func (c *StdCodec) Decode(ctx context.Context, path string, height, width int, isColor bool) (*Raster, error) {
	data, err := resilience.Retry(ctx, c.retry, func() ([]byte, error) {
		return c.store.Download(ctx, path)
	})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, errors.DecodeError(path, err)
		}
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.DecodeError(path, err)
	}
	if height > 0 && width > 0 {
		img = Resize(img, height, width)
	}
	return FromImage(img, isColor), nil
}

// Resize scales img to height x width with bilinear interpolation.
func Resize(img image.Image, height, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}
