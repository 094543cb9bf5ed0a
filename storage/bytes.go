package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kbukum/datafeed/errors"
)

// ByteClient provides a []byte-oriented view of a Storage. Errors are
// translated into AppErrors.
type ByteClient interface {
	// Upload stores data at the given path.
	Upload(ctx context.Context, path string, data []byte) error

	// Download retrieves data from the given path.
	Download(ctx context.Context, path string) ([]byte, error)

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}

type byteAdapter struct {
	storage Storage
	maxSize int64
}

// NewByteClient wraps s with []byte convenience methods. Downloads larger
// than maxSize fail; maxSize <= 0 disables the limit.
func NewByteClient(s Storage, maxSize int64) ByteClient {
	return &byteAdapter{storage: s, maxSize: maxSize}
}

func (a *byteAdapter) Upload(ctx context.Context, path string, data []byte) error {
	return Translate("upload", path, a.storage.Upload(ctx, path, bytes.NewReader(data)))
}

func (a *byteAdapter) Download(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.storage.Download(ctx, path)
	if err != nil {
		return nil, Translate("download", path, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if a.maxSize > 0 {
		r = io.LimitReader(rc, a.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Translate("download", path, err)
	}
	if a.maxSize > 0 && int64(len(data)) > a.maxSize {
		tooLarge := errors.StorageError("download", path, fmt.Errorf("object exceeds %d bytes", a.maxSize))
		tooLarge.Retryable = false
		return nil, tooLarge
	}
	return data, nil
}

func (a *byteAdapter) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := a.storage.Exists(ctx, path)
	return ok, Translate("exists", path, err)
}
