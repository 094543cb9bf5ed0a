// Package memory provides an in-process storage backend. It is registered
// as provider "memory" and doubles as a lifecycle component in tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ storage.Config, _ any, _ *logger.Logger) (storage.Storage, error) {
		return New(), nil
	})
}

type memFile struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Storage is a storage.Storage backed by a map. It is safe for concurrent use.
type Storage struct {
	mu    sync.RWMutex
	files map[string]*memFile
	fail  map[string]error
}

var (
	_ storage.Storage     = (*Storage)(nil)
	_ component.Component = (*Storage)(nil)
)

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		files: make(map[string]*memFile),
		fail:  make(map[string]error),
	}
}

// Put stores data at path.
func (s *Storage) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = &memFile{
		data:        append([]byte(nil), data...),
		contentType: mime.TypeByExtension(filepath.Ext(path)),
		modTime:     time.Now(),
	}
}

// FailOn makes downloads of path return err until cleared with a nil err.
func (s *Storage) FailOn(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, path)
		return
	}
	s.fail[path] = err
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Reset removes every object and injected failure.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*memFile)
	s.fail = make(map[string]error)
}

// --- component.Component ---

func (s *Storage) Name() string { return "storage-memory" }

func (s *Storage) Start(_ context.Context) error { return nil }

func (s *Storage) Stop(_ context.Context) error {
	s.Reset()
	return nil
}

func (s *Storage) Health(_ context.Context) component.Health {
	return component.Health{Name: s.Name(), Status: component.StatusHealthy, Message: fmt.Sprintf("%d objects", s.Len())}
}

// --- storage.Storage ---

func (s *Storage) Upload(_ context.Context, path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}
	s.Put(path, data)
	return nil
}

func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.fail[path]; ok {
		return nil, err
	}
	f, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("memory: %s: %w", path, storage.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (s *Storage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok, nil
}

func (s *Storage) URL(_ context.Context, path string) (string, error) {
	return "mem://" + path, nil
}

func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []storage.FileInfo
	for path, f := range s.files {
		if strings.HasPrefix(path, prefix) {
			result = append(result, storage.FileInfo{
				Path:         path,
				Size:         int64(len(f.data)),
				LastModified: f.modTime,
				ContentType:  f.contentType,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}
