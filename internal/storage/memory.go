package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryUploader keeps uploaded objects in memory. Used in tests and when
// running without an object store.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryUploader builds an empty in-memory uploader.
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

// Upload stores the object bytes and returns a synthetic URL.
func (u *MemoryUploader) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return "memory://" + key, nil
}

// Object returns the stored bytes for key, if present.
func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	return data, ok
}
