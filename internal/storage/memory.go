package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryUploader keeps objects in process memory. Used in tests and local
// development without cloud credentials.
type MemoryUploader struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryUploader returns an empty in-memory Uploader.
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (u *MemoryUploader) key(bucket, object string) string {
	return bucket + "/" + object
}

func (u *MemoryUploader) Upload(_ context.Context, bucket, object string, data []byte, _ string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	u.objects[u.key(bucket, object)] = buf
	return u.PublicURL(bucket, object), nil
}

func (u *MemoryUploader) Remove(_ context.Context, bucket string, objects ...string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, object := range objects {
		delete(u.objects, u.key(bucket, object))
	}
	return nil
}

func (u *MemoryUploader) PublicURL(bucket, object string) string {
	return fmt.Sprintf("memory://%s/%s", bucket, object)
}

// Get returns a stored object's bytes, for test assertions.
func (u *MemoryUploader) Get(bucket, object string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	data, ok := u.objects[u.key(bucket, object)]
	return data, ok
}
