// Package storage defines the blob-store collaborator boundary. The core
// never depends on a concrete object store, only on these two call shapes.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the contract an object-storage backend must satisfy.
type BlobStore interface {
	// Put stores the bytes under objectKey and returns the public URL.
	Put(ctx context.Context, objectKey, contentType string, data []byte) (publicURL string, err error)
	// PresignPut issues a write URL a client can upload to directly,
	// valid for ttl.
	PresignPut(ctx context.Context, objectKey, contentType string, ttl time.Duration) (writeURL string, err error)
}

// ObjectKey builds a random object key preserving the original extension.
func ObjectKey(fileName string) string {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		key += fileName[i:]
	}
	return key
}

// MemoryBlobStore keeps objects in memory. Used in tests and local dev where
// no object store is available.
type MemoryBlobStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryBlobStore(baseURL string) *MemoryBlobStore {
	return &MemoryBlobStore{BaseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Put(_ context.Context, objectKey, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[objectKey] = buf
	return m.url(objectKey), nil
}

func (m *MemoryBlobStore) PresignPut(_ context.Context, objectKey, _ string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s?expires=%d", m.url(objectKey), time.Now().Add(ttl).Unix()), nil
}

// Get returns a stored object; test helper.
func (m *MemoryBlobStore) Get(objectKey string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectKey]
	return data, ok
}

func (m *MemoryBlobStore) url(objectKey string) string {
	return strings.TrimSuffix(m.BaseURL, "/") + "/" + objectKey
}
