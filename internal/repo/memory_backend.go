package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type memoryDocument struct {
	body    []byte
	version int64
}

type MemoryBackend struct {
	docs map[string]memoryDocument
	mu   sync.RWMutex
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]memoryDocument)}
}

func (b *MemoryBackend) Read(_ context.Context, name string) ([]byte, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	d, ok := b.docs[name]
	if !ok {
		return nil, 0, nil
	}
	return slices.Clone(d.body), d.version, nil
}

func (b *MemoryBackend) Write(_ context.Context,
	name string, body []byte, version int64,
) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.docs[name]
	if current.version != version {
		return 0, fmt.Errorf("document %s: stored v%d, loaded v%d: %w",
			name, current.version, version, serviceerrs.ErrVersionConflict)
	}
	b.docs[name] = memoryDocument{body: slices.Clone(body), version: version + 1}
	return version + 1, nil
}

func (b *MemoryBackend) Ping(_ context.Context) error {
	return nil
}
