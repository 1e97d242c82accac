// Package kvbackend provides the key-value backends records are persisted
// in.
package kvbackend

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudleakage/cloudleakage/storage"
)

// Memory keeps key-value pairs in process memory. Nothing is persisted so it
// is only suitable for tests. The zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// Put creates or updates a value.
func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

// Get returns the value for key, or storage.ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, storage.ErrNotFound
}

// Delete removes key. Returns storage.ErrNotFound if it was not set.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// Scan returns every key-value pair whose key starts with prefix.
func (m *Memory) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make(map[string][]byte)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			matched[k] = v
		}
	}
	return matched, nil
}
