package personalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// memoryStore is an in-memory Store that round-trips values through JSON
// like the SQLite store does.
type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	saves  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (m *memoryStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	m.saves++
	return nil
}

func (m *memoryStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	data, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: %w", ErrCorruptValue, err)
	}
	return true, nil
}

// put stores raw bytes under key, bypassing encoding.
func (m *memoryStore) put(key, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = []byte(raw)
}

func (m *memoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// failingStore rejects every operation.
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Save(ctx context.Context, key string, value any) error { return errStoreDown }

func (failingStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	return false, errStoreDown
}

func (failingStore) Remove(ctx context.Context, key string) error { return errStoreDown }
