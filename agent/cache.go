package agent

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
)

// Cache is a key-value store for checkpoints.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Codec turns cached values into bytes and back.
type Codec[S any] interface {
	Encode(val S) ([]byte, error)
	Decode(data []byte) (S, error)
}

// SonicCodec encodes values as JSON.
type SonicCodec[S any] struct{}

func (SonicCodec[S]) Encode(val S) ([]byte, error) {
	return sonic.Marshal(val)
}

func (SonicCodec[S]) Decode(data []byte) (S, error) {
	var val S
	err := sonic.Unmarshal(data, &val)
	return val, err
}

// MemoryCache keeps encoded values in process, so a stored value never
// aliases the one the caller keeps working on.
type MemoryCache[S any] struct {
	mu    sync.RWMutex
	m     map[string][]byte
	codec Codec[S]
}

func NewMemoryCache[S any](codec Codec[S]) *MemoryCache[S] {
	if codec == nil {
		codec = SonicCodec[S]{}
	}
	return &MemoryCache[S]{m: map[string][]byte{}, codec: codec}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	data, err := m.codec.Encode(val)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.m[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	data, ok := m.m[key]
	m.mu.RUnlock()
	if !ok {
		var zero S
		return zero, false, nil
	}
	val, err := m.codec.Decode(data)
	if err != nil {
		var zero S
		return zero, false, err
	}
	return val, true, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.m[key]
	m.mu.RUnlock()
	return ok, nil
}

// Keys returns the stored keys.
func (m *MemoryCache[S]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	return keys
}
