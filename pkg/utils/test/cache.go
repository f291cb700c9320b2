package testutils

import (
	"context"
	"time"

	"github.com/papercomputeco/mnemo/pkg/cache"
)

// MockCache is an in-memory cache that records hits and misses.
type MockCache struct {
	Values map[string][]byte

	// Hits counts Get calls that found a value.
	Hits int

	// Misses counts Get calls that found nothing.
	Misses int

	// SetCalls counts SetWithTTL invocations.
	SetCalls int

	// Fail causes every operation to report the backend as unavailable.
	Fail bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		Values: make(map[string][]byte),
	}
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.Fail {
		return nil, cache.ErrUnavailable
	}

	if value, ok := m.Values[key]; ok {
		m.Hits++
		return value, nil
	}

	m.Misses++
	return nil, cache.ErrMiss
}

func (m *MockCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.SetCalls++
	if m.Fail {
		return cache.ErrUnavailable
	}

	m.Values[key] = value
	return nil
}

func (m *MockCache) Stats(_ context.Context) (cache.Stats, error) {
	if m.Fail {
		return cache.Stats{}, cache.ErrUnavailable
	}
	return cache.Stats{Hits: uint64(m.Hits), Misses: uint64(m.Misses)}, nil
}

func (m *MockCache) Ping(_ context.Context) error {
	if m.Fail {
		return cache.ErrUnavailable
	}
	return nil
}

func (m *MockCache) Close() error {
	return nil
}
