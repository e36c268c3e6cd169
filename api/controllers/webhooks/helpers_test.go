package webhooks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	internalwebhooks "github.com/angelmondragon/autopay-bridge/internal/webhooks"
)

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{
		data: make(map[string]string),
	}
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("autopay:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *inMemoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func newGuard(t *testing.T, store *inMemoryStore, scope string) *internalwebhooks.IdempotencyGuard {
	t.Helper()
	guard, err := internalwebhooks.NewIdempotencyGuard(store, time.Minute, scope)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	return guard
}

type recordingMetrics struct {
	mu       sync.Mutex
	observed []string
}

func (m *recordingMetrics) Observe(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, source+":"+outcome)
}

func (m *recordingMetrics) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.observed) == 0 {
		return ""
	}
	return m.observed[len(m.observed)-1]
}
