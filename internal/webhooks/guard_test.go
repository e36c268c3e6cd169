package webhooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]time.Duration{}}
}

func (s *memoryStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = ttl
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("autopay:idempotency:%s:%s", scope, id)
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func TestIdempotencyGuardClaimsOnce(t *testing.T) {
	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "razorpay")
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "payment.captured:pay_1")
	if err != nil || seen {
		t.Fatalf("expected first claim, seen=%v err=%v", seen, err)
	}
	seen, err = guard.CheckAndMark(ctx, "payment.captured:pay_1")
	if err != nil || !seen {
		t.Fatalf("expected duplicate, seen=%v err=%v", seen, err)
	}
	if ttl := store.data["autopay:idempotency:razorpay:payment.captured:pay_1"]; ttl != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", ttl)
	}

	if err := guard.Delete(ctx, "payment.captured:pay_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, _ = guard.CheckAndMark(ctx, "payment.captured:pay_1")
	if seen {
		t.Fatalf("expected released key to be claimable")
	}
}

func TestIdempotencyGuardConcurrentClaims(t *testing.T) {
	guard, _ := NewIdempotencyGuard(newMemoryStore(), time.Hour, "razorpay")
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen, err := guard.CheckAndMark(context.Background(), "pay_1")
			if err == nil && !seen {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestIdempotencyGuardErrors(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Hour, "x"); err == nil {
		t.Fatalf("expected nil store error")
	}
	store := newMemoryStore()
	store.err = errors.New("redis down")
	guard, _ := NewIdempotencyGuard(store, time.Hour, "x")
	if _, err := guard.CheckAndMark(context.Background(), "k"); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatalf("expected empty key error")
	}
}
