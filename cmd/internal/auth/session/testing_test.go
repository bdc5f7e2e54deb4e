package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"avian/cmd/security/token"
)

var (
	testSignKey  = []byte("test-signing-key-0123456789abcdef")
	testStoreKey = []byte("test-store-key-0123456789abcdef!!")
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingStore records calls and can be switched into failure mode.
type countingStore struct {
	Store

	mu      sync.Mutex
	fail    error
	loads   int
	saves   int
	touches int
	deletes int
}

func (s *countingStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *countingStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	s.loads++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return s.Store.Load(ctx, id)
}

func (s *countingStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	s.saves++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return fail
	}
	return s.Store.Save(ctx, rec)
}

func (s *countingStore) Touch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	s.touches++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return fail
	}
	return s.Store.Touch(ctx, id, at)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return fail
	}
	return s.Store.Delete(ctx, id)
}

var errBackendDown = errors.New("backend down")

func newTestManager(t *testing.T, store Store, clk *clock, opts ...Option) *Manager {
	t.Helper()

	codec, err := NewCodec(testStoreKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	signer, err := token.NewSigner(32, testSignKey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	switch st := store.(type) {
	case *MemoryStore:
		st.now = clk.Now
	case *countingStore:
		if mem, ok := st.Store.(*MemoryStore); ok {
			mem.now = clk.Now
		}
	}
	opts = append(opts, WithClock(clk.Now))
	m, err := NewManager(store, codec, signer, DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}
