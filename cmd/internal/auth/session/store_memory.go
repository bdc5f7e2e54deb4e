package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Expired records are dropped lazily.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(rec.ExpiresAt) {
		delete(s.recs, id)
		return nil, nil
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Data = append([]byte(nil), rec.Data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Touch(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.recs[id]; ok {
		rec.TouchedAt = at
		s.recs[id] = rec
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}
