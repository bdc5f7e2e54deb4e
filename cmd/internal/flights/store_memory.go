package flights

import (
	"context"
	"sort"
	"sync"
	"time"

	"avian/cmd/identity"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Flight
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Flight)}
}

func (s *MemoryStore) Create(ctx context.Context, in Input) (Flight, error) {
	if err := ctx.Err(); err != nil {
		return Flight{}, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Flight{}, err
	}
	now := time.Now().UTC()
	id, err := identity.NewID(now)
	if err != nil {
		return Flight{}, err
	}
	f := Flight{
		ID:          id,
		Airline:     in.Airline,
		Number:      in.Number,
		Origin:      in.Origin,
		Destination: in.Destination,
		DepartsAt:   in.DepartsAt.UTC(),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}

	s.mu.Lock()
	s.byID[id] = f
	s.mu.Unlock()
	return f, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Flight, error) {
	if err := ctx.Err(); err != nil {
		return Flight{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	if !ok {
		return Flight{}, ErrNotFound
	}
	return f, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Flight, 0, len(s.byID))
	for _, f := range s.byID {
		out = append(out, f)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartsAt.Equal(out[j].DepartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DepartsAt.Before(out[j].DepartsAt)
	})
	return out, nil
}
