package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]User
	byUsername map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]User),
		byUsername: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := ValidateUsername(in.Username); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, invalid(op, "password hash is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := NewID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[in.Username]; taken {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	u := User{ID: id, Username: in.Username, PasswordHash: in.PasswordHash, CreatedAt: now}
	s.byID[id] = u
	s.byUsername[in.Username] = id
	return u, nil
}

func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return User{}, NotFoundError{Op: "identity.UserByUsername", Resource: "user"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.UserByID", Resource: "user"}
	}
	return u, nil
}

// DeleteUser removes a user. Sessions that still reference it become stale.
func (s *MemoryStore) DeleteUser(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		delete(s.byUsername, u.Username)
		delete(s.byID, id)
	}
}
