package session

import (
	"context"
	"time"
)

// Record is what a Store persists. Data is opaque to the store.
type Record struct {
	ID        string
	Data      []byte
	CreatedAt time.Time
	TouchedAt time.Time
	ExpiresAt time.Time
}

// Store is a session backend.
//
// Load returns (nil, nil) when no live record exists for id. Implementations
// must not return records whose ExpiresAt has passed.
type Store interface {
	Load(ctx context.Context, id string) (*Record, error)
	// Save inserts or replaces the record.
	Save(ctx context.Context, rec Record) error
	// Touch sets TouchedAt without changing Data or ExpiresAt.
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
