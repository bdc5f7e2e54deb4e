package session_test

import (
	"context"
	"testing"
	"time"

	"avian/cmd/internal/auth/session"
	"avian/cmd/internal/db/dbtest"
)

func TestPostgresStore_Lifecycle(t *testing.T) {
	t.Parallel()

	pool := dbtest.OpenPool(t)
	schema := dbtest.Schema(t, pool)
	s, err := session.NewPostgresStore(pool, schema)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := session.Record{ID: "sid", Data: []byte("blob"), CreatedAt: now, TouchedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "sid")
	if err != nil || got == nil {
		t.Fatalf("Load = %v, %v", got, err)
	}
	if string(got.Data) != "blob" || !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("Load = %+v", got)
	}

	rec.Data = []byte("blob2")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}

	later := now.Add(5 * time.Minute)
	if err := s.Touch(ctx, "sid", later); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	got, err = s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got.Data) != "blob2" || !got.TouchedAt.Equal(later) {
		t.Fatalf("after touch: %+v", got)
	}

	if err := s.Delete(ctx, "sid"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := s.Load(ctx, "sid"); err != nil || got != nil {
		t.Fatalf("Load after delete = %+v, %v", got, err)
	}
}

func TestPostgresStore_Expiry(t *testing.T) {
	t.Parallel()

	pool := dbtest.OpenPool(t)
	schema := dbtest.Schema(t, pool)
	s, err := session.NewPostgresStore(pool, schema)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	past := time.Now().UTC().Add(-time.Hour)
	if err := s.Save(ctx, session.Record{ID: "old", Data: []byte("x"), CreatedAt: past, TouchedAt: past, ExpiresAt: past.Add(time.Minute)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, err := s.Load(ctx, "old"); err != nil || got != nil {
		t.Fatalf("expired record returned: %+v, %v", got, err)
	}

	n, err := s.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired removed %d rows, want 1", n)
	}
}
