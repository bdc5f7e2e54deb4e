// Package dbtest opens opt-in Postgres fixtures for integration tests.
//
// Tests are skipped unless AVIAN_TEST_DATABASE_URL is set. Outside CI an
// unreachable server also skips, which keeps local runs fast.
package dbtest

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"avian/cmd/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

const EnvURL = "AVIAN_TEST_DATABASE_URL"

// OpenPool connects to the test database or skips the test.
func OpenPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv(EnvURL))
	if raw == "" {
		t.Skipf("integration test skipped: %s is not set", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, raw)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()

	c, err := pool.Acquire(pingCtx)
	if err != nil {
		pool.Close()
		if shouldSkip(err) {
			t.Skipf("integration test skipped: Postgres unreachable: %v", err)
		}
		t.Fatalf("acquire: %v", err)
	}
	c.Release()

	t.Cleanup(pool.Close)
	return pool
}

// Schema creates a throwaway schema with every embedded up migration applied
// to it and drops it when the test ends.
func Schema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	schema := "avian_it_" + strings.ToLower(ulid.Make().String())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	quoted := pgx.Identifier{schema}.Sanitize()
	if _, err := pool.Exec(ctx, `CREATE SCHEMA `+quoted); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+quoted+` CASCADE`)
	})

	for _, stmt := range upMigrations(t) {
		stmt = strings.ReplaceAll(stmt, "CREATE SCHEMA IF NOT EXISTS "+db.Schema+";", "")
		stmt = strings.ReplaceAll(stmt, db.Schema+".", quoted+".")
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("apply migration: %v", err)
		}
	}
	return schema
}

func upMigrations(t *testing.T) []string {
	t.Helper()

	names, err := fs.Glob(db.MigrationFS, "migrations/*.up.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, n := range names {
		b, err := fs.ReadFile(db.MigrationFS, n)
		if err != nil {
			t.Fatalf("read %s: %v", n, err)
		}
		out = append(out, string(b))
	}
	return out
}

func shouldSkip(err error) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "no such host")
}
