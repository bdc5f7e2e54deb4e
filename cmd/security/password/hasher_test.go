package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	enc, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(enc, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", enc)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"match", "correct horse battery", true},
		{"mismatch", "correct horse battery!", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ok, err := h.Verify(enc, tc.password)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if ok != tc.want {
				t.Fatalf("Verify = %v, want %v", ok, tc.want)
			}
		})
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct encodings for the same password")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$t=1,m=8192,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=0$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5",
	}
	for _, enc := range cases {
		ok, err := h.Verify(enc, "whatever")
		if !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Verify(%q) err = %v, want ErrInvalidHash", enc, err)
		}
		if ok {
			t.Fatalf("Verify(%q) = true", enc)
		}
	}
}

func TestVerify_RefusesExpensiveHash(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	expensive := "$argon2id$v=19$m=1048576,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5"
	if _, err := h.Verify(expensive, "whatever"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()
	weak := newTestHasher(t)
	enc, err := weak.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if weak.NeedsRehash(enc) {
		t.Fatalf("hash produced with current params should not need rehash")
	}

	cfg := testConfig()
	cfg.Params.Iterations = 2
	stronger, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if !stronger.NeedsRehash(enc) {
		t.Fatalf("expected rehash after raising iterations")
	}
	if !stronger.NeedsRehash("garbage") {
		t.Fatalf("expected rehash for unparseable hash")
	}
}

func TestVerifyDummy_DoesNotPanic(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)
	h.VerifyDummy("anything at all")
}

func TestConfigCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"memory too low", func(c *Config) { c.Params.MemoryKiB = 1024 }, false},
		{"zero iterations", func(c *Config) { c.Params.Iterations = 0 }, false},
		{"zero parallelism", func(c *Config) { c.Params.Parallelism = 0 }, false},
		{"short salt", func(c *Config) { c.Params.SaltLength = 4 }, false},
		{"long key", func(c *Config) { c.Params.KeyLength = 512 }, false},
		{"min above max", func(c *Config) { c.Policy.MinLength = 300 }, false},
	}
	for _, tc := range tests {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := cfg.Check()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}
