package strategy

import (
	"context"
	"errors"
	"testing"

	"avian/cmd/identity"
	"avian/cmd/security/password"
)

func newHasher(t *testing.T) *password.Hasher {
	t.Helper()
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	h, err := password.NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func seededLocal(t *testing.T) (*Local, identity.User) {
	t.Helper()

	h := newHasher(t)
	users := identity.NewMemoryStore()
	hash, err := h.Hash("blue skies ahead")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	u, err := users.CreateUser(context.Background(), identity.CreateUserInput{Username: "amelia", PasswordHash: hash})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	l, err := NewLocal(users, h, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l, u
}

func TestLocal_Success(t *testing.T) {
	t.Parallel()

	l, u := seededLocal(t)
	p, err := l.Authenticate(context.Background(), Credentials{Username: "amelia", Secret: "blue skies ahead"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.ID != u.ID || p.Username != "amelia" {
		t.Fatalf("Principal = %+v", p)
	}
}

func TestLocal_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	l, _ := seededLocal(t)
	cases := map[string]Credentials{
		"wrong secret":   {Username: "amelia", Secret: "grey skies"},
		"unknown user":   {Username: "nobody", Secret: "blue skies ahead"},
		"case differs":   {Username: "Amelia", Secret: "blue skies ahead"},
		"empty username": {Username: "", Secret: "blue skies ahead"},
		"empty secret":   {Username: "amelia", Secret: ""},
	}

	var first string
	for name, c := range cases {
		_, err := l.Authenticate(context.Background(), c)
		if !errors.Is(err, ErrAuthFailure) {
			t.Fatalf("%s: err = %v, want ErrAuthFailure", name, err)
		}
		if first == "" {
			first = err.Error()
		}
		if err.Error() != first {
			t.Fatalf("%s: error text %q differs from %q", name, err.Error(), first)
		}
	}
}

type brokenUsers struct{ identity.Store }

var errDB = errors.New("connection reset")

func (brokenUsers) UserByUsername(context.Context, string) (identity.User, error) {
	return identity.User{}, errDB
}

func TestLocal_StoreFailureIsNotAuthFailure(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(brokenUsers{}, newHasher(t), nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	_, err = l.Authenticate(context.Background(), Credentials{Username: "amelia", Secret: "x"})
	if errors.Is(err, ErrAuthFailure) {
		t.Fatalf("store failure must not be reported as AuthFailure")
	}
	if !errors.Is(err, errDB) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestLocal_CorruptHash(t *testing.T) {
	t.Parallel()

	users := identity.NewMemoryStore()
	if _, err := users.CreateUser(context.Background(), identity.CreateUserInput{Username: "broken", PasswordHash: "not-a-phc"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	l, err := NewLocal(users, newHasher(t), nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := l.Authenticate(context.Background(), Credentials{Username: "broken", Secret: "whatever"}); !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("err = %v, want ErrAuthFailure", err)
	}
}
