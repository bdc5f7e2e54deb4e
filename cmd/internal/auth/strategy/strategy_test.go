package strategy

import (
	"context"
	"strings"
	"testing"

	"avian/cmd/identity"
)

type stubStrategy struct{ name string }

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Authenticate(context.Context, Credentials) (identity.Principal, error) {
	return identity.Principal{ID: s.name}, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(stubStrategy{"local"}, nil, stubStrategy{"ldap"})

	s, err := r.Get("local")
	if err != nil {
		t.Fatalf("Get(local): %v", err)
	}
	if s.Name() != "local" {
		t.Fatalf("Name = %q", s.Name())
	}

	if _, err := r.Get("oauth"); err == nil || !strings.Contains(err.Error(), "unknown auth strategy: oauth") {
		t.Fatalf("Get(oauth) err = %v", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "ldap" || names[1] != "local" {
		t.Fatalf("Names = %v", names)
	}
}
