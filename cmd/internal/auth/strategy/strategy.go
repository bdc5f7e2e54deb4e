// Package strategy verifies presented credentials.
//
// A Strategy turns credentials into an identity.Principal. Strategies are
// looked up by name in a Registry built at startup; avian registers a single
// "local" username/password strategy.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"avian/cmd/identity"
)

// ErrAuthFailure is the only credential error a strategy reports. It never
// says whether the username or the secret was wrong.
var ErrAuthFailure = errors.New("invalid username or password")

// Credentials are what the client presented.
type Credentials struct {
	Username string
	Secret   string
}

type Strategy interface {
	Name() string
	// Authenticate returns ErrAuthFailure for rejected credentials. Any
	// other error means verification could not be carried out.
	Authenticate(ctx context.Context, c Credentials) (identity.Principal, error)
}

// Registry holds strategies by name. It is read-only after construction.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers list by name. A later strategy with a duplicate name
// replaces the earlier one.
func NewRegistry(list ...Strategy) *Registry {
	m := make(map[string]Strategy, len(list))
	for _, s := range list {
		if s != nil {
			m[s.Name()] = s
		}
	}
	return &Registry{strategies: m}
}

func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown auth strategy: %s", name)
	}
	return s, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
