package authn

import (
	"context"
	"net/http"

	"avian/cmd/identity"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// requestAuth is mutable so Login and Logout are visible to the rest of
// the request.
type requestAuth struct {
	state State
	user  *identity.Principal
}

type authKey struct{}

func withAuth(ctx context.Context, a *requestAuth) context.Context {
	return context.WithValue(ctx, authKey{}, a)
}

func authFrom(ctx context.Context) *requestAuth {
	a, _ := ctx.Value(authKey{}).(*requestAuth)
	return a
}

// StateOf returns the authentication state of r. Requests that never passed
// through the auth stage are Anonymous.
func StateOf(r *http.Request) State {
	if a := authFrom(r.Context()); a != nil {
		return a.state
	}
	return Anonymous
}

// CurrentUser returns the authenticated principal, or nil.
func CurrentUser(r *http.Request) *identity.Principal {
	a := authFrom(r.Context())
	if a == nil || a.state != Authenticated || a.user == nil {
		return nil
	}
	p := *a.user
	return &p
}
