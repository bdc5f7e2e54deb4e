package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"avian/cmd/identity"
	"avian/cmd/security/password"
)

const LocalName = "local"

// Local checks a username and password against the credential store.
type Local struct {
	users  identity.Store
	hasher *password.Hasher
	log    *slog.Logger
}

func NewLocal(users identity.Store, hasher *password.Hasher, log *slog.Logger) (*Local, error) {
	if users == nil || hasher == nil {
		return nil, errors.New("strategy: users and hasher are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Local{users: users, hasher: hasher, log: log}, nil
}

func (l *Local) Name() string { return LocalName }

// Authenticate looks the username up exactly as stored. Unknown users still
// pay for one hash verification so response time does not reveal whether
// the account exists.
func (l *Local) Authenticate(ctx context.Context, c Credentials) (identity.Principal, error) {
	if c.Username == "" || c.Secret == "" {
		l.hasher.VerifyDummy(c.Secret)
		return identity.Principal{}, ErrAuthFailure
	}

	u, err := l.users.UserByUsername(ctx, c.Username)
	if err != nil {
		if identity.IsNotFound(err) {
			l.hasher.VerifyDummy(c.Secret)
			return identity.Principal{}, ErrAuthFailure
		}
		return identity.Principal{}, fmt.Errorf("strategy.local: lookup: %w", err)
	}

	ok, err := l.hasher.Verify(u.PasswordHash, c.Secret)
	if err != nil {
		// A stored hash we cannot parse is an operator problem, but the
		// client still only learns that the login failed.
		l.log.Error("auth.local.bad_hash", "user_id", u.ID, "err", err)
		return identity.Principal{}, ErrAuthFailure
	}
	if !ok {
		return identity.Principal{}, ErrAuthFailure
	}
	if l.hasher.NeedsRehash(u.PasswordHash) {
		l.log.Info("auth.local.rehash_due", "user_id", u.ID)
	}
	return u.Principal(), nil
}
