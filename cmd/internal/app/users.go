package app

import (
	"context"
	"time"

	"avian/cmd/identity"
)

// AddUser creates an account with a policy-checked password. It backs the
// "avian user add" command.
func (a *App) AddUser(ctx context.Context, username, pw string) (identity.User, error) {
	if err := identity.ValidateUsername(username); err != nil {
		return identity.User{}, err
	}
	if err := a.hasher.Config().Validate(pw); err != nil {
		return identity.User{}, err
	}
	hash, err := a.hasher.Hash(pw)
	if err != nil {
		return identity.User{}, err
	}
	u, err := a.users.CreateUser(ctx, identity.CreateUserInput{
		Username:     username,
		PasswordHash: hash,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		return identity.User{}, err
	}
	a.log.Info("user.created", "user_id", u.ID, "username", u.Username)
	return u, nil
}
