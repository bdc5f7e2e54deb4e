package identity

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// User is a stored account. PasswordHash never leaves the auth layer.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is the authenticated identity exposed to handlers and views.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username}
}

// CreateUserInput carries an already hashed password.
type CreateUserInput struct {
	Username     string
	PasswordHash string
	Now          time.Time
}

// Store is the credential store boundary.
//
// Lookups return a NotFoundError (errors.Is ErrNotFound) for unknown users.
// Any other error means the store itself failed.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

// NewID returns a new ULID (26-char string) timestamped at now.
func NewID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
