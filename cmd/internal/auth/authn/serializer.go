package authn

import (
	"context"
	"errors"
	"fmt"

	"avian/cmd/identity"
)

// Serializer converts a principal to the reference kept in the session and
// back.
type Serializer interface {
	Serialize(p identity.Principal) (string, error)
	// Deserialize returns (nil, nil) when ref no longer names a user.
	Deserialize(ctx context.Context, ref string) (*identity.Principal, error)
}

// UserSerializer keeps only the user ID in the session.
type UserSerializer struct {
	users identity.Store
}

func NewUserSerializer(users identity.Store) *UserSerializer {
	return &UserSerializer{users: users}
}

func (s *UserSerializer) Serialize(p identity.Principal) (string, error) {
	if p.ID == "" {
		return "", errors.New("authn: principal without id")
	}
	return p.ID, nil
}

func (s *UserSerializer) Deserialize(ctx context.Context, ref string) (*identity.Principal, error) {
	u, err := s.users.UserByID(ctx, ref)
	if err != nil {
		if identity.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("authn: deserialize: %w", err)
	}
	p := u.Principal()
	return &p, nil
}
