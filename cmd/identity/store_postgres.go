package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; the store never closes it.
// Schema and table identifiers are quoted with pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the schema holding the users tables (default "avian").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier %q", schema)
		}
		s.schema = schema
		return nil
	}
}

func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "avian"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// CreateUser inserts the user row and its credential row in one transaction.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ValidateUsername(in.Username); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, invalid(op, "password hash is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := NewID(now)
	if err != nil {
		return User{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.ident("users")+` (id, username, created_at) VALUES ($1, $2, $3)`,
		id, in.Username, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ConflictError{Op: op, Field: "username"}
		}
		return User{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.ident("user_credentials")+` (user_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		id, in.PasswordHash, now,
	)
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}

	return User{
		ID:           id,
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.userWhere(ctx, "identity.UserByUsername", "u.username = $1", username)
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (User, error) {
	return s.userWhere(ctx, "identity.UserByID", "u.id = $1", id)
}

func (s *PostgresStore) userWhere(ctx context.Context, op, cond string, arg string) (User, error) {
	if arg == "" {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT u.id, u.username, c.password_hash, u.created_at
		   FROM `+s.ident("users")+` u
		   JOIN `+s.ident("user_credentials")+` c ON c.user_id = u.id
		  WHERE `+cond,
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
