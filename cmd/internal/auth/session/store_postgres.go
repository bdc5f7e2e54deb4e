package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore implements Store over <schema>.sessions. The pool is owned
// by the caller.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
	now   func() time.Time
}

// NewPostgresStore uses schema "avian" when schema is empty.
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("session: nil pool")
	}
	if schema == "" {
		schema = "avian"
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier %q", schema)
	}
	return &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{schema, "sessions"}.Sanitize(),
		now:   time.Now,
	}, nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT id, data, created_at, touched_at, expires_at
		FROM `+s.table+`
		WHERE id = $1 AND expires_at > $2
	`, id, s.now().UTC()).Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.TouchedAt, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table+` (id, data, created_at, touched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data,
		    touched_at = EXCLUDED.touched_at,
		    expires_at = EXCLUDED.expires_at
	`, rec.ID, rec.Data, rec.CreatedAt.UTC(), rec.TouchedAt.UTC(), rec.ExpiresAt.UTC())
	return err
}

func (s *PostgresStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table+`
		SET touched_at = $2
		WHERE id = $1
	`, id, at.UTC())
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	return err
}

// DeleteExpired removes records that expired before now and reports how many.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
