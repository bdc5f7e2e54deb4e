package flights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"avian/cmd/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps flights in <schema>.flights.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("flights: nil pool")
	}
	if schema == "" {
		schema = "avian"
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

const flightColumns = `id, airline, number, origin, destination, departs_at, created_by, created_at`

func (s *PostgresStore) Create(ctx context.Context, in Input) (Flight, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Flight{}, err
	}
	now := time.Now().UTC()
	id, err := identity.NewID(now)
	if err != nil {
		return Flight{}, err
	}
	f := Flight{
		ID:          id,
		Airline:     in.Airline,
		Number:      in.Number,
		Origin:      in.Origin,
		Destination: in.Destination,
		DepartsAt:   in.DepartsAt.UTC(),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (`+flightColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Airline, f.Number, f.Origin, f.Destination, f.DepartsAt, f.CreatedBy, f.CreatedAt,
	)
	if err != nil {
		return Flight{}, fmt.Errorf("flights.Create: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Flight, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+flightColumns+` FROM `+s.table()+` WHERE id = $1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Flight{}, ErrNotFound
		}
		return Flight{}, fmt.Errorf("flights.Get: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Flight, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+flightColumns+` FROM `+s.table()+` ORDER BY departs_at, id`)
	if err != nil {
		return nil, fmt.Errorf("flights.List: %w", err)
	}
	defer rows.Close()

	var out []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("flights.List: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFlight(row pgx.Row) (Flight, error) {
	var f Flight
	err := row.Scan(&f.ID, &f.Airline, &f.Number, &f.Origin, &f.Destination, &f.DepartsAt, &f.CreatedBy, &f.CreatedAt)
	return f, err
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "flights"}.Sanitize()
}
