// Package flights is the flight log served behind the auth pipeline.
package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("flight not found")

// ValidationError names the first invalid input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string { return fmt.Sprintf("flights: %s: %s", e.Field, e.Msg) }

type Flight struct {
	ID          string    `json:"id"`
	Airline     string    `json:"airline"`
	Number      string    `json:"number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartsAt   time.Time `json:"departsAt"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Input struct {
	Airline     string
	Number      string
	Origin      string
	Destination string
	DepartsAt   time.Time
	CreatedBy   string
}

// Normalize trims text fields and upper-cases airport codes.
func (in Input) Normalize() Input {
	in.Airline = strings.TrimSpace(in.Airline)
	in.Number = strings.ToUpper(strings.TrimSpace(in.Number))
	in.Origin = strings.ToUpper(strings.TrimSpace(in.Origin))
	in.Destination = strings.ToUpper(strings.TrimSpace(in.Destination))
	return in
}

func (in Input) Validate() error {
	switch {
	case in.Airline == "":
		return ValidationError{Field: "airline", Msg: "is required"}
	case in.Number == "":
		return ValidationError{Field: "number", Msg: "is required"}
	case !airportCode(in.Origin):
		return ValidationError{Field: "origin", Msg: "must be a 3-letter airport code"}
	case !airportCode(in.Destination):
		return ValidationError{Field: "destination", Msg: "must be a 3-letter airport code"}
	case in.Origin == in.Destination:
		return ValidationError{Field: "destination", Msg: "must differ from origin"}
	case in.DepartsAt.IsZero():
		return ValidationError{Field: "departs_at", Msg: "is required"}
	case in.CreatedBy == "":
		return ValidationError{Field: "created_by", Msg: "is required"}
	}
	return nil
}

func airportCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

type Store interface {
	Create(ctx context.Context, in Input) (Flight, error)
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Flight, error)
	// List returns flights ordered by departure.
	List(ctx context.Context) ([]Flight, error)
}
