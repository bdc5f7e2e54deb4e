package flights

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validInput() Input {
	return Input{
		Airline:     "Avian Air",
		Number:      "av 101",
		Origin:      "sfo",
		Destination: " JFK ",
		DepartsAt:   time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
		CreatedBy:   "01HZX3K9V2M0Q7S5T4R8W6Y1ZA",
	}
}

func TestInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edit  func(*Input)
		field string
	}{
		{name: "valid", edit: func(*Input) {}},
		{name: "no airline", edit: func(in *Input) { in.Airline = "  " }, field: "airline"},
		{name: "no number", edit: func(in *Input) { in.Number = "" }, field: "number"},
		{name: "bad origin", edit: func(in *Input) { in.Origin = "SF" }, field: "origin"},
		{name: "digit destination", edit: func(in *Input) { in.Destination = "JF1" }, field: "destination"},
		{name: "same airports", edit: func(in *Input) { in.Destination = "SFO" }, field: "destination"},
		{name: "no departure", edit: func(in *Input) { in.DepartsAt = time.Time{} }, field: "departs_at"},
		{name: "no creator", edit: func(in *Input) { in.CreatedBy = "" }, field: "created_by"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validInput()
			tt.edit(&in)
			err := in.Normalize().Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
}

func TestMemoryStore_CreateGetList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	late := validInput()
	late.DepartsAt = late.DepartsAt.Add(48 * time.Hour)
	second, err := s.Create(ctx, late)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := s.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Number != "AV 101" || first.Origin != "SFO" || first.Destination != "JFK" {
		t.Fatalf("not normalized: %+v", first)
	}

	got, err := s.Get(ctx, second.ID)
	if err != nil || got.ID != second.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("List order = %+v", list)
	}
}
