package migrate

import (
	"strings"
	"testing"
)

func TestParseDirection(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"up", "down"} {
		d, err := ParseDirection(in)
		if err != nil || string(d) != in {
			t.Fatalf("ParseDirection(%q) = %q, %v", in, d, err)
		}
	}
	for _, in := range []string{"", "UP", "sideways"} {
		if _, err := ParseDirection(in); err == nil {
			t.Fatalf("ParseDirection(%q) expected error", in)
		}
	}
}

func TestRun_RequiresDSN(t *testing.T) {
	t.Parallel()

	err := Run("", Up)
	if err == nil || !strings.Contains(err.Error(), "AVIAN_DATABASE_URL") {
		t.Fatalf("expected missing DSN error, got %v", err)
	}
}

func TestRun_RejectsDirection(t *testing.T) {
	t.Parallel()

	if err := Run("postgres://localhost/avian", Direction("sideways")); err == nil {
		t.Fatalf("expected direction error")
	}
}
