package role

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	for _, r := range All() {
		got, err := Parse(string(r))
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", r, err)
		}
		if got != r {
			t.Fatalf("Parse(%q) = %q", r, got)
		}
	}

	for _, bad := range []string{"", "moderator", "CREATOR", "Admin", "super-admin"} {
		if _, err := Parse(bad); !errors.Is(err, ErrUnknownRole) {
			t.Fatalf("Parse(%q) error = %v, want ErrUnknownRole", bad, err)
		}
	}
}

func TestLabel(t *testing.T) {
	want := map[Role]string{
		User:        "User",
		JuniorAdmin: "Junior Admin",
		Admin:       "Admin",
		SeniorAdmin: "Senior Admin",
		Creator:     "Creator",
	}
	for r, label := range want {
		got, err := r.Label()
		if err != nil {
			t.Fatalf("Label(%q) returned error: %v", r, err)
		}
		if got != label {
			t.Fatalf("Label(%q) = %q, want %q", r, got, label)
		}
	}

	if _, err := Role("owner").Label(); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("Label of unknown role error = %v, want ErrUnknownRole", err)
	}
}

func TestRankOrdering(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Rank() >= all[i].Rank() {
			t.Fatalf("rank not strictly increasing: %q=%d, %q=%d",
				all[i-1], all[i-1].Rank(), all[i], all[i].Rank())
		}
	}
	if Role("owner").Rank() != 0 {
		t.Fatalf("unknown role rank = %d, want 0", Role("owner").Rank())
	}
}

func TestValid(t *testing.T) {
	for _, r := range All() {
		if !r.Valid() {
			t.Fatalf("%q should be valid", r)
		}
	}
	if Role("").Valid() || Role("root").Valid() {
		t.Fatal("invalid roles reported as valid")
	}
}
