package bbs

import (
	"strings"
	"testing"
)

func TestSlugifyCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Base Alpha", "base-alpha"},
		{"  Base   Alpha  ", "base---alpha"},
		{"north_wing-2", "north_wing-2"},
		{"Tokyo/Shibuya #3", "tokyoshibuya-3"},
	}
	for _, tc := range cases {
		if got := SlugifyCode(tc.in); got != tc.want {
			t.Errorf("SlugifyCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyCode_HashFallback(t *testing.T) {
	got := SlugifyCode("基地一号")
	if !strings.HasPrefix(got, "base-") || len(got) != len("base-")+6 {
		t.Fatalf("expected hash placeholder, got %q", got)
	}
	// Deterministic: same input, same code.
	if again := SlugifyCode("基地一号"); again != got {
		t.Fatalf("fallback not stable: %q vs %q", got, again)
	}
	// Different inputs should (in practice) diverge.
	if other := SlugifyCode("另一个基地"); other == got {
		t.Fatalf("distinct names collided: %q", got)
	}
}

func TestSlugifyCode_Caps(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := SlugifyCode(long); len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
}
