package ids

import (
	"strings"
	"testing"
)

func TestNewIsUniqueAndPrefixed(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := New("card")
		if !strings.HasPrefix(id, "card_") {
			t.Fatalf("missing prefix: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestNewWithoutPrefix(t *testing.T) {
	t.Parallel()

	if id := New("  "); strings.Contains(id, "_") || len(id) != 36 {
		t.Fatalf("expected bare uuid, got %q", id)
	}
}
