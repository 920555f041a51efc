package progress

import (
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeHintIDs(t *testing.T) {
	hints := map[string]struct{}{}
	for _, id := range []string{
		"axolotl-regrow",
		"octopus_hearts",
		"<script>",
		"spaced out id",
		"",
		strings.Repeat("x", 60),
	} {
		hints[id] = struct{}{}
	}

	got := sanitizeHintIDs(hints)
	want := []string{"axolotl-regrow", "octopus_hearts"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// Sanitization is idempotent: filtering an already-clean list changes nothing.
func TestSanitizeHintIDListIdempotent(t *testing.T) {
	dirty := []string{"zebra", "<script>alert(1)</script>", "okapi-1", "bad id"}

	once := sanitizeHintIDList(dirty)
	twice := sanitizeHintIDList(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("sanitization not idempotent: %v vs %v", once, twice)
	}
	if !reflect.DeepEqual(once, []string{"okapi-1", "zebra"}) {
		t.Fatalf("unexpected sanitized list %v", once)
	}
}

func TestSanitizeHintIDsSorted(t *testing.T) {
	got := sanitizeHintIDs(map[string]struct{}{"c": {}, "a": {}, "b": {}})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected sorted output, got %v", got)
	}
}
