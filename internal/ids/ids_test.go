package ids_test

import (
	"testing"

	"github.com/garnizeh/problemhub/internal/ids"
)

func TestNewIsSortableAndValid(t *testing.T) {
	prev := ""
	for range 100 {
		id := ids.New()
		if !ids.Valid(id) {
			t.Fatalf("generated id %q is not valid", id)
		}
		if prev != "" && id <= prev {
			t.Fatalf("ids not monotonic: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestValidRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "123", "not-an-id", "zzzzzzzzzzzzzzzzzzzzzzzzzz!"} {
		if ids.Valid(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
