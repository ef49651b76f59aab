package ids_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/ids"
)

func TestKSIDUniqueness(t *testing.T) {
	gen := ids.NewKSID("field")
	seen := make(map[string]struct{}, 20000)
	for i := 0; i < 20000; i++ {
		id := gen.NewID()
		if !strings.HasPrefix(id, "field_") {
			t.Fatalf("missing prefix: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d draws: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestKSIDWithoutPrefix(t *testing.T) {
	id := ids.NewKSID("  ").NewID()
	if strings.Contains(id, "_") {
		t.Fatalf("unexpected separator in %q", id)
	}
}

func TestSequence(t *testing.T) {
	seq := ids.NewSequence("n")
	got := []string{seq.NewID(), seq.NewID(), seq.NewID()}
	want := []string{"n-1", "n-2", "n-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestGeneratorFunc(t *testing.T) {
	gen := ids.GeneratorFunc(func() string { return "fixed" })
	if gen.NewID() != "fixed" {
		t.Fatalf("GeneratorFunc did not delegate")
	}
}
