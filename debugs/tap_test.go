package debugs

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/tailisp/logs"
)

type testStats struct {
	Slots    int `yaml:"slots"`
	GCCycles int `yaml:"gc_cycles"`
}

func TestTap(t *testing.T) {
	dscope.New(
		new(Module),
		new(logs.Module),
	).Call(func(
		tap Tap,
	) {
		// stdin is not interactive under go test, the session ends at EOF
		tap(t.Context(), "test", map[string]any{
			"foo": 42,
		})
	})
}

func TestProbe(t *testing.T) {
	dscope.New(
		new(Module),
		new(logs.Module),
	).Call(func(
		probe Probe,
	) {
		globals := map[string]any{
			"stats": testStats{Slots: 10, GCCycles: 2},
			"names": []string{"fact", "x"},
		}

		got, err := probe(t.Context(), `stats["slots"] + stats["gc_cycles"]`, globals)
		if err != nil {
			t.Fatal(err)
		}
		if got != "12" {
			t.Fatalf("got %v", got)
		}

		got, err = probe(t.Context(), `len(names)`, globals)
		if err != nil {
			t.Fatal(err)
		}
		if got != "2" {
			t.Fatalf("got %v", got)
		}

		if _, err := probe(t.Context(), `nope`, globals); err == nil {
			t.Fatal("should error")
		}
	})
}
