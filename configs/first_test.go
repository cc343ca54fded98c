package configs

import (
	"strings"
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{
		"testdata/override.cue",
		"testdata/base.cue",
	}, testSchema)

	if n := First[int](loader, "chunk_size"); n != 4096 {
		t.Fatalf("got %v", n)
	}
	if s := First[string](loader, "history_file"); s != "/tmp/history" {
		t.Fatalf("got %v", s)
	}
	// missing values are zero
	if n := First[int](loader, "max_slots"); n != 0 {
		t.Fatalf("got %v", n)
	}
}

func TestFirstPanicsOnBadFile(t *testing.T) {
	loader := NewLoader([]string{"testdata/syntax.cue"}, testSchema)
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("should panic")
		}
		err, ok := p.(error)
		if !ok || !strings.HasPrefix(err.Error(), "config chunk_size: ") {
			t.Fatalf("got %v", p)
		}
	}()
	First[int](loader, "chunk_size")
}
