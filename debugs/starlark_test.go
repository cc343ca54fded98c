package debugs

import (
	"reflect"
	"testing"
	"time"

	"go.starlark.net/starlark"
)

type testMetrics struct {
	Slots       int     `yaml:"slots"`
	Utilization float64 `yaml:"utilization"`
}

type testGC struct {
	Cycles    int           `yaml:"cycles"`
	LastPause time.Duration `yaml:"last_pause"`
	Arena     testMetrics   `yaml:"arena"`
	Note      string
	hidden    int
}

func dict(pairs ...any) *starlark.Dict {
	d := starlark.NewDict(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		d.SetKey(starlark.String(pairs[i].(string)), pairs[i+1].(starlark.Value))
	}
	return d
}

func TestToStarlarkValue(t *testing.T) {
	gc := &testGC{
		Cycles:    3,
		LastPause: 1500 * time.Microsecond,
		Arena: testMetrics{
			Slots:       1024,
			Utilization: 0.5,
		},
		Note:   "ok",
		hidden: 1,
	}
	gcDict := dict(
		"cycles", starlark.MakeInt(3),
		"last_pause", starlark.String("1.5ms"),
		"arena", dict(
			"slots", starlark.MakeInt(1024),
			"utilization", starlark.Float(0.5),
		),
		"Note", starlark.String("ok"),
	)

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "fact", starlark.String("fact")},
		{"int", 42, starlark.MakeInt(42)},
		{"int32", int32(-7), starlark.MakeInt(-7)},
		{"uint32 index", uint32(9), starlark.MakeInt(9)},
		{"uint64", uint64(1 << 40), starlark.MakeUint64(1 << 40)},
		{"float", 0.25, starlark.Float(0.25)},
		{"duration", 2 * time.Second, starlark.String("2s")},
		{"names", []string{"fact", "x"}, starlark.NewList([]starlark.Value{
			starlark.String("fact"),
			starlark.String("x"),
		})},
		{"array", [2]int{1, 2}, starlark.NewList([]starlark.Value{
			starlark.MakeInt(1),
			starlark.MakeInt(2),
		})},
		{"map", map[string]any{"globals": 2}, dict("globals", starlark.MakeInt(2))},
		{"struct", *gc, gcDict},
		{"pointer", gc, gcDict},
		{"pointer to pointer", &gc, gcDict},
		{"nested", map[string]any{
			"runs": []any{*gc, "done"},
		}, dict("runs", starlark.NewList([]starlark.Value{
			gcDict,
			starlark.String("done"),
		}))},
		{"nil pointer", (*testGC)(nil), starlark.None},
		{"starlark value", starlark.MakeInt(5), starlark.MakeInt(5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := toStarlarkValue(tc.input)
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("toStarlarkValue(%#v) = %v, want %v", tc.input, actual, tc.expected)
			}
		})
	}

	t.Run("panic on unsupported type", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("toStarlarkValue did not panic on unsupported type")
			}
		}()
		toStarlarkValue(make(chan bool))
	})
}

func TestFieldName(t *testing.T) {
	typ := reflect.TypeFor[testGC]()
	for i, want := range []string{"cycles", "last_pause", "arena", "Note", "hidden"} {
		if got := fieldName(typ.Field(i)); got != want {
			t.Fatalf("field %d: got %s, want %s", i, got, want)
		}
	}
}
