package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/tailisp/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

func toStringDict(globals map[string]any) starlark.StringDict {
	ret := make(starlark.StringDict, len(globals))
	for name, value := range globals {
		ret[name] = toStarlarkValue(value)
	}
	return ret
}

// Tap runs an interactive Starlark session on stdin with globals bound.
type Tap func(ctx context.Context, what string, globals map[string]any)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		logger.InfoContext(ctx, "tap: "+what,
			"globals", slices.Sorted(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "tap",
		}
		repl.REPLOptions(fileOptions, thread, toStringDict(globals))
	}
}

// Probe evaluates one Starlark expression with globals bound and returns
// its printed form.
type Probe func(ctx context.Context, expr string, globals map[string]any) (string, error)

func (Module) Probe(
	logger logs.Logger,
) Probe {
	return func(ctx context.Context, expr string, globals map[string]any) (string, error) {
		thread := &starlark.Thread{
			Name: "probe",
			Print: func(_ *starlark.Thread, msg string) {
				logger.InfoContext(ctx, msg)
			},
		}
		value, err := starlark.EvalOptions(fileOptions, thread, "probe", expr, toStringDict(globals))
		if err != nil {
			return "", err
		}
		return value.String(), nil
	}
}
