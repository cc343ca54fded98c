package lisp

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/tailisp/debugs"
	"github.com/reusee/tailisp/lispconfigs"
	"github.com/reusee/tailisp/logs"
	"github.com/reusee/tailisp/modes"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs lispconfigs.Module
	Debugs  debugs.Module
}

func (Module) Config(
	chunkSize lispconfigs.ChunkSize,
	maxSlots lispconfigs.MaxSlots,
	interval lispconfigs.GCInterval,
	threshold lispconfigs.GCThreshold,
	mode modes.Mode,
) Config {
	return Config{
		ChunkSize:       int(chunkSize),
		MaxSlots:        int(maxSlots),
		GCInterval:      int(interval),
		GCThreshold:     int(threshold),
		CheckInvariants: mode.CheckInvariants(),
	}
}

// Runtime returns an interpreter with the prelude files already loaded.
func (Module) Runtime(
	config Config,
	logger logs.Logger,
	newSpan logs.NewSpan,
	prelude lispconfigs.Prelude,
) *Runtime {
	r := NewRuntime(config, logger)
	r.newSpan = newSpan
	for _, path := range prelude {
		if err := r.LoadFile(context.Background(), path); err != nil {
			logger.Warn("prelude", "file", path, "error", err)
		}
	}
	return r
}

// TapGlobals returns the values a debug session sees for r.
func (r *Runtime) TapGlobals() map[string]any {
	return map[string]any{
		"stats":      r.Stats(),
		"globals":    r.Globals(),
		"macros":     r.Macros(),
		"primitives": PrimitiveNames(),
		"collect": func() GCStats {
			return r.Collect(context.Background())
		},
		"show": func(name string) string {
			v, ok := r.Global(name)
			if !ok {
				return ""
			}
			return r.Print(v)
		},
	}
}
