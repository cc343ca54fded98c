package lisp

import (
	"context"
	"time"

	"github.com/reusee/tailisp/nodes"
	"gopkg.in/yaml.v3"
)

// GCStats describes collections so far.
type GCStats struct {
	Cycles     int           `yaml:"cycles"`
	LastMarked int           `yaml:"last_marked"`
	Free       int           `yaml:"free"`
	LastPause  time.Duration `yaml:"last_pause"`
	TotalPause time.Duration `yaml:"total_pause"`
}

// roots are every index the runtime holds between commands. Values in
// flight during evaluation are not roots, so collection only happens
// between top-level commands.
func (r *Runtime) roots() []Index {
	return []Index{
		Nil,
		True,
		r.env,
		r.macros,
		r.strings,
	}
}

// Collect runs a full mark-sweep cycle. It must not be called while a
// command is being compiled or evaluated.
func (r *Runtime) Collect(ctx context.Context) GCStats {
	a := r.arena
	start := time.Now()

	if r.config.CheckInvariants {
		if err := a.Check(); err != nil {
			r.logger.ErrorContext(ctx, "arena check before collection", "error", err)
		}
	}

	marked := a.Mark(r.roots()...)
	a.Sweep()
	free := a.FreeSlots()

	if r.config.CheckInvariants {
		if err := a.Check(); err != nil {
			r.logger.ErrorContext(ctx, "arena check after collection", "error", err)
		}
	}

	pause := time.Since(start)
	r.gc.Cycles++
	r.gc.LastMarked = marked
	r.gc.Free = free
	r.gc.LastPause = pause
	r.gc.TotalPause += pause
	r.commands = 0

	r.logger.DebugContext(ctx, "gc",
		"marked", marked,
		"free", free,
		"slots", a.Len(),
		"pause", pause,
	)
	return r.gc
}

// maybeCollect collects when the command interval or the slot threshold
// is reached.
func (r *Runtime) maybeCollect(ctx context.Context) {
	inUse := r.arena.Len() - r.arena.FreeSlots()
	if r.config.GCInterval > 0 && r.commands >= r.config.GCInterval ||
		r.config.GCThreshold > 0 && inUse >= r.config.GCThreshold {
		r.Collect(ctx)
	}
}

// Stats is a snapshot of the runtime for inspection.
type Stats struct {
	Arena      nodes.Metrics `yaml:"arena"`
	GC         GCStats       `yaml:"gc"`
	Commands   int           `yaml:"commands"`
	Globals    int           `yaml:"globals"`
	Macros     int           `yaml:"macros"`
	Strings    int           `yaml:"strings"`
	Primitives int           `yaml:"primitives"`
}

func (r *Runtime) Stats() Stats {
	return Stats{
		Arena:      r.arena.Metrics(),
		GC:         r.gc,
		Commands:   r.totalCommands,
		Globals:    len(r.Globals()),
		Macros:     len(r.Macros()),
		Strings:    len(r.interned),
		Primitives: len(primitives),
	}
}

func (s Stats) YAML() ([]byte, error) {
	buf, err := yaml.Marshal(s)
	if err != nil {
		return nil, wrap(err)
	}
	return buf, nil
}
