// Package lisp is a small Lisp interpreter whose code and data live in a
// single node arena.
//
// Source forms are read into arena nodes, compiled in place into a form
// where every identifier is resolved to a binding slot or primitive, and
// then evaluated. Each call of a closure clones the closure's template
// environment, so recursive and interleaved calls never share parameter
// storage.
package lisp

import (
	"fmt"

	"github.com/reusee/tailisp/logs"
	"github.com/reusee/tailisp/nodes"
)

type Index = nodes.Index

const Nil = nodes.Nil

// True is the canonical true value. It is allocated first after NIL and is
// bound to the global name #t.
const True Index = 1

type Config struct {
	ChunkSize int
	MaxSlots  int
	// GCInterval collects after this many top-level commands. Zero or
	// negative disables it.
	GCInterval int
	// GCThreshold collects when this many slots are in use. Zero disables
	// it.
	GCThreshold int
	// CheckInvariants verifies the arena around every collection.
	CheckInvariants bool
}

// Runtime owns the arena and every root into it. Not goroutine-safe.
type Runtime struct {
	arena   *nodes.Arena
	config  Config
	logger  logs.Logger
	newSpan logs.NewSpan

	env     Index // global bindings
	macros  Index // macro bindings, name to closure
	strings Index // interned character arrays

	interned    map[string]Index
	diagnostics []error

	commands      int // since the last collection
	totalCommands int
	gc            GCStats
}

func NewRuntime(config Config, logger logs.Logger) *Runtime {
	r := &Runtime{
		arena:    nodes.New(config.ChunkSize, config.MaxSlots),
		config:   config,
		logger:   logger,
		interned: make(map[string]Index),
	}
	r.arena.OnGrow = func(slots, capacity int) {
		r.logger.Debug("arena grown",
			"slots", slots,
			"capacity", capacity,
		)
	}

	if t := r.arena.NewScalar(nodes.TypeIdentifier, 0); t != True {
		panic(fmt.Errorf("true allocated at %d", t))
	}
	chars := r.intern("#t")
	r.arena.At(True).Value = uint32(chars)
	r.env = r.bind(r.env, chars, True)

	return r
}

func (r *Runtime) Arena() *nodes.Arena {
	return r.arena
}

// intern returns the unique character array holding text.
func (r *Runtime) intern(text string) Index {
	if chars, ok := r.interned[text]; ok {
		return chars
	}
	a := r.arena
	chars := a.NewArray(nodes.TypeCharArray, len(text))
	a.SetBytes(chars, []byte(text))
	chars = a.Retrofit(chars)
	r.strings = a.Chain(nodes.TypeStringRef, uint32(chars), r.strings)
	r.interned[text] = chars
	return chars
}

// text returns the contents of a character array.
func (r *Runtime) text(chars Index) string {
	return string(r.arena.Bytes(chars))
}

// name returns the text of an identifier or string node.
func (r *Runtime) name(i Index) string {
	return r.text(r.arena.Get(i).Ref())
}

// bind prepends a binding of chars to value onto env. value must be an
// element or Nil.
func (r *Runtime) bind(env Index, chars Index, value Index) Index {
	a := r.arena
	name := a.Chain(nodes.TypeIdentifier, uint32(chars), value)
	return a.Chain(nodes.TypeNodeRef, uint32(name), env)
}

// lookup returns the first binding cell for chars in env, or Nil.
func (r *Runtime) lookup(env Index, chars Index) Index {
	a := r.arena
	for cur := env; cur != Nil; cur = a.Get(cur).Next {
		if a.Get(a.Get(cur).Ref()).Ref() == chars {
			return cur
		}
	}
	return Nil
}

// bindingName returns the character array a binding cell is keyed by.
func (r *Runtime) bindingName(binding Index) Index {
	return r.arena.Get(r.arena.Get(binding).Ref()).Ref()
}

func (r *Runtime) slotValue(binding Index) Index {
	return r.arena.Get(r.arena.Get(binding).Ref()).Next
}

func (r *Runtime) setSlot(binding Index, value Index) {
	r.arena.At(r.arena.Get(binding).Ref()).Next = value
}

// next returns the cell after cur in a list, Nil past the last one.
func (r *Runtime) next(cur Index) Index {
	n := r.arena.Get(cur)
	if n.Element {
		return Nil
	}
	return n.Next
}

// isNil reports whether i is the empty list, either NIL itself or a
// reference to NIL.
func (r *Runtime) isNil(i Index) bool {
	if i == Nil {
		return true
	}
	n := r.arena.Get(i)
	return n.Type == nodes.TypeNodeRef && n.Ref() == Nil
}

// detach returns a standalone copy of the value at i. Empty lists become
// Nil.
func (r *Runtime) detach(i Index) Index {
	if r.isNil(i) {
		return Nil
	}
	c := r.arena.Copy(i, 0)
	n := r.arena.At(c)
	n.Element = true
	n.Special = false
	return c
}

// cell returns a fresh list cell holding the value v.
func (r *Runtime) cell(v Index) Index {
	var c Index
	if r.isNil(v) {
		c = r.arena.NewScalar(nodes.TypeNodeRef, uint32(Nil))
	} else {
		c = r.arena.Copy(v, 0)
	}
	n := r.arena.At(c)
	n.Element = false
	n.Special = false
	n.Next = Nil
	return c
}

func (r *Runtime) boolean(b bool) Index {
	if b {
		return True
	}
	return Nil
}

// Global returns the value bound to name in the global environment.
func (r *Runtime) Global(name string) (Index, bool) {
	chars, ok := r.interned[name]
	if !ok {
		return Nil, false
	}
	b := r.lookup(r.env, chars)
	if b == Nil {
		return Nil, false
	}
	return r.slotValue(b), true
}

// Globals returns the names bound in the global environment, most recent
// first. Shadowed names appear once.
func (r *Runtime) Globals() []string {
	return r.names(r.env)
}

func (r *Runtime) Macros() []string {
	return r.names(r.macros)
}

func (r *Runtime) names(env Index) (ret []string) {
	seen := make(map[Index]bool)
	for cur := env; cur != Nil; cur = r.arena.Get(cur).Next {
		chars := r.bindingName(cur)
		if seen[chars] {
			continue
		}
		seen[chars] = true
		ret = append(ret, r.text(chars))
	}
	return
}
