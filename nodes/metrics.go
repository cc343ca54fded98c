package nodes

import (
	"errors"
	"fmt"
)

// Metrics contains statistical information about an arena.
type Metrics struct {
	Slots       int     `yaml:"slots"`       // high-water mark
	Capacity    int     `yaml:"capacity"`    // allocated backing slots
	Chunks      int     `yaml:"chunks"`      // capacity in chunks
	ChunkSize   int     `yaml:"chunk_size"`  // slots per chunk
	FreeSlots   int     `yaml:"free_slots"`  // slots on the free list
	Utilization float64 `yaml:"utilization"` // live slots / capacity
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() Metrics {
	free := a.FreeSlots()
	m := Metrics{
		Slots:     len(a.nodes),
		Capacity:  cap(a.nodes),
		Chunks:    (cap(a.nodes) + a.chunkSize - 1) / a.chunkSize,
		ChunkSize: a.chunkSize,
		FreeSlots: free,
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.Slots-free) / float64(m.Capacity)
	}
	return m
}

// Check verifies the arena invariants that must hold outside of a mark
// phase: NIL is intact, no mark bit is set, every array block fits in the
// arena and every free-list entry is in range.
func (a *Arena) Check() error {
	var errs []error
	if n := a.nodes[Nil]; n.Type != TypeNodeRef || n.Value != uint32(Nil) || !n.Element {
		errs = append(errs, fmt.Errorf("NIL sentinel modified: %+v", n))
	}
	for i := 0; i < len(a.nodes); {
		n := a.nodes[i]
		if n.Mark {
			errs = append(errs, fmt.Errorf("node %d: mark bit set", i))
		}
		width := n.width()
		if i+width > len(a.nodes) {
			errs = append(errs, fmt.Errorf("node %d: array of %d bytes exceeds arena", i, n.Value))
		}
		i += width
	}
	seen := 0
	for cur := a.free; cur != Nil; cur = a.nodes[cur].Next {
		if int(cur) >= len(a.nodes) {
			errs = append(errs, fmt.Errorf("free list entry %d out of range", cur))
			break
		}
		seen++
		if seen > len(a.nodes) {
			errs = append(errs, errors.New("free list has a cycle"))
			break
		}
	}
	return errors.Join(errs...)
}
