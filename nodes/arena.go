package nodes

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultChunkSize is the number of slots added each time the arena grows.
const DefaultChunkSize = 1024

// DefaultMaxSlots bounds the arena to 24-bit indexes.
const DefaultMaxSlots = 1 << 24

var ErrExhausted = errors.New("nodes: arena exhausted")

// Arena is the single node store. Not goroutine-safe.
type Arena struct {
	nodes     []Node
	free      Index
	chunkSize int
	maxSlots  int

	// OnGrow is called after the backing storage has been reallocated.
	OnGrow func(slots, capacity int)
}

// New creates an arena holding only the NIL sentinel.
// If chunkSize <= 0, DefaultChunkSize is used; if maxSlots <= 0,
// DefaultMaxSlots is used.
func New(chunkSize int, maxSlots int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	a := &Arena{
		chunkSize: chunkSize,
		maxSlots:  maxSlots,
	}
	nilIndex := a.allocateRaw()
	a.nodes[nilIndex] = Node{
		Type:    TypeNodeRef,
		Element: true,
		Value:   uint32(Nil),
	}
	return a
}

// At returns the node at i. The pointer is invalidated by any allocation.
func (a *Arena) At(i Index) *Node {
	return &a.nodes[i]
}

// Get returns a copy of the node at i.
func (a *Arena) Get(i Index) Node {
	return a.nodes[i]
}

// Len returns the high-water mark in slots.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Width returns the number of slots the node at i occupies.
func (a *Arena) Width(i Index) int {
	return a.nodes[i].width()
}

func (a *Arena) allocateRaw() Index {
	if len(a.nodes) == cap(a.nodes) {
		a.grow(1)
	}
	a.nodes = a.nodes[:len(a.nodes)+1]
	return Index(len(a.nodes) - 1)
}

// allocateTail reserves n contiguous slots at the tail.
func (a *Arena) allocateTail(n int) Index {
	if len(a.nodes)+n > cap(a.nodes) {
		a.grow(n)
	}
	start := len(a.nodes)
	a.nodes = a.nodes[:start+n]
	for i := start; i < start+n; i++ {
		a.nodes[i] = Node{}
	}
	return Index(start)
}

func (a *Arena) grow(min int) {
	size := a.chunkSize
	for size < min {
		size += a.chunkSize
	}
	newCap := cap(a.nodes) + size
	if newCap > a.maxSlots {
		if len(a.nodes)+min > a.maxSlots {
			panic(fmt.Errorf("%w: limit %d slots", ErrExhausted, a.maxSlots))
		}
		newCap = a.maxSlots
	}
	nodes := make([]Node, len(a.nodes), newCap)
	copy(nodes, a.nodes)
	a.nodes = nodes
	if a.OnGrow != nil {
		a.OnGrow(len(a.nodes), cap(a.nodes))
	}
}

// NewScalar returns an initialized single-slot node, reusing a free node
// when one is available. Single free slots are preferred; otherwise the
// last slot of the first free block is split off, leaving the front of the
// block for Retrofit.
func (a *Arena) NewScalar(t Type, value uint32) Index {
	i := a.takeFree()
	if i == Nil {
		i = a.allocateRaw()
	}
	a.nodes[i] = Node{
		Type:    t,
		Element: true,
		Value:   value,
	}
	return i
}

func (a *Arena) takeFree() Index {
	prev := Nil
	block := Nil
	for cur := a.free; cur != Nil; cur = a.nodes[cur].Next {
		if a.nodes[cur].Array {
			if block == Nil {
				block = cur
			}
			prev = cur
			continue
		}
		if prev == Nil {
			a.free = a.nodes[cur].Next
		} else {
			a.nodes[prev].Next = a.nodes[cur].Next
		}
		return cur
	}
	if block == Nil {
		return Nil
	}
	return a.split(block)
}

// split detaches the last slot of the free block at i.
func (a *Arena) split(i Index) Index {
	n := &a.nodes[i]
	width := n.width()
	if width == 2 {
		n.Array = false
		n.Type = 0
		n.Value = 0
	} else {
		n.Value -= RecordSize
	}
	return i + Index(width-1)
}

func (a *Arena) NewInt(v int32) Index {
	return a.NewScalar(TypeInt, uint32(v))
}

// Chain is cons with an explicit type: a list cell holding value, continued
// by cdr.
func (a *Arena) Chain(t Type, value uint32, cdr Index) Index {
	i := a.NewScalar(t, value)
	n := &a.nodes[i]
	n.Element = false
	n.Next = cdr
	return i
}

// NewArray allocates a header and its payload slots at the tail.
func (a *Arena) NewArray(t Type, byteLen int) Index {
	i := a.allocateTail(1 + PayloadSlots(byteLen))
	a.nodes[i] = Node{
		Type:    t,
		Array:   true,
		Element: true,
		Value:   uint32(byteLen),
	}
	return i
}

// SetBytes writes data into the payload of the array at i. len(data) must
// equal the declared byte length.
func (a *Arena) SetBytes(i Index, data []byte) {
	n := a.nodes[i]
	if !n.Array || int(n.Value) != len(data) {
		panic(fmt.Errorf("nodes: payload length %d does not match header %v", len(data), n))
	}
	var buf [RecordSize]byte
	for slot := range PayloadSlots(len(data)) {
		clear(buf[:])
		copy(buf[:], data[slot*RecordSize:])
		p := &a.nodes[int(i)+1+slot]
		*p = Node{
			Next:  Index(binary.LittleEndian.Uint32(buf[0:4])),
			Value: binary.LittleEndian.Uint32(buf[4:8]),
		}
	}
}

// Bytes returns a copy of the payload of the array at i.
func (a *Arena) Bytes(i Index) []byte {
	n := a.nodes[i]
	if !n.Array {
		return nil
	}
	slots := PayloadSlots(int(n.Value))
	ret := make([]byte, slots*RecordSize)
	for slot := range slots {
		p := a.nodes[int(i)+1+slot]
		binary.LittleEndian.PutUint32(ret[slot*RecordSize:], uint32(p.Next))
		binary.LittleEndian.PutUint32(ret[slot*RecordSize+4:], p.Value)
	}
	return ret[:n.Value]
}

// Length counts the cells of the list starting at i, including a dotted tail.
func (a *Arena) Length(i Index) int {
	n := 0
	for cur := i; cur != Nil; cur = a.nodes[cur].Next {
		n++
		if a.nodes[cur].Element {
			break
		}
	}
	return n
}
