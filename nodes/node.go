// Package nodes implements the node arena: a single growable sequence of
// fixed-size tagged records that hold both code and data, the allocator that
// hands them out, and the mark-sweep collector that reclaims them.
//
// Nodes refer to each other by Index, never by address. The backing slice may
// be reallocated whenever the arena grows, so a *Node obtained from At is only
// valid until the next allocating call.
package nodes

import "fmt"

// Index addresses a node in an Arena.
type Index uint32

// Nil is the permanent empty-list sentinel at index 0.
const Nil Index = 0

// RecordSize is the number of payload bytes one slot holds.
const RecordSize = 8

type Type uint8

const (
	TypeInt Type = iota
	TypeCharArray
	TypeStringRef
	TypeIdentifier
	TypeNodeRef
	TypeClosure
	TypeArgSlotRef
	TypeVarSlotRef
	TypePrimitive
)

var typeNames = [...]string{
	TypeInt:        "int",
	TypeCharArray:  "chars",
	TypeStringRef:  "string",
	TypeIdentifier: "id",
	TypeNodeRef:    "node",
	TypeClosure:    "closure",
	TypeArgSlotRef: "arg",
	TypeVarSlotRef: "var",
	TypePrimitive:  "primitive",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// IsRef reports whether Value holds the index of another node.
func (t Type) IsRef() bool {
	switch t {
	case TypeNodeRef,
		TypeClosure,
		TypeVarSlotRef,
		TypeArgSlotRef,
		TypeStringRef,
		TypeIdentifier:
		return true
	}
	return false
}

// Node is one arena record.
//
// Element is true for a standalone value. When false the node is a list
// cell and Next continues the list. Special marks an operand that must be
// passed without evaluation. For array headers Value is the payload length
// in bytes and the payload occupies the slots that follow.
type Node struct {
	Type    Type
	Mark    bool
	Array   bool
	Element bool
	Special bool
	Next    Index
	Value   uint32
}

func (n Node) Int() int32 {
	return int32(n.Value)
}

func (n Node) Ref() Index {
	return Index(n.Value)
}

// PayloadSlots returns the number of slots needed for byteLen payload bytes.
func PayloadSlots(byteLen int) int {
	return (byteLen + RecordSize - 1) / RecordSize
}

// width is the number of slots a node occupies including its payload.
func (n Node) width() int {
	if !n.Array {
		return 1
	}
	return 1 + PayloadSlots(int(n.Value))
}
