package lisp

import (
	"strconv"
	"strings"

	"github.com/reusee/tailisp/nodes"
)

// Print renders the value at i in source syntax. Values that have no
// source form print as #<...>.
func (r *Runtime) Print(i Index) string {
	b := new(strings.Builder)
	r.print(b, i)
	return b.String()
}

// print writes the value held by node i, ignoring its Next field.
func (r *Runtime) print(b *strings.Builder, i Index) {
	switch i {
	case Nil:
		b.WriteString("()")
		return
	case True:
		b.WriteString("#t")
		return
	}

	a := r.arena
	n := a.Get(i)
	switch n.Type {

	case nodes.TypeInt:
		b.WriteString(strconv.FormatInt(int64(n.Int()), 10))

	case nodes.TypeIdentifier:
		b.WriteString(r.name(i))

	case nodes.TypeStringRef:
		b.WriteString(strconv.Quote(r.name(i)))

	case nodes.TypeCharArray:
		b.WriteString(r.text(i))

	case nodes.TypeNodeRef:
		r.printList(b, n.Ref())

	case nodes.TypeClosure:
		_, _, shape, _ := r.closureParts(i)
		b.WriteString("#<closure ")
		r.printList(b, shape)
		b.WriteString(">")

	case nodes.TypePrimitive:
		b.WriteString("#<primitive ")
		if int(n.Value) < len(primitives) {
			b.WriteString(primitives[n.Value].name)
		} else {
			b.WriteString(strconv.Itoa(int(n.Value)))
		}
		b.WriteString(">")

	case nodes.TypeVarSlotRef:
		b.WriteString("#<var ")
		b.WriteString(r.text(r.bindingName(n.Ref())))
		b.WriteString(">")

	case nodes.TypeArgSlotRef:
		b.WriteString("#<arg ")
		b.WriteString(r.text(r.bindingName(n.Ref())))
		b.WriteString(">")

	default:
		b.WriteString("#<")
		b.WriteString(n.Type.String())
		b.WriteString(">")
	}
}

// printList writes the list whose first cell is head. A head that is a
// standalone element prints as that element.
func (r *Runtime) printList(b *strings.Builder, head Index) {
	a := r.arena
	if head == Nil {
		b.WriteString("()")
		return
	}
	if a.Get(head).Element {
		r.print(b, head)
		return
	}
	b.WriteByte('(')
	for cur := head; ; {
		r.print(b, cur)
		next := a.Get(cur).Next
		if next == Nil {
			break
		}
		if a.Get(next).Element {
			b.WriteString(" . ")
			r.print(b, next)
			break
		}
		b.WriteByte(' ')
		cur = next
	}
	b.WriteByte(')')
}
