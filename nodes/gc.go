package nodes

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Mark sets the mark bit on every node reachable from roots and returns
// the number of slots marked. Array payloads are counted with their header.
func (a *Arena) Mark(roots ...Index) int {
	work := arraystack.New()
	for _, root := range roots {
		work.Push(root)
	}

	marked := 0
	for !work.Empty() {
		v, _ := work.Pop()
		i := v.(Index)
		n := &a.nodes[i]
		if n.Mark {
			continue
		}
		n.Mark = true
		marked += n.width()

		if n.Type.IsRef() && !n.Array {
			work.Push(n.Ref())
		}
		if !n.Element {
			work.Push(n.Next)
		}
	}

	return marked
}

// Sweep rebuilds the free list from every unmarked node and clears the
// marks of the survivors. Each run of adjacent unmarked nodes becomes one
// free block, so arrays can later be retrofitted into it. NIL is never
// freed. It returns the new free-list head.
func (a *Arena) Sweep() Index {
	a.nodes[Nil].Mark = false
	a.free = Nil
	for i := 1; i < len(a.nodes); {
		n := &a.nodes[i]
		if n.Mark {
			n.Mark = false
			i += n.width()
			continue
		}
		start := i
		for i < len(a.nodes) && !a.nodes[i].Mark {
			i += a.nodes[i].width()
		}
		a.release(Index(start), i-start)
	}
	return a.free
}
