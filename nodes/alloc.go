package nodes

// Copy clones the node at i, header and payload.
//
// depth controls the Next chain: 0 clones only this node and clears Next,
// n > 0 also clones the following n cells, and n < 0 clones the whole
// remaining chain. Copy(Nil, ...) returns Nil.
func (a *Arena) Copy(i Index, depth int) Index {
	if i == Nil {
		return Nil
	}
	head := a.copyOne(i)
	prev := head
	src := i
	for depth != 0 {
		next := a.nodes[src].Next
		if next == Nil {
			break
		}
		c := a.copyOne(next)
		a.nodes[prev].Next = c
		prev = c
		src = next
		depth--
	}
	return head
}

func (a *Arena) copyOne(i Index) Index {
	src := a.nodes[i]
	var dst Index
	if src.Array {
		dst = a.NewArray(src.Type, int(src.Value))
		copy(
			a.nodes[dst+1:int(dst)+src.width()],
			a.nodes[i+1:int(i)+src.width()],
		)
	} else {
		dst = a.NewScalar(src.Type, src.Value)
	}
	n := &a.nodes[dst]
	*n = src
	n.Mark = false
	n.Next = Nil
	return dst
}

// AsElement returns i if it is already a standalone element, otherwise a
// detached single-node copy.
func (a *Arena) AsElement(i Index) Index {
	if i == Nil || a.nodes[i].Element {
		return i
	}
	c := a.Copy(i, 0)
	a.nodes[c].Element = true
	return c
}

// Retrofit moves the array at i, which must be the last allocation in the
// arena, into the first free block that is large enough. Any remainder of
// that block goes back to the free list and the high-water mark drops by
// the array's width. It returns the new index, or i when nothing fits.
func (a *Arena) Retrofit(i Index) Index {
	n := a.nodes[i]
	width := n.width()
	if !n.Array || int(i)+width != len(a.nodes) {
		return i
	}

	prev := Nil
	for cur := a.free; cur != Nil; prev, cur = cur, a.nodes[cur].Next {
		size := a.nodes[cur].width()
		if size < width {
			continue
		}
		next := a.nodes[cur].Next
		if prev == Nil {
			a.free = next
		} else {
			a.nodes[prev].Next = next
		}

		copy(a.nodes[cur:int(cur)+width], a.nodes[i:int(i)+width])
		a.nodes = a.nodes[:i]

		if rest := size - width; rest > 0 {
			a.release(cur+Index(width), rest)
		}
		return cur
	}

	return i
}

// release pushes a block of slots onto the free list.
func (a *Arena) release(start Index, slots int) {
	n := Node{
		Next: a.free,
	}
	if slots > 1 {
		n.Array = true
		n.Type = TypeCharArray
		n.Value = uint32((slots - 1) * RecordSize)
	}
	a.nodes[start] = n
	a.free = start
}

// FreeList returns the head of the free list.
func (a *Arena) FreeList() Index {
	return a.free
}

// FreeSlots counts the slots held by the free list.
func (a *Arena) FreeSlots() int {
	n := 0
	for cur := a.free; cur != Nil; cur = a.nodes[cur].Next {
		n += a.nodes[cur].width()
	}
	return n
}
