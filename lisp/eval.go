package lisp

import (
	"github.com/reusee/tailisp/nodes"
)

// Eval evaluates a compiled expression in env.
func (r *Runtime) Eval(expr Index, env Index) Index {
	if expr == Nil {
		return Nil
	}
	a := r.arena
	n := a.Get(expr)
	switch n.Type {

	case nodes.TypeArgSlotRef:
		chars := r.bindingName(n.Ref())
		b := r.lookup(env, chars)
		if b == Nil {
			r.errorf("unbound argument %s", r.text(chars))
			return Nil
		}
		return r.detach(r.slotValue(b))

	case nodes.TypeVarSlotRef:
		return r.slotValue(n.Ref())

	case nodes.TypeNodeRef:
		if n.Ref() == Nil {
			return Nil
		}
		return r.apply(n.Ref(), env)

	}

	return r.detach(expr)
}

// apply evaluates the list starting at head as a call.
func (r *Runtime) apply(head Index, env Index) Index {
	a := r.arena
	fn := r.Eval(head, env)
	args := r.next(head)

	f := a.Get(fn)
	switch {

	case fn == Nil:

	case f.Type == nodes.TypeInt:
		return r.selectArg(f.Int(), r.EvalAndChain(args, env))

	case f.Type == nodes.TypeClosure:
		return r.runLambda(fn, args, env, true)

	case f.Type == nodes.TypePrimitive:
		if int(f.Value) >= len(primitives) {
			r.errorf("bad primitive %d", f.Value)
			return Nil
		}
		p := primitives[f.Value]
		if p.special {
			return p.fn(r, args, env)
		}
		return p.fn(r, r.EvalAndChain(args, env), env)

	}

	r.errorf("cannot apply %s", r.Print(fn))
	return a.NewScalar(nodes.TypeNodeRef, uint32(head))
}

// selectArg returns the k-th value of list, counting from 1.
func (r *Runtime) selectArg(k int32, list Index) Index {
	cur := list
	for i := int32(1); i < k && cur != Nil; i++ {
		cur = r.next(cur)
	}
	if k < 1 || cur == Nil {
		r.errorf("selector %d out of range", k)
		return Nil
	}
	return r.detach(cur)
}

// EvalAndChain evaluates every cell of args into a fresh list of values.
// Cells marked special are copied without evaluation.
func (r *Runtime) EvalAndChain(args Index, env Index) Index {
	a := r.arena
	var first, prev Index
	for cur := args; cur != Nil; cur = r.next(cur) {
		var c Index
		if a.Get(cur).Special {
			c = a.Copy(cur, 0)
			n := a.At(c)
			n.Element = false
			n.Next = Nil
		} else {
			c = r.cell(r.Eval(cur, env))
		}
		if first == Nil {
			first = c
		} else {
			a.At(prev).Next = c
		}
		prev = c
	}
	return first
}

// runLambda calls a closure. With evaluate set the operands are evaluated
// in env first, otherwise they are bound as they are, which is how macros
// receive their operands.
func (r *Runtime) runLambda(closure Index, args Index, env Index, evaluate bool) Index {
	a := r.arena
	if a.Get(closure).Type != nodes.TypeClosure {
		r.errorf("not a closure: %s", r.Print(closure))
		return Nil
	}
	template, lexical, shape, body := r.closureParts(closure)

	values := args
	if evaluate {
		values = r.EvalAndChain(args, env)
	}

	local := r.instantiate(template, lexical)

	cur := values
	for p := shape; p != Nil; p = r.next(p) {
		pn := a.Get(p)
		if pn.Element {
			rest := Nil
			if cur != Nil {
				rest = a.NewScalar(nodes.TypeNodeRef, uint32(cur))
			}
			r.setLocal(local, pn.Ref(), rest)
			cur = Nil
			break
		}
		v := Nil
		if cur != Nil {
			v = r.detach(cur)
			cur = r.next(cur)
		}
		r.setLocal(local, pn.Ref(), v)
	}
	if cur != Nil {
		r.errorf("too many arguments: %d extra", a.Length(cur))
	}

	ret := Nil
	for expr := body; expr != Nil; expr = r.next(expr) {
		ret = r.Eval(expr, local)
	}
	return ret
}

// closureParts unpacks a closure record.
func (r *Runtime) closureParts(closure Index) (template, lexical, shape, body Index) {
	a := r.arena
	c1 := a.Get(a.Get(closure).Ref())
	c2 := a.Get(c1.Next)
	c3 := a.Get(c2.Next)
	c4 := a.Get(c3.Next)
	return c1.Ref(), c2.Ref(), c3.Ref(), c4.Ref()
}

// instantiate clones the binding and name cells of template with every
// slot empty, and links the clone in front of lexical.
func (r *Runtime) instantiate(template Index, lexical Index) Index {
	a := r.arena
	var first, prev Index
	for cur := template; cur != Nil; cur = a.Get(cur).Next {
		name := a.Copy(a.Get(cur).Ref(), 0)
		b := a.Copy(cur, 0)
		a.At(b).Value = uint32(name)
		if first == Nil {
			first = b
		} else {
			a.At(prev).Next = b
		}
		prev = b
	}
	if first == Nil {
		return lexical
	}
	a.At(prev).Next = lexical
	return first
}

func (r *Runtime) setLocal(env Index, chars Index, value Index) {
	if b := r.lookup(env, chars); b != Nil {
		r.setSlot(b, value)
	}
}

// store writes value to the slot a compiled define or set! names.
func (r *Runtime) store(slot Index, value Index, env Index) bool {
	a := r.arena
	n := a.Get(slot)
	switch n.Type {
	case nodes.TypeVarSlotRef:
		r.setSlot(n.Ref(), value)
		return true
	case nodes.TypeArgSlotRef:
		chars := r.bindingName(n.Ref())
		if b := r.lookup(env, chars); b != Nil {
			r.setSlot(b, value)
			return true
		}
		r.errorf("unbound argument %s", r.text(chars))
	}
	return false
}
