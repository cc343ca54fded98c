package lisp

import (
	"github.com/reusee/tailisp/nodes"
)

// scope is the compile-time view of one enclosing lambda.
type scope struct {
	template Index
	parent   *scope
}

// Compile turns a parsed form into executable form. Identifiers become
// argument slots, global variable slots or primitives; special forms and
// macros are lowered. A top-level define binds its name in the global
// environment now so later commands and recursive bodies resolve to it.
// On error the global environment is left as it was.
func (r *Runtime) Compile(form Index) (_ Index, err error) {
	saved := r.env
	defer func() {
		if err != nil {
			r.env = saved
		}
	}()
	ret, err := r.transformElem(form, nil)
	if err != nil {
		return Nil, err
	}
	n := r.arena.At(ret)
	n.Element = true
	n.Next = Nil
	n.Special = false
	return ret, nil
}

// transformElem compiles the value held by elem into a fresh node. The
// caller sets the Element and Next fields of the result.
func (r *Runtime) transformElem(elem Index, sc *scope) (Index, error) {
	a := r.arena
	n := a.Get(elem)
	switch n.Type {

	case nodes.TypeIdentifier:
		return r.resolve(n.Ref(), sc)

	case nodes.TypeNodeRef:
		if n.Ref() == Nil {
			return a.NewScalar(nodes.TypeNodeRef, uint32(Nil)), nil
		}
		return r.transformForm(n.Ref(), sc)

	}

	// literal
	c := a.Copy(elem, 0)
	a.At(c).Special = false
	return c, nil
}

// transformElements compiles every cell of a list into a fresh chain.
func (r *Runtime) transformElements(head Index, sc *scope) (Index, error) {
	a := r.arena
	var first, prev Index
	for cur := head; cur != Nil; cur = r.next(cur) {
		c, err := r.transformElem(cur, sc)
		if err != nil {
			return Nil, err
		}
		n := a.At(c)
		n.Element = a.Get(cur).Element
		n.Next = Nil
		if first == Nil {
			first = c
		} else {
			a.At(prev).Next = c
		}
		prev = c
	}
	return first, nil
}

func (r *Runtime) resolve(chars Index, sc *scope) (Index, error) {
	a := r.arena
	for s := sc; s != nil; s = s.parent {
		if b := r.lookup(s.template, chars); b != Nil {
			return a.NewScalar(nodes.TypeArgSlotRef, uint32(b)), nil
		}
	}
	if b := r.lookup(r.env, chars); b != Nil {
		return a.NewScalar(nodes.TypeVarSlotRef, uint32(b)), nil
	}
	if op, ok := primitiveOps[r.text(chars)]; ok {
		if op <= opDefineSyntax {
			return Nil, &CompileError{
				Msg:  "special form used as value",
				Form: r.text(chars),
			}
		}
		return a.NewScalar(nodes.TypePrimitive, op), nil
	}
	return Nil, &CompileError{
		Msg:  "unbound identifier",
		Form: r.text(chars),
	}
}

// resolveSlot is resolve restricted to variables.
func (r *Runtime) resolveSlot(chars Index, sc *scope) Index {
	a := r.arena
	for s := sc; s != nil; s = s.parent {
		if b := r.lookup(s.template, chars); b != Nil {
			return a.NewScalar(nodes.TypeArgSlotRef, uint32(b))
		}
	}
	if b := r.lookup(r.env, chars); b != Nil {
		return a.NewScalar(nodes.TypeVarSlotRef, uint32(b))
	}
	return Nil
}

// transformForm compiles the list starting at head: macro uses are
// expanded until a fixed point, special forms are lowered and everything
// else becomes a call.
func (r *Runtime) transformForm(head Index, sc *scope) (Index, error) {
	a := r.arena
	for {
		h := a.Get(head)
		if h.Type != nodes.TypeIdentifier {
			break
		}
		macro := r.lookup(r.macros, h.Ref())
		if macro == Nil {
			break
		}
		expanded := r.expand(r.slotValue(macro), r.next(head))
		if e := a.Get(expanded); e.Type == nodes.TypeNodeRef && e.Ref() != Nil {
			head = e.Ref()
			continue
		}
		return r.transformElem(expanded, sc)
	}

	if h := a.Get(head); h.Type == nodes.TypeIdentifier {
		switch r.text(h.Ref()) {
		case "quote":
			return r.transformQuote(head)
		case "if":
			return r.transformIf(head, sc)
		case "define":
			return r.transformDefine(head, sc)
		case "set!":
			return r.transformSet(head, sc)
		case "lambda":
			return r.transformLambda(head, sc)
		case "define-syntax":
			return r.transformDefineSyntax(head, sc)
		}
	}

	first, err := r.transformElements(head, sc)
	if err != nil {
		return Nil, err
	}
	return a.NewScalar(nodes.TypeNodeRef, uint32(first)), nil
}

// expand runs a macro closure on unevaluated operands.
func (r *Runtime) expand(closure Index, args Index) Index {
	return r.runLambda(closure, args, r.env, false)
}

// call builds (<op> operands...) from already compiled cells.
func (r *Runtime) call(op uint32, operands ...Index) Index {
	a := r.arena
	head := a.Chain(nodes.TypePrimitive, op, Nil)
	prev := head
	for _, o := range operands {
		n := a.At(o)
		n.Element = false
		n.Next = Nil
		a.At(prev).Next = o
		prev = o
	}
	return a.NewScalar(nodes.TypeNodeRef, uint32(head))
}

func (r *Runtime) special(i Index) Index {
	r.arena.At(i).Special = true
	return i
}

func (r *Runtime) form(head Index) Index {
	return r.arena.NewScalar(nodes.TypeNodeRef, uint32(head))
}

// (quote x)
func (r *Runtime) transformQuote(head Index) (Index, error) {
	arg := r.next(head)
	if arg == Nil {
		return Nil, r.compileError(r.form(head), "quote: missing operand")
	}
	return r.call(opQuote, r.arena.Copy(arg, 0)), nil
}

// (if cond then [else])
func (r *Runtime) transformIf(head Index, sc *scope) (Index, error) {
	cond := r.next(head)
	if cond == Nil || r.next(cond) == Nil {
		return Nil, r.compileError(r.form(head), "if: expects a condition and a consequent")
	}
	then := r.next(cond)
	otherwise := r.next(then)

	c, err := r.transformElem(cond, sc)
	if err != nil {
		return Nil, err
	}
	t, err := r.transformElem(then, sc)
	if err != nil {
		return Nil, err
	}
	operands := []Index{c, r.special(t)}
	if otherwise != Nil {
		e, err := r.transformElem(otherwise, sc)
		if err != nil {
			return Nil, err
		}
		operands = append(operands, r.special(e))
	}
	return r.call(opIf, operands...), nil
}

// (define name expr) or (define (name . params) body...)
func (r *Runtime) transformDefine(head Index, sc *scope) (Index, error) {
	a := r.arena
	target := r.next(head)
	if target == Nil {
		return Nil, r.compileError(r.form(head), "define: missing variable name")
	}
	t := a.Get(target)

	switch {

	case t.Type == nodes.TypeIdentifier:
		expr := r.next(target)
		if expr == Nil {
			slot, err := r.defineSlot(t.Ref(), sc)
			if err != nil {
				return Nil, err
			}
			return r.call(opDefine, r.special(slot), a.NewScalar(nodes.TypeNodeRef, uint32(Nil))), nil
		}
		if r.isLambdaForm(expr) {
			// bound first so the body can recurse
			slot, err := r.defineSlot(t.Ref(), sc)
			if err != nil {
				return Nil, err
			}
			value, err := r.transformElem(expr, sc)
			if err != nil {
				return Nil, err
			}
			return r.call(opDefine, r.special(slot), value), nil
		}
		// the value sees the previous binding of the name
		value, err := r.transformElem(expr, sc)
		if err != nil {
			return Nil, err
		}
		slot, err := r.defineSlot(t.Ref(), sc)
		if err != nil {
			return Nil, err
		}
		return r.call(opDefine, r.special(slot), value), nil

	case t.Type == nodes.TypeNodeRef && t.Ref() != Nil &&
		a.Get(t.Ref()).Type == nodes.TypeIdentifier:
		// the name is bound before the body compiles so it can recurse
		fn := t.Ref()
		slot, err := r.defineSlot(a.Get(fn).Ref(), sc)
		if err != nil {
			return Nil, err
		}
		ps, err := r.listParams(r.next(fn))
		if err != nil {
			return Nil, err
		}
		value, err := r.compileLambda(ps, r.next(target), sc)
		if err != nil {
			return Nil, err
		}
		return r.call(opDefine, r.special(slot), value), nil

	}

	return Nil, r.compileError(r.form(head), "define: missing variable name")
}

// isLambdaForm reports whether elem holds a (lambda ...) form.
func (r *Runtime) isLambdaForm(elem Index) bool {
	a := r.arena
	n := a.Get(elem)
	if n.Type != nodes.TypeNodeRef || n.Ref() == Nil {
		return false
	}
	h := a.Get(n.Ref())
	return h.Type == nodes.TypeIdentifier && r.text(h.Ref()) == "lambda"
}

// defineSlot returns the slot a define writes to. Inside a lambda the name
// was collected into the template; at top level a fresh global binding
// is created, shadowing any earlier one.
func (r *Runtime) defineSlot(chars Index, sc *scope) (Index, error) {
	a := r.arena
	if sc != nil {
		b := r.lookup(sc.template, chars)
		if b == Nil {
			return Nil, &CompileError{
				Msg:  "define: not at the top of a lambda body",
				Form: r.text(chars),
			}
		}
		return a.NewScalar(nodes.TypeArgSlotRef, uint32(b)), nil
	}
	r.env = r.bind(r.env, chars, Nil)
	return a.NewScalar(nodes.TypeVarSlotRef, uint32(r.env)), nil
}

// (set! name expr)
func (r *Runtime) transformSet(head Index, sc *scope) (Index, error) {
	a := r.arena
	target := r.next(head)
	if target == Nil || a.Get(target).Type != nodes.TypeIdentifier {
		return Nil, r.compileError(r.form(head), "set!: missing variable name")
	}
	slot := r.resolveSlot(a.Get(target).Ref(), sc)
	if slot == Nil {
		return Nil, &CompileError{
			Msg:  "set!: unbound variable",
			Form: r.name(target),
		}
	}
	var value Index
	if expr := r.next(target); expr != Nil {
		var err error
		value, err = r.transformElem(expr, sc)
		if err != nil {
			return Nil, err
		}
	} else {
		value = a.NewScalar(nodes.TypeNodeRef, uint32(Nil))
	}
	return r.call(opSet, r.special(slot), value), nil
}

// (lambda params body...)
func (r *Runtime) transformLambda(head Index, sc *scope) (Index, error) {
	a := r.arena
	shape := r.next(head)
	if shape == Nil {
		return Nil, r.compileError(r.form(head), "lambda: missing parameter list")
	}
	var ps params
	var err error
	switch s := a.Get(shape); s.Type {
	case nodes.TypeIdentifier:
		ps.rest = s.Ref()
	case nodes.TypeNodeRef:
		ps, err = r.listParams(s.Ref())
	default:
		err = r.compileError(r.form(head), "lambda: bad parameter list")
	}
	if err != nil {
		return Nil, err
	}
	return r.compileLambda(ps, r.next(shape), sc)
}

// (define-syntax name expr)
func (r *Runtime) transformDefineSyntax(head Index, sc *scope) (Index, error) {
	a := r.arena
	target := r.next(head)
	if target == Nil || a.Get(target).Type != nodes.TypeIdentifier {
		return Nil, r.compileError(r.form(head), "define-syntax: missing macro name")
	}
	expr := r.next(target)
	if expr == Nil {
		return Nil, r.compileError(r.form(head), "define-syntax: missing transformer")
	}
	value, err := r.transformElem(expr, sc)
	if err != nil {
		return Nil, err
	}
	name := a.Copy(target, 0)
	return r.call(opDefineSyntax, r.special(name), value), nil
}

// params is a parsed parameter list. rest is the character array of the
// parameter receiving surplus arguments, or Nil.
type params struct {
	fixed []Index
	rest  Index
}

// listParams parses a parameter list, possibly dotted.
func (r *Runtime) listParams(head Index) (ps params, err error) {
	a := r.arena
	for cur := head; cur != Nil; cur = r.next(cur) {
		n := a.Get(cur)
		if n.Type != nodes.TypeIdentifier {
			return ps, &CompileError{
				Msg:  "parameter must be an identifier",
				Form: r.Print(cur),
			}
		}
		if n.Element {
			ps.rest = n.Ref()
			break
		}
		ps.fixed = append(ps.fixed, n.Ref())
	}
	return
}

// shape encodes params as the list stored in a closure record: one
// identifier cell per fixed parameter ending in the rest parameter as a
// dotted element.
func (r *Runtime) shape(ps params) Index {
	a := r.arena
	ret := Nil
	if ps.rest != Nil {
		ret = a.NewScalar(nodes.TypeIdentifier, uint32(ps.rest))
	}
	for i := len(ps.fixed) - 1; i >= 0; i-- {
		ret = a.Chain(nodes.TypeIdentifier, uint32(ps.fixed[i]), ret)
	}
	return ret
}

// compileLambda lowers a lambda to (<lambda> template shape body). The
// template env holds one empty slot per parameter and per local define.
func (r *Runtime) compileLambda(ps params, body Index, sc *scope) (Index, error) {
	a := r.arena

	var names []Index
	seen := make(map[Index]bool)
	add := func(chars Index) {
		if !seen[chars] {
			seen[chars] = true
			names = append(names, chars)
		}
	}
	for _, p := range ps.fixed {
		add(p)
	}
	if ps.rest != Nil {
		add(ps.rest)
	}
	r.collectDefines(body, add)

	template := Nil
	for i := len(names) - 1; i >= 0; i-- {
		template = r.bind(template, names[i], Nil)
	}

	inner := &scope{
		template: template,
		parent:   sc,
	}
	compiled, err := r.transformElements(body, inner)
	if err != nil {
		return Nil, err
	}

	return r.call(opLambda,
		a.NewScalar(nodes.TypeNodeRef, uint32(template)),
		a.NewScalar(nodes.TypeNodeRef, uint32(r.shape(ps))),
		a.NewScalar(nodes.TypeNodeRef, uint32(compiled)),
	), nil
}

// collectDefines reports the names defined by a lambda body, looking into
// nested forms but not into nested lambdas, quotations or macro
// definitions.
func (r *Runtime) collectDefines(body Index, add func(Index)) {
	a := r.arena
	for cur := body; cur != Nil; cur = r.next(cur) {
		n := a.Get(cur)
		if n.Type != nodes.TypeNodeRef || n.Ref() == Nil {
			continue
		}
		head := n.Ref()
		h := a.Get(head)
		if h.Type != nodes.TypeIdentifier {
			r.collectDefines(head, add)
			continue
		}
		switch r.text(h.Ref()) {
		case "quote", "lambda", "define-syntax":
			continue
		case "define":
			target := r.next(head)
			if target == Nil {
				continue
			}
			t := a.Get(target)
			if t.Type == nodes.TypeIdentifier {
				add(t.Ref())
				r.collectDefines(r.next(target), add)
			} else if t.Type == nodes.TypeNodeRef && t.Ref() != Nil &&
				a.Get(t.Ref()).Type == nodes.TypeIdentifier {
				add(a.Get(t.Ref()).Ref())
			}
			continue
		}
		r.collectDefines(r.next(head), add)
	}
}
