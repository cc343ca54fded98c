package lisp

import (
	"github.com/reusee/tailisp/nodes"
)

// Primitive receives its operands as a list. Special primitives get the
// compiled operands unevaluated; the others get a fresh list of values.
type Primitive func(r *Runtime, args Index, env Index) Index

type primitive struct {
	name    string
	special bool
	fn      Primitive
}

const (
	opQuote uint32 = iota
	opLambda
	opIf
	opDefine
	opSet
	opDefineSyntax
)

var (
	primitives   []primitive
	primitiveOps = make(map[string]uint32)
)

func init() {
	primitives = []primitive{
		opQuote:        {"quote", true, primQuote},
		opLambda:       {"lambda", true, primLambda},
		opIf:           {"if", false, primIf},
		opDefine:       {"define", false, primDefine},
		opSet:          {"set!", false, primSet},
		opDefineSyntax: {"define-syntax", false, primDefineSyntax},

		{"+", false, fold("+", 0, func(a, b int32) int32 { return a + b })},
		{"*", false, fold("*", 1, func(a, b int32) int32 { return a * b })},
		{"-", false, primSub},
		{"/", false, primDiv},
		{"%", false, primMod},

		{"=", false, compare("=", func(a, b int32) bool { return a == b })},
		{"<", false, compare("<", func(a, b int32) bool { return a < b })},
		{">", false, compare(">", func(a, b int32) bool { return a > b })},
		{"<=", false, compare("<=", func(a, b int32) bool { return a <= b })},
		{">=", false, compare(">=", func(a, b int32) bool { return a >= b })},

		{"eq?", false, primEq},
		{"not", false, primNot},
		{"null?", false, primNot},
		{"car", false, primCar},
		{"cdr", false, primCdr},
		{"cons", false, primCons},
		{"list", false, primList},
		{"length", false, primLength},
		{"begin", false, primBegin},
	}
	for op, p := range primitives {
		primitiveOps[p.name] = uint32(op)
	}
}

// PrimitiveNames lists every primitive in opcode order.
func PrimitiveNames() []string {
	ret := make([]string, len(primitives))
	for i, p := range primitives {
		ret[i] = p.name
	}
	return ret
}

// argv collects the cells of a list.
func (r *Runtime) argv(args Index) (ret []Index) {
	for cur := args; cur != Nil; cur = r.next(cur) {
		ret = append(ret, cur)
	}
	return
}

func (r *Runtime) arity(name string, args []Index, n int) bool {
	if len(args) != n {
		r.errorf("%s: expects %d arguments, got %d", name, n, len(args))
		return false
	}
	return true
}

func (r *Runtime) ints(name string, args Index) ([]int32, bool) {
	var ret []int32
	for _, cell := range r.argv(args) {
		n := r.arena.Get(cell)
		if n.Type != nodes.TypeInt {
			r.errorf("%s: not an integer: %s", name, r.Print(cell))
			return nil, false
		}
		ret = append(ret, n.Int())
	}
	return ret, true
}

func primQuote(r *Runtime, args Index, env Index) Index {
	if args == Nil {
		return Nil
	}
	return r.detach(args)
}

// primLambda packages the lowered (template shape body) operands with env
// into a closure record.
func primLambda(r *Runtime, args Index, env Index) Index {
	a := r.arena
	v := r.argv(args)
	if !r.arity("lambda", v, 3) {
		return Nil
	}
	for _, cell := range v {
		if a.Get(cell).Type != nodes.TypeNodeRef {
			r.errorf("lambda: bad operand: %s", r.Print(cell))
			return Nil
		}
	}
	template, shape, body := a.Get(v[0]), a.Get(v[1]), a.Get(v[2])
	c4 := a.Chain(nodes.TypeNodeRef, body.Value, Nil)
	c3 := a.Chain(nodes.TypeNodeRef, shape.Value, c4)
	c2 := a.Chain(nodes.TypeNodeRef, uint32(env), c3)
	c1 := a.Chain(nodes.TypeNodeRef, template.Value, c2)
	return a.NewScalar(nodes.TypeClosure, uint32(c1))
}

func primIf(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if len(v) < 2 {
		return Nil
	}
	if !r.isNil(v[0]) {
		return r.Eval(v[1], env)
	}
	if len(v) > 2 {
		return r.Eval(v[2], env)
	}
	return Nil
}

func primDefine(r *Runtime, args Index, env Index) Index {
	return r.assign("define", args, env)
}

func primSet(r *Runtime, args Index, env Index) Index {
	return r.assign("set!", args, env)
}

// assign stores the value operand in the slot operand.
func (r *Runtime) assign(name string, args Index, env Index) Index {
	v := r.argv(args)
	if !r.arity(name, v, 2) {
		return Nil
	}
	switch r.arena.Get(v[0]).Type {
	case nodes.TypeVarSlotRef, nodes.TypeArgSlotRef:
	default:
		r.errorf("%s: not a variable: %s", name, r.Print(v[0]))
		return Nil
	}
	value := r.detach(v[1])
	r.store(v[0], value, env)
	return value
}

func primDefineSyntax(r *Runtime, args Index, env Index) Index {
	a := r.arena
	v := r.argv(args)
	if !r.arity("define-syntax", v, 2) {
		return Nil
	}
	if a.Get(v[0]).Type != nodes.TypeIdentifier {
		r.errorf("define-syntax: not a name: %s", r.Print(v[0]))
		return Nil
	}
	if a.Get(v[1]).Type != nodes.TypeClosure {
		r.errorf("define-syntax: not a closure: %s", r.Print(v[1]))
		return Nil
	}
	r.macros = r.bind(r.macros, a.Get(v[0]).Ref(), r.detach(v[1]))
	return r.detach(v[0])
}

func fold(name string, unit int32, op func(a, b int32) int32) Primitive {
	return func(r *Runtime, args Index, env Index) Index {
		values, ok := r.ints(name, args)
		if !ok {
			return Nil
		}
		acc := unit
		for _, v := range values {
			acc = op(acc, v)
		}
		return r.arena.NewInt(acc)
	}
}

func primSub(r *Runtime, args Index, env Index) Index {
	values, ok := r.ints("-", args)
	if !ok {
		return Nil
	}
	switch len(values) {
	case 0:
		return r.arena.NewInt(0)
	case 1:
		return r.arena.NewInt(-values[0])
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc -= v
	}
	return r.arena.NewInt(acc)
}

func divide(name string, op func(a, b int32) int32) Primitive {
	return func(r *Runtime, args Index, env Index) Index {
		values, ok := r.ints(name, args)
		if !ok {
			return Nil
		}
		if len(values) < 2 {
			r.errorf("%s: expects at least 2 arguments, got %d", name, len(values))
			return Nil
		}
		acc := values[0]
		for _, v := range values[1:] {
			if v == 0 {
				r.errorf("%s: division by zero", name)
				return Nil
			}
			acc = op(acc, v)
		}
		return r.arena.NewInt(acc)
	}
}

var (
	primDiv = divide("/", func(a, b int32) int32 { return a / b })
	primMod = divide("%", func(a, b int32) int32 { return a % b })
)

func compare(name string, ok func(a, b int32) bool) Primitive {
	return func(r *Runtime, args Index, env Index) Index {
		values, valid := r.ints(name, args)
		if !valid {
			return Nil
		}
		for i := 1; i < len(values); i++ {
			if !ok(values[i-1], values[i]) {
				return Nil
			}
		}
		return True
	}
}

func primEq(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if !r.arity("eq?", v, 2) {
		return Nil
	}
	return r.boolean(r.eq(v[0], v[1]))
}

// eq compares atoms by value and lists by identity.
func (r *Runtime) eq(x, y Index) bool {
	if r.isNil(x) || r.isNil(y) {
		return r.isNil(x) && r.isNil(y)
	}
	a, b := r.arena.Get(x), r.arena.Get(y)
	if a.Type != b.Type {
		return false
	}
	if a.Type == nodes.TypeCharArray {
		return r.text(x) == r.text(y)
	}
	return a.Value == b.Value
}

func primNot(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if !r.arity("not", v, 1) {
		return Nil
	}
	return r.boolean(r.isNil(v[0]))
}

// list returns the head cell of the list value in cell, reporting an error
// for non-lists.
func (r *Runtime) list(name string, cell Index) (Index, bool) {
	n := r.arena.Get(cell)
	if n.Type != nodes.TypeNodeRef {
		r.errorf("%s: not a list: %s", name, r.Print(cell))
		return Nil, false
	}
	return n.Ref(), true
}

func primCar(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if !r.arity("car", v, 1) {
		return Nil
	}
	head, ok := r.list("car", v[0])
	if !ok || head == Nil {
		return Nil
	}
	return r.detach(head)
}

func primCdr(r *Runtime, args Index, env Index) Index {
	a := r.arena
	v := r.argv(args)
	if !r.arity("cdr", v, 1) {
		return Nil
	}
	head, ok := r.list("cdr", v[0])
	if !ok || head == Nil {
		return Nil
	}
	h := a.Get(head)
	if h.Element || h.Next == Nil {
		return Nil
	}
	if a.Get(h.Next).Element {
		// dotted tail
		return r.detach(h.Next)
	}
	return a.NewScalar(nodes.TypeNodeRef, uint32(h.Next))
}

func primCons(r *Runtime, args Index, env Index) Index {
	a := r.arena
	v := r.argv(args)
	if !r.arity("cons", v, 2) {
		return Nil
	}
	var tail Index
	switch t := a.Get(v[1]); {
	case r.isNil(v[1]):
	case t.Type == nodes.TypeNodeRef:
		tail = t.Ref()
	default:
		tail = r.detach(v[1])
	}
	c := a.Copy(v[0], 0)
	n := a.At(c)
	n.Element = false
	n.Next = tail
	return a.NewScalar(nodes.TypeNodeRef, uint32(c))
}

func primList(r *Runtime, args Index, env Index) Index {
	if args == Nil {
		return Nil
	}
	return r.arena.NewScalar(nodes.TypeNodeRef, uint32(args))
}

func primLength(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if !r.arity("length", v, 1) {
		return Nil
	}
	head, ok := r.list("length", v[0])
	if !ok {
		return Nil
	}
	return r.arena.NewInt(int32(r.arena.Length(head)))
}

func primBegin(r *Runtime, args Index, env Index) Index {
	v := r.argv(args)
	if len(v) == 0 {
		return Nil
	}
	return r.detach(v[len(v)-1])
}
