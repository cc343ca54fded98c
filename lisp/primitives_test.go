package lisp

import (
	"errors"
	"strings"
	"testing"

	"github.com/reusee/tailisp/nodes"
)

func TestPrimitives(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`(+ 1 2 3)`, "6"},
		{`(+)`, "0"},
		{`(- 10 3 2)`, "5"},
		{`(- 4)`, "-4"},
		{`(* 2 3 4)`, "24"},
		{`(*)`, "1"},
		{`(/ 20 2 5)`, "2"},
		{`(/ -7 2)`, "-3"},
		{`(% 17 5)`, "2"},

		{`(= 1 1 1)`, "#t"},
		{`(= 1 2)`, "()"},
		{`(< 1 2 3)`, "#t"},
		{`(< 1 3 2)`, "()"},
		{`(> 3 2)`, "#t"},
		{`(<= 2 2 3)`, "#t"},
		{`(>= 3 3)`, "#t"},
		{`(>= 2 3)`, "()"},

		{`(eq? 'a 'a)`, "#t"},
		{`(eq? 'a 'b)`, "()"},
		{`(eq? 1 1)`, "#t"},
		{`(eq? 1 'a)`, "()"},
		{`(eq? "s" "s")`, "#t"},
		{`(eq? () ())`, "#t"},
		{`(eq? () 'a)`, "()"},
		{`(not ())`, "#t"},
		{`(not 0)`, "()"},
		{`(null? '(1))`, "()"},
		{`(null? (cdr '(1)))`, "#t"},

		{`(car '(1 2))`, "1"},
		{`(car '((a b) c))`, "(a b)"},
		{`(car ())`, "()"},
		{`(cdr '(1 2))`, "(2)"},
		{`(cdr '(1))`, "()"},
		{`(cdr '(1 . 2))`, "2"},
		{`(cdr ())`, "()"},
		{`(cons 1 '(2 3))`, "(1 2 3)"},
		{`(cons 1 2)`, "(1 . 2)"},
		{`(cons 1 ())`, "(1)"},
		{`(cons '(a) '(b))`, "((a) b)"},
		{`(car (cons 1 2))`, "1"},
		{`(cdr (cons 1 2))`, "2"},
		{`(list 1 (+ 1 1) 'x)`, "(1 2 x)"},
		{`(list)`, "()"},
		{`(list (list 1) ())`, "((1) ())"},
		{`(length '(1 2 3))`, "3"},
		{`(length ())`, "0"},
		{`(length (list 1 2))`, "2"},
		{`(begin 1 2 3)`, "3"},
		{`(begin)`, "()"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r := testRuntime(t)
			if got := run(t, r, tt.src); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrimitiveErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{`(/ 1 0)`, "division by zero"},
		{`(% 1 0)`, "division by zero"},
		{`(/ 1)`, "at least 2 arguments"},
		{`(+ 1 'a)`, "not an integer"},
		{`(< "a" 1)`, "not an integer"},
		{`(car 1)`, "not a list"},
		{`(length 'a)`, "not a list"},
		{`(cons 1)`, "expects 2 arguments"},
		{`(not)`, "expects 1 arguments"},
		{`(eq? 1 2 3)`, "expects 2 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r := testRuntime(t)
			outputs, err := r.ExecString(t.Context(), tt.src)
			// a failing primitive yields the empty list
			if len(outputs) != 1 || outputs[0] != "()" {
				t.Fatalf("got %v", outputs)
			}
			var runtimeErr *RuntimeError
			if !errors.As(err, &runtimeErr) {
				t.Fatalf("got %v", err)
			}
			if !strings.Contains(runtimeErr.Msg, tt.msg) {
				t.Fatalf("got %q, want %q", runtimeErr.Msg, tt.msg)
			}
		})
	}
}

func TestPrimitivesAsValues(t *testing.T) {
	r := testRuntime(t)
	run(t, r, `(define (apply2 f a b) (f a b))`)
	if got := run(t, r, `(apply2 + 3 4)`); got != "7" {
		t.Fatalf("got %s", got)
	}
	if got := run(t, r, `(apply2 cons 1 2)`); got != "(1 . 2)" {
		t.Fatalf("got %s", got)
	}
	if got := run(t, r, `(define plus +) (plus 1 1)`); got != "2" {
		t.Fatalf("got %s", got)
	}
}

func TestPrimitiveNames(t *testing.T) {
	names := PrimitiveNames()
	if names[opQuote] != "quote" || names[opLambda] != "lambda" || names[opDefineSyntax] != "define-syntax" {
		t.Fatalf("got %v", names)
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicated %s", name)
		}
		seen[name] = true
	}
	if !seen["+"] || !seen["car"] || !seen["length"] {
		t.Fatalf("got %v", names)
	}
}

func TestSpecialFormsAsValues(t *testing.T) {
	for _, name := range []string{
		"define", "set!", "lambda", "if", "quote", "define-syntax",
	} {
		t.Run(name, func(t *testing.T) {
			r := testRuntime(t)
			for _, src := range []string{
				`(define d ` + name + `)`,
				`(list ` + name + `)`,
				`(lambda (x) (x ` + name + `))`,
			} {
				outputs, err := r.ExecString(t.Context(), src)
				if len(outputs) != 0 {
					t.Fatalf("%s: got %v", src, outputs)
				}
				var compileErr *CompileError
				if !errors.As(err, &compileErr) {
					t.Fatalf("%s: got %v", src, err)
				}
				if compileErr.Msg != "special form used as value" || compileErr.Form != name {
					t.Fatalf("%s: got %v", src, compileErr)
				}
			}
			if _, ok := r.Global("d"); ok {
				t.Fatal("d should not be bound")
			}
		})
	}

	// the special forms themselves still work
	r := testRuntime(t)
	if got := run(t, r, `(if #t '(1 2) 3)`); got != "(1 2)" {
		t.Fatalf("got %s", got)
	}
}

func TestLoweredOperands(t *testing.T) {
	r := testRuntime(t)
	a := r.Arena()
	ints := func(values ...uint32) Index {
		head := Nil
		for i := len(values) - 1; i >= 0; i-- {
			head = a.Chain(nodes.TypeInt, values[i], head)
		}
		return head
	}

	tests := []struct {
		op   uint32
		args Index
		msg  string
	}{
		{opDefine, Nil, "define: expects 2 arguments, got 0"},
		{opSet, Nil, "set!: expects 2 arguments, got 0"},
		{opDefine, ints(1, 2), "define: not a variable: 1"},
		{opSet, ints(1, 2), "set!: not a variable: 1"},
		{opLambda, ints(100000, 1), "lambda: expects 3 arguments, got 2"},
		{opLambda, ints(100000, 1, 2), "lambda: bad operand: 100000"},
		{opDefineSyntax, ints(1), "define-syntax: expects 2 arguments, got 1"},
		{opDefineSyntax, ints(1, 2), "define-syntax: not a name: 1"},
	}
	for _, tt := range tests {
		p := primitives[tt.op]
		if ret := p.fn(r, tt.args, r.env); ret != Nil {
			t.Fatalf("%s: got %s", p.name, r.Print(ret))
		}
		diags := r.Diagnostics()
		if len(diags) != 1 {
			t.Fatalf("%s: got %v", p.name, diags)
		}
		var runtimeErr *RuntimeError
		if !errors.As(diags[0], &runtimeErr) || runtimeErr.Msg != tt.msg {
			t.Fatalf("got %v, want %q", diags[0], tt.msg)
		}
	}
}
