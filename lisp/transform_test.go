package lisp

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/reusee/tailisp/nodes"
)

func compile(t *testing.T, r *Runtime, src string) (Index, error) {
	t.Helper()
	form, err := r.NewReader(strings.NewReader(src)).Read()
	if err != nil {
		t.Fatal(err)
	}
	return r.Compile(form)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{`(foo 1)`, "unbound identifier: foo"},
		{`(list 1 (bar))`, "unbound identifier: bar"},
		{`(define)`, "define: missing variable name"},
		{`(define 5 1)`, "define: missing variable name"},
		{`(set!)`, "set!: missing variable name"},
		{`(set! nope 1)`, "set!: unbound variable: nope"},
		{`(lambda)`, "lambda: missing parameter list"},
		{`(lambda 5 1)`, "lambda: bad parameter list"},
		{`(lambda (1) 1)`, "parameter must be an identifier"},
		{`(quote)`, "quote: missing operand"},
		{`(if 1)`, "if: expects a condition and a consequent"},
		{`(define-syntax)`, "define-syntax: missing macro name"},
		{`(define-syntax m)`, "define-syntax: missing transformer"},
		{`(define (g) (later))`, "unbound identifier: later"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r := testRuntime(t)
			_, err := compile(t, r, tt.src)
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("got %v", err)
			}
			if !errors.Is(err, ErrCompile) {
				t.Fatal("should match ErrCompile")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("got %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestCompileErrorRollback(t *testing.T) {
	r := testRuntime(t)
	run(t, r, `(define x 1)`)
	before := r.Globals()

	outputs, err := r.ExecString(t.Context(), `(define y (bar)) (define (g) (later))`)
	if len(outputs) != 0 {
		t.Fatalf("got %v", outputs)
	}
	if !errors.Is(err, ErrCompile) {
		t.Fatalf("got %v", err)
	}
	if _, ok := r.Global("y"); ok {
		t.Fatal("y should not be bound")
	}
	if _, ok := r.Global("g"); ok {
		t.Fatal("g should not be bound")
	}
	if after := r.Globals(); !slices.Equal(before, after) {
		t.Fatalf("got %v, want %v", after, before)
	}

	// the runtime stays usable
	if got := run(t, r, `(+ x 1)`); got != "2" {
		t.Fatalf("got %s", got)
	}
}

func TestCompileResolution(t *testing.T) {
	r := testRuntime(t)
	run(t, r, `(define g 1)`)
	compiled, err := compile(t, r, `(lambda (a) (lambda (b) (+ a b g)))`)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Print(compiled)
	for _, want := range []string{"#<arg a>", "#<arg b>", "#<var g>", "#<primitive +>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("got %s, missing %s", got, want)
		}
	}
	if strings.Contains(got, "#<var a>") {
		t.Fatalf("got %s", got)
	}
}

func TestCompileTemplate(t *testing.T) {
	r := testRuntime(t)
	compiled, err := compile(t, r, `(lambda (a . rest) (define b 1) (define (c) 2) (if a (define d 3)) (lambda () (define e 4)) (+ a b))`)
	if err != nil {
		t.Fatal(err)
	}
	a := r.Arena()
	head := a.Get(compiled).Ref()
	if h := a.Get(head); h.Type != nodes.TypePrimitive || h.Value != opLambda {
		t.Fatalf("got %+v", h)
	}
	templateCell := a.Get(head).Next
	template := a.Get(templateCell).Ref()
	got := r.names(template)
	want := []string{"a", "rest", "b", "c", "d"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for b := template; b != Nil; b = a.Get(b).Next {
		if r.slotValue(b) != Nil {
			t.Fatal("template slot not empty")
		}
	}

	shape := a.Get(a.Get(templateCell).Next).Ref()
	if s := r.Print(a.NewScalar(nodes.TypeNodeRef, uint32(shape))); s != "(a . rest)" {
		t.Fatalf("got %s", s)
	}
}

func TestCompileTopLevelDefine(t *testing.T) {
	r := testRuntime(t)
	// the name is visible to its own body
	if _, err := compile(t, r, `(define (loop) (loop))`); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Global("loop"); !ok {
		t.Fatal("loop should be bound after compilation")
	}

	// a plain value does not see its own binding
	_, err := compile(t, r, `(define fresh fresh)`)
	var compileErr *CompileError
	if !errors.As(err, &compileErr) || compileErr.Form != "fresh" {
		t.Fatalf("got %v", err)
	}
	if _, ok := r.Global("fresh"); ok {
		t.Fatal("fresh should not be bound")
	}
}

func TestCompileMacroDefineInBody(t *testing.T) {
	r := testRuntime(t)
	run(t, r, `(define-syntax def (lambda (n v) (list 'define n v)))`)

	// fine at top level
	if got := run(t, r, `(def z 1) z`); got != "1" {
		t.Fatalf("got %s", got)
	}

	// locals are collected before expansion
	_, err := r.ExecString(t.Context(), `(lambda () (def w 1))`)
	if !errors.Is(err, ErrCompile) || !strings.Contains(err.Error(), "not at the top of a lambda body") {
		t.Fatalf("got %v", err)
	}
}

func TestQuoteSkipsMacros(t *testing.T) {
	r := testRuntime(t)
	run(t, r, `(define-syntax unless (lambda (c body) (list 'if c () body)))`)
	if got := run(t, r, `'(unless 1 2)`); got != "(unless 1 2)" {
		t.Fatalf("got %s", got)
	}
}
