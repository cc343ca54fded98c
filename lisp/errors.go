package lisp

import (
	"errors"
	"fmt"

	"github.com/reusee/e5"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

var (
	ErrCompile = errors.New("compile error")
	ErrRuntime = errors.New("runtime error")
	ErrSyntax  = errors.New("syntax error")
)

// CompileError aborts the compilation of one top-level command.
type CompileError struct {
	Msg  string
	Form string
}

func (e *CompileError) Error() string {
	if e.Form == "" {
		return "compile: " + e.Msg
	}
	return fmt.Sprintf("compile: %s: %s", e.Msg, e.Form)
}

func (e *CompileError) Unwrap() error {
	return ErrCompile
}

// RuntimeError is a diagnostic raised during evaluation. Evaluation goes
// on with a substitute value.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return "runtime: " + e.Msg
}

func (e *RuntimeError) Unwrap() error {
	return ErrRuntime
}

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax: line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func (r *Runtime) compileError(form Index, format string, args ...any) error {
	err := &CompileError{
		Msg: fmt.Sprintf(format, args...),
	}
	if form != Nil {
		err.Form = r.Print(form)
	}
	return err
}

// errorf records a runtime diagnostic.
func (r *Runtime) errorf(format string, args ...any) {
	err := &RuntimeError{
		Msg: fmt.Sprintf(format, args...),
	}
	r.diagnostics = append(r.diagnostics, err)
	r.logger.Debug("runtime error", "error", err)
}

// Diagnostics returns and clears the runtime errors recorded since the
// last call.
func (r *Runtime) Diagnostics() []error {
	ret := r.diagnostics
	r.diagnostics = nil
	return ret
}
