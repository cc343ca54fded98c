package lisp

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/reusee/tailisp/logs"
)

// Result is the outcome of one top-level command. Value is only valid
// until the next command runs, since a collection may follow.
type Result struct {
	Value       Index
	Text        string
	Err         error
	Diagnostics []error
}

// Run compiles and evaluates one form read by a Reader.
func (r *Runtime) Run(ctx context.Context, form Index) Result {
	r.commands++
	r.totalCommands++

	compiled, err := r.Compile(form)
	if err != nil {
		r.logger.DebugContext(ctx, "compile", "error", err)
		return Result{
			Err:         err,
			Diagnostics: r.Diagnostics(),
		}
	}

	value := r.Eval(compiled, r.env)
	return Result{
		Value:       value,
		Text:        r.Print(value),
		Diagnostics: r.Diagnostics(),
	}
}

// Exec reads and runs every form in src, calling emit after each one.
// Collection happens between commands according to the configured policy.
// A syntax error stops reading.
func (r *Runtime) Exec(ctx context.Context, src io.Reader, emit func(Result)) error {
	reader := r.NewReader(src)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		form, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return logs.WrapSpan(ctx, err)
		}

		cmdCtx := ctx
		if r.newSpan != nil {
			cmdCtx, _ = r.newSpan(ctx, "", "command", r.totalCommands+1)
		}
		result := r.Run(cmdCtx, form)
		if emit != nil {
			emit(result)
		}
		r.maybeCollect(cmdCtx)
	}
}

// ExecString runs src and returns the printed value of every command that
// compiled. Compile errors, runtime diagnostics and syntax errors are
// joined into the returned error.
func (r *Runtime) ExecString(ctx context.Context, src string) ([]string, error) {
	var outputs []string
	var errs []error
	err := r.Exec(ctx, strings.NewReader(src), func(result Result) {
		if result.Err != nil {
			errs = append(errs, result.Err)
		} else {
			outputs = append(outputs, result.Text)
		}
		errs = append(errs, result.Diagnostics...)
	})
	if err != nil {
		errs = append(errs, err)
	}
	return outputs, errors.Join(errs...)
}

// LoadFile runs every form in the file at path, logging each failure.
func (r *Runtime) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()

	var errs []error
	err = r.Exec(ctx, f, func(result Result) {
		if result.Err != nil {
			r.logger.WarnContext(ctx, "load", "file", path, "error", result.Err)
			errs = append(errs, result.Err)
		}
		for _, diag := range result.Diagnostics {
			r.logger.WarnContext(ctx, "load", "file", path, "error", diag)
		}
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
