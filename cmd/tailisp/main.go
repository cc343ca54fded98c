package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/tailisp/cmds"
	"github.com/reusee/tailisp/debugs"
	"github.com/reusee/tailisp/lisp"
	"github.com/reusee/tailisp/lispconfigs"
	"github.com/reusee/tailisp/logs"
	"github.com/reusee/tailisp/modes"
	"golang.org/x/term"
)

// input is one source given on the command line, a file or an expression.
type input struct {
	path string
	expr string
}

var inputs []input

var (
	interactive = cmds.Switch("-i")
	showStats   = cmds.Switch("-stats")
)

func init() {
	cmds.Define("-load", cmds.Func(func(path string) {
		inputs = append(inputs, input{path: path})
	}).Desc("load a source file").Alias("-l"))

	cmds.Define("-e", cmds.Func(func(expr string) {
		inputs = append(inputs, input{expr: expr})
	}).Desc("evaluate an expression and print its value"))

	cmds.Fallback(func(arg string) error {
		if _, err := os.Stat(arg); err != nil {
			return fmt.Errorf("unknown command or file: %s", arg)
		}
		inputs = append(inputs, input{path: arg})
		return nil
	})
}

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	failed := false

	dscope.New(
		new(lisp.Module),
		modes.ForProduction(),
	).Call(func(
		r *lisp.Runtime,
		logger logs.Logger,
		historyFile lispconfigs.HistoryFile,
		tap debugs.Tap,
		probe debugs.Probe,
		newSpan logs.NewSpan,
	) {

		for _, in := range inputs {
			if in.path != "" {
				inCtx, _ := newSpan(ctx, "", "load", in.path)
				if err := r.LoadFile(inCtx, in.path); err != nil {
					failed = true
				}
				continue
			}
			inCtx, _ := newSpan(ctx, "", "expr", in.expr)
			if !execReader(inCtx, r, os.Stdout, os.Stderr, strings.NewReader(in.expr)) {
				failed = true
			}
		}

		if len(inputs) == 0 || *interactive {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				runREPL(ctx, &repl{
					runtime:     r,
					logger:      logger,
					tap:         tap,
					probe:       probe,
					historyFile: string(historyFile),
					stdout:      os.Stdout,
					stderr:      os.Stderr,
				})
			} else {
				if !execReader(ctx, r, os.Stdout, os.Stderr, os.Stdin) {
					failed = true
				}
			}
		}

		if *showStats {
			buf, err := r.Stats().YAML()
			if err != nil {
				logger.Error("stats", "error", err)
				failed = true
				return
			}
			os.Stderr.Write(buf)
		}
	})

	if failed {
		os.Exit(1)
	}
}

// execReader runs every form from src, printing values to stdout and
// errors to stderr. It reports whether everything succeeded.
func execReader(ctx context.Context, r *lisp.Runtime, stdout, stderr io.Writer, src io.Reader) bool {
	ok := true
	err := r.Exec(ctx, src, func(result lisp.Result) {
		if !printResult(stdout, stderr, result) {
			ok = false
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		ok = false
	}
	return ok
}

func printResult(stdout, stderr io.Writer, result lisp.Result) bool {
	ok := true
	if result.Err != nil {
		fmt.Fprintf(stderr, "error: %v\n", result.Err)
		ok = false
	} else {
		fmt.Fprintln(stdout, result.Text)
	}
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(stderr, "error: %v\n", diag)
		ok = false
	}
	return ok
}
