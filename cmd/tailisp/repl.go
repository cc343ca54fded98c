package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/tailisp/debugs"
	"github.com/reusee/tailisp/lisp"
	"github.com/reusee/tailisp/logs"
)

const (
	prompt         = "> "
	continuePrompt = ". "
)

type repl struct {
	runtime     *lisp.Runtime
	logger      logs.Logger
	tap         debugs.Tap
	probe       debugs.Probe
	historyFile string
	stdout      io.Writer
	stderr      io.Writer
}

var errQuit = errors.New("quit")

func runREPL(ctx context.Context, p *repl) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: p.historyFile,
	})
	if err != nil {
		fmt.Fprintf(p.stderr, "error: %v\n", err)
		return
	}
	defer rl.Close()

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			break
		}

		if pending.Len() == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(line), ",") {
				if err := p.meta(ctx, strings.TrimSpace(line)); errors.Is(err, errQuit) {
					break
				} else if err != nil {
					fmt.Fprintf(p.stderr, "error: %v\n", err)
				}
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
		if depth(pending.String()) > 0 {
			rl.SetPrompt(continuePrompt)
			continue
		}
		rl.SetPrompt(prompt)

		src := pending.String()
		pending.Reset()
		execReader(ctx, p.runtime, p.stdout, p.stderr, strings.NewReader(src))
	}
}

// meta runs a REPL command starting with a comma.
func (p *repl) meta(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(line, " ")
	r := p.runtime
	p.logger.DebugContext(ctx, "repl command", "name", name)
	switch name {

	case ",quit", ",q":
		return errQuit

	case ",gc":
		stats := r.Collect(ctx)
		fmt.Fprintf(p.stdout, "marked %d, free %d, pause %v\n",
			stats.LastMarked,
			stats.Free,
			stats.LastPause,
		)

	case ",stats":
		buf, err := r.Stats().YAML()
		if err != nil {
			return err
		}
		p.stdout.Write(buf)

	case ",tap":
		p.tap(ctx, "runtime", r.TapGlobals())

	case ",probe":
		if strings.TrimSpace(arg) == "" {
			return errors.New("usage: ,probe EXPR")
		}
		out, err := p.probe(ctx, arg, r.TapGlobals())
		if err != nil {
			return err
		}
		fmt.Fprintln(p.stdout, out)

	case ",help":
		fmt.Fprint(p.stdout, strings.Join([]string{
			",gc          collect garbage now",
			",stats       print runtime statistics",
			",tap         inspect the runtime in a starlark session",
			",probe EXPR  evaluate a starlark expression against the runtime",
			",quit        exit",
		}, "\n")+"\n")

	default:
		return fmt.Errorf("unknown command %s, try ,help", name)
	}
	return nil
}

// depth returns how many lists are left open at the end of src. Strings
// and comments are skipped.
func depth(src string) int {
	n := 0
	inString := false
	escaped := false
	inComment := false
	for _, c := range src {
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			}
		case inString:
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == ';':
			inComment = true
		case c == '(':
			n++
		case c == ')':
			n--
		}
	}
	if inString {
		// an unterminated string keeps the input open
		return max(n, 1)
	}
	return n
}
