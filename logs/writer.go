package logs

import (
	"fmt"
	"io"
	"os"

	"github.com/reusee/tailisp/cmds"
)

// Writer is where terminal logs go. Stdout is left to the interpreter.
type Writer io.Writer

var logFileFlag = cmds.Var[string]("-log-file")

// Writer appends to the -log-file path when one is given, else stderr.
func (Module) Writer() Writer {
	path := *logFileFlag
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		return os.Stderr
	}
	return f
}
