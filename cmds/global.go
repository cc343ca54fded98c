package cmds

import (
	"fmt"
	"os"
)

// GlobalExecutor holds the commands packages define at init time.
var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

func Fallback(fn func(arg string) error) {
	GlobalExecutor.Fallback(fn)
}

// Execute runs args against the global commands and exits the process on
// failure.
func Execute(args []string) {
	if err := GlobalExecutor.Execute(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		GlobalExecutor.PrintUsage()
		os.Exit(2)
	}
}

func PrintUsage() {
	GlobalExecutor.PrintUsage()
}
