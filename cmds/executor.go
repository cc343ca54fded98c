package cmds

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/reusee/tailisp/vars"
)

type Executor struct {
	commands map[string]*Command
	fallback func(arg string) error
	output   io.Writer
}

func NewExecutor() *Executor {
	ret := &Executor{
		commands: make(map[string]*Command),
		output:   os.Stderr,
	}

	usage := Func(func() {
		ret.PrintUsage()
		os.Exit(0)
	}).
		Desc("print this usage").
		Alias("help", "-help", "--help")
	ret.Define("-h", usage)

	return ret
}

func (p *Executor) Define(name string, command *Command) {
	if _, ok := p.commands[name]; ok {
		panic(fmt.Errorf("duplicated command %s", name))
	}
	p.commands[name] = command
	for _, name := range command.Aliases {
		if _, ok := p.commands[name]; ok {
			panic(fmt.Errorf("duplicated command %s", name))
		}
		p.commands[name] = command
	}
}

// Fallback sets the handler for arguments that name no command, such as
// source files given on the command line.
func (p *Executor) Fallback(fn func(arg string) error) {
	p.fallback = fn
}

func (p *Executor) Execute(args []string) error {
	commands := p.commands
	for len(args) > 0 {
		name := strings.TrimSpace(args[0])
		args = args[1:]

		command, ok := commands[name]
		if !ok {
			if p.fallback != nil {
				if err := p.fallback(name); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("unknown command: %s", name)
		}

		if command.Func.IsValid() {
			var callArgs []reflect.Value
			for _, t := range command.Params() {
				value, err := getArg(t, args)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if len(args) > 0 {
					args = args[1:]
				}
				callArgs = append(callArgs, value)
			}
			rets := command.Func.Call(callArgs)
			if len(rets) > 0 && !rets[0].IsNil() {
				return rets[0].Interface().(error)
			}
		}

		if len(command.Subs) > 0 {
			commands = maps.Clone(commands)
			for subname, cmd := range command.Subs {
				if _, ok := commands[subname]; ok {
					return fmt.Errorf("duplicated sub command: %s %s", name, subname)
				}
				commands[subname] = cmd
			}
		}
	}
	return nil
}

func (p *Executor) MustExecute(args []string) {
	if err := p.Execute(args); err != nil {
		panic(err)
	}
}

// PrintUsage writes every command, its aliases, arguments and description.
func (p *Executor) PrintUsage() {
	printUsage(p.output, p.commands, 0)
}

func printUsage(w io.Writer, commands map[string]*Command, depth int) {
	seen := make(map[*Command]bool)
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		command := commands[name]
		if command == nil || seen[command] || slices.Contains(command.Aliases, name) {
			continue
		}
		seen[command] = true

		line := strings.Repeat("  ", depth) + name
		for _, alias := range command.Aliases {
			if alias != name {
				line += ", " + alias
			}
		}
		for _, t := range command.Params() {
			line += " <" + t.String() + ">"
		}
		if command.Description != "" {
			line += "\t" + command.Description
		}
		fmt.Fprintln(w, line)

		if len(command.Subs) > 0 {
			printUsage(w, command.Subs, depth+1)
		}
	}
}

func getArg(t reflect.Type, args []string) (ret reflect.Value, err error) {
	if len(args) == 0 {
		if t.Kind() == reflect.Pointer {
			// optional, use zero value
			return reflect.New(t.Elem()), nil
		}
		return ret, fmt.Errorf("expecting argument, got nothing")
	}

	if t.Kind() == reflect.Pointer {
		elemValue, err := getArg(t.Elem(), args)
		if err != nil {
			return ret, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elemValue)
		return ptr, nil
	}

	str := args[0]
	ret = reflect.New(t).Elem()

	switch t.Kind() {

	case reflect.Bool:
		v, err := vars.StrToBool(str)
		if err != nil {
			return ret, err
		}
		ret.SetBool(v)
		return ret, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(str, 10, t.Bits())
		if err != nil {
			return ret, fmt.Errorf("convert %s to int: %w", str, err)
		}
		ret.SetInt(v)
		return ret, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(str, 10, t.Bits())
		if err != nil {
			return ret, fmt.Errorf("convert %s to unsigned int: %w", str, err)
		}
		ret.SetUint(v)
		return ret, nil

	case reflect.String:
		ret.SetString(str)
		return ret, nil

	}

	return ret, fmt.Errorf("unsupported type: %v", t)
}
