package cmds

import (
	"fmt"
	"reflect"
)

// Command is a node of the command line grammar. A command may run a
// function taking positional arguments, introduce sub commands, or both.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Params returns the argument types of the command function.
func (c *Command) Params() (ret []reflect.Type) {
	if !c.Func.IsValid() {
		return nil
	}
	for i := range c.Func.Type().NumIn() {
		ret = append(ret, c.Func.Type().In(i))
	}
	return
}

var errorType = reflect.TypeFor[error]()

func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}
	switch numRets := fnValue.Type().NumOut(); {
	case numRets >= 2:
		panic(fmt.Errorf("must return 0 or 1 value"))
	case numRets == 1 && fnValue.Type().Out(0) != errorType:
		panic(fmt.Errorf("must return error"))
	}
	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
