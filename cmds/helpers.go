package cmds

import "fmt"

// Var defines name to set a value of type T, and name followed by a dot to
// reset it to the zero value.
func Var[T any](name string) *T {
	var value T

	Define(name, Func(func(v T) {
		value = v
	}).Desc(fmt.Sprintf("set %s", name)))

	var zero T
	Define(name+".", Func(func() {
		value = zero
	}).Desc(fmt.Sprintf("reset %s", name)))

	return &value
}

// Switch defines name to turn a flag on and !name to turn it off.
func Switch(name string) *bool {
	var value bool

	Define(name, Func(func() {
		value = true
	}).Desc(fmt.Sprintf("enable %s", name)))

	Define("!"+name, Func(func() {
		value = false
	}).Desc(fmt.Sprintf("disable %s", name)))

	return &value
}

// Collect defines name to append a value each time it is given.
func Collect[T any](name string) *[]T {
	var value []T
	Define(name, Func(func(v T) {
		value = append(value, v)
	}).Desc(fmt.Sprintf("add to %s, repeatable", name)))
	return &value
}
