package configs

import (
	"errors"
	"fmt"
)

// First returns the value at path from the highest precedence file that
// defines it, or the zero value. Load and decode errors panic with the key
// attached, since a broken config file should stop the interpreter before
// it reads any input.
func First[T any](loader Loader, path string) T {
	var value T
	err := loader.AssignFirst(path, &value)
	if err == nil || errors.Is(err, ErrValueNotFound) {
		return value
	}
	panic(keyError(path, err))
}

func keyError(path string, err error) error {
	return fmt.Errorf("config %s: %w", path, err)
}
