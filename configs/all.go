package configs

import (
	"fmt"
	"iter"
)

// All yields the value at path from every file that defines it, in
// precedence order. Errors panic as in First.
func All[T any](loader Loader, path string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for found, err := range loader.iter(path) {
			if err != nil {
				panic(keyError(path, err))
			}
			var v T
			if err := found.value.Decode(&v); err != nil {
				panic(wrap(fmt.Errorf("decode %s in %s: %w", path, found.path, err)))
			}
			if !yield(v) {
				break
			}
		}
	}
}
