package configs

import (
	"fmt"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads CUE files lazily and looks up values by path. Files listed
// earlier take precedence.
type Loader struct {
	paths    []string
	getRoots func() ([]rootInfo, error)
}

type rootInfo struct {
	value cue.Value
	path  string
}

// NewLoader returns a loader for filePaths. A non-empty schemaSrc is the
// body of a closed struct every file must unify with.
func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		paths: filePaths,
		getRoots: sync.OnceValues(func() ([]rootInfo, error) {
			return loadRoots(filePaths, schemaSrc)
		}),
	}
}

func loadRoots(filePaths []string, schemaSrc string) (ret []rootInfo, err error) {
	ctx := cuecontext.New()

	var schema cue.Value
	if schemaSrc != "" {
		schema = ctx.CompileString("close({" + schemaSrc + "})")
		if err := schema.Err(); err != nil {
			return nil, wrap(fmt.Errorf("compile schema: %w", err))
		}
	}

	for _, filePath := range filePaths {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, wrap(err)
		}

		value := ctx.CompileBytes(
			content,
			cue.Filename(filePath),
		)
		if err = value.Err(); err != nil {
			return nil, wrap(fmt.Errorf("compile %s: %w", filePath, err))
		}

		if schema.Exists() {
			if err := schema.Unify(value).Validate(); err != nil {
				return nil, wrap(fmt.Errorf("validate %s: %w", filePath, err))
			}
		}

		ret = append(ret, rootInfo{
			value: value,
			path:  filePath,
		})
	}

	return
}

// Paths returns the files this loader reads, in precedence order.
func (l Loader) Paths() []string {
	return l.paths
}

// Err reports a load or validation error without looking anything up.
func (l Loader) Err() error {
	_, err := l.getRoots()
	return err
}

func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		for found, err := range l.iter(path) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(&found.value, nil) {
				return
			}
		}
	}
}

func (l Loader) iter(path string) iter.Seq2[rootInfo, error] {
	return func(yield func(rootInfo, error) bool) {
		roots, err := l.getRoots()
		if err != nil {
			yield(rootInfo{}, err)
			return
		}

		cuePath := cue.ParsePath(path)
		for _, info := range roots {
			value := info.value.LookupPath(cuePath)
			if value.Err() != nil || !value.Exists() {
				continue
			}
			if !yield(rootInfo{value: value, path: info.path}, nil) {
				return
			}
		}
	}
}

func (l Loader) AssignFirst(path string, target any) error {
	_, err := l.AssignFirstFrom(path, target)
	return err
}

// AssignFirstFrom is AssignFirst that also reports which file the value
// came from.
func (l Loader) AssignFirstFrom(path string, target any) (string, error) {
	for found, err := range l.iter(path) {
		if err != nil {
			return "", err
		}
		if err := found.value.Decode(target); err != nil {
			return found.path, wrap(fmt.Errorf("decode %s in %s: %w", path, found.path, err))
		}
		return found.path, nil
	}
	return "", ErrValueNotFound
}
