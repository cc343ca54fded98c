package debugs

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

// toStarlarkValue converts runtime snapshots into Starlark values. Structs
// become dicts keyed like their YAML dump, durations become strings and
// functions become callable builtins.
func toStarlarkValue(v any) starlark.Value {
	switch v := v.(type) {
	case nil:
		return starlark.None
	case []byte:
		return starlark.Bytes(v)
	case time.Duration:
		return starlark.String(v.String())
	case starlark.Value:
		return v
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool())

	case reflect.String:
		return starlark.String(value.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(value.Uint())

	case reflect.Float32, reflect.Float64:
		return starlark.Float(value.Float())

	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, value.Len())
		for i := range elems {
			elems[i] = toStarlarkValue(value.Index(i).Interface())
		}
		return starlark.NewList(elems)

	case reflect.Map:
		d := starlark.NewDict(value.Len())
		iter := value.MapRange()
		for iter.Next() {
			d.SetKey(
				toStarlarkValue(iter.Key().Interface()),
				toStarlarkValue(iter.Value().Interface()),
			)
		}
		return d

	case reflect.Struct:
		typ := value.Type()
		d := starlark.NewDict(typ.NumField())
		for i := range typ.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			d.SetKey(
				starlark.String(fieldName(field)),
				toStarlarkValue(value.Field(i).Interface()),
			)
		}
		return d

	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return starlark.None
		}
		return toStarlarkValue(value.Elem().Interface())

	case reflect.Func:
		return starlarkutil.MakeFunc("", v)

	}

	panic(fmt.Errorf("unsupported type for starlark: %T", v))
}

// fieldName prefers the yaml tag so stats read the same in a tap session
// and in a dump.
func fieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
