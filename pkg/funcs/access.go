package funcs

import (
	"github.com/morphlang/morph/pkg/types"
)

// Strict access helpers. Generated strict-mode code routes every property
// access, index and sequence coercion through these so failures carry the
// static path of the access site.

// Prop reads key from base. A missing key fails with sibling-key
// suggestions; a nil base fails as a null access.
func Prop(base any, key, path string) (any, error) {
	if base == nil {
		return nil, &types.NullAccessError{Path: path}
	}
	obj, ok := base.(map[string]any)
	if !ok {
		return nil, &types.PropertyMissingError{Key: key, Path: path}
	}
	v, exists := obj[key]
	if !exists {
		return nil, &types.PropertyMissingError{Key: key, Path: path, Suggestions: Suggestions(obj, key)}
	}
	return v, nil
}

// At indexes base, supporting negative indexes from the end. Out-of-bounds
// indexes fail with the actual length.
func At(base any, index int, path string) (any, error) {
	if base == nil {
		return nil, &types.NullAccessError{Path: path}
	}
	arr, ok := base.([]any)
	if !ok {
		return nil, &types.NotAnArrayError{Path: path}
	}
	i := index
	if i < 0 {
		i += len(arr)
	}
	if i < 0 || i >= len(arr) {
		return nil, &types.IndexOutOfBoundsError{Index: index, Length: len(arr), Path: path}
	}
	return arr[i], nil
}

// ToSeq coerces base to a sequence for projection. In strict mode only
// arrays qualify.
func ToSeq(base any, path string) ([]any, error) {
	if base == nil {
		return nil, &types.NullAccessError{Path: path}
	}
	arr, ok := base.([]any)
	if !ok {
		return nil, &types.NotAnArrayError{Path: path}
	}
	return arr, nil
}

// Nth is the forgiving index: negative indexes from the end, anything out
// of range or non-indexable yields nil.
func Nth(base any, index int) any {
	arr, ok := base.([]any)
	if !ok {
		return nil
	}
	i := index
	if i < 0 {
		i += len(arr)
	}
	if i < 0 || i >= len(arr) {
		return nil
	}
	return arr[i]
}

// Seq is the forgiving sequence coercion: arrays pass through, nil becomes
// the empty sequence, scalars and objects become one-element sequences.
func Seq(base any) []any {
	switch v := base.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	default:
		return []any{base}
	}
}

func init() {
	register(&Def{Name: "prop", MinArgs: 3, MaxArgs: 3, Internal: true, Impl: func(args []any) (any, error) {
		key, _ := args[1].(string)
		path, _ := args[2].(string)
		return Prop(args[0], key, path)
	}})
	register(&Def{Name: "at", MinArgs: 3, MaxArgs: 3, Internal: true, Impl: func(args []any) (any, error) {
		idx, ok := asNumber(args[1])
		if !ok {
			path, _ := args[2].(string)
			return nil, &types.IndexOutOfBoundsError{Path: path}
		}
		path, _ := args[2].(string)
		return At(args[0], int(idx), path)
	}})
	register(&Def{Name: "toSeq", MinArgs: 2, MaxArgs: 2, Internal: true, Impl: func(args []any) (any, error) {
		path, _ := args[1].(string)
		return ToSeq(args[0], path)
	}})
	register(&Def{Name: "nth", MinArgs: 2, MaxArgs: 2, Internal: true, Impl: func(args []any) (any, error) {
		idx, ok := asNumber(args[1])
		if !ok {
			return nil, nil
		}
		return Nth(args[0], int(idx)), nil
	}})
	register(&Def{Name: "eq", MinArgs: 2, MaxArgs: 2, Internal: true, Impl: func(args []any) (any, error) {
		return Eq(args[0], args[1]), nil
	}})
	register(&Def{Name: "in", MinArgs: 2, MaxArgs: 2, Internal: true, Impl: func(args []any) (any, error) {
		return In(args[0], args[1]), nil
	}})
	register(&Def{Name: "truthy", MinArgs: 1, MaxArgs: 1, Internal: true, Impl: func(args []any) (any, error) {
		return Truthy(args[0]), nil
	}})
}
