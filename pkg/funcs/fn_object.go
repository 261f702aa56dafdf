package funcs

import (
	"fmt"
)

func objectArg(name string, args []any, i int) (map[string]any, error) {
	v := arg(args, i)
	if v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d must be an object, got %s", name, i+1, typeName(v))
	}
	return obj, nil
}

// keyList accepts the keys argument of pick/omit as either an array of
// strings or a single string.
func keyList(v any) []string {
	switch k := v.(type) {
	case string:
		return []string{k}
	case []any:
		out := make([]string, 0, len(k))
		for _, item := range k {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func init() {
	register(&Def{Name: "keys", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		obj, err := objectArg("keys", args, 0)
		if err != nil {
			return nil, err
		}
		names := sortedKeys(obj)
		out := make([]any, len(names))
		for i, k := range names {
			out[i] = k
		}
		return out, nil
	}})
	register(&Def{Name: "values", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		obj, err := objectArg("values", args, 0)
		if err != nil {
			return nil, err
		}
		names := sortedKeys(obj)
		out := make([]any, len(names))
		for i, k := range names {
			out[i] = obj[k]
		}
		return out, nil
	}})
	register(&Def{Name: "entries", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		obj, err := objectArg("entries", args, 0)
		if err != nil {
			return nil, err
		}
		names := sortedKeys(obj)
		out := make([]any, len(names))
		for i, k := range names {
			out[i] = map[string]any{"key": k, "value": obj[k]}
		}
		return out, nil
	}})
	register(&Def{Name: "pick", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		obj, err := objectArg("pick", args, 0)
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		for _, k := range keyList(arg(args, 1)) {
			if v, exists := obj[k]; exists {
				out[k] = v
			}
		}
		return out, nil
	}})
	register(&Def{Name: "omit", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		obj, err := objectArg("omit", args, 0)
		if err != nil {
			return nil, err
		}
		drop := map[string]bool{}
		for _, k := range keyList(arg(args, 1)) {
			drop[k] = true
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			if !drop[k] {
				out[k] = v
			}
		}
		return out, nil
	}})
	register(&Def{Name: "merge", MinArgs: 1, MaxArgs: -1, Impl: func(args []any) (any, error) {
		// Non-object arguments are skipped, so absent values merge as empty.
		out := map[string]any{}
		for i := range args {
			obj, ok := arg(args, i).(map[string]any)
			if !ok {
				continue
			}
			for k, v := range obj {
				out[k] = v
			}
		}
		return out, nil
	}})
	register(&Def{Name: "get", MinArgs: 2, MaxArgs: 3, Impl: func(args []any) (any, error) {
		path, ok := arg(args, 1).(string)
		if !ok {
			return nil, fmt.Errorf("get: path must be a string")
		}
		if hasPath(arg(args, 0), path) {
			return getPath(args[0], path), nil
		}
		return arg(args, 2), nil
	}})
	register(&Def{Name: "set", MinArgs: 3, MaxArgs: 3, Impl: func(args []any) (any, error) {
		path, ok := arg(args, 1).(string)
		if !ok {
			return nil, fmt.Errorf("set: path must be a string")
		}
		return setPath(arg(args, 0), path, arg(args, 2)), nil
	}})
	register(&Def{Name: "has", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		path, ok := arg(args, 1).(string)
		if !ok {
			return nil, fmt.Errorf("has: path must be a string")
		}
		return hasPath(arg(args, 0), path), nil
	}})
}
