package funcs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func init() {
	register(&Def{Name: "isArray", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		_, ok := arg(args, 0).([]any)
		return ok, nil
	}})
	register(&Def{Name: "isObject", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		_, ok := arg(args, 0).(map[string]any)
		return ok, nil
	}})
	register(&Def{Name: "isString", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		_, ok := arg(args, 0).(string)
		return ok, nil
	}})
	register(&Def{Name: "isNumber", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		_, ok := asNumber(arg(args, 0))
		return ok, nil
	}})
	register(&Def{Name: "isBoolean", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		_, ok := arg(args, 0).(bool)
		return ok, nil
	}})
	register(&Def{Name: "isNull", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return isAbsent(arg(args, 0)), nil
	}})
	register(&Def{Name: "isDefined", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return !isAbsent(arg(args, 0)), nil
	}})
	register(&Def{Name: "isEmpty", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		switch v := arg(args, 0).(type) {
		case nil:
			return true, nil
		case string:
			return v == "", nil
		case []any:
			return len(v) == 0, nil
		case map[string]any:
			return len(v) == 0, nil
		default:
			return false, nil
		}
	}})
	register(&Def{Name: "typeOf", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return typeName(arg(args, 0)), nil
	}})

	register(&Def{Name: "number", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		switch v := arg(args, 0).(type) {
		case nil:
			return nil, nil
		case bool:
			return boolNum(v), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, nil
			}
			return n, nil
		default:
			if n, ok := asNumber(v); ok {
				return n, nil
			}
			return nil, nil
		}
	}})
	register(&Def{Name: "string", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return Str(arg(args, 0)), nil
	}})
	register(&Def{Name: "boolean", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return Truthy(arg(args, 0)), nil
	}})
	register(&Def{Name: "json", MinArgs: 1, MaxArgs: 2, Impl: func(args []any) (any, error) {
		var data []byte
		var err error
		if len(args) > 1 && Truthy(args[1]) {
			data, err = json.MarshalIndent(args[0], "", "  ")
		} else {
			data, err = json.Marshal(arg(args, 0))
		}
		if err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
		return string(data), nil
	}})
	register(&Def{Name: "parseJson", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		s, ok := arg(args, 0).(string)
		if !ok {
			return nil, fmt.Errorf("parseJson: argument must be a string")
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parseJson: %w", err)
		}
		return out, nil
	}})
}
