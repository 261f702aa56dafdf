package funcs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// asNumber coerces the numeric representations that cross the script
// boundary (float64, int64, int) to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func isAbsent(v any) bool {
	return v == nil
}

// Truthy follows the expression language's boolean coercion: absent values,
// false, zero, empty string, empty array and empty object are falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if n, ok := asNumber(v); ok {
			return n != 0 && !math.IsNaN(n)
		}
		return true
	}
}

// Eq implements forgiving equality (==): absent equals absent, numbers and
// numeric strings compare numerically, booleans compare as 1/0, arrays and
// objects compare element-wise, anything else is unequal.
func Eq(a, b any) bool {
	if isAbsent(a) && isAbsent(b) {
		return true
	}
	if isAbsent(a) || isAbsent(b) {
		return false
	}

	an, aIsNum := asNumber(a)
	bn, bIsNum := asNumber(b)

	switch av := a.(type) {
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		an, aIsNum = boolNum(av), true
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(av), 64); err == nil {
			an, aIsNum = n, true
		}
	}
	switch bv := b.(type) {
	case bool:
		bn, bIsNum = boolNum(bv), true
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(bv), 64); err == nil {
			bn, bIsNum = n, true
		}
	}
	if aIsNum && bIsNum {
		return an == bn
	}

	if aArr, ok := a.([]any); ok {
		bArr, ok := b.([]any)
		if !ok || len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !Eq(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	}
	if aObj, ok := a.(map[string]any); ok {
		bObj, ok := b.(map[string]any)
		if !ok || len(aObj) != len(bObj) {
			return false
		}
		for k, av := range aObj {
			bv, exists := bObj[k]
			if !exists || !Eq(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// StrictEq implements === semantics: same type, same value, no coercion.
// Arrays and objects compare by deep equality of same-typed values.
func StrictEq(a, b any) bool {
	if isAbsent(a) || isAbsent(b) {
		return isAbsent(a) && isAbsent(b)
	}
	an, aIsNum := asNumber(a)
	bn, bIsNum := asNumber(b)
	if aIsNum || bIsNum {
		return aIsNum && bIsNum && an == bn
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !StrictEq(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, exists := bv[k]
			if !exists || !StrictEq(x, y) {
				return false
			}
		}
		return true
	}
	return false
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// compareValues orders two values for sorting: numbers ascending, strings
// lexicographic, booleans false before true. Absent values sort last; mixed
// types sort by type name for a stable total order.
func compareValues(a, b any) int {
	if isAbsent(a) || isAbsent(b) {
		switch {
		case isAbsent(a) && isAbsent(b):
			return 0
		case isAbsent(a):
			return 1
		default:
			return -1
		}
	}

	an, aIsNum := asNumber(a)
	bn, bIsNum := asNumber(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(typeName(a), typeName(b))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if _, ok := asNumber(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

// keyExtractor resolves a sort/group key argument: a dotted-path string
// reads the property, a callback is invoked with (item, index), nil is the
// identity.
func keyExtractor(key any) (func(item any, index int) (any, error), error) {
	switch k := key.(type) {
	case nil:
		return func(item any, _ int) (any, error) { return item, nil }, nil
	case string:
		return func(item any, _ int) (any, error) { return getPath(item, k), nil }, nil
	case Callback:
		return func(item any, index int) (any, error) { return k(item, index) }, nil
	default:
		return nil, fmt.Errorf("key must be a property path or function, got %s", typeName(key))
	}
}

// sortedKeys returns map keys in sorted order for deterministic iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
