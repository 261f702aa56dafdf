package funcs

import (
	"fmt"
	"sort"
	"strings"
)

// sortByKey returns a stable-sorted copy of items ordered by the extracted
// key. The input slice is never reordered in place.
func sortByKey(items []any, key any, descending bool) ([]any, error) {
	extract, err := keyExtractor(key)
	if err != nil {
		return nil, err
	}

	type entry struct {
		item any
		key  any
	}
	entries := make([]entry, len(items))
	for i, item := range items {
		k, err := extract(item, i)
		if err != nil {
			return nil, err
		}
		entries[i] = entry{item: item, key: k}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		c := compareValues(entries[i].key, entries[j].key)
		if descending {
			return c > 0
		}
		return c < 0
	})

	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.item
	}
	return out, nil
}

func extremumBy(items []any, key any, dir int) (any, error) {
	extract, err := keyExtractor(key)
	if err != nil {
		return nil, err
	}
	var best any
	var bestKey any
	found := false
	for i, item := range items {
		k, err := extract(item, i)
		if err != nil {
			return nil, err
		}
		if isAbsent(k) {
			continue
		}
		if !found || (dir < 0 && compareValues(k, bestKey) < 0) || (dir > 0 && compareValues(k, bestKey) > 0) {
			best, bestKey, found = item, k, true
		}
	}
	if !found {
		return nil, nil
	}
	return best, nil
}

func init() {
	register(&Def{Name: "count", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		switch v := arg(args, 0).(type) {
		case nil:
			return float64(0), nil
		case string:
			// UTF-16 code units, matching string length in generated code.
			n := 0
			for _, r := range v {
				n++
				if r > 0xFFFF {
					n++
				}
			}
			return float64(n), nil
		case []any:
			return float64(len(v)), nil
		case map[string]any:
			return float64(len(v)), nil
		default:
			return float64(1), nil
		}
	}})
	register(&Def{Name: "first", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		if len(items) == 0 {
			return nil, nil
		}
		return items[0], nil
	}})
	register(&Def{Name: "last", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		if len(items) == 0 {
			return nil, nil
		}
		return items[len(items)-1], nil
	}})
	register(&Def{Name: "reverse", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		out := make([]any, len(items))
		for i, item := range items {
			out[len(items)-1-i] = item
		}
		return out, nil
	}})
	register(&Def{Name: "sort", MinArgs: 1, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		return sortByKey(Seq(arg(args, 0)), arg(args, 1), false)
	}})
	register(&Def{Name: "sortDesc", MinArgs: 1, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		return sortByKey(Seq(arg(args, 0)), arg(args, 1), true)
	}})
	register(&Def{Name: "uniq", MinArgs: 1, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		extract, err := keyExtractor(arg(args, 1))
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		var seen []any
		for i, item := range items {
			k, err := extract(item, i)
			if err != nil {
				return nil, err
			}
			dup := false
			for _, s := range seen {
				if Eq(s, k) {
					dup = true
					break
				}
			}
			if !dup {
				seen = append(seen, k)
				out = append(out, item)
			}
		}
		return out, nil
	}})
	register(&Def{Name: "flatten", MinArgs: 1, MaxArgs: 2, Impl: func(args []any) (any, error) {
		depth := 1.0
		if len(args) > 1 {
			d, ok := asNumber(args[1])
			if !ok {
				return nil, fmt.Errorf("flatten: depth must be a number")
			}
			depth = d
		}
		return flatten(Seq(arg(args, 0)), int(depth)), nil
	}})
	register(&Def{Name: "slice", MinArgs: 2, MaxArgs: 3, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		from, err := numberArg("slice", args, 1)
		if err != nil {
			return nil, err
		}
		to := float64(len(items))
		if len(args) > 2 {
			to, err = numberArg("slice", args, 2)
			if err != nil {
				return nil, err
			}
		}
		lo, hi := clampRange(int(from), int(to), len(items))
		out := make([]any, hi-lo)
		copy(out, items[lo:hi])
		return out, nil
	}})
	register(&Def{Name: "contains", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		return In(args[1], args[0]), nil
	}})
	register(&Def{Name: "map", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		cb, ok := arg(args, 1).(Callback)
		if !ok {
			return nil, fmt.Errorf("map: second argument must be a function")
		}
		items := Seq(arg(args, 0))
		out := make([]any, len(items))
		for i, item := range items {
			v, err := cb(item, float64(i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}})
	register(&Def{Name: "filter", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		cb, ok := arg(args, 1).(Callback)
		if !ok {
			return nil, fmt.Errorf("filter: second argument must be a function")
		}
		items := Seq(arg(args, 0))
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := cb(item, float64(i))
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				out = append(out, item)
			}
		}
		return out, nil
	}})
	register(&Def{Name: "reduce", MinArgs: 2, MaxArgs: 3, Impl: func(args []any) (any, error) {
		cb, ok := arg(args, 1).(Callback)
		if !ok {
			return nil, fmt.Errorf("reduce: second argument must be a function")
		}
		items := Seq(arg(args, 0))
		var acc any
		start := 0
		if len(args) > 2 {
			acc = args[2]
		} else {
			if len(items) == 0 {
				return nil, nil
			}
			acc = items[0]
			start = 1
		}
		for i := start; i < len(items); i++ {
			v, err := cb(acc, items[i], float64(i))
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	}})
	register(&Def{Name: "groupBy", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		extract, err := keyExtractor(arg(args, 1))
		if err != nil {
			return nil, err
		}
		groups := map[string]any{}
		for i, item := range items {
			k, err := extract(item, i)
			if err != nil {
				return nil, err
			}
			name := Str(k)
			bucket, _ := groups[name].([]any)
			groups[name] = append(bucket, item)
		}
		return groups, nil
	}})
	register(&Def{Name: "keyBy", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		extract, err := keyExtractor(arg(args, 1))
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(items))
		for i, item := range items {
			k, err := extract(item, i)
			if err != nil {
				return nil, err
			}
			out[Str(k)] = item
		}
		return out, nil
	}})
	register(&Def{Name: "pluck", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		extract, err := keyExtractor(arg(args, 1))
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := extract(item, i)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}})
	register(&Def{Name: "minBy", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		return extremumBy(Seq(arg(args, 0)), arg(args, 1), -1)
	}})
	register(&Def{Name: "maxBy", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		return extremumBy(Seq(arg(args, 0)), arg(args, 1), 1)
	}})
	register(&Def{Name: "sumBy", MinArgs: 2, MaxArgs: 2, PathKeyed: true, Impl: func(args []any) (any, error) {
		items := Seq(arg(args, 0))
		extract, err := keyExtractor(arg(args, 1))
		if err != nil {
			return nil, err
		}
		total := 0.0
		for i, item := range items {
			k, err := extract(item, i)
			if err != nil {
				return nil, err
			}
			if n, ok := asNumber(k); ok {
				total += n
			}
		}
		return total, nil
	}})
	register(&Def{Name: "concat", MinArgs: 0, MaxArgs: -1, Impl: func(args []any) (any, error) {
		return Concat(args...), nil
	}})
	register(&Def{Name: "seq", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return Seq(arg(args, 0)), nil
	}})
}

func flatten(items []any, depth int) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if inner, ok := item.([]any); ok && depth > 0 {
			out = append(out, flatten(inner, depth-1)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

// clampRange normalizes slice bounds: negatives count from the end and the
// result never escapes [0, length].
func clampRange(from, to, length int) (int, int) {
	if from < 0 {
		from += length
	}
	if to < 0 {
		to += length
	}
	if from < 0 {
		from = 0
	}
	if to > length {
		to = length
	}
	if from > length {
		from = length
	}
	if to < from {
		to = from
	}
	return from, to
}

// In implements the `in` operator: array membership by forgiving equality,
// substring test for strings, key presence for objects.
func In(needle, haystack any) bool {
	switch h := haystack.(type) {
	case []any:
		for _, item := range h {
			if Eq(item, needle) {
				return true
			}
		}
		return false
	case string:
		if s, ok := needle.(string); ok {
			return strings.Contains(h, s)
		}
		return false
	case map[string]any:
		if s, ok := needle.(string); ok {
			_, exists := h[s]
			return exists
		}
		return false
	default:
		return false
	}
}
