package funcs

import (
	"strings"
)

// getPath reads a dotted property path (e.g. "meta.priority") from a value.
// Missing segments yield nil, never an error: path reads are forgiving even
// in strict mode because they are an explicit lookup, not an access chain.
func getPath(v any, path string) any {
	if path == "" {
		return v
	}
	for _, seg := range strings.Split(path, ".") {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return v
}

// setPath returns a copy of v with the dotted path set to value. Objects
// along the path are shallow-copied; missing intermediates are created.
// The input is never mutated.
func setPath(v any, path string, value any) any {
	segs := strings.Split(path, ".")
	return setSegs(v, segs, value)
}

func setSegs(v any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	obj, _ := v.(map[string]any)
	out := make(map[string]any, len(obj)+1)
	for k, existing := range obj {
		out[k] = existing
	}
	out[segs[0]] = setSegs(obj[segs[0]], segs[1:], value)
	return out
}

// hasPath reports whether every segment of the dotted path is present.
func hasPath(v any, path string) bool {
	if path == "" {
		return true
	}
	for _, seg := range strings.Split(path, ".") {
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		v, ok = obj[seg]
		if !ok {
			return false
		}
	}
	return true
}

// levenshtein computes edit distance with a two-row buffer. Used to rank
// sibling keys as typo suggestions.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Suggestions returns the keys of obj within edit distance 2 of key,
// closest first, ties broken alphabetically.
func Suggestions(obj map[string]any, key string) []string {
	type ranked struct {
		name string
		dist int
	}
	var candidates []ranked
	for _, name := range sortedKeys(obj) {
		if d := levenshtein(name, key); d <= 2 {
			candidates = append(candidates, ranked{name, d})
		}
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].dist < candidates[j-1].dist; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
