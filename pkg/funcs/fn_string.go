package funcs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Str renders a value for string contexts (concatenation, templates,
// join). Absent values render empty, numbers without a trailing ".0".
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Str(e)
		}
		return strings.Join(parts, ",")
	default:
		if n, ok := asNumber(v); ok {
			return formatNumber(n)
		}
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Concat joins the string renditions of its arguments. Absent arguments
// contribute nothing.
func Concat(args ...any) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(Str(a))
	}
	return b.String()
}

func stringArg(args []any, i int) string {
	return Str(arg(args, i))
}

func init() {
	register(&Def{Name: "upper", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return strings.ToUpper(stringArg(args, 0)), nil
	}})
	register(&Def{Name: "lower", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return strings.ToLower(stringArg(args, 0)), nil
	}})
	register(&Def{Name: "capitalize", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		s := stringArg(args, 0)
		if s == "" {
			return s, nil
		}
		runes := []rune(s)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes), nil
	}})
	register(&Def{Name: "trim", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		return strings.TrimSpace(stringArg(args, 0)), nil
	}})
	register(&Def{Name: "split", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		parts := strings.Split(stringArg(args, 0), stringArg(args, 1))
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	}})
	register(&Def{Name: "join", MinArgs: 1, MaxArgs: 2, Impl: func(args []any) (any, error) {
		sep := ","
		if len(args) > 1 {
			sep = stringArg(args, 1)
		}
		items := Seq(arg(args, 0))
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Str(item)
		}
		return strings.Join(parts, sep), nil
	}})
	register(&Def{Name: "replace", MinArgs: 3, MaxArgs: 3, Impl: func(args []any) (any, error) {
		return strings.ReplaceAll(stringArg(args, 0), stringArg(args, 1), stringArg(args, 2)), nil
	}})
	register(&Def{Name: "padStart", MinArgs: 2, MaxArgs: 3, Impl: func(args []any) (any, error) {
		return pad(args, true)
	}})
	register(&Def{Name: "padEnd", MinArgs: 2, MaxArgs: 3, Impl: func(args []any) (any, error) {
		return pad(args, false)
	}})
	register(&Def{Name: "startsWith", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		return strings.HasPrefix(stringArg(args, 0), stringArg(args, 1)), nil
	}})
	register(&Def{Name: "endsWith", MinArgs: 2, MaxArgs: 2, Impl: func(args []any) (any, error) {
		return strings.HasSuffix(stringArg(args, 0), stringArg(args, 1)), nil
	}})
}

func pad(args []any, atStart bool) (any, error) {
	s := stringArg(args, 0)
	width, ok := asNumber(arg(args, 1))
	if !ok {
		return nil, fmt.Errorf("pad: width must be a number")
	}
	fill := " "
	if len(args) > 2 {
		fill = stringArg(args, 2)
	}
	if fill == "" {
		return s, nil
	}

	target := int(width)
	runes := []rune(s)
	if len(runes) >= target {
		return s, nil
	}

	fillRunes := []rune(fill)
	padding := make([]rune, 0, target-len(runes))
	for len(padding) < target-len(runes) {
		padding = append(padding, fillRunes[len(padding)%len(fillRunes)])
	}
	if atStart {
		return string(padding) + s, nil
	}
	return s + string(padding), nil
}
