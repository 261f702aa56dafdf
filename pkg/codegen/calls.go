package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// fnCall renders a helper invocation: a call into the fn namespace for
// library output, a call to an inlined preamble helper for native output.
func (g *generator) fnCall(name string, args ...string) string {
	if g.opts.Native {
		return g.helper(name) + "(" + strings.Join(args, ", ") + ")"
	}
	if name == "in" {
		// Reserved word: bracket access keeps older engines happy.
		return "fn[\"in\"](" + strings.Join(args, ", ") + ")"
	}
	return "fn." + name + "(" + strings.Join(args, ", ") + ")"
}

// truthy renders the language's boolean coercion around an expression.
func (g *generator) truthy(code string) string {
	return g.fnCall("truthy", code)
}

// helper marks a preamble helper as used, along with its dependencies, and
// returns its identifier.
func (g *generator) helper(name string) string {
	if _, ok := preludeHelpers[name]; !ok {
		panic(fmt.Sprintf("codegen: no native helper for %q", name))
	}
	g.markUsed(name)
	return "__" + name
}

func (g *generator) markUsed(name string) {
	if g.used[name] {
		return
	}
	g.used[name] = true
	for _, dep := range preludeHelpers[name].deps {
		g.markUsed(dep)
	}
}

// preamble renders the used helpers in dependency order. Helpers are
// function declarations, so ordering only matters for readability; sorted
// output keeps generation deterministic.
func (g *generator) preamble() string {
	names := make([]string, 0, len(g.used))
	for name := range g.used {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		out.WriteString(preludeHelpers[name].src)
		out.WriteString("\n")
	}
	return out.String()
}
