package codegen

import (
	"strings"
	"testing"

	"github.com/morphlang/morph/pkg/parser"
	"github.com/morphlang/morph/pkg/types"
)

func generate(t *testing.T, source string, opts Options) string {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	code, err := Generate(prog, opts)
	if err != nil {
		t.Fatalf("Generate(%q): %v", source, err)
	}
	return code
}

func TestGenerateWrapper(t *testing.T) {
	code := generate(t, "user.firstName", Options{})
	if !strings.HasPrefix(code, "(function(input, bindings) {\n\"use strict\";\n") {
		t.Errorf("unexpected prologue:\n%s", code)
	}
	if !strings.HasSuffix(code, "})") {
		t.Errorf("unexpected epilogue:\n%s", code)
	}
}

func TestGenerateFuncName(t *testing.T) {
	code := generate(t, "user", Options{FuncName: "transform"})
	if !strings.HasPrefix(code, "(function transform(input, bindings)") {
		t.Errorf("named wrapper missing:\n%s", code)
	}
}

func TestGenerateParameterNames(t *testing.T) {
	code := generate(t, "$limit", Options{InputName: "doc", BindingsName: "env"})
	if !strings.Contains(code, "(function(doc, env)") {
		t.Errorf("custom parameters missing:\n%s", code)
	}
	if !strings.Contains(code, `(env || {})["limit"]`) {
		t.Errorf("binding lookup does not use custom name:\n%s", code)
	}
}

func TestGenerateForgivingMember(t *testing.T) {
	code := generate(t, "user.firstName", Options{})
	want := `fn.get(fn.get(input, "user"), "firstName")`
	if !strings.Contains(code, want) {
		t.Errorf("code = %s\nwant fragment %s", code, want)
	}
}

func TestGenerateStrictMemberCarriesPath(t *testing.T) {
	// The error path names the object being accessed, not the missing key.
	code := generate(t, "user.nickname", Options{Strict: true})
	want := `fn.prop(fn.prop(input, "user", ""), "nickname", "user")`
	if !strings.Contains(code, want) {
		t.Errorf("code = %s\nwant fragment %s", code, want)
	}
}

func TestGenerateStrictIndex(t *testing.T) {
	code := generate(t, "items[0]", Options{Strict: true})
	if !strings.Contains(code, `fn.at(`) || !strings.Contains(code, `"items")`) {
		t.Errorf("checked index missing:\n%s", code)
	}

	code = generate(t, "items[0]", Options{})
	if !strings.Contains(code, `fn.nth(`) {
		t.Errorf("forgiving index missing:\n%s", code)
	}
}

func TestGenerateOptionalChainGuards(t *testing.T) {
	// Optional access stays forgiving even under strict emission.
	code := generate(t, "user?.nickname", Options{Strict: true})
	if !strings.Contains(code, `fn.get(`) || strings.Contains(code, `"nickname", "user")`) {
		t.Errorf("optional member should use the forgiving helper:\n%s", code)
	}

	// Optional projection degrades to an empty sequence, not null.
	code = generate(t, "user?.orders?[]", Options{Strict: true})
	if !strings.Contains(code, "== null ? [] :") {
		t.Errorf("projection guard missing:\n%s", code)
	}
}

func TestGenerateProjectionPath(t *testing.T) {
	// Element paths pick up the runtime index.
	code := generate(t, "orders[*].price", Options{Strict: true})
	if !strings.Contains(code, `"orders" + "[" + __ix1 + "]"`) {
		t.Errorf("dynamic element path missing:\n%s", code)
	}
	if !strings.Contains(code, ".map(function(__it1, __ix1, __ar1)") {
		t.Errorf("map callback missing:\n%s", code)
	}
}

func TestGenerateFilter(t *testing.T) {
	code := generate(t, "orders[? price > 30]", Options{})
	if !strings.Contains(code, ".filter(function(__it1, __ix1, __ar1) { return fn.truthy(") {
		t.Errorf("filter callback missing:\n%s", code)
	}
}

func TestGenerateInOperator(t *testing.T) {
	// `in` is a reserved word: the library call uses bracket access.
	code := generate(t, `"a" in tags`, Options{})
	if !strings.Contains(code, `fn["in"](`) {
		t.Errorf("bracketed in call missing:\n%s", code)
	}
}

func TestGenerateConcatFlattens(t *testing.T) {
	code := generate(t, "a & b & c", Options{})
	if got := strings.Count(code, "fn.concat("); got != 1 {
		t.Errorf("concat calls = %d, want 1:\n%s", got, code)
	}
}

func TestGenerateShortCircuitEvaluatesOnce(t *testing.T) {
	// The left operand is captured in an IIFE parameter so it is evaluated
	// exactly once.
	code := generate(t, "a || b", Options{})
	if !strings.Contains(code, "(function(__v1) { return fn.truthy(__v1) ? __v1 :") {
		t.Errorf("or capture missing:\n%s", code)
	}

	code = generate(t, "a ?? b", Options{})
	if !strings.Contains(code, "__v1 == null ?") {
		t.Errorf("coalesce capture missing:\n%s", code)
	}
}

func TestGenerateBindings(t *testing.T) {
	code := generate(t, "let rate = 0.2; price * rate", Options{})
	if !strings.Contains(code, "var __l_rate = 0.2;\n") {
		t.Errorf("binding declaration missing:\n%s", code)
	}
	if !strings.Contains(code, "* __l_rate") {
		t.Errorf("binding reference missing:\n%s", code)
	}
}

func TestGenerateStatementsOnlyReturnsNull(t *testing.T) {
	code := generate(t, "let x = 1;", Options{})
	if !strings.Contains(code, "return null;\n") {
		t.Errorf("missing null return:\n%s", code)
	}
}

func TestGenerateLocalCall(t *testing.T) {
	code := generate(t, "let double = x => x * 2; double(21)", Options{})
	if !strings.Contains(code, "__l_double(21)") {
		t.Errorf("local call missing:\n%s", code)
	}
}

func TestGenerateSpreads(t *testing.T) {
	code := generate(t, "[...items, 4]", Options{})
	if !strings.Contains(code, "[].concat(fn.seq(") {
		t.Errorf("array spread missing:\n%s", code)
	}

	code = generate(t, "{...user, active: true}", Options{})
	if !strings.Contains(code, "Object.assign({}, (") {
		t.Errorf("object spread missing:\n%s", code)
	}
}

func TestGenerateNativeIsSelfContained(t *testing.T) {
	code := generate(t, "user.firstName & sort(orders, .total)", Options{Native: true})
	if strings.Contains(code, "fn.") || strings.Contains(code, `fn[`) {
		t.Errorf("native output references the fn namespace:\n%s", code)
	}
	for _, want := range []string{"function __get(", "function __concat(", "function __sortBy("} {
		if !strings.Contains(code, want) {
			t.Errorf("native preamble missing %s:\n%s", want, code)
		}
	}
}

func TestGenerateNativePullsHelperDeps(t *testing.T) {
	// __prop throws path-tracked errors, which drags in the error and
	// suggestion helpers transitively.
	code := generate(t, "user.nickname", Options{Strict: true, Native: true})
	for _, want := range []string{"function __prop(", "function __err(", "function __suggest(", "function __lev("} {
		if !strings.Contains(code, want) {
			t.Errorf("native preamble missing %s", want)
		}
	}
}

func TestGenerateNativeOmitsUnusedHelpers(t *testing.T) {
	code := generate(t, "a + b", Options{Native: true})
	if strings.Contains(code, "function __sortBy(") {
		t.Errorf("unused helper emitted:\n%s", code)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	prog, err := parser.Parse("orders[? price > 30] | sortDesc(total) | first")
	if err != nil {
		t.Fatal(err)
	}
	first, err := Generate(prog, Options{Strict: true, Native: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(prog, Options{Strict: true, Native: true})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("generation is not deterministic for the same program")
	}
}

func TestGeneratePipeFlattensToOneBinding(t *testing.T) {
	code := generate(t, "orders | sortDesc(price) | first", Options{})
	for _, want := range []string{
		`var __p1 = fn.get(input, "orders");`,
		`__p1 = fn.sortDesc(__p1, "price");`,
		`__p1 = fn.first(__p1);`,
		"return __p1;",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("pipe chain missing %q:\n%s", want, code)
		}
	}
	if strings.Contains(code, "__p2") {
		t.Errorf("pipe chain introduced a second binding:\n%s", code)
	}
	if strings.Contains(code, "(function(__p1)") {
		t.Errorf("statement-position pipe chain wrapped in a function:\n%s", code)
	}
}

func TestGeneratePipeExpressionPosition(t *testing.T) {
	code := generate(t, "{ top: (orders | sort(price) | first) }", Options{})
	want := "(function(__p1) { __p1 = fn.sort(__p1, \"price\"); __p1 = fn.first(__p1); return __p1; })(fn.get(input, \"orders\"))"
	if !strings.Contains(code, want) {
		t.Errorf("expression-position pipe not a single reassigning function:\n%s", code)
	}
}

func TestGenerateUnknownNodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("emit of a statement node did not panic")
		}
	}()
	g := &generator{opts: Options{InputName: "input", BindingsName: "bindings"}, used: map[string]bool{}}
	g.emit(&types.BindStmt{Name: "x"})
}
