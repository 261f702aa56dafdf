package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/morphlang/morph/pkg/codegen"
	"github.com/morphlang/morph/pkg/parser"
	"github.com/morphlang/morph/pkg/types"
	"github.com/nalgeon/be"
)

func compile(t *testing.T, source string, opts codegen.Options) *Engine {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	code, err := codegen.Generate(prog, opts)
	if err != nil {
		t.Fatalf("Generate(%q): %v", source, err)
	}
	engine, err := New(code)
	if err != nil {
		t.Fatalf("New(%q): %v\n%s", source, err, code)
	}
	return engine
}

// canon normalizes a result through JSON so the runtime's numeric
// representation (int64 vs float64) does not leak into comparisons.
func canon(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	return string(data)
}

func sampleInput() map[string]any {
	return map[string]any{
		"user": map[string]any{
			"firstName": "John",
			"lastName":  "Doe",
			"address":   "12 Main St",
		},
		"orders": []any{
			map[string]any{"id": "a", "price": float64(45)},
			map[string]any{"id": "b", "price": float64(15)},
			map[string]any{"id": "c", "price": float64(30)},
		},
	}
}

func TestRunPropertyPath(t *testing.T) {
	e := compile(t, "user.firstName", codegen.Options{})
	v, err := e.Run(sampleInput(), nil)
	be.Err(t, err, nil)
	be.Equal(t, v, "John")
}

func TestRunForgivingMissingYieldsNil(t *testing.T) {
	e := compile(t, "user.nickname", codegen.Options{})
	v, err := e.Run(sampleInput(), nil)
	be.Err(t, err, nil)
	be.Equal(t, v, nil)
}

func TestRunStrictPropertyMissing(t *testing.T) {
	for _, native := range []bool{false, true} {
		e := compile(t, "user.nickname", codegen.Options{Strict: true, Native: native})
		_, err := e.Run(sampleInput(), nil)

		var missing *types.PropertyMissingError
		if !errors.As(err, &missing) {
			t.Fatalf("native=%v: err = %v, want PropertyMissingError", native, err)
		}
		be.Equal(t, missing.Key, "nickname")
		be.Equal(t, missing.Path, "user")
	}
}

func TestRunStrictTypoSuggestions(t *testing.T) {
	for _, native := range []bool{false, true} {
		e := compile(t, "user.adress", codegen.Options{Strict: true, Native: native})
		_, err := e.Run(sampleInput(), nil)

		var missing *types.PropertyMissingError
		if !errors.As(err, &missing) {
			t.Fatalf("native=%v: err = %v, want PropertyMissingError", native, err)
		}
		be.Equal(t, missing.Suggestions, []string{"address"})
	}
}

func TestRunStrictIndexOutOfBounds(t *testing.T) {
	for _, native := range []bool{false, true} {
		e := compile(t, "orders[5]", codegen.Options{Strict: true, Native: native})
		_, err := e.Run(sampleInput(), nil)

		var oob *types.IndexOutOfBoundsError
		if !errors.As(err, &oob) {
			t.Fatalf("native=%v: err = %v, want IndexOutOfBoundsError", native, err)
		}
		be.Equal(t, oob.Index, 5)
		be.Equal(t, oob.Length, 3)
		be.Equal(t, oob.Path, "orders")
	}
}

func TestRunStrictNotAnArray(t *testing.T) {
	for _, native := range []bool{false, true} {
		e := compile(t, "user[*]", codegen.Options{Strict: true, Native: native})
		_, err := e.Run(sampleInput(), nil)

		var notArr *types.NotAnArrayError
		if !errors.As(err, &notArr) {
			t.Fatalf("native=%v: err = %v, want NotAnArrayError", native, err)
		}
		be.Equal(t, notArr.Path, "user")
	}
}

func TestRunStrictNullAccess(t *testing.T) {
	input := map[string]any{"user": nil}
	for _, native := range []bool{false, true} {
		e := compile(t, "user.name", codegen.Options{Strict: true, Native: native})
		_, err := e.Run(input, nil)

		var nullErr *types.NullAccessError
		if !errors.As(err, &nullErr) {
			t.Fatalf("native=%v: err = %v, want NullAccessError", native, err)
		}
		be.Equal(t, nullErr.Path, "user")
	}
}

func TestRunOptionalChainSuppresses(t *testing.T) {
	e := compile(t, "user?.missing?.deeper", codegen.Options{Strict: true})
	v, err := e.Run(sampleInput(), nil)
	be.Err(t, err, nil)
	be.Equal(t, v, nil)
}

func TestRunProjectionAndFilter(t *testing.T) {
	e := compile(t, "orders[? price > 20].id", codegen.Options{})
	v, err := e.Run(sampleInput(), nil)
	be.Err(t, err, nil)
	be.Equal(t, canon(t, v), `["a","c"]`)
}

func TestRunInOperator(t *testing.T) {
	// The in operator routes through the fn namespace in library output and
	// an inlined helper in native output; both variants must execute.
	for _, native := range []bool{false, true} {
		e := compile(t, `"b" in orders[*].id`, codegen.Options{Native: native})
		v, err := e.Run(sampleInput(), nil)
		be.Err(t, err, nil)
		be.Equal(t, v, true)

		e = compile(t, `"z" in orders[*].id`, codegen.Options{Native: native})
		v, err = e.Run(sampleInput(), nil)
		be.Err(t, err, nil)
		be.Equal(t, v, false)
	}
}

func TestRunCallbackHelpers(t *testing.T) {
	// Arrow arguments cross the boundary as script callbacks.
	e := compile(t, "map(orders, o => o.price * 2)", codegen.Options{})
	v, err := e.Run(sampleInput(), nil)
	be.Err(t, err, nil)
	be.Equal(t, canon(t, v), "[90,30,60]")
}

func TestRunBindings(t *testing.T) {
	e := compile(t, "sum(orders[*].price) * $taxRate", codegen.Options{})
	v, err := e.Run(sampleInput(), map[string]any{"taxRate": float64(0.5)})
	be.Err(t, err, nil)
	be.Equal(t, canon(t, v), "45")
}

func TestRunLibraryNativeEquivalence(t *testing.T) {
	sources := []string{
		"user.firstName & \" \" & user.lastName",
		"orders[? price > 20] | sortDesc(price) | first | .id",
		"{ total: sum(orders[*].price), count: count(orders) }",
		"`${user.firstName} has ${count(orders)} orders`",
		"orders[-2:][*].id",
		// Coercion tables must agree between the fn namespace and the
		// inlined helpers: full-string numeric parsing, boolean ordering,
		// and merge skipping non-object arguments.
		`"12abc" == 12`,
		`"12" == 12`,
		`number("12px")`,
		`sort([true, 0, false, 2])`,
		`sort(["b", 10, true, "a", 2, false])`,
		`merge({ a: 1 }, "skip", [2], { b: 2 })`,
	}
	for _, source := range sources {
		lib := compile(t, source, codegen.Options{})
		nat := compile(t, source, codegen.Options{Native: true})

		lv, err := lib.Run(sampleInput(), nil)
		be.Err(t, err, nil)
		nv, err := nat.Run(sampleInput(), nil)
		be.Err(t, err, nil)

		if canon(t, lv) != canon(t, nv) {
			t.Errorf("source %q: library %s != native %s", source, canon(t, lv), canon(t, nv))
		}
	}
}

func TestRunUndefinedExportsNil(t *testing.T) {
	e, err := New("(function(input, bindings) { return undefined; })")
	be.Err(t, err, nil)
	v, err := e.Run(nil, nil)
	be.Err(t, err, nil)
	be.Equal(t, v, nil)
}

func TestRunContextCancellation(t *testing.T) {
	e, err := New("(function(input, bindings) { while (true) {} })")
	be.Err(t, err, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.RunContext(ctx, nil, nil)
	be.Err(t, err, context.Canceled)
}

func TestRunConcurrent(t *testing.T) {
	e := compile(t, "sum(orders[*].price)", codegen.Options{})
	input := sampleInput()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				v, err := e.Run(input, nil)
				if err != nil {
					t.Errorf("Run: %v", err)
					return
				}
				if canon(t, v) != "90" {
					t.Errorf("Run = %s, want 90", canon(t, v))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewRejectsInvalidCode(t *testing.T) {
	_, err := New("(function(input, bindings) { return ; )")
	be.Err(t, err)
}
