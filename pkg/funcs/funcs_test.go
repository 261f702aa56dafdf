package funcs

import (
	"sort"
	"testing"

	"github.com/nalgeon/be"
)

func TestCallArity(t *testing.T) {
	_, err := Call("upper", []any{})
	be.Err(t, err)

	_, err = Call("upper", []any{"a", "b"})
	be.Err(t, err)

	v, err := Call("upper", []any{"abc"})
	be.Err(t, err, nil)
	be.Equal(t, v, "ABC")

	_, err = Call("nosuchfunction", []any{})
	be.Err(t, err)

	// Variadic helpers accept any argument count.
	v, err = Call("concat", []any{"a", float64(1), nil, "b"})
	be.Err(t, err, nil)
	be.Equal(t, v, "a1b")
}

func TestRegisterValidation(t *testing.T) {
	impl := func(args []any) (any, error) { return nil, nil }

	be.Err(t, Register(Def{Name: "", Impl: impl}))
	be.Err(t, Register(Def{Name: "broken"}))
	be.Err(t, Register(Def{Name: "upper", Impl: impl}))

	be.Err(t, Register(Def{Name: "testOnlyHelper", MinArgs: 1, MaxArgs: 1, Impl: impl}), nil)
	be.True(t, IsBuiltin("testOnlyHelper"))
	be.Err(t, Register(Def{Name: "testOnlyHelper", Impl: impl}))
}

func TestInternalHelpersAreNotBuiltins(t *testing.T) {
	// Generated code calls these, expression source cannot.
	for _, name := range []string{"prop", "at", "toSeq", "nth", "truthy", "in"} {
		def, ok := Lookup(name)
		be.True(t, ok)
		be.True(t, def.Internal)
		be.True(t, !IsBuiltin(name))
	}
	be.True(t, IsBuiltin("sort"))
	be.True(t, IsBuiltin("get"))
}

func TestIsPathKeyed(t *testing.T) {
	for _, name := range []string{"sort", "sortDesc", "uniq", "groupBy", "keyBy", "pluck", "minBy", "maxBy", "sumBy"} {
		be.True(t, IsPathKeyed(name))
	}
	be.True(t, !IsPathKeyed("map"))
	be.True(t, !IsPathKeyed("filter"))
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	be.True(t, len(names) > 0)
	be.True(t, sort.StringsAreSorted(names))
}
