package funcs

import (
	"testing"

	"github.com/nalgeon/be"
)

func order(id string, total float64) map[string]any {
	return map[string]any{"id": id, "total": total}
}

func TestSortByKey(t *testing.T) {
	orders := []any{order("a", 30), order("b", 10), order("c", 20)}

	sorted, err := Call("sort", []any{orders, "total"})
	be.Err(t, err, nil)
	got := sorted.([]any)
	be.Equal(t, got[0].(map[string]any)["id"], "b")
	be.Equal(t, got[1].(map[string]any)["id"], "c")
	be.Equal(t, got[2].(map[string]any)["id"], "a")

	// The input is untouched.
	be.Equal(t, orders[0].(map[string]any)["id"], "a")

	desc, err := Call("sortDesc", []any{orders, "total"})
	be.Err(t, err, nil)
	be.Equal(t, desc.([]any)[0].(map[string]any)["id"], "a")
}

func TestSortIsStable(t *testing.T) {
	items := []any{
		map[string]any{"k": float64(1), "tag": "first"},
		map[string]any{"k": float64(1), "tag": "second"},
		map[string]any{"k": float64(0), "tag": "third"},
	}
	sorted, err := Call("sort", []any{items, "k"})
	be.Err(t, err, nil)
	got := sorted.([]any)
	be.Equal(t, got[0].(map[string]any)["tag"], "third")
	be.Equal(t, got[1].(map[string]any)["tag"], "first")
	be.Equal(t, got[2].(map[string]any)["tag"], "second")
}

func TestSortAbsentKeysLast(t *testing.T) {
	items := []any{
		map[string]any{"k": nil},
		map[string]any{"k": float64(5)},
	}
	sorted, err := Call("sort", []any{items, "k"})
	be.Err(t, err, nil)
	be.Equal[any](t, sorted.([]any)[0].(map[string]any)["k"], float64(5))
}

func TestUniq(t *testing.T) {
	v, err := Call("uniq", []any{[]any{float64(1), "1", float64(2), float64(1)}})
	be.Err(t, err, nil)
	// Forgiving equality folds the numeric string into the number.
	be.Equal[any](t, v, []any{float64(1), float64(2)})

	v, err = Call("uniq", []any{
		[]any{order("a", 10), order("b", 10), order("c", 20)},
		"total",
	})
	be.Err(t, err, nil)
	be.Equal(t, len(v.([]any)), 2)
}

func TestGroupBy(t *testing.T) {
	items := []any{
		map[string]any{"kind": "fruit", "name": "apple"},
		map[string]any{"kind": "veg", "name": "leek"},
		map[string]any{"kind": "fruit", "name": "pear"},
	}
	v, err := Call("groupBy", []any{items, "kind"})
	be.Err(t, err, nil)
	groups := v.(map[string]any)
	be.Equal(t, len(groups["fruit"].([]any)), 2)
	be.Equal(t, len(groups["veg"].([]any)), 1)
}

func TestKeyByLastWins(t *testing.T) {
	items := []any{
		map[string]any{"id": "x", "v": float64(1)},
		map[string]any{"id": "x", "v": float64(2)},
	}
	v, err := Call("keyBy", []any{items, "id"})
	be.Err(t, err, nil)
	be.Equal[any](t, v.(map[string]any)["x"].(map[string]any)["v"], float64(2))
}

func TestSliceBounds(t *testing.T) {
	items := []any{"a", "b", "c", "d"}
	tests := []struct {
		name     string
		from, to float64
		want     []any
	}{
		{"inner", 1, 3, []any{"b", "c"}},
		{"negative from", -2, 4, []any{"c", "d"}},
		{"negative to", 0, -1, []any{"a", "b", "c"}},
		{"past end", 2, 99, []any{"c", "d"}},
		{"inverted", 3, 1, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Call("slice", []any{items, tt.from, tt.to})
			be.Err(t, err, nil)
			be.Equal[any](t, v, tt.want)
		})
	}
}

func TestReduce(t *testing.T) {
	sum := Callback(func(args ...any) (any, error) {
		a, _ := asNumber(args[0])
		b, _ := asNumber(args[1])
		return a + b, nil
	})

	v, err := Call("reduce", []any{[]any{float64(1), float64(2), float64(3)}, sum, float64(10)})
	be.Err(t, err, nil)
	be.Equal[any](t, v, float64(16))

	// Without an initial value the first element seeds the accumulator.
	v, err = Call("reduce", []any{[]any{float64(1), float64(2)}, sum})
	be.Err(t, err, nil)
	be.Equal[any](t, v, float64(3))

	// Empty input with no initial value yields nothing.
	v, err = Call("reduce", []any{[]any{}, sum})
	be.Err(t, err, nil)
	be.Equal(t, v, nil)
}

func TestMinByMaxBy(t *testing.T) {
	orders := []any{order("a", 30), order("b", 10), order("c", 20)}

	v, err := Call("minBy", []any{orders, "total"})
	be.Err(t, err, nil)
	be.Equal(t, v.(map[string]any)["id"], "b")

	v, err = Call("maxBy", []any{orders, "total"})
	be.Err(t, err, nil)
	be.Equal(t, v.(map[string]any)["id"], "a")

	// All keys absent yields nothing rather than an arbitrary element.
	v, err = Call("minBy", []any{[]any{map[string]any{}}, "total"})
	be.Err(t, err, nil)
	be.Equal(t, v, nil)
}

func TestFlatten(t *testing.T) {
	nested := []any{float64(1), []any{float64(2), []any{float64(3)}}}

	v, err := Call("flatten", []any{nested})
	be.Err(t, err, nil)
	be.Equal[any](t, v, []any{float64(1), float64(2), []any{float64(3)}})

	v, err = Call("flatten", []any{nested, float64(2)})
	be.Err(t, err, nil)
	be.Equal[any](t, v, []any{float64(1), float64(2), float64(3)})
}

func TestIn(t *testing.T) {
	be.True(t, In(float64(2), []any{float64(1), float64(2)}))
	be.True(t, In("2", []any{float64(2)}))
	be.True(t, !In(float64(3), []any{float64(1)}))
	be.True(t, In("ell", "hello"))
	be.True(t, !In("z", "hello"))
	be.True(t, In("key", map[string]any{"key": nil}))
	be.True(t, !In("other", map[string]any{"key": nil}))
	be.True(t, !In("x", float64(1)))
}

func TestScalarCoercion(t *testing.T) {
	// Sequence helpers accept scalars as one-element sequences.
	v, err := Call("count", []any{"héllo"})
	be.Err(t, err, nil)
	be.Equal[any](t, v, float64(5))

	// Strings count in UTF-16 units, the same as generated code measuring
	// string length.
	v, err = Call("count", []any{"a\U0001F600b"})
	be.Err(t, err, nil)
	be.Equal[any](t, v, float64(4))

	v, err = Call("first", []any{"only"})
	be.Err(t, err, nil)
	be.Equal(t, v, "only")

	v, err = Call("reverse", []any{[]any{"a", "b"}})
	be.Err(t, err, nil)
	be.Equal[any](t, v, []any{"b", "a"})
}
