package funcs

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero", float64(0), false},
		{"number", float64(7), true},
		{"empty string", "", false},
		{"string", "x", true},
		{"empty array", []any{}, false},
		{"array", []any{float64(0)}, true},
		{"empty object", map[string]any{}, false},
		{"object", map[string]any{"a": nil}, true},
		{"int64", int64(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, Truthy(tt.v), tt.want)
		})
	}
}

func TestEq(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"absent both", nil, nil, true},
		{"absent one", nil, float64(0), false},
		{"numbers", float64(3), float64(3), true},
		{"mixed numeric types", float64(3), int64(3), true},
		{"numeric string", "42", float64(42), true},
		{"numeric string spaces", " 42 ", float64(42), true},
		{"non-numeric string", "x", float64(42), false},
		{"numeric prefix string", "12abc", float64(12), false},
		{"empty string vs zero", "", float64(0), false},
		{"strings", "a", "a", true},
		{"bool as number", true, float64(1), true},
		{"false as number", false, float64(0), true},
		{"bools", true, false, false},
		{"arrays deep", []any{float64(1), "a"}, []any{float64(1), "a"}, true},
		{"arrays coerced elements", []any{"1"}, []any{float64(1)}, true},
		{"arrays length", []any{float64(1)}, []any{}, false},
		{"objects deep", map[string]any{"a": float64(1)}, map[string]any{"a": float64(1)}, true},
		{"objects extra key", map[string]any{"a": float64(1)}, map[string]any{"a": float64(1), "b": nil}, false},
		{"array vs object", []any{}, map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, Eq(tt.a, tt.b), tt.want)
			be.Equal(t, Eq(tt.b, tt.a), tt.want)
		})
	}
}

func TestStrictEq(t *testing.T) {
	be.True(t, StrictEq(float64(3), int64(3)))
	be.True(t, !StrictEq("42", float64(42)))
	be.True(t, !StrictEq(true, float64(1)))
	be.True(t, StrictEq([]any{"a"}, []any{"a"}))
	be.True(t, !StrictEq([]any{"1"}, []any{float64(1)}))
	be.True(t, StrictEq(nil, nil))
}

func TestCompareValues(t *testing.T) {
	be.Equal(t, compareValues(float64(1), float64(2)), -1)
	be.Equal(t, compareValues("b", "a"), 1)
	be.Equal(t, compareValues(false, true), -1)
	be.Equal(t, compareValues("a", "a"), 0)

	// Absent values order after everything else.
	be.Equal(t, compareValues(nil, float64(0)), 1)
	be.Equal(t, compareValues(float64(0), nil), -1)

	// Mixed types get a stable order by type name.
	be.Equal(t, compareValues(float64(1), "1"), compareValues(float64(2), "0"))
}

func TestKeyExtractor(t *testing.T) {
	identity, err := keyExtractor(nil)
	be.Err(t, err, nil)
	v, err := identity("x", 0)
	be.Err(t, err, nil)
	be.Equal(t, v, "x")

	byPath, err := keyExtractor("meta.priority")
	be.Err(t, err, nil)
	v, err = byPath(map[string]any{"meta": map[string]any{"priority": float64(2)}}, 0)
	be.Err(t, err, nil)
	be.Equal[any](t, v, float64(2))

	called := false
	byFunc, err := keyExtractor(Callback(func(args ...any) (any, error) {
		called = true
		return args[1], nil
	}))
	be.Err(t, err, nil)
	v, err = byFunc("ignored", 7)
	be.Err(t, err, nil)
	be.True(t, called)
	be.Equal(t, v, 7)

	_, err = keyExtractor(float64(1))
	be.Err(t, err)
}
