package funcs

import (
	"errors"
	"testing"

	"github.com/morphlang/morph/pkg/types"
	"github.com/nalgeon/be"
)

func TestPropStrict(t *testing.T) {
	user := map[string]any{"firstName": "John", "address": "here"}

	v, err := Prop(user, "firstName", "user")
	be.Err(t, err, nil)
	be.Equal(t, v, "John")

	_, err = Prop(user, "adress", "user")
	var missing *types.PropertyMissingError
	be.True(t, errors.As(err, &missing))
	be.Equal(t, missing.Key, "adress")
	be.Equal(t, missing.Path, "user")
	be.Equal(t, missing.Suggestions, []string{"address"})

	_, err = Prop(nil, "firstName", "user")
	var nullErr *types.NullAccessError
	be.True(t, errors.As(err, &nullErr))
	be.Equal(t, nullErr.Path, "user")
}

func TestAtStrict(t *testing.T) {
	arr := []any{"a", "b", "c"}

	v, err := At(arr, 1, "items")
	be.Err(t, err, nil)
	be.Equal(t, v, "b")

	// Negative indexes count from the end.
	v, err = At(arr, -1, "items")
	be.Err(t, err, nil)
	be.Equal(t, v, "c")

	_, err = At(arr, 3, "items")
	var oob *types.IndexOutOfBoundsError
	be.True(t, errors.As(err, &oob))
	be.Equal(t, oob.Index, 3)
	be.Equal(t, oob.Length, 3)

	_, err = At("not an array", 0, "items")
	var notArr *types.NotAnArrayError
	be.True(t, errors.As(err, &notArr))
}

func TestToSeqStrict(t *testing.T) {
	arr := []any{float64(1)}
	v, err := ToSeq(arr, "items")
	be.Err(t, err, nil)
	be.Equal(t, v, arr)

	_, err = ToSeq(map[string]any{}, "items")
	var notArr *types.NotAnArrayError
	be.True(t, errors.As(err, &notArr))
	be.Equal(t, notArr.Path, "items")

	_, err = ToSeq(nil, "items")
	var nullErr *types.NullAccessError
	be.True(t, errors.As(err, &nullErr))
}

func TestNthForgiving(t *testing.T) {
	arr := []any{"a", "b", "c"}
	be.Equal(t, Nth(arr, 0), "a")
	be.Equal(t, Nth(arr, -1), "c")
	be.Equal(t, Nth(arr, 5), nil)
	be.Equal(t, Nth(arr, -5), nil)
	be.Equal(t, Nth("scalar", 0), nil)
	be.Equal(t, Nth(nil, 0), nil)
}

func TestSeqForgiving(t *testing.T) {
	be.Equal(t, Seq(nil), []any{})
	be.Equal(t, Seq([]any{"a"}), []any{"a"})
	be.Equal(t, Seq("a"), []any{"a"})
	be.Equal(t, Seq(map[string]any{}), []any{map[string]any{}})
}
