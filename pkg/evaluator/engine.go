// Package evaluator executes generated Morph code on embedded JavaScript
// runtimes. An Engine wraps one compiled program; runtimes are pooled and
// reused across calls, so a compiled transform is safe for concurrent use.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/morphlang/morph/pkg/types"
)

// Engine is one compiled transform ready to run. The compiled *goja.Program
// is immutable and shared across pooled runtimes; each invocation borrows a
// runtime, resolves (and caches) the program's function value on it, and
// calls it with the input and bindings.
type Engine struct {
	program *goja.Program
	code    string
}

// New compiles generated code into an Engine. The code must be a single
// function expression taking (input, bindings); Generate produces exactly
// that shape.
func New(code string) (*Engine, error) {
	program, err := goja.Compile("morph", code, true)
	if err != nil {
		return nil, fmt.Errorf("compile generated code: %w", err)
	}
	return &Engine{program: program, code: code}, nil
}

// Code returns the generated source the engine was built from.
func (e *Engine) Code() string {
	return e.code
}

// Run executes the transform.
func (e *Engine) Run(input any, bindings map[string]any) (any, error) {
	return e.RunContext(context.Background(), input, bindings)
}

// RunContext executes the transform, interrupting the runtime if the
// context is cancelled.
func (e *Engine) RunContext(ctx context.Context, input any, bindings map[string]any) (any, error) {
	st := acquireVM()
	defer releaseVM(st)

	entry, err := st.entrypoint(e.program)
	if err != nil {
		return nil, fmt.Errorf("load generated code: %w", unwrapException(err))
	}

	var watchDone chan struct{}
	if ctx.Done() != nil {
		watchDone = make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				st.vm.Interrupt(ctx.Err())
			case <-watchDone:
			}
		}()
		defer func() {
			close(watchDone)
			st.vm.ClearInterrupt()
		}()
	}

	result, err := entry(goja.Undefined(), st.vm.ToValue(input), st.vm.ToValue(bindings))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, unwrapException(err)
	}
	return exportValue(result), nil
}

// exportValue converts a runtime value back to plain Go data. Undefined
// collapses to nil: the language has a single absent value.
func exportValue(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

// unwrapException recovers the typed error carried by a script exception.
// Library-mode helpers throw the Go error itself; native-mode preambles
// throw Error objects tagged with a code property. Anything else surfaces
// as an opaque evaluation error.
func unwrapException(err error) error {
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return err
	}

	exported := ex.Value().Export()
	if goErr, ok := exported.(error); ok {
		// An exception can carry another exception when a helper rethrows a
		// callback failure; keep unwrapping until a real error surfaces.
		if inner, ok := goErr.(*goja.Exception); ok && inner != ex {
			return unwrapException(inner)
		}
		return goErr
	}
	if obj, ok := exported.(map[string]any); ok {
		if typed := errorFromObject(obj); typed != nil {
			return typed
		}
	}
	return fmt.Errorf("evaluate: %s", ex.Error())
}

// errorFromObject maps a tagged script Error back to the matching Go error
// type, reversing the encoding in the native preamble.
func errorFromObject(obj map[string]any) error {
	code, _ := obj["code"].(string)
	path, _ := obj["path"].(string)

	switch code {
	case "property_missing":
		key, _ := obj["key"].(string)
		return &types.PropertyMissingError{
			Key:         key,
			Path:        path,
			Suggestions: stringList(obj["suggestions"]),
		}
	case "index_out_of_bounds":
		index, _ := asInt(obj["index"])
		length, _ := asInt(obj["length"])
		return &types.IndexOutOfBoundsError{Index: index, Length: length, Path: path}
	case "not_an_array":
		return &types.NotAnArrayError{Path: path}
	case "null_access":
		return &types.NullAccessError{Path: path}
	default:
		return nil
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
