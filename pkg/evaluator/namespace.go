package evaluator

import (
	"github.com/dop251/goja"

	"github.com/morphlang/morph/pkg/funcs"
)

// installNamespace exposes the helper library to the runtime as the global
// fn object. Library-variant code calls through it; native-variant code
// carries its own inlined helpers and never touches it.
func installNamespace(vm *goja.Runtime) {
	ns := vm.NewObject()
	for _, name := range funcs.Names() {
		def, _ := funcs.Lookup(name)
		_ = ns.Set(name, helperFunc(vm, def))
	}
	_ = vm.Set("fn", ns)
}

// helperFunc adapts one registered helper to a runtime-native function.
// Helper errors are thrown as exceptions carrying the Go error value, so
// the engine boundary can hand them back untouched.
func helperFunc(vm *goja.Runtime, def *funcs.Def) func(goja.FunctionCall) goja.Value {
	name := def.Name
	return func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, v := range call.Arguments {
			args[i] = importValue(vm, v)
		}

		result, err := funcs.Call(name, args)
		if err != nil {
			// A callback exception passes through unchanged; helper errors
			// are wrapped so they surface at the engine boundary.
			if ex, ok := err.(*goja.Exception); ok {
				panic(ex)
			}
			panic(vm.ToValue(err))
		}
		return vm.ToValue(result)
	}
}

// importValue converts a runtime argument to the Go representation helpers
// work with. Function arguments become Callbacks so higher-order helpers
// can call back into script code.
func importValue(vm *goja.Runtime, v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if callable, ok := goja.AssertFunction(v); ok {
		return callbackOf(vm, callable)
	}
	return v.Export()
}

// callbackOf wraps a script function for invocation from Go. Exceptions
// from the script side propagate as errors and are rethrown by helperFunc,
// keeping the original exception value intact across the boundary.
func callbackOf(vm *goja.Runtime, callable goja.Callable) funcs.Callback {
	return func(args ...any) (any, error) {
		jsArgs := make([]goja.Value, len(args))
		for i, a := range args {
			jsArgs[i] = vm.ToValue(a)
		}
		result, err := callable(goja.Undefined(), jsArgs...)
		if err != nil {
			return nil, err
		}
		return exportValue(result), nil
	}
}
