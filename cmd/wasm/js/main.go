//go:build js && wasm

// Command morph-wasm-js is the WebAssembly entrypoint for browser and
// Node.js.
//
// It exposes a global `morph` object with the following API:
//
//	morph.version()                      → string
//	morph.eval(source, inputJSON, opts)  → resultJSON  (throws on error)
//	morph.generate(source, opts)         → code string (throws on error)
//	morph.compile(source, opts)          → { eval(inputJSON) → resultJSON }
//
// opts is an optional object: { strict: bool, native: bool }.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o morph.wasm ./cmd/wasm/js/
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/morphlang/morph"
)

func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

// optionsOf reads the trailing opts object, if present.
func optionsOf(args []js.Value, idx int) []morph.Option {
	var opts []morph.Option
	if len(args) <= idx || args[idx].Type() != js.TypeObject {
		return opts
	}
	o := args[idx]
	if o.Get("strict").Truthy() {
		opts = append(opts, morph.WithStrict())
	}
	if o.Get("native").Truthy() {
		opts = append(opts, morph.WithNative())
	}
	return opts
}

func unmarshalInput(raw string) interface{} {
	var input interface{}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		jsThrow(fmt.Sprintf("morph: invalid input JSON: %v", err))
	}
	return input
}

// jsEval implements morph.eval(source, inputJSON, opts) → resultJSON.
func jsEval(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		jsThrow("morph.eval requires 2 arguments: source (string) and input (JSON string)")
	}
	input := unmarshalInput(args[1].String())

	result, err := morph.Evaluate(args[0].String(), input, optionsOf(args, 2)...)
	if err != nil {
		jsThrow(fmt.Sprintf("morph.eval: %v", err))
	}

	out, err := json.Marshal(result)
	if err != nil {
		jsThrow(fmt.Sprintf("morph.eval: marshal result: %v", err))
	}
	return string(out)
}

// jsGenerate implements morph.generate(source, opts) → code string.
func jsGenerate(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("morph.generate requires 1 argument: source (string)")
	}
	prog, err := morph.Parse(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("morph.generate: %v", err))
	}
	code, err := morph.Generate(prog, optionsOf(args, 1)...)
	if err != nil {
		jsThrow(fmt.Sprintf("morph.generate: %v", err))
	}
	return code
}

// jsCompile implements morph.compile(source, opts) → { eval(inputJSON) }.
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("morph.compile requires 1 argument: source (string)")
	}

	transform, err := morph.Compile(args[0].String(), optionsOf(args, 1)...)
	if err != nil {
		jsThrow(fmt.Sprintf("morph.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		if len(innerArgs) < 1 {
			jsThrow("compiled.eval requires 1 argument: input (JSON string)")
		}
		input := unmarshalInput(innerArgs[0].String())
		result, err := transform(input, nil)
		if err != nil {
			jsThrow(fmt.Sprintf("compiled.eval: %v", err))
		}
		out, _ := json.Marshal(result)
		return string(out)
	})

	return js.ValueOf(map[string]interface{}{"eval": evalFn})
}

func main() {
	api := map[string]interface{}{
		"eval":     js.FuncOf(jsEval),
		"generate": js.FuncOf(jsGenerate),
		"compile":  js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return morph.Version
		}),
	}
	js.Global().Set("morph", js.ValueOf(api))

	// Block forever — the JS event loop owns execution from here.
	select {}
}
