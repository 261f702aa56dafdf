//go:build wasip1

// Command morph-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "source": "<expression>", "input": <any>, "strict": bool, "bindings": {...} }
//	stdout: { "result": <any JSON value> }    on success
//	        { "error":  "<message>"       }    on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o morph.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"source":"user.name","input":{"user":{"name":"Alice"}}}' | wasmtime morph.wasm
package main

import (
	"encoding/json"
	"os"

	"github.com/morphlang/morph"
)

type request struct {
	Source   string                 `json:"source"`
	Input    interface{}            `json:"input"`
	Strict   bool                   `json:"strict"`
	Bindings map[string]interface{} `json:"bindings"`
}

type response struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	opts := []morph.Option{morph.WithBindings(req.Bindings)}
	if req.Strict {
		opts = append(opts, morph.WithStrict())
	}

	result, err := morph.Evaluate(req.Source, req.Input, opts...)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	writeResponse(response{Result: result}, 0)
}
