// Package types defines the core type system for Morph.
//
// This package contains type definitions for:
//   - Node and the closed AST union
//   - Program: parsed source, ready for code generation
//   - Transform: a compiled, directly invocable data transform
//   - Error types: the typed lexer/parser/strict-evaluation taxonomy
package types

// Transform is a compiled Morph expression: a pure function of an input
// value and an optional bindings map. A Transform carries no hidden state
// and is safe for concurrent use by multiple goroutines.
type Transform func(input any, bindings map[string]any) (any, error)

// CompiledTransform pairs a Transform with the source it was compiled from
// and the generated code, so callers (and the expression cache) can display
// or persist the emitted text.
type CompiledTransform struct {
	source string
	code   string
	strict bool
	native bool
	fn     Transform
}

// NewCompiledTransform builds a CompiledTransform. All fields are fixed at
// construction; the value is immutable afterwards.
func NewCompiledTransform(source, code string, strict, native bool, fn Transform) *CompiledTransform {
	return &CompiledTransform{source: source, code: code, strict: strict, native: native, fn: fn}
}

// Source returns the original expression source text.
func (t *CompiledTransform) Source() string { return t.source }

// Code returns the generated JavaScript text.
func (t *CompiledTransform) Code() string { return t.code }

// Strict reports whether the transform was compiled with strict access.
func (t *CompiledTransform) Strict() bool { return t.strict }

// Native reports whether the transform was compiled with native output.
func (t *CompiledTransform) Native() bool { return t.native }

// Fn returns the invocable transform.
func (t *CompiledTransform) Fn() Transform { return t.fn }

// Invoke runs the transform.
func (t *CompiledTransform) Invoke(input any, bindings map[string]any) (any, error) {
	return t.fn(input, bindings)
}
