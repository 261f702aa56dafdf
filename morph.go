// Package morph compiles and evaluates Morph expressions: a small, pure
// transformation language over JSON-like data with property paths, filters,
// pipes and arrow functions. Source is compiled to JavaScript and executed
// on pooled embedded runtimes; compiled transforms are immutable and safe
// for concurrent use.
//
// Quick start:
//
//	result, err := morph.Evaluate("orders[? price > 30].id", input)
//
// Repeated evaluation should compile once:
//
//	transform, err := morph.Compile("user.firstName & \" \" & user.lastName")
//	out, err := transform(input, nil)
package morph

import (
	"fmt"

	"github.com/morphlang/morph/pkg/cache"
	"github.com/morphlang/morph/pkg/codegen"
	"github.com/morphlang/morph/pkg/evaluator"
	"github.com/morphlang/morph/pkg/parser"
	"github.com/morphlang/morph/pkg/types"
)

// Version is the library version, surfaced by the CLI and wasm frontends.
const Version = "0.1.0"

// Option configures compilation and evaluation.
type Option func(*config)

type config struct {
	strict       bool
	native       bool
	funcName     string
	inputName    string
	bindingsName string
	bindings     map[string]any
	cache        *cache.Cache
	cacheSize    int
}

// WithStrict enables strict access: missing properties, out-of-bounds
// indexes and projections over non-arrays fail with path-tracked errors
// instead of yielding absent values.
func WithStrict() Option {
	return func(c *config) { c.strict = true }
}

// WithNative emits self-contained code that inlines every helper it needs,
// with no dependency on the runtime helper namespace.
func WithNative() Option {
	return func(c *config) { c.native = true }
}

// WithWrappedFunction names the generated function expression, which is
// useful when the emitted code is embedded elsewhere.
func WithWrappedFunction(name string) Option {
	return func(c *config) { c.funcName = name }
}

// WithInputName overrides the input parameter name of the generated
// function (default "input").
func WithInputName(name string) Option {
	return func(c *config) { c.inputName = name }
}

// WithBindingsName overrides the bindings parameter name of the generated
// function (default "bindings").
func WithBindingsName(name string) Option {
	return func(c *config) { c.bindingsName = name }
}

// WithBindings supplies named external values, referenced in expressions as
// $name. Only Evaluate honors this option; compiled transforms take
// bindings per invocation.
func WithBindings(bindings map[string]any) Option {
	return func(c *config) { c.bindings = bindings }
}

// WithCache installs a shared compilation cache on a Compiler.
func WithCache(c *cache.Cache) Option {
	return func(cfg *config) { cfg.cache = c }
}

// WithCacheSize sets the capacity of the Compiler's own cache.
func WithCacheSize(n int) Option {
	return func(cfg *config) { cfg.cacheSize = n }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) codegenOptions() codegen.Options {
	return codegen.Options{
		Strict:       c.strict,
		Native:       c.native,
		FuncName:     c.funcName,
		InputName:    c.inputName,
		BindingsName: c.bindingsName,
	}
}

// Tokenize scans source into its token stream. Most callers want Parse or
// Compile; Tokenize exists for tooling.
func Tokenize(source string) ([]parser.Token, error) {
	return parser.Tokenize(source)
}

// Parse parses source into its syntax tree.
func Parse(source string) (*types.Program, error) {
	return parser.Parse(source)
}

// Generate emits the JavaScript for a parsed program.
func Generate(prog *types.Program, opts ...Option) (string, error) {
	return codegen.Generate(prog, newConfig(opts).codegenOptions())
}

// Compile compiles source into an invocable transform.
func Compile(source string, opts ...Option) (types.Transform, error) {
	compiled, err := compile(source, newConfig(opts))
	if err != nil {
		return nil, err
	}
	return compiled.Fn(), nil
}

// MustCompile is Compile that panics on error, for static expressions.
func MustCompile(source string, opts ...Option) types.Transform {
	transform, err := Compile(source, opts...)
	if err != nil {
		panic(fmt.Sprintf("morph: compile %q: %v", source, err))
	}
	return transform
}

// Evaluate compiles and runs source against input in one call.
func Evaluate(source string, input any, opts ...Option) (any, error) {
	cfg := newConfig(opts)
	compiled, err := compile(source, cfg)
	if err != nil {
		return nil, err
	}
	return compiled.Invoke(input, cfg.bindings)
}

func compile(source string, cfg *config) (*types.CompiledTransform, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	code, err := codegen.Generate(prog, cfg.codegenOptions())
	if err != nil {
		return nil, err
	}
	engine, err := evaluator.New(code)
	if err != nil {
		return nil, err
	}
	return types.NewCompiledTransform(source, code, cfg.strict, cfg.native, engine.Run), nil
}

// Compiler compiles with a shared cache. The zero value is not usable; use
// NewCompiler. Default options given at construction apply to every
// compilation and can be extended per call.
type Compiler struct {
	cache *cache.Cache
	opts  []Option
}

// NewCompiler builds a Compiler. Caching is always on; WithCache shares an
// existing cache and WithCacheSize sizes a private one.
func NewCompiler(opts ...Option) *Compiler {
	cfg := newConfig(opts)
	c := cfg.cache
	if c == nil {
		c = cache.New(cfg.cacheSize)
	}
	return &Compiler{cache: c, opts: opts}
}

// Compile returns the cached transform for source, compiling on miss.
func (c *Compiler) Compile(source string, opts ...Option) (types.Transform, error) {
	compiled, err := c.compiled(source, opts)
	if err != nil {
		return nil, err
	}
	return compiled.Fn(), nil
}

// Evaluate compiles (or reuses) source and runs it against input.
func (c *Compiler) Evaluate(source string, input any, opts ...Option) (any, error) {
	cfg := newConfig(append(c.opts, opts...))
	compiled, err := c.compiled(source, opts)
	if err != nil {
		return nil, err
	}
	return compiled.Invoke(input, cfg.bindings)
}

// Generated returns the emitted code for source, compiling on miss.
func (c *Compiler) Generated(source string, opts ...Option) (string, error) {
	compiled, err := c.compiled(source, opts)
	if err != nil {
		return "", err
	}
	return compiled.Code(), nil
}

func (c *Compiler) compiled(source string, opts []Option) (*types.CompiledTransform, error) {
	cfg := newConfig(append(c.opts, opts...))
	key := cacheKey(source, cfg)
	return c.cache.GetOrCompile(key, func() (*types.CompiledTransform, error) {
		return compile(source, cfg)
	})
}

// cacheKey separates compilation modes: the same source compiled strict and
// forgiving must not collide.
func cacheKey(source string, cfg *config) string {
	mode := byte('f')
	if cfg.strict {
		mode = 's'
	}
	variant := byte('l')
	if cfg.native {
		variant = 'n'
	}
	return string([]byte{mode, variant, 0}) + cfg.inputName + "\x00" + cfg.bindingsName + "\x00" + source
}
