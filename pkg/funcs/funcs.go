// Package funcs implements the Morph helper library: the built-in
// functions callable from expressions and the access helpers emitted by the
// library code generator. All helpers are non-mutating; inputs come back
// untouched and results are fresh values.
package funcs

import (
	"errors"
	"fmt"
	"sort"
)

// Impl is the Go implementation of one helper. Arguments arrive as plain Go
// values (map[string]any, []any, float64, int64, string, bool, nil);
// function-valued arguments arrive as Callback.
type Impl func(args []any) (any, error)

// Callback is a caller-supplied function argument, typically an arrow
// function from the expression source.
type Callback func(args ...any) (any, error)

// Def describes one registered helper.
type Def struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 = variadic

	// PathKeyed marks helpers whose second argument is a property-path key
	// that the parser canonicalizes to a dotted string.
	PathKeyed bool

	// Internal helpers are emitted by the code generator but are not
	// callable by name from expression source.
	Internal bool

	Impl Impl
}

var registry = map[string]*Def{}

func register(def *Def) {
	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("funcs: duplicate registration of %q", def.Name))
	}
	registry[def.Name] = def
}

// Register adds a custom helper, making it callable from expressions parsed
// afterwards. Helpers must be registered before the first compilation: the
// parser resolves names at parse time and pooled runtimes snapshot the
// namespace when they are built.
func Register(def Def) error {
	if def.Name == "" {
		return errors.New("funcs: helper name must not be empty")
	}
	if def.Impl == nil {
		return fmt.Errorf("funcs: helper %q has no implementation", def.Name)
	}
	if _, exists := registry[def.Name]; exists {
		return fmt.Errorf("funcs: helper %q is already registered", def.Name)
	}
	registry[def.Name] = &def
	return nil
}

// Lookup returns the definition of a registered helper.
func Lookup(name string) (*Def, bool) {
	def, ok := registry[name]
	return def, ok
}

// IsBuiltin reports whether name is callable from expression source.
func IsBuiltin(name string) bool {
	def, ok := registry[name]
	return ok && !def.Internal
}

// IsPathKeyed reports whether name takes a property-path key as its second
// argument.
func IsPathKeyed(name string) bool {
	def, ok := registry[name]
	return ok && def.PathKeyed
}

// Names returns all registered helper names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a registered helper with arity checking.
func Call(name string, args []any) (any, error) {
	def, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	if len(args) < def.MinArgs {
		return nil, fmt.Errorf("%s: expected at least %d arguments, got %d", name, def.MinArgs, len(args))
	}
	if def.MaxArgs >= 0 && len(args) > def.MaxArgs {
		return nil, fmt.Errorf("%s: expected at most %d arguments, got %d", name, def.MaxArgs, len(args))
	}
	return def.Impl(args)
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}
