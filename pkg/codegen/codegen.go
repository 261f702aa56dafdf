// Package codegen translates parsed Morph programs into executable
// JavaScript. Two output variants exist: the library variant calls into the
// fn helper namespace supplied by the host, the native variant is
// self-contained and inlines every helper it needs into a preamble.
package codegen

import (
	"fmt"
	"strings"

	"github.com/morphlang/morph/pkg/types"
)

// Options controls code generation.
type Options struct {
	// Strict routes property access, indexing and sequence coercion through
	// checked helpers that fail with path-tracked errors.
	Strict bool

	// Native emits self-contained code with no runtime dependency on the
	// fn namespace.
	Native bool

	// FuncName names the generated function expression. Anonymous when
	// empty.
	FuncName string

	// InputName and BindingsName are the parameter names of the generated
	// function. They default to "input" and "bindings".
	InputName    string
	BindingsName string
}

func (o *Options) defaults() {
	if o.InputName == "" {
		o.InputName = "input"
	}
	if o.BindingsName == "" {
		o.BindingsName = "bindings"
	}
}

// Generate emits the JavaScript source for a parsed program. The result is
// a single function expression taking (input, bindings).
func Generate(prog *types.Program, opts Options) (string, error) {
	opts.defaults()
	g := &generator{opts: opts, used: map[string]bool{}}

	body, err := g.emitProgram(prog)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	name := opts.FuncName
	if name != "" {
		name = " " + name
	}
	out.WriteString("(function" + name + "(" + opts.InputName + ", " + opts.BindingsName + ") {\n")
	out.WriteString("\"use strict\";\n")
	if opts.Native {
		out.WriteString(g.preamble())
	}
	out.WriteString(body)
	out.WriteString("})")
	return out.String(), nil
}

// generator holds per-run emission state.
type generator struct {
	opts Options

	// used tracks which preamble helpers the native output needs.
	used map[string]bool

	// scopes is the stack of iteration contexts (projection, filter and
	// map callbacks).
	scopes []scope

	// pipes is the stack of pipe value variable names.
	pipes []string

	seq int
}

// scope is one iteration context inside a generated callback.
type scope struct {
	item  string // current item variable
	index string // current index variable
	array string // backing array variable
	path  jsPath // path of the current item
}

func (g *generator) nextID() int {
	g.seq++
	return g.seq
}

func (g *generator) emitProgram(prog *types.Program) (string, error) {
	var out strings.Builder

	for _, stmt := range prog.Stmts {
		switch s := stmt.(type) {
		case *types.BindStmt:
			init, _, err := g.emit(s.Init)
			if err != nil {
				return "", err
			}
			out.WriteString("var " + localVar(s.Name) + " = " + init + ";\n")
		case *types.AssignStmt:
			value, _, err := g.emit(s.Value)
			if err != nil {
				return "", err
			}
			out.WriteString(localVar(s.Name) + " = " + value + ";\n")
		default:
			panic(fmt.Sprintf("codegen: unexpected statement %T", stmt))
		}
	}

	switch expr := prog.Expr.(type) {
	case nil:
		out.WriteString("return null;\n")
	case *types.Pipe:
		// A trailing pipe chain is in statement position: one intermediate
		// binding reassigned per stage instead of nested calls.
		v, stages, err := g.emitPipeStages(expr)
		if err != nil {
			return "", err
		}
		out.WriteString("var " + v + " = " + stages[0] + ";\n")
		for _, stage := range stages[1:] {
			out.WriteString(v + " = " + stage + ";\n")
		}
		out.WriteString("return " + v + ";\n")
	default:
		code, _, err := g.emit(expr)
		if err != nil {
			return "", err
		}
		out.WriteString("return " + code + ";\n")
	}

	return out.String(), nil
}

// localVar maps a source-level binding or parameter name to its JavaScript
// variable, prefixed so it can never collide with the generated scaffolding.
func localVar(name string) string {
	return "__l_" + name
}

// jsPath is the access path of a value, carried for strict-mode error
// reporting. Paths stay static literals until an iteration index makes them
// runtime expressions.
type jsPath struct {
	static  string
	dynamic string // JavaScript expression; set when the path depends on an index
}

func rootPath() jsPath {
	return jsPath{}
}

func (p jsPath) isStatic() bool {
	return p.dynamic == ""
}

// expr renders the path as a JavaScript expression.
func (p jsPath) expr() string {
	if p.isStatic() {
		return quoteJS(p.static)
	}
	return p.dynamic
}

// member extends the path with a dotted property segment.
func (p jsPath) member(name string) jsPath {
	if p.isStatic() {
		if p.static == "" {
			return jsPath{static: name}
		}
		return jsPath{static: p.static + "." + name}
	}
	return jsPath{dynamic: p.dynamic + " + " + quoteJS("."+name)}
}

// index extends the path with a bracketed index expression.
func (p jsPath) index(idxExpr string) jsPath {
	return jsPath{dynamic: p.expr() + ` + "[" + ` + idxExpr + ` + "]"`}
}

// indexLit extends the path with a known constant index.
func (p jsPath) indexLit(lit string) jsPath {
	if p.isStatic() {
		return jsPath{static: p.static + "[" + lit + "]"}
	}
	return jsPath{dynamic: p.dynamic + " + " + quoteJS("["+lit+"]")}
}

// quoteJS renders a Go string as a JavaScript string literal. JSON string
// syntax is a subset of JavaScript except for the line separators, which
// get escaped explicitly.
func quoteJS(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case ' ':
			b.WriteString(`\u2028`)
		case ' ':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
