package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/morphlang/morph/pkg/types"
)

// emit translates one expression node. It returns the JavaScript expression
// and the access path of the resulting value for strict error reporting.
// The type switch is exhaustive over expression nodes; an unknown node is a
// bug in the parser, not an input error.
func (g *generator) emit(n types.Node) (string, jsPath, error) {
	switch node := n.(type) {
	case *types.NumberLit:
		return formatNumber(node.Value), rootPath(), nil
	case *types.StringLit:
		return quoteJS(node.Value), rootPath(), nil
	case *types.BoolLit:
		return strconv.FormatBool(node.Value), rootPath(), nil
	case *types.NullLit:
		return "null", rootPath(), nil
	case *types.UndefinedLit:
		return "undefined", rootPath(), nil
	case *types.TemplateLit:
		return g.emitTemplate(node)

	case *types.Root:
		return g.opts.InputName, rootPath(), nil
	case *types.Current:
		s := g.topScope()
		return s.item, s.path, nil
	case *types.Parent:
		return g.emitParent()
	case *types.PipeRef:
		if len(g.pipes) == 0 {
			return "", rootPath(), fmt.Errorf("pipe value referenced outside a pipe stage")
		}
		return g.pipes[len(g.pipes)-1], rootPath(), nil
	case *types.ContextVar:
		return g.emitContextVar(node)
	case *types.BindingRef:
		return "(" + g.opts.BindingsName + " || {})[" + quoteJS(node.Name) + "]", rootPath(), nil
	case *types.LocalRef:
		return localVar(node.Name), rootPath(), nil

	case *types.Member:
		return g.emitMember(node)
	case *types.Index:
		return g.emitIndex(node)
	case *types.Slice:
		return g.emitSlice(node)
	case *types.Projection:
		return g.emitProjection(node)
	case *types.Filter:
		return g.emitFilter(node)
	case *types.MapExpr:
		return g.emitMap(node)

	case *types.Unary:
		return g.emitUnary(node)
	case *types.Binary:
		return g.emitBinary(node)
	case *types.Ternary:
		return g.emitTernary(node)
	case *types.Pipe:
		return g.emitPipe(node)

	case *types.Call:
		return g.emitCall(node)
	case *types.Arrow:
		return g.emitArrow(node)
	case *types.ArrayLit:
		return g.emitArrayLit(node)
	case *types.ObjectLit:
		return g.emitObjectLit(node)

	default:
		panic(fmt.Sprintf("codegen: unexpected node %T", n))
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// topScope returns the innermost iteration scope. The parser guarantees
// Current and context variables only occur inside filter or map bodies, so
// an empty stack falls back to the root input for safety.
func (g *generator) topScope() scope {
	if len(g.scopes) == 0 {
		return scope{item: g.opts.InputName, index: "0", array: "[]", path: rootPath()}
	}
	return g.scopes[len(g.scopes)-1]
}

func (g *generator) emitParent() (string, jsPath, error) {
	if len(g.scopes) < 2 {
		return g.opts.InputName, rootPath(), nil
	}
	s := g.scopes[len(g.scopes)-2]
	return s.item, s.path, nil
}

func (g *generator) emitContextVar(node *types.ContextVar) (string, jsPath, error) {
	s := g.topScope()
	switch node.Name {
	case "index":
		return s.index, rootPath(), nil
	case "array":
		return s.array, rootPath(), nil
	case "length":
		return s.array + ".length", rootPath(), nil
	case "first":
		return s.array + "[0]", rootPath(), nil
	case "last":
		return s.array + "[" + s.array + ".length - 1]", rootPath(), nil
	default:
		return "", rootPath(), fmt.Errorf("unknown context variable $%s", node.Name)
	}
}

// --- access chains ---

func (g *generator) emitMember(node *types.Member) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}
	path := objPath.member(node.Name)

	// Optional access short-circuits missing values to absent even under
	// strict evaluation, so it uses the forgiving helper.
	if !g.opts.Strict || node.Optional {
		return g.fnCall("get", obj, quoteJS(node.Name)), path, nil
	}
	return g.fnCall("prop", obj, quoteJS(node.Name), objPath.expr()), path, nil
}

func (g *generator) emitIndex(node *types.Index) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}
	key, _, err := g.emit(node.Key)
	if err != nil {
		return "", rootPath(), err
	}

	var path jsPath
	if num, ok := node.Key.(*types.NumberLit); ok {
		path = objPath.indexLit(formatNumber(num.Value))
	} else {
		path = objPath.index("(" + key + ")")
	}

	if !g.opts.Strict || node.Optional {
		return g.fnCall("nth", obj, key), path, nil
	}
	return g.fnCall("at", obj, key, objPath.expr()), path, nil
}

func (g *generator) emitSlice(node *types.Slice) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}

	from := "0"
	if node.From != nil {
		from, _, err = g.emit(node.From)
		if err != nil {
			return "", rootPath(), err
		}
	}

	args := []string{g.seqOf(obj, objPath, node.Optional), from}
	if node.To != nil {
		to, _, err := g.emit(node.To)
		if err != nil {
			return "", rootPath(), err
		}
		args = append(args, to)
	}
	return g.fnCall("slice", args...), objPath, nil
}

func (g *generator) emitProjection(node *types.Projection) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}
	return g.seqOf(obj, objPath, node.Optional), objPath, nil
}

// seqOf coerces a value to a sequence: a checked coercion in strict mode,
// the forgiving one otherwise. Optional access downgrades an absent value
// to the empty sequence even in strict mode.
func (g *generator) seqOf(obj string, objPath jsPath, optional bool) string {
	if !g.opts.Strict {
		return g.fnCall("seq", obj)
	}
	checked := func(v string) string {
		return g.fnCall("toSeq", v, objPath.expr())
	}
	if optional {
		return g.nullGuardTo(obj, "[]", checked)
	}
	return checked(obj)
}

func (g *generator) emitFilter(node *types.Filter) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}
	seq := g.seqOf(obj, objPath, node.Optional)

	id := g.nextID()
	sc := scope{
		item:  fmt.Sprintf("__it%d", id),
		index: fmt.Sprintf("__ix%d", id),
		array: fmt.Sprintf("__ar%d", id),
		path:  objPath.index(fmt.Sprintf("__ix%d", id)),
	}
	g.scopes = append(g.scopes, sc)
	cond, _, err := g.emit(node.Cond)
	g.scopes = g.scopes[:len(g.scopes)-1]
	if err != nil {
		return "", rootPath(), err
	}

	code := seq + ".filter(function(" + sc.item + ", " + sc.index + ", " + sc.array + ") { return " + g.truthy(cond) + "; })"
	return code, objPath, nil
}

func (g *generator) emitMap(node *types.MapExpr) (string, jsPath, error) {
	obj, objPath, err := g.emit(node.Object)
	if err != nil {
		return "", rootPath(), err
	}

	id := g.nextID()
	sc := scope{
		item:  fmt.Sprintf("__it%d", id),
		index: fmt.Sprintf("__ix%d", id),
		array: fmt.Sprintf("__ar%d", id),
		path:  objPath.index(fmt.Sprintf("__ix%d", id)),
	}
	g.scopes = append(g.scopes, sc)
	body, _, err := g.emit(node.Body)
	g.scopes = g.scopes[:len(g.scopes)-1]
	if err != nil {
		return "", rootPath(), err
	}

	code := obj + ".map(function(" + sc.item + ", " + sc.index + ", " + sc.array + ") { return " + body + "; })"
	return code, objPath, nil
}

// --- operators ---

func (g *generator) emitUnary(node *types.Unary) (string, jsPath, error) {
	operand, _, err := g.emit(node.Operand)
	if err != nil {
		return "", rootPath(), err
	}
	switch node.Op {
	case "-":
		return "(-(" + operand + "))", rootPath(), nil
	case "+":
		return "(+(" + operand + "))", rootPath(), nil
	case "!", "not":
		return "(!" + g.truthy(operand) + ")", rootPath(), nil
	default:
		panic(fmt.Sprintf("codegen: unexpected unary operator %q", node.Op))
	}
}

func (g *generator) emitBinary(node *types.Binary) (string, jsPath, error) {
	// Concatenation runs flatten so `a & b & c` renders in one pass.
	if node.Op == "&" {
		return g.emitConcat(node)
	}

	lhs, _, err := g.emit(node.LHS)
	if err != nil {
		return "", rootPath(), err
	}
	rhs, _, err := g.emit(node.RHS)
	if err != nil {
		return "", rootPath(), err
	}

	switch node.Op {
	case "==":
		return g.fnCall("eq", lhs, rhs), rootPath(), nil
	case "!=":
		return "(!" + g.fnCall("eq", lhs, rhs) + ")", rootPath(), nil
	case "===":
		return "(" + lhs + " === " + rhs + ")", rootPath(), nil
	case "!==":
		return "(" + lhs + " !== " + rhs + ")", rootPath(), nil
	case "<", "<=", ">", ">=":
		return "(" + lhs + " " + node.Op + " " + rhs + ")", rootPath(), nil
	case "in":
		return g.fnCall("in", lhs, rhs), rootPath(), nil
	case "+":
		return "((+" + wrap(lhs) + ") + (+" + wrap(rhs) + "))", rootPath(), nil
	case "-", "*", "/", "%":
		return "(" + lhs + " " + node.Op + " " + rhs + ")", rootPath(), nil
	case "&&":
		id := g.nextID()
		v := fmt.Sprintf("__v%d", id)
		return "(function(" + v + ") { return " + g.truthy(v) + " ? " + rhs + " : " + v + "; })(" + lhs + ")", rootPath(), nil
	case "||":
		id := g.nextID()
		v := fmt.Sprintf("__v%d", id)
		return "(function(" + v + ") { return " + g.truthy(v) + " ? " + v + " : " + rhs + "; })(" + lhs + ")", rootPath(), nil
	case "??":
		id := g.nextID()
		v := fmt.Sprintf("__v%d", id)
		return "(function(" + v + ") { return " + v + " == null ? " + rhs + " : " + v + "; })(" + lhs + ")", rootPath(), nil
	default:
		panic(fmt.Sprintf("codegen: unexpected binary operator %q", node.Op))
	}
}

func wrap(code string) string {
	return "(" + code + ")"
}

// emitConcat renders a run of & operators as one concatenation call.
func (g *generator) emitConcat(node *types.Binary) (string, jsPath, error) {
	var parts []string
	var collect func(n types.Node) error
	collect = func(n types.Node) error {
		if b, ok := n.(*types.Binary); ok && b.Op == "&" {
			if err := collect(b.LHS); err != nil {
				return err
			}
			return collect(b.RHS)
		}
		code, _, err := g.emit(n)
		if err != nil {
			return err
		}
		parts = append(parts, code)
		return nil
	}
	if err := collect(node); err != nil {
		return "", rootPath(), err
	}
	return g.fnCall("concat", parts...), rootPath(), nil
}

func (g *generator) emitTernary(node *types.Ternary) (string, jsPath, error) {
	cond, _, err := g.emit(node.Cond)
	if err != nil {
		return "", rootPath(), err
	}
	thenCode, _, err := g.emit(node.Then)
	if err != nil {
		return "", rootPath(), err
	}
	elseCode, _, err := g.emit(node.Else)
	if err != nil {
		return "", rootPath(), err
	}
	return "(" + g.truthy(cond) + " ? " + wrap(thenCode) + " : " + wrap(elseCode) + ")", rootPath(), nil
}

// emitPipe renders a pipe chain in expression position: one IIFE whose
// parameter is reassigned per stage. Statement-position chains are handled
// in emitProgram without the wrapper.
func (g *generator) emitPipe(node *types.Pipe) (string, jsPath, error) {
	v, stages, err := g.emitPipeStages(node)
	if err != nil {
		return "", rootPath(), err
	}

	var b strings.Builder
	b.WriteString("(function(" + v + ") { ")
	for _, stage := range stages[1:] {
		b.WriteString(v + " = " + stage + "; ")
	}
	b.WriteString("return " + v + "; })(" + stages[0] + ")")
	return b.String(), rootPath(), nil
}

// emitPipeStages unrolls a left-nested pipe chain and emits each stage,
// binding one reusable intermediate variable for every stage after the
// first. Returns the variable name and the stage expressions in order.
func (g *generator) emitPipeStages(node *types.Pipe) (string, []string, error) {
	var chain []types.Node
	for {
		chain = append([]types.Node{node.RHS}, chain...)
		lhs, ok := node.LHS.(*types.Pipe)
		if !ok {
			chain = append([]types.Node{node.LHS}, chain...)
			break
		}
		node = lhs
	}

	first, _, err := g.emit(chain[0])
	if err != nil {
		return "", nil, err
	}
	stages := []string{first}

	v := fmt.Sprintf("__p%d", g.nextID())
	g.pipes = append(g.pipes, v)
	defer func() { g.pipes = g.pipes[:len(g.pipes)-1] }()
	for _, stage := range chain[1:] {
		code, _, err := g.emit(stage)
		if err != nil {
			return "", nil, err
		}
		stages = append(stages, code)
	}
	return v, stages, nil
}

// --- templates, calls, constructors ---

func (g *generator) emitTemplate(node *types.TemplateLit) (string, jsPath, error) {
	if len(node.Parts) == 0 {
		return `""`, rootPath(), nil
	}
	parts := make([]string, 0, len(node.Parts))
	for _, part := range node.Parts {
		if part.Expr == nil {
			parts = append(parts, quoteJS(part.Text))
			continue
		}
		code, _, err := g.emit(part.Expr)
		if err != nil {
			return "", rootPath(), err
		}
		parts = append(parts, code)
	}
	return g.fnCall("concat", parts...), rootPath(), nil
}

func (g *generator) emitCall(node *types.Call) (string, jsPath, error) {
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		code, _, err := g.emit(a)
		if err != nil {
			return "", rootPath(), err
		}
		args[i] = code
	}

	if node.Local {
		return localVar(node.Name) + "(" + strings.Join(args, ", ") + ")", rootPath(), nil
	}
	// Custom registered helpers exist only in the Go namespace; native
	// output has nothing to inline for them.
	if g.opts.Native {
		if _, ok := preludeHelpers[node.Name]; !ok {
			return "", rootPath(), fmt.Errorf("function %q is not available in native output", node.Name)
		}
	}
	return g.fnCall(node.Name, args...), rootPath(), nil
}

func (g *generator) emitArrow(node *types.Arrow) (string, jsPath, error) {
	params := make([]string, len(node.Params))
	for i, p := range node.Params {
		params[i] = localVar(p)
	}
	body, _, err := g.emit(node.Body)
	if err != nil {
		return "", rootPath(), err
	}
	return "(function(" + strings.Join(params, ", ") + ") { return " + body + "; })", rootPath(), nil
}

func (g *generator) emitArrayLit(node *types.ArrayLit) (string, jsPath, error) {
	hasSpread := false
	for _, elem := range node.Elems {
		if _, ok := elem.(*types.Spread); ok {
			hasSpread = true
			break
		}
	}

	if !hasSpread {
		parts := make([]string, len(node.Elems))
		for i, elem := range node.Elems {
			code, _, err := g.emit(elem)
			if err != nil {
				return "", rootPath(), err
			}
			parts[i] = code
		}
		return "[" + strings.Join(parts, ", ") + "]", rootPath(), nil
	}

	// With spreads, build the result as concatenated chunks: literal runs
	// become array literals, each spread contributes its sequence form.
	var chunks []string
	var run []string
	flush := func() {
		if len(run) > 0 {
			chunks = append(chunks, "["+strings.Join(run, ", ")+"]")
			run = nil
		}
	}
	for _, elem := range node.Elems {
		if spread, ok := elem.(*types.Spread); ok {
			code, _, err := g.emit(spread.Expr)
			if err != nil {
				return "", rootPath(), err
			}
			flush()
			chunks = append(chunks, g.fnCall("seq", code))
			continue
		}
		code, _, err := g.emit(elem)
		if err != nil {
			return "", rootPath(), err
		}
		run = append(run, code)
	}
	flush()
	return "[].concat(" + strings.Join(chunks, ", ") + ")", rootPath(), nil
}

func (g *generator) emitObjectLit(node *types.ObjectLit) (string, jsPath, error) {
	hasSpread := false
	for _, entry := range node.Entries {
		if entry.Spread != nil {
			hasSpread = true
			break
		}
	}

	if !hasSpread {
		parts := make([]string, len(node.Entries))
		for i, entry := range node.Entries {
			code, _, err := g.emit(entry.Value)
			if err != nil {
				return "", rootPath(), err
			}
			parts[i] = quoteJS(entry.Key) + ": " + code
		}
		return "({" + strings.Join(parts, ", ") + "})", rootPath(), nil
	}

	// Spread entries merge left to right, later keys winning.
	var chunks []string
	var run []string
	flush := func() {
		if len(run) > 0 {
			chunks = append(chunks, "{"+strings.Join(run, ", ")+"}")
			run = nil
		}
	}
	for _, entry := range node.Entries {
		if entry.Spread != nil {
			code, _, err := g.emit(entry.Spread)
			if err != nil {
				return "", rootPath(), err
			}
			flush()
			chunks = append(chunks, "("+code+" || {})")
			continue
		}
		code, _, err := g.emit(entry.Value)
		if err != nil {
			return "", rootPath(), err
		}
		run = append(run, quoteJS(entry.Key)+": "+code)
	}
	flush()
	return "Object.assign({}, " + strings.Join(chunks, ", ") + ")", rootPath(), nil
}

// --- guards ---

// nullGuardTo wraps an access so an absent base short-circuits to the
// fallback instead of failing, implementing the ?[] projection form in
// strict mode.
func (g *generator) nullGuardTo(obj, fallback string, access func(v string) string) string {
	v := fmt.Sprintf("__v%d", g.nextID())
	return "(function(" + v + ") { return " + v + " == null ? " + fallback + " : " + access(v) + "; })(" + obj + ")"
}
