package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/morphlang/morph/pkg/funcs"
	"github.com/morphlang/morph/pkg/types"
)

// Parser implements a recursive descent parser for Morph programs with
// Pratt-style precedence climbing.
type Parser struct {
	source string
	tokens []Token
	pos    int
	depth  int
	opts   ParseOptions

	// locals tracks program-level let/const declarations; the value is the
	// mutability flag (true = const). Arrow parameters live on frames.
	locals map[string]bool

	// frames is the stack of resolution contexts. Each recursive region
	// (filter body, arrow body, pipe stage) pushes one frame and pops it on
	// the way out, so nested scopes resolve innermost-first and nothing
	// leaks across calls.
	frames []frame
}

type frameKind uint8

const (
	frameFilter frameKind = iota
	frameArrow
	framePipe
)

// frame is one resolution context. Frames are immutable once pushed.
type frame struct {
	kind   frameKind
	param  string          // arrow frames: the first parameter name
	params map[string]bool // arrow frames: all parameter names
}

// Operator precedence table (binding power). Higher binds more tightly.
// The grammar is total: every expression form maps to exactly one level.
const (
	precPipe     = 10
	precTernary  = 15
	precCoalesce = 20
	precOr       = 25
	precAnd      = 30
	precEquality = 40
	precRelation = 45
	precConcat   = 50
	precAdditive = 55
	precMultiply = 60
	precUnary    = 70
)

func precedenceOf(k Kind) int {
	switch k {
	case TokenPipe:
		return precPipe
	case TokenQuestion:
		return precTernary
	case TokenCoalesce:
		return precCoalesce
	case TokenOr:
		return precOr
	case TokenAnd:
		return precAnd
	case TokenEqual, TokenNotEqual, TokenStrictEqual, TokenStrictNotEqual:
		return precEquality
	case TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual, TokenIn:
		return precRelation
	case TokenConcat:
		return precConcat
	case TokenPlus, TokenMinus:
		return precAdditive
	case TokenStar, TokenSlash, TokenPercent:
		return precMultiply
	default:
		return 0
	}
}

// --- token cursor ---

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k Kind) (Token, error) {
	if p.cur().Kind != k {
		return Token{}, p.errorExpected(k.String())
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	t := p.cur()
	return &types.ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    t.Line,
		Column:  t.Column,
		Offset:  t.Start,
	}
}

func (p *Parser) errorExpected(expected ...string) error {
	t := p.cur()
	return &types.ParseError{
		Message:  fmt.Sprintf("Unexpected token %s", t.Kind.String()),
		Line:     t.Line,
		Column:   t.Column,
		Offset:   t.Start,
		Expected: expected,
	}
}

// --- program ---

// parseProgram parses an optional sequence of let/const bindings and bare
// reassignments followed by an optional trailing expression.
func (p *Parser) parseProgram() (*types.Program, error) {
	prog := &types.Program{Source: p.source}

	if p.cur().Kind == TokenEOF {
		return nil, p.errorf("Empty expression")
	}

stmts:
	for {
		switch {
		case p.cur().Kind == TokenLet || p.cur().Kind == TokenConst:
			stmt, err := p.parseBinding()
			if err != nil {
				return nil, err
			}
			prog.Stmts = append(prog.Stmts, stmt)
		case p.cur().Kind == TokenIdent && p.peek().Kind == TokenAssign:
			stmt, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			prog.Stmts = append(prog.Stmts, stmt)
		default:
			break stmts
		}
	}

	if p.cur().Kind != TokenEOF {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		prog.Expr = expr
	}

	if p.cur().Kind != TokenEOF {
		return nil, p.errorf("Unexpected token %s after expression", p.cur().Kind.String())
	}
	if len(prog.Stmts) == 0 && prog.Expr == nil {
		return nil, p.errorf("Empty expression")
	}
	return prog, nil
}

// parseBinding parses `let name = expr;` or `const name = expr;`.
func (p *Parser) parseBinding() (types.Node, error) {
	kw := p.advance() // let or const
	isConst := kw.Kind == TokenConst

	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(name.Text, "$") || name.Text == "^" {
		return nil, p.errorf("Binding name %q may not use a context sigil", name.Text)
	}
	if _, exists := p.locals[name.Text]; exists {
		return nil, p.errorf("Name %q is already declared", name.Text)
	}

	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}
	init, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	p.locals[name.Text] = isConst
	return &types.BindStmt{Name: name.Text, Init: init, Const: isConst}, nil
}

// parseAssign parses `name = expr;`. Reassigning a const-declared or
// undeclared name is a parse error, not deferred to evaluation.
func (p *Parser) parseAssign() (types.Node, error) {
	name := p.advance()
	isConst, declared := p.locals[name.Text]
	if !declared {
		return nil, p.errorf("Cannot assign to undeclared name %q", name.Text)
	}
	if isConst {
		return nil, p.errorf("Cannot reassign constant %q", name.Text)
	}

	p.advance() // '='
	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	return &types.AssignStmt{Name: name.Text, Value: value}, nil
}

// --- expressions ---

// parseExpression parses an expression with operator precedence climbing.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (types.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.errorf("Expression is nested too deeply")
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < precedenceOf(p.cur().Kind) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (null denotation) and the postfix
// access chain that follows it.
func (p *Parser) parsePrefix() (types.Node, error) {
	token := p.cur()

	var node types.Node
	var err error

	switch token.Kind {
	case TokenNumber:
		node, err = p.parseNumber()
	case TokenString:
		node, err = p.parseString()
	case TokenTemplate:
		node, err = p.parseTemplate()
	case TokenTrue, TokenFalse:
		p.advance()
		node = &types.BoolLit{Value: token.Kind == TokenTrue}
	case TokenNull:
		p.advance()
		node = &types.NullLit{}
	case TokenUndefined:
		p.advance()
		node = &types.UndefinedLit{}
	case TokenIdent:
		node, err = p.parseIdent()
	case TokenMinus, TokenPlus:
		node, err = p.parseUnary(token.Kind.String())
	case TokenBang:
		node, err = p.parseUnary("!")
	case TokenNot:
		node, err = p.parseUnary("not")
	case TokenParenOpen:
		node, err = p.parseParenOrArrow()
	case TokenBracketOpen:
		node, err = p.parseArrayLit()
	case TokenBraceOpen:
		node, err = p.parseObjectLit()
	case TokenDot, TokenOptDot:
		node, err = p.parseLeadingDot()
	default:
		return nil, p.errorf("Unexpected token %s", token.Kind.String())
	}
	if err != nil {
		return nil, err
	}

	return p.parsePostfix(node)
}

// parseInfix parses an infix expression (left denotation).
func (p *Parser) parseInfix(left types.Node) (types.Node, error) {
	token := p.cur()

	switch token.Kind {
	case TokenPipe:
		return p.parsePipe(left)
	case TokenQuestion:
		return p.parseTernary(left)
	case TokenCoalesce, TokenOr, TokenAnd,
		TokenEqual, TokenNotEqual, TokenStrictEqual, TokenStrictNotEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual, TokenIn,
		TokenConcat, TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent:
		return p.parseBinary(left)
	default:
		return nil, p.errorf("Unexpected infix token %s", token.Kind.String())
	}
}

func (p *Parser) parseBinary(left types.Node) (types.Node, error) {
	op := p.advance()
	prec := precedenceOf(op.Kind)

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	return &types.Binary{Op: op.Kind.String(), LHS: left, RHS: right}, nil
}

// parseTernary parses `cond ? then : else`.
func (p *Parser) parseTernary(cond types.Node) (types.Node, error) {
	p.advance() // '?'

	thenExpr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}

	// Right-associative: a ? b : c ? d : e groups as a ? b : (c ? d : e).
	elseExpr, err := p.parseExpression(precTernary - 1)
	if err != nil {
		return nil, err
	}

	return &types.Ternary{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

// parsePipe parses one pipe stage. Within the stage, a leading dot resolves
// against the piped value; a bare function name becomes a call on the piped
// value; a call that never references the piped value gets it prepended as
// the first argument.
func (p *Parser) parsePipe(left types.Node) (types.Node, error) {
	p.advance() // '|'

	p.frames = append(p.frames, frame{kind: framePipe})
	right, err := p.parseExpression(precPipe)
	p.frames = p.frames[:len(p.frames)-1]
	if err != nil {
		return nil, err
	}

	if call, ok := right.(*types.Call); ok && !referencesPipe(call) {
		args := append([]types.Node{&types.PipeRef{}}, call.Args...)
		rewritten := &types.Call{Name: call.Name, Args: args, Local: call.Local}
		if !call.Local {
			rewritten = p.normalizeCall(rewritten)
		}
		right = rewritten
	}

	return &types.Pipe{LHS: left, RHS: right}, nil
}

func referencesPipe(n types.Node) bool {
	return types.References(n, func(node types.Node) bool {
		_, ok := node.(*types.PipeRef)
		return ok
	})
}

func (p *Parser) parseUnary(op string) (types.Node, error) {
	p.advance()

	operand, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}

	// Fold a negated number literal so -1 is a leaf, as the lexer contract
	// promises for numbers with an optional leading minus.
	if op == "-" {
		if num, ok := operand.(*types.NumberLit); ok {
			return &types.NumberLit{Value: -num.Value}, nil
		}
	}

	return &types.Unary{Op: op, Operand: operand}, nil
}

// --- primaries ---

func (p *Parser) parseNumber() (types.Node, error) {
	t := p.advance()
	val, err := strconv.ParseFloat(t.Text, 64)
	if err != nil {
		return nil, p.errorf("Invalid number %q", t.Text)
	}
	return &types.NumberLit{Value: val}, nil
}

func (p *Parser) parseString() (types.Node, error) {
	t := p.advance()
	unescaped, err := unescapeString(t.Text)
	if err != nil {
		return nil, p.errorf("Invalid string literal: %v", err)
	}
	return &types.StringLit{Value: unescaped}, nil
}

// parseIdent parses an identifier in prefix position: context sigils,
// binding references, arrows, calls, and bare names.
func (p *Parser) parseIdent() (types.Node, error) {
	t := p.cur()
	name := t.Text

	// Context sigils.
	if name == "$" {
		p.advance()
		return &types.Root{}, nil
	}
	if name == "^" {
		p.advance()
		return &types.Parent{}, nil
	}
	if strings.HasPrefix(name, "$") {
		return p.parseDollarName(name[1:])
	}

	// Arrow function with a single bare parameter: x => body.
	if p.peek().Kind == TokenArrow {
		return p.parseArrow([]string{name})
	}

	// Function call by name.
	if p.peek().Kind == TokenParenOpen {
		return p.parseCall(name)
	}

	p.advance()
	return p.resolveBareIdent(name), nil
}

// parseDollarName handles $item, $index and friends, and named bindings.
func (p *Parser) parseDollarName(name string) (types.Node, error) {
	switch name {
	case "item":
		if !p.inFilterFrame() {
			return nil, p.errorf("$item is only valid inside a projection or filter body")
		}
		p.advance()
		return &types.Current{}, nil
	case "index", "i", "array", "length", "first", "last":
		if !p.inFilterFrame() {
			return nil, p.errorf("$%s is only valid inside a projection or filter body", name)
		}
		p.advance()
		if name == "i" {
			name = "index"
		}
		return &types.ContextVar{Name: name}, nil
	case "":
		p.advance()
		return &types.Root{}, nil
	default:
		p.advance()
		return &types.BindingRef{Name: name}, nil
	}
}

func (p *Parser) inFilterFrame() bool {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].kind == frameFilter {
			return true
		}
	}
	return false
}

// resolveBareIdent resolves a bare identifier that is not a call: first as a
// local (arrow parameters innermost-first, then let/const bindings), then as
// a property of the innermost frame target. Inside a pipe stage a bare
// built-in name becomes a call on the piped value.
func (p *Parser) resolveBareIdent(name string) types.Node {
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := p.frames[i]
		if f.kind == frameArrow && f.params[name] {
			return &types.LocalRef{Name: name}
		}
	}
	if _, ok := p.locals[name]; ok {
		return &types.LocalRef{Name: name}
	}

	if len(p.frames) > 0 {
		switch f := p.frames[len(p.frames)-1]; f.kind {
		case frameFilter:
			return &types.Member{Object: &types.Current{}, Name: name}
		case frameArrow:
			return &types.Member{Object: &types.LocalRef{Name: f.param}, Name: name}
		case framePipe:
			if funcs.IsBuiltin(name) {
				return &types.Call{Name: name, Args: []types.Node{&types.PipeRef{}}}
			}
			return &types.Member{Object: &types.Root{}, Name: name}
		}
	}
	return &types.Member{Object: &types.Root{}, Name: name}
}

// contextTarget is the value a leading dot resolves against: the arrow
// parameter inside an arrow body, the current item inside a filter or
// projection body, the piped value inside a pipe stage, and the root input
// at top level.
func (p *Parser) contextTarget() types.Node {
	if len(p.frames) > 0 {
		switch f := p.frames[len(p.frames)-1]; f.kind {
		case frameFilter:
			return &types.Current{}
		case frameArrow:
			return &types.LocalRef{Name: f.param}
		case framePipe:
			return &types.PipeRef{}
		}
	}
	return &types.Root{}
}

// parseLeadingDot parses dot-prefixed shorthand in prefix position:
// .name, .name(args), .[index].
func (p *Parser) parseLeadingDot() (types.Node, error) {
	dot := p.advance()
	optional := dot.Kind == TokenOptDot
	target := p.contextTarget()

	if p.cur().Kind == TokenBracketOpen {
		return p.parseBracketAccess(target, optional)
	}

	name, err := p.expectMemberName()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == TokenParenOpen && !optional {
		return p.parseMethodCall(target, name)
	}

	return &types.Member{Object: target, Name: name, Optional: optional}, nil
}

// expectMemberName accepts an identifier or keyword as a member name.
func (p *Parser) expectMemberName() (string, error) {
	t := p.cur()
	switch t.Kind {
	case TokenIdent, TokenLet, TokenConst, TokenIn, TokenNot,
		TokenTrue, TokenFalse, TokenNull, TokenUndefined:
		if strings.HasPrefix(t.Text, "$") || t.Text == "^" {
			return "", p.errorf("Unexpected context variable %q after '.'", t.Text)
		}
		p.advance()
		return t.Text, nil
	default:
		return "", p.errorExpected("(identifier)")
	}
}

// parseParenOrArrow disambiguates a parenthesized expression from an arrow
// parameter list by scanning ahead for `)` followed by `=>`.
func (p *Parser) parseParenOrArrow() (types.Node, error) {
	if params, ok := p.scanArrowParams(); ok {
		return p.parseArrow(params)
	}

	p.advance() // '('
	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return node, nil
}

// scanArrowParams looks ahead from an opening paren for a bare identifier
// list followed by `) =>`. It does not consume tokens unless it matches.
func (p *Parser) scanArrowParams() ([]string, bool) {
	i := p.pos + 1 // past '('
	var params []string

	if p.tokens[i].Kind == TokenParenClose {
		i++
	} else {
		for {
			if p.tokens[i].Kind != TokenIdent || strings.HasPrefix(p.tokens[i].Text, "$") || p.tokens[i].Text == "^" {
				return nil, false
			}
			params = append(params, p.tokens[i].Text)
			i++
			if p.tokens[i].Kind == TokenComma {
				i++
				continue
			}
			if p.tokens[i].Kind == TokenParenClose {
				i++
				break
			}
			return nil, false
		}
	}

	if p.tokens[i].Kind != TokenArrow {
		return nil, false
	}

	// Commit: consume up to and including ')'. parseArrow consumes '=>'.
	p.pos = i
	return params, true
}

// parseArrow parses an arrow function body with its own resolution frame.
// The current token is '=>'.
func (p *Parser) parseArrow(params []string) (types.Node, error) {
	if p.cur().Kind == TokenIdent {
		// Single bare parameter form: consume the parameter token.
		p.advance()
	}
	if _, err := p.expect(TokenArrow); err != nil {
		return nil, err
	}

	paramSet := make(map[string]bool, len(params))
	for _, name := range params {
		if paramSet[name] {
			return nil, p.errorf("Duplicate parameter name %q", name)
		}
		paramSet[name] = true
	}

	first := ""
	if len(params) > 0 {
		first = params[0]
	}
	p.frames = append(p.frames, frame{kind: frameArrow, param: first, params: paramSet})
	body, err := p.parseExpression(0)
	p.frames = p.frames[:len(p.frames)-1]
	if err != nil {
		return nil, err
	}

	return &types.Arrow{Params: params, Body: body}, nil
}

// parseCall parses `name(args...)`. The name must be a local binding or a
// known built-in: unknown function names fail at parse time.
func (p *Parser) parseCall(name string) (types.Node, error) {
	if !p.isLocal(name) && !funcs.IsBuiltin(name) {
		return nil, p.errorf("Unknown function %q", name)
	}

	p.advance() // name
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}

	if p.isLocal(name) {
		// A let-bound name shadows the built-in of the same name; no
		// path-argument normalization applies to local functions.
		return &types.Call{Name: name, Args: args, Local: true}, nil
	}
	return p.normalizeCall(&types.Call{Name: name, Args: args}), nil
}

// parseMethodCall desugars recv.name(args) into name(recv, args...).
func (p *Parser) parseMethodCall(recv types.Node, name string) (types.Node, error) {
	if !p.isLocal(name) && !funcs.IsBuiltin(name) {
		return nil, p.errorf("Unknown function %q", name)
	}

	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}

	allArgs := append([]types.Node{recv}, args...)
	if p.isLocal(name) {
		return &types.Call{Name: name, Args: allArgs, Local: true}, nil
	}
	return p.normalizeCall(&types.Call{Name: name, Args: allArgs}), nil
}

func (p *Parser) parseCallArgs() ([]types.Node, error) {
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	var args []types.Node
	if p.cur().Kind != TokenParenClose {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur().Kind != TokenComma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) isLocal(name string) bool {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].kind == frameArrow && p.frames[i].params[name] {
			return true
		}
	}
	_, ok := p.locals[name]
	return ok
}

// normalizeCall canonicalizes the key argument of sort/group/key-by style
// built-ins: the three equivalent property-path spellings (.price, price,
// "meta.priority") all become one dotted-path string literal. Arrow
// arguments pass through untouched.
func (p *Parser) normalizeCall(call *types.Call) *types.Call {
	if !funcs.IsPathKeyed(call.Name) || len(call.Args) < 2 {
		return call
	}
	if normalized, ok := pathArgString(call.Args[1]); ok {
		args := make([]types.Node, len(call.Args))
		copy(args, call.Args)
		args[1] = &types.StringLit{Value: normalized}
		return &types.Call{Name: call.Name, Args: args}
	}
	return call
}

// pathArgString recognizes the property-path spellings of a key argument
// and returns the canonical dotted form.
func pathArgString(n types.Node) (string, bool) {
	if s, ok := n.(*types.StringLit); ok {
		return s.Value, true
	}

	var names []string
	for {
		m, ok := n.(*types.Member)
		if !ok || m.Optional {
			break
		}
		names = append([]string{m.Name}, names...)
		n = m.Object
	}
	if len(names) == 0 {
		return "", false
	}

	switch n.(type) {
	case *types.Root, *types.Current, *types.PipeRef, *types.LocalRef, *types.Parent:
		return strings.Join(names, "."), true
	default:
		return "", false
	}
}

// --- postfix access chain ---

// parsePostfix parses the access chain after a primary: member access,
// optional chaining, indexes, slices, projections, filters, method calls,
// and the auto-projection rule.
func (p *Parser) parsePostfix(node types.Node) (types.Node, error) {
	for {
		switch p.cur().Kind {
		case TokenDot, TokenOptDot:
			dot := p.advance()
			optional := dot.Kind == TokenOptDot

			name, err := p.expectMemberName()
			if err != nil {
				return nil, err
			}

			if p.cur().Kind == TokenParenOpen && !optional {
				node, err = p.parseMethodCall(node, name)
				if err != nil {
					return nil, err
				}
				continue
			}

			node = p.accessOrProject(node, name, optional)

		case TokenBracketOpen, TokenOptBracket:
			optional := p.cur().Kind == TokenOptBracket
			next, err := p.parseBracketAccess(node, optional)
			if err != nil {
				return nil, err
			}
			node = next

		default:
			return node, nil
		}
	}
}

// accessOrProject applies the auto-projection rule: property access
// immediately following a projection, filter, slice or map access becomes a
// per-element map, recursing through chained dotted paths.
func (p *Parser) accessOrProject(node types.Node, name string, optional bool) types.Node {
	switch base := node.(type) {
	case *types.MapExpr:
		return &types.MapExpr{
			Object: base.Object,
			Body:   &types.Member{Object: base.Body, Name: name, Optional: optional},
		}
	case *types.Projection, *types.Filter, *types.Slice:
		return &types.MapExpr{
			Object: node,
			Body:   &types.Member{Object: &types.Current{}, Name: name, Optional: optional},
		}
	default:
		return &types.Member{Object: node, Name: name, Optional: optional}
	}
}

// parseBracketAccess parses everything that starts with '[' after a base
// expression: [] and [*] projections, [? cond] filters, [a:b] slices, and
// [i] indexes. The opening bracket (or '?[') has not been consumed yet.
func (p *Parser) parseBracketAccess(base types.Node, optional bool) (types.Node, error) {
	p.advance() // '[' or '?['

	// Empty brackets parse identically to [*]: a projection over the whole
	// sequence.
	if p.cur().Kind == TokenBracketClose {
		p.advance()
		return &types.Projection{Object: base, Optional: optional}, nil
	}
	if p.cur().Kind == TokenStar {
		p.advance()
		if _, err := p.expect(TokenBracketClose); err != nil {
			return nil, err
		}
		return &types.Projection{Object: base, Optional: optional}, nil
	}

	// A '?' inside brackets introduces a filter.
	if p.cur().Kind == TokenQuestion {
		p.advance()
		p.frames = append(p.frames, frame{kind: frameFilter})
		cond, err := p.parseExpression(0)
		p.frames = p.frames[:len(p.frames)-1]
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenBracketClose); err != nil {
			return nil, err
		}
		return &types.Filter{Object: base, Cond: cond, Optional: optional}, nil
	}

	// Slice with absent start: [:to].
	if p.cur().Kind == TokenColon {
		return p.parseSliceTail(base, nil, optional)
	}

	first, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == TokenColon {
		return p.parseSliceTail(base, first, optional)
	}

	if _, err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	return &types.Index{Object: base, Key: first, Optional: optional}, nil
}

func (p *Parser) parseSliceTail(base, from types.Node, optional bool) (types.Node, error) {
	p.advance() // ':'

	var to types.Node
	if p.cur().Kind != TokenBracketClose {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		to = expr
	}
	if _, err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	return &types.Slice{Object: base, From: from, To: to, Optional: optional}, nil
}

// --- constructors ---

func (p *Parser) parseArrayLit() (types.Node, error) {
	p.advance() // '['

	node := &types.ArrayLit{}
	if p.cur().Kind == TokenBracketClose {
		p.advance()
		return node, nil
	}

	for {
		if p.cur().Kind == TokenSpread {
			p.advance()
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			node.Elems = append(node.Elems, &types.Spread{Expr: expr})
		} else {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			node.Elems = append(node.Elems, expr)
		}

		if p.cur().Kind == TokenBracketClose {
			p.advance()
			return node, nil
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseObjectLit() (types.Node, error) {
	p.advance() // '{'

	node := &types.ObjectLit{}
	if p.cur().Kind == TokenBraceClose {
		p.advance()
		return node, nil
	}

	for {
		if p.cur().Kind == TokenSpread {
			p.advance()
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, types.ObjectEntry{Spread: expr})
		} else {
			entry, err := p.parseObjectEntry()
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, entry)
		}

		if p.cur().Kind == TokenBraceClose {
			p.advance()
			return node, nil
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseObjectEntry() (types.ObjectEntry, error) {
	var key string
	switch t := p.cur(); t.Kind {
	case TokenIdent:
		if strings.HasPrefix(t.Text, "$") || t.Text == "^" {
			return types.ObjectEntry{}, p.errorf("Object key may not be a context variable")
		}
		key = t.Text
		p.advance()
	case TokenString:
		unescaped, err := unescapeString(t.Text)
		if err != nil {
			return types.ObjectEntry{}, p.errorf("Invalid string key: %v", err)
		}
		key = unescaped
		p.advance()
	default:
		return types.ObjectEntry{}, p.errorExpected("(identifier)", "(string)")
	}

	// Shorthand entry: {price} means {price: price} with the usual bare
	// identifier resolution.
	if p.cur().Kind == TokenComma || p.cur().Kind == TokenBraceClose {
		return types.ObjectEntry{Key: key, Value: p.resolveBareIdent(key)}, nil
	}

	if _, err := p.expect(TokenColon); err != nil {
		return types.ObjectEntry{}, err
	}
	value, err := p.parseExpression(0)
	if err != nil {
		return types.ObjectEntry{}, err
	}
	return types.ObjectEntry{Key: key, Value: value}, nil
}

// --- templates ---

// parseTemplate splits the raw template text into literal chunks and ${...}
// interpolation spans, reparsing each captured span with the same parser
// state so the spans see the surrounding resolution frames.
func (p *Parser) parseTemplate() (types.Node, error) {
	t := p.advance()
	raw := t.Text

	node := &types.TemplateLit{}
	var text strings.Builder

	flush := func() error {
		if text.Len() == 0 {
			return nil
		}
		chunk, err := unescapeString(text.String())
		if err != nil {
			return p.errorf("Invalid template literal: %v", err)
		}
		node.Parts = append(node.Parts, types.TemplatePart{Text: chunk})
		text.Reset()
		return nil
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			text.WriteByte(raw[i])
			text.WriteByte(raw[i+1])
			i++
			continue
		}
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			end, ok := matchBrace(raw, i+2)
			if !ok {
				return nil, p.errorAt(t.Start+i, "Unterminated template interpolation")
			}
			if err := flush(); err != nil {
				return nil, err
			}
			// The token text is the raw source bytes after the opening
			// backtick, so span offsets rebase by a fixed shift.
			expr, err := p.parseSpan(raw[i+2:end], t.Start+i+2)
			if err != nil {
				return nil, err
			}
			node.Parts = append(node.Parts, types.TemplatePart{Expr: expr})
			i = end
			continue
		}
		text.WriteByte(raw[i])
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return node, nil
}

// matchBrace returns the offset of the '}' matching the '{' that precedes
// start, tracking nested braces.
func matchBrace(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseSpan parses one interpolation span with a temporary token stream,
// sharing this parser's locals and frames. base is the span's byte offset
// in the program source; failure positions are rebased to it so errors
// inside ${...} point into the original template text.
func (p *Parser) parseSpan(src string, base int) (types.Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, p.rebaseError(err, base)
	}
	if len(tokens) == 1 { // EOF only
		return nil, p.errorAt(base, "Empty template interpolation")
	}

	savedTokens, savedPos := p.tokens, p.pos
	p.tokens, p.pos = tokens, 0
	expr, perr := p.parseExpression(0)
	if perr == nil && p.cur().Kind != TokenEOF {
		perr = p.errorf("Unexpected token %s in template interpolation", p.cur().Kind.String())
	}
	p.tokens, p.pos = savedTokens, savedPos
	if perr != nil {
		return nil, p.rebaseError(perr, base)
	}
	return expr, nil
}

// rebaseError shifts a span-relative error position into the program
// source. Nested spans rebase once per level, accumulating the shifts.
func (p *Parser) rebaseError(err error, base int) error {
	switch e := err.(type) {
	case *types.LexerError:
		e.Offset += base
		e.Line, e.Column = p.lineCol(e.Offset)
	case *types.ParseError:
		e.Offset += base
		e.Line, e.Column = p.lineCol(e.Offset)
	}
	return err
}

// lineCol converts a byte offset in the program source to a 1-based line
// and rune column.
func (p *Parser) lineCol(offset int) (int, int) {
	if offset > len(p.source) {
		offset = len(p.source)
	}
	line, lineStart := 1, 0
	for i := 0; i < offset; i++ {
		if p.source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(p.source[lineStart:offset]) + 1
}

// errorAt reports a parse error at a known source offset rather than at
// the current token.
func (p *Parser) errorAt(offset int, format string, args ...any) error {
	line, col := p.lineCol(offset)
	return &types.ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
		Offset:  offset,
	}
}

// --- string unescaping ---

// unescapeString processes escape sequences in a string or template chunk:
// the common set (\n, \t, \r, \b, \f, \\, \", \', \/, \`) plus \uXXXX with
// UTF-16 surrogate pair decoding.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '\'':
			result.WriteByte('\'')
		case '/':
			result.WriteByte('/')
		case '`':
			result.WriteByte('`')
		case '$':
			result.WriteByte('$')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4

			r := rune(codePoint)
			if r >= 0xD800 && r <= 0xDBFF && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				// High surrogate: try to pair it with the following \uXXXX.
				lowHex := s[i+3 : i+7]
				if lowCodePoint, err := strconv.ParseUint(lowHex, 16, 16); err == nil {
					low := rune(lowCodePoint)
					if low >= 0xDC00 && low <= 0xDFFF {
						decoded := utf16.Decode([]uint16{uint16(r), uint16(low)})
						if len(decoded) > 0 {
							result.WriteRune(decoded[0])
							i += 6
							continue
						}
					}
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}
