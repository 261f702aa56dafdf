package types

// Morph AST node definitions.
//
// The AST is a closed tagged union: the Node interface carries an unexported
// marker method, so the set of node kinds is fixed to the structs in this
// file. Every dispatch point (Walk, codegen emission) switches exhaustively
// over these kinds and panics on anything else, so adding a kind surfaces a
// visible gap in each dispatch rather than falling into a default case.
//
// Nodes are immutable once the parser returns: code generation only reads
// them, which allows the same Program to be generated repeatedly with
// different options (strict vs forgiving, native vs library).

// Node is the sealed interface implemented by every AST node.
type Node interface {
	node()
}

// marker seals the Node interface; every node embeds it.
type marker struct{}

func (marker) node() {}

// Program is the root node: an ordered sequence of binding statements and
// reassignments followed by an optional trailing expression.
type Program struct {
	marker
	Stmts  []Node // *BindStmt or *AssignStmt, in source order
	Expr   Node   // trailing expression; nil when the program is bindings only
	Source string // original source text
}

// BindStmt is a `let name = expr;` or `const name = expr;` statement.
type BindStmt struct {
	marker
	Name  string
	Init  Node
	Const bool
}

// AssignStmt reassigns a previously `let`-declared name. Reassignment of a
// `const` name never reaches the AST: the parser rejects it.
type AssignStmt struct {
	marker
	Name  string
	Value Node
}

// --- Literals ---

type NumberLit struct {
	marker
	Value float64
}

type StringLit struct {
	marker
	Value string
}

type BoolLit struct {
	marker
	Value bool
}

type NullLit struct{ marker }

type UndefinedLit struct{ marker }

// TemplateLit is a backtick template. Parts alternate freely between raw
// text chunks (Expr == nil) and interpolation spans (Expr != nil).
type TemplateLit struct {
	marker
	Parts []TemplatePart
}

// TemplatePart is one chunk of a template literal. It is not a Node itself.
type TemplatePart struct {
	Text string
	Expr Node // nil for a raw text chunk
}

// --- Access nodes ---
//
// Every access node carries its base expression and an Optional flag: when
// set, a missing intermediate short-circuits to an absent result instead of
// failing, even under strict evaluation.

// Member is property access: base.name or base?.name.
type Member struct {
	marker
	Object   Node
	Name     string
	Optional bool
}

// Index is element access: base[i] or base?[i]. Negative indexes count
// from the end.
type Index struct {
	marker
	Object   Node
	Key      Node
	Optional bool
}

// Slice is base[from:to]; From and/or To may be nil.
type Slice struct {
	marker
	Object   Node
	From     Node
	To       Node
	Optional bool
}

// Projection is the spread access base[] / base[*]: the whole sequence.
type Projection struct {
	marker
	Object   Node
	Optional bool
}

// Filter is base[? cond].
type Filter struct {
	marker
	Object   Node
	Cond     Node
	Optional bool
}

// MapExpr is the auto-projection access synthesized by the parser when
// property access follows a projection, filter, slice or map: Body is
// evaluated once per element with Current bound to the element.
type MapExpr struct {
	marker
	Object Node
	Body   Node
}

// --- Context nodes ---
//
// Context nodes resolve relative to an evaluation frame, never to a fixed
// lexical scope.

// Root is `$`: the transform's input value regardless of nesting.
type Root struct{ marker }

// Parent is `^`: the next enclosing frame's current item (the input when
// there is no enclosing frame).
type Parent struct{ marker }

// Current is the item of the innermost projection/filter frame, written
// `$item` or reached through leading-dot shorthand.
type Current struct{ marker }

// PipeRef is the value produced by the previous pipe stage, reached through
// leading-dot shorthand inside a stage.
type PipeRef struct{ marker }

// ContextVar is one of the reserved frame variables valid only inside
// projection/filter bodies: "index", "array", "length", "first", "last".
type ContextVar struct {
	marker
	Name string
}

// BindingRef is `$name`: a lookup in the transform's bindings map.
type BindingRef struct {
	marker
	Name string
}

// LocalRef refers to a `let`/`const` binding or an arrow parameter that is
// in scope. The parser only emits it for names it has seen declared.
type LocalRef struct {
	marker
	Name string
}

// --- Operator nodes ---
//
// Operator nodes are strictly binary/ternary trees; runs of pipes and string
// concatenations are flattened at code-generation time only.

type Unary struct {
	marker
	Op      string // "!", "not", "-", "+"
	Operand Node
}

type Binary struct {
	marker
	Op  string // "??", "||", "&&", "==", "!=", "===", "!==", "<", ">", "<=", ">=", "in", "&", "+", "-", "*", "/", "%"
	LHS Node
	RHS Node
}

type Ternary struct {
	marker
	Cond Node
	Then Node
	Else Node
}

// Pipe is one `left | right` stage; chains are left-nested Pipe trees.
type Pipe struct {
	marker
	LHS Node
	RHS Node
}

// --- Function nodes ---

// Call invokes a built-in helper or a local function value. Method-call
// syntax (recv.name(args)) is desugared by the parser into
// Call{Name, [recv, args...]}.
type Call struct {
	marker
	Name string
	Args []Node

	// Local marks a call through a local binding or arrow parameter, which
	// shadows any helper of the same name.
	Local bool
}

// Arrow is a function literal: params => body. An arrow body resolves bare
// property shorthand against its own first parameter; nested arrows each
// introduce their own resolution frame, innermost winning.
type Arrow struct {
	marker
	Params []string
	Body   Node
}

// --- Construction nodes ---

type ArrayLit struct {
	marker
	Elems []Node // expression or *Spread
}

// Spread is `...expr` inside an array literal.
type Spread struct {
	marker
	Expr Node
}

type ObjectLit struct {
	marker
	Entries []ObjectEntry
}

// ObjectEntry is one `key: value`, shorthand `key`, or `...spread` entry.
// It is not a Node itself.
type ObjectEntry struct {
	Key    string
	Value  Node // nil only when Spread is set
	Spread Node // non-nil for a `...expr` entry
}
