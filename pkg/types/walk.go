package types

import "fmt"

// Walk traverses the AST rooted at n in depth-first preorder, calling visit
// for each node. If visit returns false the node's children are skipped.
//
// The type switch below enumerates every node kind; an unknown kind is a
// programming error and panics.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}

	switch node := n.(type) {
	case *Program:
		for _, s := range node.Stmts {
			Walk(s, visit)
		}
		Walk(node.Expr, visit)
	case *BindStmt:
		Walk(node.Init, visit)
	case *AssignStmt:
		Walk(node.Value, visit)

	case *NumberLit, *StringLit, *BoolLit, *NullLit, *UndefinedLit:
		// leaves
	case *TemplateLit:
		for _, part := range node.Parts {
			Walk(part.Expr, visit)
		}

	case *Member:
		Walk(node.Object, visit)
	case *Index:
		Walk(node.Object, visit)
		Walk(node.Key, visit)
	case *Slice:
		Walk(node.Object, visit)
		Walk(node.From, visit)
		Walk(node.To, visit)
	case *Projection:
		Walk(node.Object, visit)
	case *Filter:
		Walk(node.Object, visit)
		Walk(node.Cond, visit)
	case *MapExpr:
		Walk(node.Object, visit)
		Walk(node.Body, visit)

	case *Root, *Parent, *Current, *PipeRef, *ContextVar, *BindingRef, *LocalRef:
		// leaves

	case *Unary:
		Walk(node.Operand, visit)
	case *Binary:
		Walk(node.LHS, visit)
		Walk(node.RHS, visit)
	case *Ternary:
		Walk(node.Cond, visit)
		Walk(node.Then, visit)
		Walk(node.Else, visit)
	case *Pipe:
		Walk(node.LHS, visit)
		Walk(node.RHS, visit)

	case *Call:
		for _, arg := range node.Args {
			Walk(arg, visit)
		}
	case *Arrow:
		Walk(node.Body, visit)

	case *ArrayLit:
		for _, el := range node.Elems {
			Walk(el, visit)
		}
	case *Spread:
		Walk(node.Expr, visit)
	case *ObjectLit:
		for _, e := range node.Entries {
			Walk(e.Value, visit)
			Walk(e.Spread, visit)
		}

	default:
		panic(fmt.Sprintf("types: Walk: unhandled node kind %T", n))
	}
}

// References reports whether any node in the subtree rooted at n satisfies
// pred. Used by codegen to detect pipe-context references inside a stage.
func References(n Node, pred func(Node) bool) bool {
	found := false
	Walk(n, func(node Node) bool {
		if found {
			return false
		}
		if pred(node) {
			found = true
			return false
		}
		return true
	})
	return found
}
