// Package parser implements the Morph expression parser.
//
// The parser uses a hand-written recursive descent approach with Pratt-style
// precedence climbing. It consumes the token stream produced by the lexer
// and builds the closed AST defined in pkg/types.
//
// # Architecture
//
// The parser consists of two main components:
//   - Lexer: tokenizes the input expression into a stream of tokens
//   - Parser: builds the AST from tokens, threading a stack of resolution
//     frames (filter / arrow / pipe) through the recursive calls so nested
//     scopes never leak across calls
//
// # Example
//
//	prog, err := parser.Parse("orders[? price > 30].id")
//	if err != nil {
//	    log.Fatal(err)
//	}
package parser

import (
	"github.com/morphlang/morph/pkg/types"
)

// Parse parses a Morph program and returns its AST.
//
// The function tokenizes the input, builds the AST, and validates the
// syntax. Any failure is reported as a *types.LexerError or
// *types.ParseError with position information; there is no partial result
// and no recovery.
func Parse(source string, opts ...ParseOption) (*types.Program, error) {
	options := ParseOptions{MaxDepth: 200}
	for _, opt := range opts {
		opt(&options)
	}

	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		source: source,
		tokens: tokens,
		opts:   options,
		locals: map[string]bool{},
	}
	return p.parseProgram()
}

// ParseOption configures parsing behavior.
type ParseOption func(*ParseOptions)

// ParseOptions holds parser configuration.
type ParseOptions struct {
	// MaxDepth limits expression nesting to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		opts.MaxDepth = depth
	}
}
