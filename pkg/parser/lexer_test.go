package parser

import (
	"errors"
	"testing"

	"github.com/morphlang/morph/pkg/types"
)

func kindsOf(tokens []Token) []Kind {
	kinds := make([]Kind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Kind
	}{
		{
			name:   "property path",
			source: "user.firstName",
			want:   []Kind{TokenIdent, TokenDot, TokenIdent, TokenEOF},
		},
		{
			name:   "projection and member",
			source: "orders[*].price",
			want:   []Kind{TokenIdent, TokenBracketOpen, TokenStar, TokenBracketClose, TokenDot, TokenIdent, TokenEOF},
		},
		{
			name:   "filter",
			source: "orders[? price > 30]",
			want:   []Kind{TokenIdent, TokenBracketOpen, TokenQuestion, TokenIdent, TokenGreater, TokenNumber, TokenBracketClose, TokenEOF},
		},
		{
			name:   "optional chain",
			source: "a?.b?[0]",
			want:   []Kind{TokenIdent, TokenOptDot, TokenIdent, TokenOptBracket, TokenNumber, TokenBracketClose, TokenEOF},
		},
		{
			name:   "coalesce vs question",
			source: "a ?? b ? c : d",
			want:   []Kind{TokenIdent, TokenCoalesce, TokenIdent, TokenQuestion, TokenIdent, TokenColon, TokenIdent, TokenEOF},
		},
		{
			name:   "equality family longest match",
			source: "= == === != !== =>",
			want:   []Kind{TokenAssign, TokenEqual, TokenStrictEqual, TokenNotEqual, TokenStrictNotEqual, TokenArrow, TokenEOF},
		},
		{
			name:   "concat and logic",
			source: "a & b && c | d || e",
			want:   []Kind{TokenIdent, TokenConcat, TokenIdent, TokenAnd, TokenIdent, TokenPipe, TokenIdent, TokenOr, TokenIdent, TokenEOF},
		},
		{
			name:   "keywords",
			source: "let const true false null undefined in not",
			want:   []Kind{TokenLet, TokenConst, TokenTrue, TokenFalse, TokenNull, TokenUndefined, TokenIn, TokenNot, TokenEOF},
		},
		{
			name:   "dollar names are identifiers, never keywords",
			source: "$in $item $",
			want:   []Kind{TokenIdent, TokenIdent, TokenIdent, TokenEOF},
		},
		{
			name:   "spread",
			source: "[...rest]",
			want:   []Kind{TokenBracketOpen, TokenSpread, TokenIdent, TokenBracketClose, TokenEOF},
		},
		{
			name:   "statement",
			source: "let total = sum(prices);",
			want:   []Kind{TokenLet, TokenIdent, TokenAssign, TokenIdent, TokenParenOpen, TokenIdent, TokenParenClose, TokenSemicolon, TokenEOF},
		},
		{
			name:   "line comment",
			source: "a // trailing\n+ b",
			want:   []Kind{TokenIdent, TokenPlus, TokenIdent, TokenEOF},
		},
		{
			name:   "block comment",
			source: "a /* x */ / b",
			want:   []Kind{TokenIdent, TokenSlash, TokenIdent, TokenEOF},
		},
		{
			name:   "slash at end of input",
			source: "5 /",
			want:   []Kind{TokenNumber, TokenSlash, TokenEOF},
		},
		{
			name:   "caret is standalone",
			source: "^price",
			want:   []Kind{TokenIdent, TokenIdent, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.source, err)
			}
			got := kindsOf(tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.source, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		source string
		text   string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"2.5e-3", "2.5e-3"},
		{"1E+6", "1E+6"},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.source)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.source, err)
		}
		if tokens[0].Kind != TokenNumber || tokens[0].Text != tt.text {
			t.Errorf("Tokenize(%q) = %s %q, want number %q", tt.source, tokens[0].Kind, tokens[0].Text, tt.text)
		}
	}
}

func TestTokenizeNumberDotMember(t *testing.T) {
	// A trailing dot with no digits belongs to the access chain, not the
	// number.
	tokens, err := Tokenize("prices[1].amount")
	if err != nil {
		t.Fatal(err)
	}
	want := []Kind{TokenIdent, TokenBracketOpen, TokenNumber, TokenBracketClose, TokenDot, TokenIdent, TokenEOF}
	got := kindsOf(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		source string
		text   string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"with \"escape\""`, `with \"escape\"`},
		{`""`, ""},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.source)
		if err != nil {
			t.Fatalf("Tokenize(%s): %v", tt.source, err)
		}
		if tokens[0].Kind != TokenString || tokens[0].Text != tt.text {
			t.Errorf("Tokenize(%s) = %q, want %q", tt.source, tokens[0].Text, tt.text)
		}
	}
}

func TestTokenizeTemplate(t *testing.T) {
	tokens, err := Tokenize("`Total: ${sum(prices)} EUR`")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != TokenTemplate {
		t.Fatalf("kind = %s, want template", tokens[0].Kind)
	}
	if tokens[0].Text != "Total: ${sum(prices)} EUR" {
		t.Errorf("text = %q", tokens[0].Text)
	}

	// Nested braces inside the interpolation stay inside the token.
	tokens, err = Tokenize("`${ {a: 1}.a }`")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != TokenTemplate || tokens[1].Kind != TokenEOF {
		t.Errorf("nested braces split the template: %v", kindsOf(tokens))
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unterminated string", `"abc`},
		{"newline in string", "\"ab\nc\""},
		{"unterminated template", "`abc"},
		{"unterminated interpolation", "`a ${ b"},
		{"double dot", "a..b"},
		{"bad exponent", "1e"},
		{"unterminated block comment", "a /* b"},
		{"unknown character", "a @ b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.source)
			if err == nil {
				t.Fatalf("Tokenize(%q) succeeded, want error", tt.source)
			}
			var lexErr *types.LexerError
			if !errors.As(err, &lexErr) {
				t.Fatalf("error type = %T, want *types.LexerError", err)
			}
			if lexErr.Line < 1 || lexErr.Column < 1 {
				t.Errorf("error position %d:%d not set", lexErr.Line, lexErr.Column)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("user\n  .name")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("user at %d:%d, want 1:1", tokens[0].Line, tokens[0].Column)
	}
	if tokens[1].Line != 2 || tokens[1].Column != 3 {
		t.Errorf("dot at %d:%d, want 2:3", tokens[1].Line, tokens[1].Column)
	}
}
