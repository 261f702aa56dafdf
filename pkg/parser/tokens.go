package parser

// Kind represents the type of a lexical token.
type Kind uint8

const (
	// Special tokens
	TokenEOF Kind = iota
	TokenError

	// Literals
	TokenString   // "hello" or 'hello'
	TokenNumber   // 123, 3.14, 1e-10
	TokenTemplate // `text ${expr} text` (raw contents, spans opaque)
	TokenIdent    // fieldName, $x, $item, ^, _tmp

	// Keywords
	TokenLet       // let
	TokenConst     // const
	TokenTrue      // true
	TokenFalse     // false
	TokenNull      // null
	TokenUndefined // undefined
	TokenIn        // in
	TokenNot       // not

	// Grouping symbols
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }
	TokenParenOpen    // (
	TokenParenClose   // )

	// Basic symbols
	TokenDot        // .
	TokenOptDot     // ?.
	TokenOptBracket // ?[
	TokenComma      // ,
	TokenColon      // :
	TokenSemicolon  // ;
	TokenQuestion   // ?
	TokenSpread     // ...
	TokenArrow      // =>

	// Arithmetic operators
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenPercent // %

	// String and logical operators
	TokenConcat   // &
	TokenAnd      // &&
	TokenPipe     // |
	TokenOr       // ||
	TokenBang     // !
	TokenCoalesce // ??

	// Comparison and assignment operators
	TokenAssign         // =
	TokenEqual          // ==
	TokenStrictEqual    // ===
	TokenNotEqual       // !=
	TokenStrictNotEqual // !==
	TokenLess           // <
	TokenLessEqual      // <=
	TokenGreater        // >
	TokenGreaterEqual   // >=
)

// String returns a string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenTemplate:
		return "(template)"
	case TokenIdent:
		return "(identifier)"
	case TokenLet:
		return "let"
	case TokenConst:
		return "const"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenNull:
		return "null"
	case TokenUndefined:
		return "undefined"
	case TokenIn:
		return "in"
	case TokenNot:
		return "not"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenDot:
		return "."
	case TokenOptDot:
		return "?."
	case TokenOptBracket:
		return "?["
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenSemicolon:
		return ";"
	case TokenQuestion:
		return "?"
	case TokenSpread:
		return "..."
	case TokenArrow:
		return "=>"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenConcat:
		return "&"
	case TokenAnd:
		return "&&"
	case TokenPipe:
		return "|"
	case TokenOr:
		return "||"
	case TokenBang:
		return "!"
	case TokenCoalesce:
		return "??"
	case TokenAssign:
		return "="
	case TokenEqual:
		return "=="
	case TokenStrictEqual:
		return "==="
	case TokenNotEqual:
		return "!="
	case TokenStrictNotEqual:
		return "!=="
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in a Morph expression. Tokens are
// immutable once produced.
type Token struct {
	Kind   Kind
	Text   string // literal text (string/template contents unquoted)
	Line   int    // 1-based line of the first character
	Column int    // 1-based rune column of the first character
	Start  int    // byte offset of the first character
	End    int    // byte offset one past the last character
}

// lookupKeyword returns the token kind for a keyword, or TokenIdent when the
// string is not a recognized keyword.
func lookupKeyword(s string) Kind {
	switch s {
	case "let":
		return TokenLet
	case "const":
		return TokenConst
	case "true":
		return TokenTrue
	case "false":
		return TokenFalse
	case "null":
		return TokenNull
	case "undefined":
		return TokenUndefined
	case "in":
		return TokenIn
	case "not":
		return TokenNot
	default:
		return TokenIdent
	}
}
