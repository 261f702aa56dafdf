package parser

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/morphlang/morph/pkg/types"
)

const eof = -1

// Lexer converts a Morph expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go"
// technique. It scans left to right, always preferring the longest valid
// multi-character operator (=== before == before =; ?. / ?[ / ?? before ?;
// && and || before their single-character counterparts; ... before .).
type Lexer struct {
	input      string // input string being scanned
	length     int    // length of input string
	start      int    // start position of current token
	current    int    // current position in input
	width      int    // width of last rune read
	lineStarts []int  // byte offset of the first character of each line
	err        *types.LexerError
}

// NewLexer creates a new lexer for the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	starts := []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lexer{
		input:      input,
		length:     len(input),
		lineStarts: starts,
	}
}

// Tokenize scans the whole input and returns the token sequence terminated
// by an EOF token. Lexing is all-or-nothing: the first malformed construct
// aborts the call with a *types.LexerError.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var tokens []Token
	for {
		t := l.Next()
		if t.Kind == TokenError {
			return nil, l.Err()
		}
		tokens = append(tokens, t)
		if t.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token from the input. After the end of the input is
// reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()
	if l.err != nil {
		return l.errorToken()
	}

	ch := l.nextRune()
	if ch == eof {
		return l.eofToken()
	}

	switch ch {
	case '(':
		return l.newToken(TokenParenOpen)
	case ')':
		return l.newToken(TokenParenClose)
	case '[':
		return l.newToken(TokenBracketOpen)
	case ']':
		return l.newToken(TokenBracketClose)
	case '{':
		return l.newToken(TokenBraceOpen)
	case '}':
		return l.newToken(TokenBraceClose)
	case ',':
		return l.newToken(TokenComma)
	case ':':
		return l.newToken(TokenColon)
	case ';':
		return l.newToken(TokenSemicolon)
	case '+':
		return l.newToken(TokenPlus)
	case '-':
		return l.newToken(TokenMinus)
	case '*':
		return l.newToken(TokenStar)
	case '/':
		return l.newToken(TokenSlash)
	case '%':
		return l.newToken(TokenPercent)
	case '.':
		if l.acceptRune('.') {
			if l.acceptRune('.') {
				return l.newToken(TokenSpread)
			}
			return l.error("Unexpected '..'")
		}
		return l.newToken(TokenDot)
	case '?':
		if l.acceptRune('.') {
			return l.newToken(TokenOptDot)
		}
		if l.acceptRune('[') {
			return l.newToken(TokenOptBracket)
		}
		if l.acceptRune('?') {
			return l.newToken(TokenCoalesce)
		}
		return l.newToken(TokenQuestion)
	case '&':
		if l.acceptRune('&') {
			return l.newToken(TokenAnd)
		}
		return l.newToken(TokenConcat)
	case '|':
		if l.acceptRune('|') {
			return l.newToken(TokenOr)
		}
		return l.newToken(TokenPipe)
	case '=':
		if l.acceptRune('=') {
			if l.acceptRune('=') {
				return l.newToken(TokenStrictEqual)
			}
			return l.newToken(TokenEqual)
		}
		if l.acceptRune('>') {
			return l.newToken(TokenArrow)
		}
		return l.newToken(TokenAssign)
	case '!':
		if l.acceptRune('=') {
			if l.acceptRune('=') {
				return l.newToken(TokenStrictNotEqual)
			}
			return l.newToken(TokenNotEqual)
		}
		return l.newToken(TokenBang)
	case '<':
		if l.acceptRune('=') {
			return l.newToken(TokenLessEqual)
		}
		return l.newToken(TokenLess)
	case '>':
		if l.acceptRune('=') {
			return l.newToken(TokenGreaterEqual)
		}
		return l.newToken(TokenGreater)
	case '"', '\'':
		l.ignore()
		return l.scanString(ch)
	case '`':
		l.ignore()
		return l.scanTemplate()
	}

	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	if isIdentStart(ch) {
		l.backup()
		return l.scanIdent()
	}

	return l.error(fmt.Sprintf("Unrecognized character %q", ch))
}

// Err returns the first error encountered during lexing, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// scanString reads a string literal. The opening quote has already been
// consumed and discarded; the token text is the raw contents between the
// quotes (escape sequences are decoded by the parser).
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof, '\n':
			return l.error("Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanTemplate reads a backtick template. The opening backtick has already
// been consumed and discarded. The raw text is captured as-is; a ${...}
// interpolation span is treated as an opaque region tracked only by brace
// depth, to be reparsed by the parser.
func (l *Lexer) scanTemplate() Token {
	for {
		switch l.nextRune() {
		case '`':
			l.backup()
			t := l.newToken(TokenTemplate)
			l.acceptRune('`')
			l.ignore()
			return t
		case '\\':
			if l.nextRune() == eof {
				return l.error("Unterminated template literal")
			}
		case '$':
			if !l.acceptRune('{') {
				continue
			}
			depth := 1
			for depth > 0 {
				switch l.nextRune() {
				case '{':
					depth++
				case '}':
					depth--
				case eof:
					return l.error("Unterminated template interpolation")
				}
			}
		case eof:
			return l.error("Unterminated template literal")
		}
	}
}

// scanNumber reads a number literal: integer part, optional decimal part,
// optional exponent. A dot with no digit after it is not consumed (it is a
// member access, as in `1.toFixed` would be rejected later anyway).
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	dot := l.current
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			l.current = dot
			return l.newToken(TokenNumber)
		}
	}

	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error("Malformed number exponent")
		}
	}

	return l.newToken(TokenNumber)
}

// scanIdent reads an identifier or keyword. Identifiers start with a
// letter, underscore, or one of the context sigils '$' and '^'; '^' is
// always a standalone token.
func (l *Lexer) scanIdent() Token {
	first := l.nextRune()
	if first == '^' {
		return l.newToken(TokenIdent)
	}

	l.acceptAll(isIdentPart)

	t := l.newToken(TokenIdent)
	if first != '$' {
		t.Kind = lookupKeyword(t.Text)
	}
	return t
}

// Helper methods

func (l *Lexer) eofToken() Token {
	line, col := l.lineCol(l.current)
	return Token{Kind: TokenEOF, Line: line, Column: col, Start: l.current, End: l.current}
}

func (l *Lexer) error(message string) Token {
	line, col := l.lineCol(l.start)
	l.err = &types.LexerError{
		Message: message,
		Line:    line,
		Column:  col,
		Offset:  l.start,
	}
	return Token{Kind: TokenError, Line: line, Column: col, Start: l.start, End: l.current}
}

func (l *Lexer) errorToken() Token {
	return Token{Kind: TokenError, Line: l.err.Line, Column: l.err.Column, Start: l.err.Offset, End: l.err.Offset}
}

func (l *Lexer) newToken(kind Kind) Token {
	line, col := l.lineCol(l.start)
	t := Token{
		Kind:   kind,
		Text:   l.input[l.start:l.current],
		Line:   line,
		Column: col,
		Start:  l.start,
		End:    l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

// lineCol converts a byte offset into a 1-based line and rune column.
func (l *Lexer) lineCol(offset int) (int, int) {
	line := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	})
	lineStart := l.lineStarts[line-1]
	col := utf8.RuneCountInString(l.input[lineStart:offset]) + 1
	return line, col
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips whitespace plus line (//) and block (/* */) comments.
// No token is emitted for either.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		l.ignore()

		slash := l.current
		if !l.acceptRune('/') {
			return
		}

		if l.acceptRune('/') {
			for {
				ch := l.nextRune()
				if ch == eof || ch == '\n' {
					break
				}
			}
			l.ignore()
			continue
		}

		if l.acceptRune('*') {
			for {
				ch := l.nextRune()
				if ch == eof {
					l.error("Unterminated block comment")
					return
				}
				if ch == '*' && l.acceptRune('/') {
					break
				}
			}
			l.ignore()
			continue
		}

		// A lone '/' is the division operator. The failed comment probes
		// leave width zeroed at end of input, so restore the recorded
		// offset rather than backing up.
		l.current = slash
		return
	}
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || r == '^' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
