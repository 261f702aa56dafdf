package types

import (
	"fmt"
	"strings"
)

// Error taxonomy.
//
// LexerError and ParseError are surfaced immediately and unconditionally;
// neither is ever retried or recovered. The remaining four types exist only
// under strict evaluation: forgiving mode (the default) converts every one
// of those conditions into an absent result instead of raising.

// LexerError reports malformed source text: an unrecognized character or an
// unterminated string/template/comment. Lexing is all-or-nothing per call.
type LexerError struct {
	Message string
	Line    int // 1-based
	Column  int // 1-based, in runes
	Offset  int // byte offset
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ParseError reports a grammar violation: unexpected token, invalid
// reassignment target, or incomplete expression. Expected, when non-empty,
// lists the token texts that would have been accepted.
type ParseError struct {
	Message  string
	Line     int
	Column   int
	Offset   int
	Expected []string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if len(e.Expected) > 0 {
		msg += " (expected one of: " + strings.Join(e.Expected, ", ") + ")"
	}
	return msg
}

// PropertyMissingError is raised by strict property access when the key is
// not present on the object. Suggestions holds same-object sibling keys
// within a small edit distance of the requested key.
type PropertyMissingError struct {
	Key         string
	Path        string // accumulated access path of the object, e.g. "user"
	Suggestions []string
}

func (e *PropertyMissingError) Error() string {
	msg := fmt.Sprintf("property %q not found", e.Key)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, " or ") + "?)"
	}
	return msg
}

// IndexOutOfBoundsError is raised by strict index access outside the array.
type IndexOutOfBoundsError struct {
	Index  int
	Length int
	Path   string
}

func (e *IndexOutOfBoundsError) Error() string {
	msg := fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Length)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// NotAnArrayError is raised by strict projection/spread access applied to a
// non-array value.
type NotAnArrayError struct {
	Path string
}

func (e *NotAnArrayError) Error() string {
	if e.Path == "" {
		return "value is not an array"
	}
	return fmt.Sprintf("value at %s is not an array", e.Path)
}

// NullAccessError is raised by strict access on an absent intermediate
// value (null or undefined).
type NullAccessError struct {
	Path string
}

func (e *NullAccessError) Error() string {
	if e.Path == "" {
		return "cannot access property of an absent value"
	}
	return fmt.Sprintf("cannot access property of absent value at %s", e.Path)
}
