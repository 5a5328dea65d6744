package expr

import (
	"fmt"
	"strings"
)

// ErrorKind classifies expression syntax errors.
type ErrorKind uint8

const (
	InvalidCharacter ErrorKind = iota + 1
	IncompleteOperator
	MissingOperator
	MissingOperand
	EmptyExpression
	EmptySubexpression
	UnbalancedParen
	MissingColon
	UnexpectedColon
	UnexpectedComma
	InvalidBareword
	UnterminatedWord
)

var kindNames = map[ErrorKind]string{
	InvalidCharacter:   "invalid character",
	IncompleteOperator: "incomplete operator",
	MissingOperator:    "missing operator",
	MissingOperand:     "missing operand",
	EmptyExpression:    "empty expression",
	EmptySubexpression: "empty subexpression",
	UnbalancedParen:    "unbalanced paren",
	MissingColon:       "missing colon",
	UnexpectedColon:    "unexpected colon",
	UnexpectedComma:    "unexpected comma",
	InvalidBareword:    "invalid bareword",
	UnterminatedWord:   "unterminated word",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// mark is inserted into messages and excerpts at the position of an error
// that has no text of its own, such as a missing operand.
const mark = "_@_"

// ParseError describes a syntax error in an expression.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Offset  int // byte offset of the error in Expr
	Expr    string

	// Context is the excerpt of Expr quoted in the error text.
	Context string
	// Hint, when set, follows the excerpt.
	Hint string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\nin expression \"")
	b.WriteString(e.Context)
	b.WriteByte('"')
	if e.Hint != "" {
		b.WriteString(";\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// excerpt quotes src around the scanned bytes at start, keeping at most
// limit bytes on either side and the scanned text itself.
func excerpt(src string, start, scanned int, insertMark bool, limit int) string {
	var b strings.Builder
	if start < limit {
		b.WriteString(src[:start])
	} else {
		b.WriteString("...")
		b.WriteString(src[start-limit+3 : start])
	}
	if scanned < limit {
		b.WriteString(src[start : start+scanned])
	} else {
		b.WriteString(src[start : start+limit-3])
		b.WriteString("...")
	}
	if insertMark {
		b.WriteString(mark)
	}
	rest := start + scanned
	if rest+limit > len(src) {
		b.WriteString(src[rest:])
	} else {
		b.WriteString(src[rest : rest+limit-3])
		b.WriteString("...")
	}
	return b.String()
}

// clip shortens a word quoted in a message the way excerpt does.
func clip(word string, limit int) string {
	if len(word) < limit {
		return word
	}
	return word[:limit-3] + "..."
}
