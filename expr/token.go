// Package expr parses Tcl expressions.
//
// Parse turns expression text into a flat, depth-first array of tokens. Every
// subexpression starts with a TokenSubExpr whose NumComponents counts the
// tokens that follow it and belong to it. An operator subexpression continues
// with a TokenOperator and then one TokenSubExpr per operand; an operand
// subexpression continues with the word tokens describing its text. Rebuild
// recovers the tree from the array using nothing but those counts.
package expr

import (
	"fmt"
	"io"
	"strings"
)

// TokenType identifies the kind of a Token.
type TokenType uint8

const (
	TokenSubExpr TokenType = iota + 1
	TokenOperator
	TokenText
	TokenBackslash
	TokenVariable
	TokenCommand
)

func (t TokenType) String() string {
	switch t {
	case TokenSubExpr:
		return "SUB_EXPR"
	case TokenOperator:
		return "OPERATOR"
	case TokenText:
		return "TEXT"
	case TokenBackslash:
		return "BS"
	case TokenVariable:
		return "VARIABLE"
	case TokenCommand:
		return "COMMAND"
	}
	return fmt.Sprintf("TokenType(%d)", uint8(t))
}

// Token is one entry of a parsed expression. Start and Size locate Text in
// the expression source.
type Token struct {
	Type          TokenType
	Start         int
	Size          int
	NumComponents int
	Text          string
}

// Dump writes one line per token, indented by nesting depth.
func Dump(w io.Writer, tokens []Token) error {
	for at := 0; at < len(tokens); {
		next, err := dump(w, tokens, at, 0)
		if err != nil {
			return err
		}
		at = next
	}
	return nil
}

func dump(w io.Writer, tokens []Token, at, depth int) (int, error) {
	t := tokens[at]
	if _, err := fmt.Fprintf(w, "%s%s %d %q\n", strings.Repeat("  ", depth), t.Type, t.NumComponents, t.Text); err != nil {
		return 0, err
	}
	end := at + 1 + t.NumComponents
	if end > len(tokens) {
		end = len(tokens)
	}
	for next := at + 1; next < end; {
		n, err := dump(w, tokens, next, depth+1)
		if err != nil {
			return 0, err
		}
		next = n
	}
	return end, nil
}
