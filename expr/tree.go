package expr

import (
	"fmt"
	"strings"
)

// Node is a subexpression recovered from a token array.
type Node struct {
	// Operator is the operator or function name; empty for operands.
	Operator string
	// Text is the source text of the whole subexpression.
	Text     string
	Operands []*Node
	// Parts holds the word tokens of an operand.
	Parts []Token
}

// Rebuild reconstructs the tree described by tokens, as produced by Parse.
func Rebuild(tokens []Token) (*Node, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("expr: no tokens")
	}
	n, next, err := rebuild(tokens, 0)
	if err != nil {
		return nil, err
	}
	if next != len(tokens) {
		return nil, fmt.Errorf("expr: %d trailing tokens", len(tokens)-next)
	}
	return n, nil
}

func rebuild(tokens []Token, at int) (*Node, int, error) {
	t := tokens[at]
	if t.Type != TokenSubExpr {
		return nil, 0, fmt.Errorf("expr: token %d is %s, expected %s", at, t.Type, TokenSubExpr)
	}
	end := at + 1 + t.NumComponents
	if end > len(tokens) {
		return nil, 0, fmt.Errorf("expr: token %d claims %d components, only %d follow", at, t.NumComponents, len(tokens)-at-1)
	}
	n := &Node{Text: t.Text}
	if at+1 == end || tokens[at+1].Type != TokenOperator {
		n.Parts = tokens[at+1 : end]
		return n, end, nil
	}

	n.Operator = tokens[at+1].Text
	for next := at + 2; next < end; {
		child, after, err := rebuild(tokens, next)
		if err != nil {
			return nil, 0, err
		}
		if after > end {
			return nil, 0, fmt.Errorf("expr: operand at token %d overruns its parent", next)
		}
		n.Operands = append(n.Operands, child)
		next = after
	}
	return n, end, nil
}

// String renders n in prefix form, for example (+ 1 (* 2 3)).
func (n *Node) String() string {
	if n.Operator == "" {
		return n.Text
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Operator)
	for _, o := range n.Operands {
		b.WriteByte(' ')
		b.WriteString(o.String())
	}
	b.WriteByte(')')
	return b.String()
}
