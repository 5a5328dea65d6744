package expr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/feather-lang/tclcore/expr"
)

func tree(t *testing.T, src string) *expr.Node {
	t.Helper()
	tokens, err := expr.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	n, err := expr.Rebuild(tokens)
	if err != nil {
		t.Fatalf("Rebuild(%q) failed: %v", src, err)
	}
	return n
}

func TestParseTrees(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"2 ** 3 ** 2", "(** 2 (** 3 2))"},
		{"-2 ** 2", "(- (** 2 2))"},
		{"-3 * 2", "(* (- 3) 2)"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 ? 2 : 3 ? 4 : 5", "(? 1 2 (? 3 4 5))"},
		{"1 ? 2 ? 3 : 4 : 5", "(? 1 (? 2 3 4) 5)"},
		{"1 < 2 && 3 == 3", "(&& (< 1 2) (== 3 3))"},
		{"1 | 2 ^ 3 & 4", "(| 1 (^ 2 (& 3 4)))"},
		{"1 << 2 + 3", "(<< 1 (+ 2 3))"},
		{"!$x || [f]", "(|| (! $x) [f])"},
		{"$a(x) eq {b}", "(eq $a(x) {b})"},
		{"{a} in $l", "(in {a} $l)"},
		{"max(1, 2 + 3)", "(max 1 (+ 2 3))"},
		{"f(1, 2, 3)", "(f 1 2 3)"},
		{"rand()", "(rand)"},
		{"::tcl::mathfunc::abs(-1)", "(::tcl::mathfunc::abs (- 1))"},
		{"0x1F + 1.5e3 * .5", "(+ 0x1F (* 1.5e3 .5))"},
		{"Inf - NaN", "(- Inf NaN)"},
		{"true && no", "(&& true no)"},
		{"~1 % 2 / 3", "(/ (% (~ 1) 2) 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := tree(t, tt.src).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPrecedenceShape(t *testing.T) {
	root := tree(t, "1 + 2 * 3")
	if root.Operator != "+" {
		t.Fatalf("expected root +, got %q", root.Operator)
	}
	if len(root.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(root.Operands))
	}
	if root.Operands[1].Operator != "*" {
		t.Errorf("expected right child *, got %q", root.Operands[1].Operator)
	}
	if root.Operands[0].Text != "1" {
		t.Errorf("expected left child 1, got %q", root.Operands[0].Text)
	}
}

func TestTokenArray(t *testing.T) {
	tokens, err := expr.Parse("1 + 2")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		typ  expr.TokenType
		n    int
		text string
	}{
		{expr.TokenSubExpr, 5, "1 + 2"},
		{expr.TokenOperator, 0, "+"},
		{expr.TokenSubExpr, 1, "1"},
		{expr.TokenText, 0, "1"},
		{expr.TokenSubExpr, 1, "2"},
		{expr.TokenText, 0, "2"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for idx, w := range want {
		got := tokens[idx]
		if got.Type != w.typ || got.NumComponents != w.n || got.Text != w.text {
			t.Errorf("token %d: expected %s %d %q, got %s %d %q", idx, w.typ, w.n, w.text, got.Type, got.NumComponents, got.Text)
		}
	}
	if tokens[4].Start != 4 || tokens[4].Size != 1 {
		t.Errorf("expected second operand at 4+1, got %d+%d", tokens[4].Start, tokens[4].Size)
	}
}

func TestSubExprRanges(t *testing.T) {
	tests := []struct {
		src  string
		want []string // text of each sub-expression token, in order
	}{
		{"1 - 2 - 3", []string{"1 - 2 - 3", "1 - 2", "1", "2", "3"}},
		{"-(1 + 2) * 3", []string{"-(1 + 2) * 3", "-(1 + 2)", "(1 + 2)", "1", "2", "3"}},
		{"1 ? 2 : 3 ? 4 : 5", []string{"1 ? 2 : 3 ? 4 : 5", "1", "2", "3 ? 4 : 5", "3", "4", "5"}},
		{"max(1, 2 + 3)", []string{"max(1, 2 + 3)", "1", "2 + 3", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, err := expr.Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, tok := range tokens {
				if tok.Type == expr.TokenSubExpr {
					got = append(got, tok.Text)
				}
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("LongChain", func(t *testing.T) {
		const n = 100000
		src := "1" + strings.Repeat("+1", n)
		tokens, err := expr.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		if tokens[0].Size != len(src) {
			t.Errorf("expected outer range %d, got %d", len(src), tokens[0].Size)
		}
		// operator and left operand of the outermost "+"
		if inner := tokens[2]; inner.Size != len(src)-2 {
			t.Errorf("expected left operand range %d, got %d", len(src)-2, inner.Size)
		}
	})
}

func TestOperandTokens(t *testing.T) {
	t.Run("array variable", func(t *testing.T) {
		tokens, err := expr.Parse("$a(x)")
		if err != nil {
			t.Fatal(err)
		}
		types := []expr.TokenType{expr.TokenSubExpr, expr.TokenVariable, expr.TokenText, expr.TokenText}
		if len(tokens) != len(types) {
			t.Fatalf("expected %d tokens, got %d", len(types), len(tokens))
		}
		for idx, typ := range types {
			if tokens[idx].Type != typ {
				t.Errorf("token %d: expected %s, got %s", idx, typ, tokens[idx].Type)
			}
		}
		if tokens[1].NumComponents != 2 {
			t.Errorf("expected variable with 2 components, got %d", tokens[1].NumComponents)
		}
		if tokens[2].Text != "a" || tokens[3].Text != "x" {
			t.Errorf("expected name a and index x, got %q and %q", tokens[2].Text, tokens[3].Text)
		}
	})

	t.Run("quoted with substitutions", func(t *testing.T) {
		tokens, err := expr.Parse(`"a$b\n[c]"`)
		if err != nil {
			t.Fatal(err)
		}
		types := []expr.TokenType{
			expr.TokenSubExpr, expr.TokenText, expr.TokenVariable, expr.TokenText,
			expr.TokenBackslash, expr.TokenCommand,
		}
		if len(tokens) != len(types) {
			t.Fatalf("expected %d tokens, got %d", len(types), len(tokens))
		}
		for idx, typ := range types {
			if tokens[idx].Type != typ {
				t.Errorf("token %d: expected %s, got %s", idx, typ, tokens[idx].Type)
			}
		}
		if tokens[0].NumComponents != 5 {
			t.Errorf("expected 5 components, got %d", tokens[0].NumComponents)
		}
		if tokens[5].Text != "[c]" {
			t.Errorf("expected [c], got %q", tokens[5].Text)
		}
	})

	t.Run("braced", func(t *testing.T) {
		tokens, err := expr.Parse("{a b}")
		if err != nil {
			t.Fatal(err)
		}
		if len(tokens) != 2 || tokens[1].Text != "a b" {
			t.Errorf("expected one text token \"a b\", got %v", tokens)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src    string
		kind   expr.ErrorKind
		offset int
		msg    string
	}{
		{"3 + ", expr.MissingOperand, 4, "missing operand at _@_\nin expression \"3 + _@_\""},
		{"", expr.EmptyExpression, 0, "empty expression\nin expression \"\""},
		{":", expr.UnexpectedColon, 0, "unexpected operator \":\" without preceding \"?\"\nin expression \":\""},
		{"1 : 2", expr.UnexpectedColon, 2, "unexpected operator \":\" without preceding \"?\"\nin expression \"1 : 2\""},
		{"1 ? 2", expr.MissingColon, 5, "missing operator \":\" at _@_\nin expression \"1 ? 2_@_\""},
		{"1 2", expr.MissingOperator, 2, "missing operator at _@_\nin expression \"1 _@_2\""},
		{"()", expr.EmptySubexpression, 1, "empty subexpression at _@_\nin expression \"(_@_)\""},
		{"(1 + 2", expr.UnbalancedParen, 0, "unbalanced open paren\nin expression \"_@_(1 + 2\""},
		{"1 + 2)", expr.UnbalancedParen, 5, "unbalanced close paren\nin expression \"1 + 2_@_)\""},
		{"1, 2", expr.UnexpectedComma, 1, "unexpected \",\" outside function argument list\nin expression \"1, 2\""},
		{"(1, 2)", expr.UnexpectedComma, 2, "unexpected \",\" outside function argument list\nin expression \"(1, 2)\""},
		{"1 @ 2", expr.InvalidCharacter, 2, "invalid character \"@\"\nin expression \"1 @ 2\""},
		{"1 = 2", expr.IncompleteOperator, 2, "incomplete operator \"=\"\nin expression \"1 = 2\""},
		{"{abc", expr.UnterminatedWord, 0, "missing close-brace\nin expression \"{abc\""},
		{"[f", expr.UnterminatedWord, 0, "missing close-bracket\nin expression \"[f\""},
		{"$", expr.InvalidCharacter, 0, "invalid character \"$\"\nin expression \"$\""},
		{"foo", expr.InvalidBareword, 0, "invalid bareword \"foo\"\nin expression \"foo\";\nshould be \"$foo\" or \"{foo}\" or \"foo(...)\" or ..."},
		{"3x", expr.InvalidBareword, 0, "invalid bareword \"3x\"\nin expression \"3x\";\nshould be \"$3x\" or \"{3x}\" or \"3x(...)\" or ..."},
		{"f(1,)", expr.MissingOperand, 4, "missing operand at _@_\nin expression \"f(1,_@_)\""},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := expr.Parse(tt.src)
			var pe *expr.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, pe.Kind)
			}
			if pe.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, pe.Offset)
			}
			if pe.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, pe.Error())
			}
		})
	}
}

func TestErrorContextTruncation(t *testing.T) {
	src := strings.Repeat("1", 20) + " + "
	_, err := expr.Parser{Context: 10}.Parse(src)
	var pe *expr.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Context != "...1111 + _@_" {
		t.Errorf("expected truncated context, got %q", pe.Context)
	}
	if pe.Offset != len(src) {
		t.Errorf("expected offset %d, got %d", len(src), pe.Offset)
	}
}

func TestRebuildRejectsMalformed(t *testing.T) {
	if _, err := expr.Rebuild(nil); err == nil {
		t.Error("expected error for empty token array")
	}
	if _, err := expr.Rebuild([]expr.Token{{Type: expr.TokenText, Text: "1"}}); err == nil {
		t.Error("expected error for array not starting with a subexpression")
	}
	bad := []expr.Token{{Type: expr.TokenSubExpr, NumComponents: 3}, {Type: expr.TokenText}}
	if _, err := expr.Rebuild(bad); err == nil {
		t.Error("expected error for component count past the end")
	}
}

func TestDump(t *testing.T) {
	tokens, err := expr.Parse("1+2")
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := expr.Dump(&b, tokens); err != nil {
		t.Fatal(err)
	}
	want := `SUB_EXPR 5 "1+2"
  OPERATOR 0 "+"
  SUB_EXPR 1 "1"
    TEXT 0 "1"
  SUB_EXPR 1 "2"
    TEXT 0 "2"
`
	if b.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, b.String())
	}
}
