package expr

import (
	"fmt"

	"github.com/feather-lang/tclcore"
)

// DefaultContext is the number of bytes quoted on each side of a syntax
// error when Parser.Context is not set.
const DefaultContext = 25

// Parser parses expressions. The zero value is ready to use.
type Parser struct {
	// Context bounds the excerpt quoted in error messages.
	Context int
}

// Parse parses src with the default settings.
func Parse(src string) ([]Token, error) {
	return Parser{}.Parse(src)
}

// Parse parses src into a flat token array. Syntax errors are returned as
// *ParseError.
func (ps Parser) Parse(src string) ([]Token, error) {
	p := &parser{src: src, limit: ps.Context}
	if p.limit < 4 {
		p.limit = DefaultContext
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	var out []Token
	p.emit(&out, p.nodes[0].right)
	return out, nil
}

const none = -1

// node is one vertex of the tree under construction. Children and parents
// are indices into parser.nodes.
type node struct {
	lex    lexeme
	start  int
	end    int // for "(" this grows to cover the matching ")"
	from   int // source range of the whole subtree
	to     int
	left   int
	right  int
	parent int
	tokens []Token // word tokens of an operand
}

type parser struct {
	src   string
	pos   int
	limit int
	nodes []node
}

func (p *parser) add(n node) int {
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

// attach makes child the right operand of n. The child is finished, so
// its range also closes n's.
func (p *parser) attach(n, child int) {
	p.nodes[n].right = child
	p.nodes[n].to = p.nodes[child].to
	p.nodes[child].parent = n
}

func (p *parser) is(n int, lex lexeme) bool {
	return n != none && p.nodes[n].lex == lex
}

func (p *parser) fail(kind ErrorKind, msg string, start, scanned int, insertMark bool) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: msg,
		Offset:  start,
		Expr:    p.src,
		Context: excerpt(p.src, start, scanned, insertMark, p.limit),
	}
}

// completesOperand reports whether lex can be the last lexeme of an operand.
func completesOperand(lex lexeme) bool {
	return lex.isOperand() || lex == lexCloseParen
}

// parse builds the tree in one pass. incomplete is the innermost operator
// still waiting for its right operand; complete is the last finished
// subtree, which has no parent yet.
func (p *parser) parse() *ParseError {
	p.nodes = append(p.nodes[:0], node{lex: lexStart, left: none, right: none, parent: none})
	incomplete, complete := 0, none
	last := lexStart

	for {
		p.pos = skipSpace(p.src, p.pos)
		start := p.pos
		lex, size := lexEnd, 0
		if start < len(p.src) {
			lex, size = scan(p.src, start)
		}
		p.pos = start + size

		switch lex {
		case lexInvalid:
			return p.fail(InvalidCharacter, fmt.Sprintf("invalid character \"%s\"", p.src[start:start+size]), start, size, false)
		case lexIncomplete:
			return p.fail(IncompleteOperator, fmt.Sprintf("incomplete operator \"%s\"", p.src[start:start+size]), start, size, false)
		case lexBareword:
			var err *ParseError
			if lex, err = p.bareword(start, size); err != nil {
				return err
			}
		case lexPlus:
			if !completesOperand(last) {
				lex = lexUnaryPlus
			}
		case lexMinus:
			if !completesOperand(last) {
				lex = lexUnaryMinus
			}
		}

		if lex.isOperand() {
			if completesOperand(last) {
				return p.fail(MissingOperator, "missing operator at "+mark, start, 0, true)
			}
			toks, end, err := p.operand(lex, start, size)
			if err != nil {
				return err
			}
			p.pos = end
			complete = p.add(node{lex: lex, start: start, end: end, from: start, to: end, left: none, right: none, parent: none, tokens: toks})
			last = lex
			continue
		}

		if lex.isUnary() {
			if completesOperand(last) {
				return p.fail(MissingOperator, "missing operator at "+mark, start, 0, true)
			}
			incomplete = p.add(node{lex: lex, start: start, end: start + size, from: start, left: none, right: none, parent: incomplete})
			last = lex
			continue
		}

		if !completesOperand(last) {
			switch {
			case last == lexOpenParen && lex == lexCloseParen && p.is(p.nodes[incomplete].parent, lexFunction):
				complete = p.add(node{lex: lexEmpty, start: start, end: start, from: start, to: start, left: none, right: none, parent: none})
			case last == lexOpenParen && lex == lexCloseParen:
				return p.fail(EmptySubexpression, "empty subexpression at "+mark, start, 0, true)
			case last == lexStart && lex == lexEnd:
				return p.fail(EmptyExpression, "empty expression", start, 0, false)
			case lex == lexColon && !p.awaitingColon(incomplete):
				return p.fail(UnexpectedColon, "unexpected operator \":\" without preceding \"?\"", start, size, false)
			default:
				return p.fail(MissingOperand, "missing operand at "+mark, start, 0, true)
			}
		}

		closed := false
	link:
		for {
			inc := &p.nodes[incomplete]
			if inc.lex.prec() < lex.prec() {
				break
			}
			if inc.lex.prec() == lex.prec() {
				if lex == lexExpon {
					break
				}
				if inc.lex == lexQuestion && !p.is(complete, lexColon) {
					break
				}
				if inc.lex == lexColon && lex == lexQuestion {
					break
				}
			}

			switch inc.lex {
			case lexStart:
				p.attach(incomplete, complete)
				return nil
			case lexOpenParen:
				if lex != lexCloseParen {
					return p.fail(UnbalancedParen, "unbalanced open paren", inc.start, 0, true)
				}
				p.attach(incomplete, complete)
				inc.end = start + size
				inc.to = inc.end
				complete, incomplete = incomplete, inc.parent
				closed = true
				break link
			case lexQuestion:
				if !p.is(complete, lexColon) {
					return p.fail(MissingColon, "missing operator \":\" at "+mark, start, 0, true)
				}
			}
			p.attach(incomplete, complete)
			complete, incomplete = incomplete, inc.parent
		}
		if closed {
			last = lexCloseParen
			continue
		}

		switch lex {
		case lexCloseParen:
			return p.fail(UnbalancedParen, "unbalanced close paren", start, 0, true)
		case lexComma:
			inc := p.nodes[incomplete]
			if inc.lex != lexOpenParen || !p.is(inc.parent, lexFunction) {
				return p.fail(UnexpectedComma, "unexpected \",\" outside function argument list", start, size, false)
			}
		case lexColon:
			if p.nodes[incomplete].lex != lexQuestion {
				return p.fail(UnexpectedColon, "unexpected operator \":\" without preceding \"?\"", start, size, false)
			}
		}

		n := p.add(node{lex: lex, start: start, end: start + size, from: p.nodes[complete].from, left: complete, right: none, parent: incomplete})
		p.nodes[complete].parent = n
		incomplete = n
		last = lex
	}
}

// awaitingColon reports whether a "?" in the current parenthesized group
// is still open above n.
func (p *parser) awaitingColon(n int) bool {
	for ; n != none; n = p.nodes[n].parent {
		switch p.nodes[n].lex {
		case lexQuestion:
			return true
		case lexOpenParen, lexStart:
			return false
		}
	}
	return false
}

// bareword classifies a word that is not an operator: a function name when
// an open paren follows, a number or boolean literal, or an error.
func (p *parser) bareword(start, size int) (lexeme, *ParseError) {
	word := p.src[start : start+size]
	if next := skipSpace(p.src, start+size); next < len(p.src) && p.src[next] == '(' {
		return lexFunction, nil
	}
	if isNumberWord(word) {
		return lexNumber, nil
	}
	if isBooleanWord(word) {
		return lexBoolean, nil
	}
	err := p.fail(InvalidBareword, fmt.Sprintf("invalid bareword \"%s\"", clip(word, p.limit)), start, size, false)
	w := clip(word, p.limit)
	err.Hint = fmt.Sprintf("should be \"$%s\" or \"{%s}\" or \"%s(...)\" or ...", w, w, w)
	return 0, err
}

func (p *parser) text(start, end int) Token {
	return Token{Type: TokenText, Start: start, Size: end - start, Text: p.src[start:end]}
}

// operand measures the operand at start and returns its word tokens and the
// offset just past it.
func (p *parser) operand(lex lexeme, start, size int) ([]Token, int, *ParseError) {
	switch lex {
	case lexBraced:
		end, ok := matchBrace(p.src, start)
		if !ok {
			return nil, 0, p.fail(UnterminatedWord, "missing close-brace", start, len(p.src)-start, false)
		}
		return []Token{p.text(start+1, end-1)}, end, nil
	case lexQuoted:
		toks, end, err := p.words(start+1, func(c byte) bool { return c == '"' })
		if err != nil {
			return nil, 0, err
		}
		if end >= len(p.src) {
			return nil, 0, p.fail(UnterminatedWord, "missing \"", start, len(p.src)-start, false)
		}
		return toks, end + 1, nil
	case lexVariable:
		toks, end, err := p.variable(start)
		if err != nil {
			return nil, 0, err
		}
		if toks == nil {
			return nil, 0, p.fail(InvalidCharacter, "invalid character \"$\"", start, 1, false)
		}
		return toks, end, nil
	case lexScript:
		end, ok := matchBracket(p.src, start)
		if !ok {
			return nil, 0, p.fail(UnterminatedWord, "missing close-bracket", start, len(p.src)-start, false)
		}
		return []Token{{Type: TokenCommand, Start: start, Size: end - start, Text: p.src[start:end]}}, end, nil
	}
	return []Token{p.text(start, start+size)}, start + size, nil
}

// words tokenizes text with substitutions from pos up to the first byte
// for which stop holds, returning the offset of that byte.
func (p *parser) words(pos int, stop func(byte) bool) ([]Token, int, *ParseError) {
	var toks []Token
	textStart := pos
	flush := func(end int) {
		if end > textStart {
			toks = append(toks, p.text(textStart, end))
		}
	}
	for pos < len(p.src) && !stop(p.src[pos]) {
		switch p.src[pos] {
		case '\\':
			flush(pos)
			_, n := tclcore.Backslash(p.src[pos:])
			toks = append(toks, Token{Type: TokenBackslash, Start: pos, Size: n, Text: p.src[pos : pos+n]})
			pos += n
			textStart = pos
		case '$':
			vt, end, err := p.variable(pos)
			if err != nil {
				return nil, 0, err
			}
			if vt == nil {
				pos++
				continue
			}
			flush(pos)
			toks = append(toks, vt...)
			pos, textStart = end, end
		case '[':
			end, ok := matchBracket(p.src, pos)
			if !ok {
				return nil, 0, p.fail(UnterminatedWord, "missing close-bracket", pos, len(p.src)-pos, false)
			}
			flush(pos)
			toks = append(toks, Token{Type: TokenCommand, Start: pos, Size: end - pos, Text: p.src[pos:end]})
			pos, textStart = end, end
		default:
			pos++
		}
	}
	flush(pos)
	return toks, pos, nil
}

// variable tokenizes the variable reference at start. It returns no tokens
// when the dollar sign is not followed by a name.
func (p *parser) variable(start int) ([]Token, int, *ParseError) {
	pos := start + 1
	if pos < len(p.src) && p.src[pos] == '{' {
		end := pos + 1
		for end < len(p.src) && p.src[end] != '}' {
			end++
		}
		if end >= len(p.src) {
			return nil, 0, p.fail(UnterminatedWord, "missing close-brace for variable name", start, len(p.src)-start, false)
		}
		toks := []Token{
			{Type: TokenVariable, Start: start, Size: end + 1 - start, NumComponents: 1, Text: p.src[start : end+1]},
			p.text(pos+1, end),
		}
		return toks, end + 1, nil
	}

	nameEnd := pos
	for nameEnd < len(p.src) {
		if isWordChar(p.src[nameEnd]) {
			nameEnd++
			continue
		}
		if p.src[nameEnd] == ':' && nameEnd+1 < len(p.src) && p.src[nameEnd+1] == ':' {
			for nameEnd < len(p.src) && p.src[nameEnd] == ':' {
				nameEnd++
			}
			continue
		}
		break
	}
	hasIndex := nameEnd < len(p.src) && p.src[nameEnd] == '('
	if nameEnd == pos && !hasIndex {
		return nil, 0, nil
	}
	toks := []Token{{Type: TokenVariable, Start: start}, p.text(pos, nameEnd)}
	end := nameEnd
	if hasIndex {
		index, stop, err := p.words(nameEnd+1, func(c byte) bool { return c == ')' })
		if err != nil {
			return nil, 0, err
		}
		if stop >= len(p.src) {
			return nil, 0, p.fail(UnterminatedWord, "missing )", nameEnd, len(p.src)-nameEnd, false)
		}
		toks = append(toks, index...)
		end = stop + 1
	}
	toks[0].Size = end - start
	toks[0].NumComponents = len(toks) - 1
	toks[0].Text = p.src[start:end]
	return toks, end, nil
}

// emit appends the subtree at n depth first. Parentheses do not produce
// tokens of their own; they widen the span of the subexpression inside.
func (p *parser) emit(out *[]Token, n int) {
	nd := &p.nodes[n]
	if nd.lex == lexOpenParen {
		at := len(*out)
		p.emit(out, nd.right)
		t := &(*out)[at]
		t.Start, t.Size, t.Text = nd.start, nd.end-nd.start, p.src[nd.start:nd.end]
		return
	}

	start, end := nd.from, nd.to
	at := len(*out)
	*out = append(*out, Token{Type: TokenSubExpr, Start: start, Size: end - start, Text: p.src[start:end]})
	if nd.lex.isOperand() {
		*out = append(*out, nd.tokens...)
		(*out)[at].NumComponents = len(*out) - at - 1
		return
	}

	*out = append(*out, Token{Type: TokenOperator, Start: nd.start, Size: nd.end - nd.start, Text: p.src[nd.start:nd.end]})
	switch {
	case nd.lex == lexFunction:
		if arg := p.nodes[nd.right].right; !p.is(arg, lexEmpty) {
			p.emitArgs(out, arg)
		}
	case nd.lex == lexQuestion:
		colon := &p.nodes[nd.right]
		p.emit(out, nd.left)
		p.emit(out, colon.left)
		p.emit(out, colon.right)
	case nd.lex.isUnary():
		p.emit(out, nd.right)
	default:
		p.emit(out, nd.left)
		p.emit(out, nd.right)
	}
	(*out)[at].NumComponents = len(*out) - at - 1
}

func (p *parser) emitArgs(out *[]Token, n int) {
	if p.is(n, lexComma) {
		p.emitArgs(out, p.nodes[n].left)
		p.emitArgs(out, p.nodes[n].right)
		return
	}
	p.emit(out, n)
}
