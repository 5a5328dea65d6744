// Package script is a small script evaluator for tclcore interpreters.
//
// It splits a script into commands and words, performs variable and
// command substitution and backslash escapes, and dispatches each command
// through Interp.Invoke. There is no bytecode and no expression
// evaluation.
package script

import (
	"strings"

	"github.com/feather-lang/tclcore"
)

// Install makes Eval the evaluator of i.
func Install(i *tclcore.Interp) {
	i.SetEvaluator(Eval)
}

// Eval runs script in i.
func Eval(i *tclcore.Interp, script *tclcore.Obj) tclcore.Result {
	p := &parser{interp: i, src: script.String()}
	return p.run()
}

type parser struct {
	interp *tclcore.Interp
	src    string
	pos    int
	nested bool // inside a command substitution, ']' ends the script
}

// failure carries a parse or substitution error out of the word parser.
type failure struct {
	res tclcore.Result
}

func (p *parser) fail(msg string) *failure {
	return &failure{res: tclcore.Error(msg)}
}

func (p *parser) run() tclcore.Result {
	result := tclcore.OK("")
	for {
		p.skipSeparators()
		if p.pos >= len(p.src) {
			if p.nested {
				return tclcore.Error("missing close-bracket")
			}
			return result
		}
		if p.nested && p.src[p.pos] == ']' {
			p.pos++
			return result
		}
		if p.src[p.pos] == '#' {
			p.skipComment()
			continue
		}
		words, f := p.command()
		if f != nil {
			return f.res
		}
		if len(words) == 0 {
			continue
		}
		for _, w := range words {
			w.IncrRef()
		}
		result = p.interp.Invoke(words)
		for _, w := range words {
			w.DecrRef()
		}
		if result.Code() != tclcore.ResultOK {
			return result
		}
	}
}

func (p *parser) skipSeparators() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';':
			p.pos++
		case c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n':
			p.pos += 2
		default:
			return
		}
	}
}

func (p *parser) skipComment() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos += 2
			continue
		}
		p.pos++
		if c == '\n' {
			return
		}
	}
}

// skipSpace skips blanks between words, including escaped newlines.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n':
			p.pos += 2
		default:
			return
		}
	}
}

func (p *parser) atWordEnd() bool {
	if p.pos >= len(p.src) {
		return true
	}
	switch p.src[p.pos] {
	case ' ', '\t', '\r', '\n', ';':
		return true
	case ']':
		return p.nested
	case '\\':
		return p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n'
	}
	return false
}

func (p *parser) command() ([]*tclcore.Obj, *failure) {
	var words []*tclcore.Obj
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return words, nil
		}
		switch c := p.src[p.pos]; {
		case c == '\n' || c == ';':
			p.pos++
			return words, nil
		case c == ']' && p.nested:
			return words, nil
		}
		w, f := p.word()
		if f != nil {
			return nil, f
		}
		words = append(words, w)
	}
}

func (p *parser) word() (*tclcore.Obj, *failure) {
	switch p.src[p.pos] {
	case '{':
		return p.braced()
	case '"':
		p.pos++
		w, f := p.substUntil(func(c byte) bool { return c == '"' })
		if f != nil {
			return nil, f
		}
		if p.pos >= len(p.src) {
			return nil, p.fail("missing \"")
		}
		p.pos++
		if !p.atWordEnd() {
			return nil, p.fail("extra characters after close-quote")
		}
		return w, nil
	}
	return p.substUntil(func(c byte) bool {
		switch c {
		case ' ', '\t', '\r', '\n', ';':
			return true
		case ']':
			return p.nested
		}
		return false
	})
}

func (p *parser) braced() (*tclcore.Obj, *failure) {
	start := p.pos + 1
	depth := 1
	for i := start; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth > 0 {
				continue
			}
			body := p.src[start:i]
			p.pos = i + 1
			if !p.atWordEnd() {
				return nil, p.fail("extra characters after close-brace")
			}
			return tclcore.NewString(joinContinuations(body)), nil
		}
	}
	return nil, p.fail("missing close-brace")
}

// joinContinuations replaces each backslash-newline and the blanks after
// it with a single space.
func joinContinuations(s string) string {
	if !strings.Contains(s, "\\\n") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] == '\n' {
				b.WriteByte(' ')
				i += 2
				for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
					i++
				}
				i--
				continue
			}
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// substUntil parses text with substitutions up to the first byte for which
// stop holds, leaving pos on that byte. A word made of exactly one
// substitution keeps the substituted value itself.
func (p *parser) substUntil(stop func(byte) bool) (*tclcore.Obj, *failure) {
	var pieces []*tclcore.Obj
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, tclcore.NewString(lit.String()))
			lit.Reset()
		}
	}

	for p.pos < len(p.src) && !stop(p.src[p.pos]) {
		switch c := p.src[p.pos]; c {
		case '\\':
			s, n := tclcore.Backslash(p.src[p.pos:])
			lit.WriteString(s)
			p.pos += n
		case '$':
			v, ok, f := p.variable()
			if f != nil {
				return nil, f
			}
			if !ok {
				lit.WriteByte('$')
				p.pos++
				continue
			}
			flush()
			pieces = append(pieces, v)
		case '[':
			p.pos++
			sub := &parser{interp: p.interp, src: p.src, pos: p.pos, nested: true}
			res := sub.run()
			if res.Code() != tclcore.ResultOK {
				return nil, &failure{res: res}
			}
			p.pos = sub.pos
			flush()
			pieces = append(pieces, res.Obj())
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	flush()

	switch len(pieces) {
	case 0:
		return tclcore.NewString(""), nil
	case 1:
		return pieces[0], nil
	}
	var b strings.Builder
	for _, piece := range pieces {
		b.WriteString(piece.String())
	}
	return tclcore.NewString(b.String()), nil
}

func isNameChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// variable parses a $ substitution at pos. ok is false when the dollar
// sign is not followed by a variable name.
func (p *parser) variable() (val *tclcore.Obj, ok bool, f *failure) {
	i := p.pos + 1
	if i < len(p.src) && p.src[i] == '{' {
		end := strings.IndexByte(p.src[i+1:], '}')
		if end < 0 {
			return nil, false, p.fail("missing close-brace for variable name")
		}
		name := p.src[i+1 : i+1+end]
		p.pos = i + 1 + end + 1
		v, err := p.interp.ObjGetVar2(tclcore.NewString(name), nil, 0)
		if err != nil {
			return nil, false, &failure{res: tclcore.Error(err)}
		}
		return v, true, nil
	}

	start := i
scan:
	for i < len(p.src) {
		switch {
		case isNameChar(p.src[i]):
			i++
		case p.src[i] == ':' && i+1 < len(p.src) && p.src[i+1] == ':':
			for i < len(p.src) && p.src[i] == ':' {
				i++
			}
		default:
			break scan
		}
	}
	name := p.src[start:i]
	hasIndex := i < len(p.src) && p.src[i] == '('
	if name == "" && !hasIndex {
		return nil, false, nil
	}
	p.pos = i
	if !hasIndex {
		v, err := p.interp.ObjGetVar2(tclcore.NewString(name), nil, 0)
		if err != nil {
			return nil, false, &failure{res: tclcore.Error(err)}
		}
		return v, true, nil
	}

	p.pos++
	index, fl := p.substUntil(func(c byte) bool { return c == ')' })
	if fl != nil {
		return nil, false, fl
	}
	if p.pos >= len(p.src) {
		return nil, false, p.fail("missing )")
	}
	p.pos++
	v, err := p.interp.ObjGetVar2(tclcore.NewString(name), index, 0)
	if err != nil {
		return nil, false, &failure{res: tclcore.Error(err)}
	}
	return v, true, nil
}
