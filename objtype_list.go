package tclcore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ListType is the internal representation for list values.
// The list holds one reference on each element.
type ListType []*Obj

func (t ListType) Name() string { return "list" }

func (t ListType) Dup() ObjType {
	c := make(ListType, len(t))
	copy(c, t)
	for _, e := range c {
		e.IncrRef()
	}
	return c
}

func (t ListType) UpdateString() string {
	parts := make([]string, len(t))
	for i, e := range t {
		parts[i] = QuoteElement(e.String())
	}
	return strings.Join(parts, " ")
}

func (t ListType) IntoList() ([]*Obj, bool) { return t, true }

func (t ListType) Release() {
	for _, e := range t {
		e.DecrRef()
	}
}

// NewList returns a list value holding items. Each item gains a reference.
func NewList(items ...*Obj) *Obj {
	l := make(ListType, len(items))
	copy(l, items)
	for _, e := range l {
		e.IncrRef()
	}
	return NewObj(l)
}

// NewStringList returns a list value of pure string elements.
func NewStringList(items ...string) *Obj {
	l := make(ListType, len(items))
	for i, s := range items {
		l[i] = NewString(s)
		l[i].IncrRef()
	}
	return NewObj(l)
}

// ListAppend appends elem to the list value l, which must be unshared.
func ListAppend(l, elem *Obj) error {
	if l.IsShared() {
		panic("ListAppend called with shared object")
	}
	items, err := asList(l)
	if err != nil {
		return err
	}
	elem.IncrRef()
	l.intrep = append(ListType(items), elem)
	l.InvalidateStringRep()
	return nil
}

func isListSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// SplitList parses s as a TCL list.
func SplitList(s string) ([]string, error) {
	return splitElements(s, "list")
}

// splitElements parses list syntax; kind names the value type in errors.
func splitElements(s, kind string) ([]string, error) {
	var items []string
	pos := 0
	for {
		for pos < len(s) && isListSpace(s[pos]) {
			pos++
		}
		if pos >= len(s) {
			return items, nil
		}

		switch s[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < len(s) && depth > 0 {
				switch s[pos] {
				case '\\':
					pos++
				case '{':
					depth++
				case '}':
					depth--
				}
				pos++
			}
			if depth != 0 {
				return nil, errors.New("unmatched open brace in " + kind)
			}
			if pos < len(s) && !isListSpace(s[pos]) {
				return nil, fmt.Errorf("%s element in braces followed by %q instead of space", kind, trailing(s[pos:]))
			}
			items = append(items, s[start:pos-1])
		case '"':
			var b strings.Builder
			pos++
			closed := false
			for pos < len(s) {
				if s[pos] == '"' {
					closed = true
					pos++
					break
				}
				if s[pos] == '\\' {
					r, n := Backslash(s[pos:])
					b.WriteString(r)
					pos += n
					continue
				}
				b.WriteByte(s[pos])
				pos++
			}
			if !closed {
				return nil, errors.New("unmatched open quote in " + kind)
			}
			if pos < len(s) && !isListSpace(s[pos]) {
				return nil, fmt.Errorf("%s element in quotes followed by %q instead of space", kind, trailing(s[pos:]))
			}
			items = append(items, b.String())
		default:
			var b strings.Builder
			for pos < len(s) && !isListSpace(s[pos]) {
				if s[pos] == '\\' {
					r, n := Backslash(s[pos:])
					b.WriteString(r)
					pos += n
					continue
				}
				b.WriteByte(s[pos])
				pos++
			}
			items = append(items, b.String())
		}
	}
}

func trailing(s string) string {
	end := 0
	for end < len(s) && !isListSpace(s[end]) {
		end++
	}
	return s[:end]
}

// Backslash decodes the backslash sequence at the start of s and returns
// the substituted text and the number of bytes consumed.
func Backslash(s string) (string, int) {
	if len(s) < 2 {
		return "\\", 1
	}
	switch c := s[1]; c {
	case 'a':
		return "\a", 2
	case 'b':
		return "\b", 2
	case 'f':
		return "\f", 2
	case 'n':
		return "\n", 2
	case 'r':
		return "\r", 2
	case 't':
		return "\t", 2
	case 'v':
		return "\v", 2
	case 'x':
		return hexEscape(s, 2)
	case 'u':
		return hexEscape(s, 4)
	case 'U':
		return hexEscape(s, 8)
	case '\n':
		n := 2
		for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
			n++
		}
		return " ", n
	default:
		if c >= '0' && c <= '7' {
			n := 1
			for n < 4 && n < len(s) && s[n] >= '0' && s[n] <= '7' {
				n++
			}
			v, _ := strconv.ParseUint(s[1:n], 8, 32)
			return string(rune(v & 0xff)), n
		}
		r, size := utf8.DecodeRuneInString(s[1:])
		return string(r), 1 + size
	}
}

func hexEscape(s string, max int) (string, int) {
	n := 2
	for n < 2+max && n < len(s) && isHex(s[n]) {
		n++
	}
	if n == 2 {
		return s[1:2], 2
	}
	v, _ := strconv.ParseUint(s[2:n], 16, 32)
	if max == 2 {
		v &= 0xff
	}
	return string(rune(v)), n
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// QuoteElement returns s in a form that SplitList reads back as the single
// element s.
func QuoteElement(s string) string {
	if s == "" {
		return "{}"
	}
	needs := s[0] == '{' || s[0] == '"' || s[0] == '#'
	braceOK := true
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			needs = true
		case '}':
			depth--
			if depth < 0 {
				braceOK = false
			}
			needs = true
		case '\\':
			needs = true
			if i == len(s)-1 {
				braceOK = false
			} else {
				i++
			}
		case ' ', '\t', '\n', '\r', '\v', '\f', ';', '$', '[', ']', '"':
			needs = true
		}
	}
	if depth != 0 {
		braceOK = false
	}
	if !needs {
		return s
	}
	if braceOK {
		return "{" + s + "}"
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case ' ', ';', '$', '[', ']', '"', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '#':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MergeList quotes and joins elements into a list string.
func MergeList(elems []string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = QuoteElement(e)
	}
	return strings.Join(parts, " ")
}
