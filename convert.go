package tclcore

import (
	"fmt"
	"strconv"
	"strings"
)

const listSpace = " \t\n\r\v\f"

// parseInt accepts TCL integer syntax: optional surrounding whitespace, an
// optional sign and a decimal, 0x, 0o or 0b literal.
func parseInt(s string) (int64, bool) {
	t := strings.Trim(s, listSpace)
	if t == "" || strings.ContainsRune(t, '_') {
		return 0, false
	}
	neg := false
	switch t[0] {
	case '-':
		neg = true
		t = t[1:]
	case '+':
		t = t[1:]
	}
	if t == "" || t[0] == '-' || t[0] == '+' {
		return 0, false
	}
	base := 10
	if len(t) > 2 && t[0] == '0' {
		switch t[1] {
		case 'x', 'X':
			base, t = 16, t[2:]
		case 'o', 'O':
			base, t = 8, t[2:]
		case 'b', 'B':
			base, t = 2, t[2:]
		}
	}
	u, err := strconv.ParseUint(t, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		if u > 1<<63 {
			return 0, false
		}
		return -int64(u), true
	}
	if u > 1<<63-1 {
		return 0, false
	}
	return int64(u), true
}

// asInt converts o to int64, shimmering if needed.
func asInt(o *Obj) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected integer but got \"\"")
	}
	if c, ok := o.intrep.(IntoInt); ok {
		if v, ok := c.IntoInt(); ok {
			return v, nil
		}
	}
	v, ok := parseInt(o.String())
	if !ok {
		return 0, fmt.Errorf("expected integer but got %q", o.String())
	}
	o.setIntRep(IntType(v))
	return v, nil
}

// asDouble converts o to float64, shimmering if needed.
func asDouble(o *Obj) (float64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected floating-point number but got \"\"")
	}
	if c, ok := o.intrep.(IntoDouble); ok {
		if v, ok := c.IntoDouble(); ok {
			return v, nil
		}
	}
	if v, ok := parseInt(o.String()); ok {
		return float64(v), nil
	}
	v, err := strconv.ParseFloat(strings.Trim(o.String(), listSpace), 64)
	if err != nil {
		return 0, fmt.Errorf("expected floating-point number but got %q", o.String())
	}
	o.setIntRep(DoubleType(v))
	return v, nil
}

// boolWords lists the accepted spellings. Unique prefixes of the words are
// accepted as well, matching case-insensitively.
var boolWords = []struct {
	word string
	val  bool
}{
	{"true", true}, {"yes", true}, {"on", true},
	{"false", false}, {"no", false}, {"off", false},
}

func parseBool(s string) (bool, bool) {
	if v, ok := parseInt(s); ok {
		return v != 0, true
	}
	if f, err := strconv.ParseFloat(strings.Trim(s, listSpace), 64); err == nil {
		return f != 0, true
	}
	l := strings.ToLower(s)
	if l == "" || l == "o" {
		return false, false
	}
	for _, w := range boolWords {
		if strings.HasPrefix(w.word, l) {
			return w.val, true
		}
	}
	return false, false
}

// asBool converts o to a boolean, shimmering if needed.
func asBool(o *Obj) (bool, error) {
	if o == nil {
		return false, fmt.Errorf("expected boolean value but got \"\"")
	}
	if c, ok := o.intrep.(IntoBool); ok {
		if v, ok := c.IntoBool(); ok {
			return v, nil
		}
	}
	v, ok := parseBool(o.String())
	if !ok {
		return false, fmt.Errorf("expected boolean value but got %q", o.String())
	}
	o.setIntRep(BoolType(v))
	return v, nil
}

// asList converts o to a list, shimmering if needed.
func asList(o *Obj) ([]*Obj, error) {
	if o == nil {
		return nil, nil
	}
	if l, ok := o.intrep.(ListType); ok {
		return l, nil
	}
	if c, ok := o.intrep.(IntoList); ok {
		if items, ok := c.IntoList(); ok {
			l := make(ListType, len(items))
			copy(l, items)
			for _, e := range l {
				e.IncrRef()
			}
			o.setIntRep(l)
			return l, nil
		}
	}
	parts, err := SplitList(o.String())
	if err != nil {
		return nil, err
	}
	l := make(ListType, len(parts))
	for i, p := range parts {
		l[i] = NewString(p)
		l[i].IncrRef()
	}
	o.setIntRep(l)
	return l, nil
}
