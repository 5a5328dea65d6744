package tclcore

import "strconv"

// IntType is the internal representation for integer values.
type IntType int64

func (t IntType) Name() string         { return "int" }
func (t IntType) Dup() ObjType         { return t }
func (t IntType) UpdateString() string { return strconv.FormatInt(int64(t), 10) }

func (t IntType) IntoInt() (int64, bool)      { return int64(t), true }
func (t IntType) IntoDouble() (float64, bool) { return float64(t), true }
func (t IntType) IntoBool() (bool, bool)      { return t != 0, true }

// DoubleType is the internal representation for floating-point values.
type DoubleType float64

func (t DoubleType) Name() string { return "double" }
func (t DoubleType) Dup() ObjType { return t }
func (t DoubleType) UpdateString() string {
	s := strconv.FormatFloat(float64(t), 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'n', 'I':
			return s
		}
	}
	return s + ".0"
}

func (t DoubleType) IntoDouble() (float64, bool) { return float64(t), true }
func (t DoubleType) IntoBool() (bool, bool)      { return t != 0, true }

// BoolType is the internal representation for values that were last used
// as booleans. The original spelling ("yes", "off", ...) stays in the
// string rep.
type BoolType bool

func (t BoolType) Name() string { return "boolean" }
func (t BoolType) Dup() ObjType { return t }
func (t BoolType) UpdateString() string {
	if t {
		return "1"
	}
	return "0"
}

func (t BoolType) IntoBool() (bool, bool) { return bool(t), true }

// NewInt returns an integer value.
func NewInt(v int64) *Obj { return NewObj(IntType(v)) }

// NewDouble returns a floating-point value.
func NewDouble(v float64) *Obj { return NewObj(DoubleType(v)) }

// NewBool returns a boolean value whose string form is "1" or "0".
func NewBool(v bool) *Obj { return NewObj(BoolType(v)) }
