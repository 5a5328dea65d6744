package tclcore

// Obj is a tclcore value.
// It follows TCL semantics where values have both a string representation
// and an optional internal representation that can be lazily computed.
// Either representation may be absent, but never both.
//
// Values are shared by reference count. A value whose count is greater
// than one must not be mutated in place; callers duplicate it first.
type Obj struct {
	bytes    string  // string representation, meaningful when strValid
	strValid bool    // false once a typed mutation made bytes stale
	intrep   ObjType // internal representation (nil = pure string)
	refCount int
}

// ObjType defines the core behavior for an internal representation.
type ObjType interface {
	// Name returns the type name (e.g., "int", "list").
	Name() string

	// UpdateString regenerates string representation from this internal rep.
	UpdateString() string

	// Dup creates a copy of this internal representation.
	Dup() ObjType
}

// Releaser is implemented by internal representations that hold references
// to other values. Release is called when the representation is discarded
// because its value shimmered to another type.
type Releaser interface {
	Release()
}

// IntoInt can convert directly to int64.
type IntoInt interface {
	IntoInt() (int64, bool)
}

// IntoDouble can convert directly to float64.
type IntoDouble interface {
	IntoDouble() (float64, bool)
}

// IntoList can convert directly to a list.
type IntoList interface {
	IntoList() ([]*Obj, bool)
}

// IntoBool can convert directly to a boolean.
type IntoBool interface {
	IntoBool() (bool, bool)
}

// NewString returns a pure string value.
func NewString(s string) *Obj {
	return &Obj{bytes: s, strValid: true}
}

// NewObj returns a value holding only the given internal representation.
func NewObj(intrep ObjType) *Obj {
	return &Obj{intrep: intrep}
}

// String returns the string representation of the object, regenerating it
// from the internal representation when it is absent.
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	if !o.strValid {
		if o.intrep != nil {
			o.bytes = o.intrep.UpdateString()
		}
		o.strValid = true
	}
	return o.bytes
}

// HasStringRep reports whether the string representation is currently cached.
func (o *Obj) HasStringRep() bool {
	return o != nil && o.strValid
}

// Type returns the type name of the object.
// Returns "string" for pure string objects (no internal representation).
func (o *Obj) Type() string {
	if o == nil || o.intrep == nil {
		return "string"
	}
	return o.intrep.Name()
}

// InternalRep returns the internal representation of the object.
// Returns nil for pure string objects.
//
// Use type assertion to access custom ObjType implementations:
//
//	if d, ok := obj.InternalRep().(*DictType); ok {
//	    // use d
//	}
func (o *Obj) InternalRep() ObjType {
	if o == nil {
		return nil
	}
	return o.intrep
}

// InvalidateStringRep drops the cached string after the internal
// representation was mutated. A pure string value is left alone.
func (o *Obj) InvalidateStringRep() {
	if o == nil || o.intrep == nil {
		return
	}
	o.bytes = ""
	o.strValid = false
}

// setIntRep replaces the internal representation. The string form is
// materialized first so the value keeps its textual identity.
func (o *Obj) setIntRep(t ObjType) {
	if o.intrep == t {
		return
	}
	if !o.strValid {
		_ = o.String()
	}
	o.freeIntRep()
	o.intrep = t
}

func (o *Obj) freeIntRep() {
	if r, ok := o.intrep.(Releaser); ok {
		r.Release()
	}
	o.intrep = nil
}

// IncrRef records a new owner of the value.
func (o *Obj) IncrRef() {
	o.refCount++
}

// DecrRef drops an owner. Storage is left to the garbage collector: a value
// at zero may still be reachable, so its internal representation keeps the
// references it holds until it is replaced.
func (o *Obj) DecrRef() {
	if o.refCount > 0 {
		o.refCount--
	}
}

// RefCount returns the number of owners.
func (o *Obj) RefCount() int { return o.refCount }

// IsShared reports whether more than one owner holds the value.
func (o *Obj) IsShared() bool { return o.refCount > 1 }

// Duplicate returns an unshared copy of the value. The internal
// representation is duplicated via Dup, the string rep is copied as is.
func (o *Obj) Duplicate() *Obj {
	if o == nil {
		return nil
	}
	c := &Obj{bytes: o.bytes, strValid: o.strValid}
	if o.intrep != nil {
		c.intrep = o.intrep.Dup()
	}
	return c
}

// Int returns the integer value of this object, shimmering if needed.
func (o *Obj) Int() (int64, error) {
	return asInt(o)
}

// Double returns the float64 value of this object, shimmering if needed.
func (o *Obj) Double() (float64, error) {
	return asDouble(o)
}

// Bool returns the boolean value of this object using TCL boolean rules.
func (o *Obj) Bool() (bool, error) {
	return asBool(o)
}

// List returns the list elements of this object, shimmering if needed.
// If the object is a pure string, it is parsed as a TCL list.
func (o *Obj) List() ([]*Obj, error) {
	return asList(o)
}

// Dict returns the dict representation of this object, shimmering if needed.
func (o *Obj) Dict() (*DictType, error) {
	return asDict(o)
}
