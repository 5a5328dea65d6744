package tclcore

import (
	"errors"
	"strings"
)

// ObjGetVar2 reads a variable. part2 names an array element and may be
// nil; part1 may also carry the element as "a(b)". Read traces fire before
// the value is returned.
func (i *Interp) ObjGetVar2(part1, part2 *Obj, flags VarFlags) (*Obj, error) {
	ref, err := i.lookupVar(part1, part2, flags, "read", false, true)
	if err != nil {
		return nil, err
	}
	return i.getVarRef(ref, flags)
}

// GetVar reads the variable called name.
func (i *Interp) GetVar(name string) (*Obj, error) {
	return i.ObjGetVar2(NewString(name), nil, 0)
}

// GetElem reads element elem of array.
func (i *Interp) GetElem(array, elem string) (*Obj, error) {
	return i.ObjGetVar2(NewString(array), NewString(elem), 0)
}

func (i *Interp) getVarRef(ref varRef, flags VarFlags) (*Obj, error) {
	v, arr := ref.v, ref.arr
	if len(v.traces) > 0 || arr != nil && len(arr.traces) > 0 {
		if err := i.callVarTraces(arr, v, ref.part1, ref.part2, TraceRead, flags); err != nil {
			cleanupVar(v, arr)
			return nil, ref.err("read", err)
		}
	}
	if v.state == stateScalar {
		return v.value, nil
	}

	var reason error
	switch {
	case v.state == stateUndefined && arr != nil && arr.state != stateUndefined:
		reason = ErrNoSuchElement
	case v.state == stateArray:
		reason = ErrVarIsArray
	default:
		reason = ErrNoSuchVariable
	}
	cleanupVar(v, arr)
	return nil, ref.err("read", reason)
}

// ObjSetVar2 sets a variable, creating it if needed, and returns its
// value after write traces ran. With AppendValue or ListElement the value
// is appended to the current one.
func (i *Interp) ObjSetVar2(part1, part2, value *Obj, flags VarFlags) (*Obj, error) {
	ref, err := i.lookupVar(part1, part2, flags, "set", true, true)
	if err != nil {
		return nil, err
	}
	return i.setVarRef(ref, value, flags)
}

// SetVar sets the variable called name.
func (i *Interp) SetVar(name string, value *Obj) (*Obj, error) {
	return i.ObjSetVar2(NewString(name), nil, value, 0)
}

// SetElem sets element elem of array.
func (i *Interp) SetElem(array, elem string, value *Obj) (*Obj, error) {
	return i.ObjSetVar2(NewString(array), NewString(elem), value, 0)
}

func (i *Interp) setVarRef(ref varRef, value *Obj, flags VarFlags) (*Obj, error) {
	v, arr := ref.v, ref.arr
	value.IncrRef()
	defer value.DecrRef()

	if v.Deleted() {
		cleanupVar(v, arr)
		if v.IsArrayElement() {
			return nil, ref.err("set", ErrDanglingElement)
		}
		return nil, ref.err("set", ErrDanglingVar)
	}
	if v.state == stateArray {
		cleanupVar(v, arr)
		return nil, ref.err("set", ErrVarIsArray)
	}

	if flags&ReadTraces != 0 && (v.hasTraces(TraceRead) || arr != nil && arr.hasTraces(TraceRead)) {
		if err := i.callVarTraces(arr, v, ref.part1, ref.part2, TraceRead, flags); err != nil {
			cleanupVar(v, arr)
			return nil, ref.err("read", err)
		}
	}

	if flags&(AppendValue|ListElement) != 0 {
		old := v.value
		if v.state != stateScalar {
			old = nil
		}
		if flags&ListElement != 0 {
			switch {
			case old == nil:
				old = NewList()
				v.setScalar(old)
			case old.IsShared():
				old = old.Duplicate()
				v.setScalar(old)
			}
			items := []*Obj{value}
			if flags&listElements != 0 {
				items, _ = value.List()
			}
			for _, item := range items {
				if err := ListAppend(old, item); err != nil {
					cleanupVar(v, arr)
					return nil, err
				}
			}
		} else {
			switch {
			case old == nil:
				v.setScalar(value)
			case old.IsShared():
				dup := NewString(old.String() + value.String())
				v.setScalar(dup)
			default:
				appendString(old, value.String())
			}
		}
	} else {
		v.setScalar(value)
	}

	if len(v.traces) > 0 || arr != nil && len(arr.traces) > 0 {
		if err := i.callVarTraces(arr, v, ref.part1, ref.part2, TraceWrite, flags); err != nil {
			cleanupVar(v, arr)
			return nil, ref.err("set", err)
		}
	}

	if v.state == stateScalar {
		return v.value, nil
	}
	cleanupVar(v, arr)
	return NewString(""), nil
}

// appendString appends s to the unshared value o, which becomes a pure
// string.
func appendString(o *Obj, s string) {
	cur := o.String()
	o.freeIntRep()
	var b strings.Builder
	b.Grow(len(cur) + len(s))
	b.WriteString(cur)
	b.WriteString(s)
	o.bytes = b.String()
	o.strValid = true
}

// AppendVar appends a string to a variable and returns the new value.
func (i *Interp) AppendVar(part1, part2, value *Obj) (*Obj, error) {
	return i.ObjSetVar2(part1, part2, value, AppendValue)
}

// LappendVar appends list elements to a variable and returns the new
// value. Read traces fire once before the update and write traces once
// after it.
func (i *Interp) LappendVar(part1, part2 *Obj, values ...*Obj) (*Obj, error) {
	if len(values) == 0 {
		if v, err := i.ObjGetVar2(part1, part2, 0); err == nil {
			return v, nil
		}
		return i.ObjSetVar2(part1, part2, NewList(), 0)
	}
	ref, err := i.lookupVar(part1, part2, 0, "set", true, true)
	if err != nil {
		return nil, err
	}
	return i.setVarRef(ref, NewList(values...), ListElement|listElements|ReadTraces)
}

// IncrVar adds incr to the integer held by a variable. An unset variable
// counts as zero.
func (i *Interp) IncrVar(part1, part2 *Obj, incr int64, flags VarFlags) (*Obj, error) {
	ref, err := i.lookupVar(part1, part2, flags, "read", true, true)
	if err != nil {
		return nil, err
	}
	v := ref.v
	v.refCount++
	cur, err := i.getVarRef(ref, flags)
	v.refCount--
	if err != nil {
		if !errors.Is(err, ErrNoSuchVariable) && !errors.Is(err, ErrNoSuchElement) {
			return nil, err
		}
		cur = NewInt(0)
	}
	n, err := cur.Int()
	if err != nil {
		return nil, err
	}
	if cur.IsShared() || cur.refCount == 0 {
		return i.setVarRef(ref, NewInt(n+incr), flags)
	}
	cur.setIntRep(IntType(n + incr))
	cur.InvalidateStringRep()
	return i.setVarRef(ref, cur, flags)
}

// ObjUnsetVar2 unsets a variable or array element. Unset traces fire with
// the value already gone. Unsetting an undefined cell fails after its
// traces ran.
func (i *Interp) ObjUnsetVar2(part1, part2 *Obj, flags VarFlags) error {
	ref, err := i.lookupVar(part1, part2, flags, "unset", false, false)
	if err != nil {
		return err
	}
	v, arr := ref.v, ref.arr
	undefined := v.state == stateUndefined

	v.refCount++
	i.unsetVarStruct(v, arr, ref.part1, ref.part2, flags)
	v.refCount--
	cleanupVar(v, arr)

	if undefined {
		if arr != nil {
			return ref.err("unset", ErrNoSuchElement)
		}
		return ref.err("unset", ErrNoSuchVariable)
	}
	return nil
}

// UnsetVar unsets the variable called name.
func (i *Interp) UnsetVar(name string) error {
	return i.ObjUnsetVar2(NewString(name), nil, 0)
}

// unsetVarStruct empties v. The cell is marked undefined first and unset
// traces then run on a detached copy, so a trace that touches the
// variable sees it already gone and may even recreate it.
func (i *Interp) unsetVarStruct(v, arr *Var, part1 string, part2 *string, flags VarFlags) {
	if arr != nil && len(arr.searches) > 0 {
		i.deleteSearches(arr)
	} else if len(v.searches) > 0 {
		i.deleteSearches(v)
	}

	dead := *v
	dead.flags &^= flagInHashTable | flagTraceActive
	dead.entry = nil
	v.clear()
	v.traces = nil
	v.searches = nil

	if dead.hasTraces(TraceUnset) || arr != nil && arr.hasTraces(TraceUnset) {
		err := i.callVarTraces(arr, &dead, part1, part2, TraceUnset|TraceDestroyed, flags&scopeFlags)
		if err != nil {
			i.logger.Debug("unset trace failed", "var", varErr("unset", part1, part2, err).Name(), "error", err)
		}
	}
	for _, t := range dead.traces {
		t.removed = true
	}
	dead.traces = nil

	switch dead.state {
	case stateScalar:
		if dead.value != nil {
			dead.value.DecrRef()
		}
	case stateArray:
		i.deleteArray(part1, &dead, flags&scopeFlags)
	case stateLink:
		target := dead.link
		if target.flags&flagInHashTable != 0 {
			target.refCount--
			cleanupVar(target, nil)
		}
	}

	if v.flags&flagNamespaceVar != 0 {
		v.flags &^= flagNamespaceVar
		v.refCount--
	}
}

// VarExists reports whether name refers to a defined variable.
func (i *Interp) VarExists(name string) bool {
	ref, err := i.lookupVar(NewString(name), nil, 0, "access", false, false)
	if err != nil {
		return false
	}
	return ref.v.state != stateUndefined
}

// VarNames returns the names of the defined variables visible in the
// current frame that match pattern. An empty pattern matches all names.
func (i *Interp) VarNames(pattern string) []string {
	var names []string
	f := i.varFrame
	if f.isProc {
		names = f.LocalNames()
	} else {
		names = f.ns.VarNames()
	}
	if pattern == "" {
		return names
	}
	out := names[:0]
	for _, n := range names {
		if i.Match(pattern, n) {
			out = append(out, n)
		}
	}
	return out
}
