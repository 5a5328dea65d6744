package tclcore

import (
	"strings"

	"github.com/feather-lang/tclcore/internal/hashtab"
)

// VarFlags modify variable lookups and updates.
type VarFlags uint16

const (
	// GlobalOnly resolves the name in the global namespace.
	GlobalOnly VarFlags = 1 << iota
	// NamespaceOnly resolves the name in the current namespace, without
	// falling back to the global namespace.
	NamespaceOnly
	// AppendValue appends to the current value instead of replacing it.
	AppendValue
	// ListElement appends the value as a list element.
	ListElement
	// ReadTraces fires read traces before a set, for read-modify-write
	// operations.
	ReadTraces

	lookupForUpvar
	listElements
)

const scopeFlags = GlobalOnly | NamespaceOnly

// parsedVarName caches the array/element split of a name value. array is
// nil for names without an element part.
type parsedVarName struct {
	array *Obj
	elem  string
}

func (t *parsedVarName) Name() string { return "parsedVarName" }

func (t *parsedVarName) UpdateString() string {
	if t.array == nil {
		return ""
	}
	return t.array.String() + "(" + t.elem + ")"
}

func (t *parsedVarName) Dup() ObjType {
	if t.array != nil {
		t.array.IncrRef()
	}
	return &parsedVarName{array: t.array, elem: t.elem}
}

func (t *parsedVarName) Release() {
	if t.array != nil {
		t.array.DecrRef()
	}
}

// localVarName caches the slot index of a proc local.
type localVarName struct {
	index int
}

func (t *localVarName) Name() string         { return "localVarName" }
func (t *localVarName) UpdateString() string { return "" }
func (t *localVarName) Dup() ObjType         { return &localVarName{index: t.index} }

// cacheable reports whether a name value may carry a name cache without
// discarding another representation.
func cacheable(o *Obj) bool {
	switch o.intrep.(type) {
	case nil, *parsedVarName, *localVarName:
		return true
	}
	return false
}

// varRef is a resolved variable: the cell, the array holding it for
// elements, and the name parts as the caller wrote them.
type varRef struct {
	v, arr *Var
	part1  string
	part2  *string
}

func (r varRef) err(op string, reason error) *VarError {
	return varErr(op, r.part1, r.part2, reason)
}

// splitElement splits "a(b)" into "a" and "b".
func splitElement(name string) (array, elem string, ok bool) {
	if !strings.HasSuffix(name, ")") {
		return "", "", false
	}
	open := strings.IndexByte(name, '(')
	if open < 0 {
		return "", "", false
	}
	return name[:open], name[open+1 : len(name)-1], true
}

// lookupVar resolves a two-part name. part2 is nil when no element is
// given separately; an element may still come from "a(b)" syntax in
// part1. Links are followed before the element lookup.
func (i *Interp) lookupVar(part1Ptr, part2Ptr *Obj, flags VarFlags, op string, createPart1, createPart2 bool) (varRef, error) {
	var part2 *string
	if part2Ptr != nil {
		s := part2Ptr.String()
		part2 = &s
	}
	caching := !i.config.DisableVarNameCache
	parsed := false

	if caching {
		switch t := part1Ptr.intrep.(type) {
		case *parsedVarName:
			if t.array != nil {
				if part2 != nil {
					return varRef{}, varErr(op, part1Ptr.String(), part2, ErrElementSyntax)
				}
				elem := t.elem
				part2 = &elem
				part1Ptr = t.array
			}
			parsed = true
		case *localVarName:
			parsed = true
		}
	}
	part1 := part1Ptr.String()

	var v *Var
	frame := i.varFrame
	if caching && frame.isProc && flags&scopeFlags == 0 && frame.ns.resolver == nil && len(i.resolvers) == 0 {
		if t, ok := part1Ptr.intrep.(*localVarName); ok {
			if t.index < len(frame.locals) && frame.localNames[t.index] == part1 {
				v = frame.locals[t.index]
			}
		}
	}

	if v == nil {
		if !parsed {
			if arr, elem, ok := splitElement(part1); ok {
				if part2 != nil {
					return varRef{}, varErr(op, part1, part2, ErrElementSyntax)
				}
				part2 = &elem
				if caching && cacheable(part1Ptr) {
					arrObj := NewString(arr)
					arrObj.IncrRef()
					part1Ptr.setIntRep(&parsedVarName{array: arrObj, elem: elem})
					part1Ptr = arrObj
				}
				part1 = arr
			}
		}

		var idx int
		var err error
		v, idx, err = i.lookupSimpleVar(part1, flags, createPart1)
		if err != nil {
			return varRef{}, varErr(op, part1, part2, err)
		}
		if caching && cacheable(part1Ptr) && part1Ptr.String() == part1 {
			if idx >= 0 {
				part1Ptr.setIntRep(&localVarName{index: idx})
			} else if part1Ptr.intrep == nil {
				part1Ptr.setIntRep(&parsedVarName{})
			}
		}
	}

	for v.state == stateLink {
		v = v.link
	}
	ref := varRef{v: v, part1: part1, part2: part2}
	if part2 == nil {
		return ref, nil
	}
	elem, err := i.lookupArrayElement(v, part1, *part2, op, createPart1, createPart2)
	if err != nil {
		return varRef{}, err
	}
	ref.arr, ref.v = v, elem
	return ref, nil
}

// lookupSimpleVar finds or creates the cell for a name without element
// part. The slot index is returned for proc locals, -1 otherwise.
func (i *Interp) lookupSimpleVar(name string, flags VarFlags, create bool) (*Var, int, error) {
	frame := i.varFrame
	ctx := frame.ns
	if flags&GlobalOnly != 0 {
		ctx = i.global
	}

	if flags&lookupForUpvar == 0 {
		if ctx.resolver != nil {
			if v, err := ctx.resolver(i, name, ctx, flags); err != nil || v != nil {
				return v, -1, err
			}
		}
		for _, r := range i.resolvers {
			if v, err := r(i, name, ctx, flags); err != nil || v != nil {
				return v, -1, err
			}
		}
	}

	if flags&scopeFlags != 0 || !frame.isProc || strings.Contains(name, "::") {
		lookGlobal := flags&GlobalOnly != 0 || ctx == i.global || strings.HasPrefix(name, "::")
		if lookGlobal {
			flags = (flags | GlobalOnly) &^ (NamespaceOnly | lookupForUpvar)
		} else if flags&lookupForUpvar != 0 {
			flags = (flags | NamespaceOnly) &^ lookupForUpvar
		}
		if v := i.findNamespaceVar(name, ctx, flags); v != nil {
			return v, -1, nil
		}
		if !create {
			return nil, -1, ErrNoSuchVariable
		}
		varNs, _, tail := i.qualify(name, ctx, flags|NamespaceOnly)
		if varNs == nil {
			return nil, -1, ErrBadNamespace
		}
		if tail == "" {
			return nil, -1, ErrMissingName
		}
		return varNs.createVar(tail), -1, nil
	}

	for idx, n := range frame.localNames {
		if n == name {
			return frame.locals[idx], idx, nil
		}
	}
	if !create {
		if e := frame.table.Find(name); e != nil {
			return e.Value, -1, nil
		}
		return nil, -1, ErrNoSuchVariable
	}
	if frame.table == nil {
		frame.table = hashtab.New[*Var]()
	}
	e, isNew := frame.table.Create(name)
	if isNew {
		e.Value = &Var{entry: e, flags: flagInHashTable}
	}
	return e.Value, -1, nil
}

// lookupArrayElement finds or creates element elem of arr. An undefined
// arr becomes an array when createArray is set.
func (i *Interp) lookupArrayElement(arr *Var, part1, elem, op string, createArray, createElem bool) (*Var, error) {
	part2 := &elem
	if arr.state == stateUndefined && arr.flags&flagArrayElement == 0 {
		if !createArray {
			return nil, varErr(op, part1, part2, ErrNoSuchVariable)
		}
		if arr.Deleted() {
			return nil, varErr(op, part1, part2, ErrDanglingVar)
		}
		arr.makeArray()
	} else if arr.state != stateArray {
		return nil, varErr(op, part1, part2, ErrVarNotArray)
	}

	if !createElem {
		e := arr.elements.Find(elem)
		if e == nil {
			return nil, varErr(op, part1, part2, ErrNoSuchElement)
		}
		return e.Value, nil
	}
	e, isNew := arr.elements.Create(elem)
	if isNew {
		if len(arr.searches) > 0 {
			i.deleteSearches(arr)
		}
		e.Value = &Var{entry: e, ns: arr.ns, flags: flagArrayElement | flagInHashTable}
	}
	return e.Value, nil
}
