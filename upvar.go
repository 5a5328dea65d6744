package tclcore

import "strings"

// ObjMakeUpvar makes myName, in the current frame, a link to the variable
// otherP1(otherP2) as seen from frame. A nil frame means the global frame.
// Unless otherFlags has NamespaceOnly, the other name is resolved with
// frame's variables in scope; the target is created if needed.
func (i *Interp) ObjMakeUpvar(frame *CallFrame, otherP1, otherP2 *Obj, otherFlags VarFlags, myName string, myFlags VarFlags) error {
	if frame == nil {
		frame = i.rootFrame
	}
	saved := i.varFrame
	if otherFlags&NamespaceOnly == 0 {
		i.varFrame = frame
	}
	ref, err := i.lookupVar(otherP1, otherP2, otherFlags&scopeFlags, "access", true, true)
	i.varFrame = saved
	if err != nil {
		return err
	}

	owner := ref.v
	if ref.arr != nil {
		owner = ref.arr
	}
	inNamespace := owner.flags&flagInHashTable != 0 && owner.ns != nil
	if !inNamespace && (myFlags&scopeFlags != 0 || !saved.isProc || strings.Contains(myName, "::")) {
		return errorf(ErrBadVarName, "bad variable name %q: can't create namespace variable that refers to procedure variable", myName)
	}
	return i.ptrMakeUpvar(ref.v, myName, myFlags)
}

// MakeUpvar links myName to an existing cell. A link cell is followed to
// the cell it refers to.
func (i *Interp) MakeUpvar(target *Var, myName string, myFlags VarFlags) error {
	return i.ptrMakeUpvar(target, myName, myFlags)
}

func (i *Interp) ptrMakeUpvar(other *Var, myName string, myFlags VarFlags) error {
	for other.state == stateLink {
		other = other.link
	}
	if _, _, ok := splitElement(myName); ok {
		return errorf(ErrBadVarName, "bad variable name %q: upvar won't create a scalar variable that looks like an array element", myName)
	}
	v, _, err := i.lookupSimpleVar(myName, (myFlags&scopeFlags)|lookupForUpvar, true)
	if err != nil {
		return varErr("create", myName, nil, err)
	}
	if v == other {
		return ErrSelfReference
	}
	if len(v.traces) > 0 {
		return errorf(ErrHasTraces, "variable %q has traces: can't use for upvar", myName)
	}
	if v.state != stateUndefined {
		if v.state != stateLink {
			return errorf(ErrAlreadyExists, "variable %q already exists", myName)
		}
		old := v.link
		if old == other {
			return nil
		}
		if old.flags&flagInHashTable != 0 {
			old.refCount--
			if old.state == stateUndefined {
				cleanupVar(old, nil)
			}
		}
		i.logger.Debug("relinking variable", "name", myName, "from", old.Name(), "to", other.Name())
	} else {
		i.logger.Debug("linking variable", "name", myName, "to", other.Name())
	}
	v.makeLink(other)
	if other.flags&flagInHashTable != 0 {
		other.refCount++
	}
	return nil
}

// Upvar links myName in the current frame to otherName in the frame named
// by level.
func (i *Interp) Upvar(level, otherName, myName string) error {
	f, err := i.GetFrame(level)
	if err != nil {
		return err
	}
	return i.ObjMakeUpvar(f, NewString(otherName), nil, 0, myName, 0)
}

// tail returns the part of a qualified name after the last "::".
func tail(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}

// Global links each name to the global variable of the same name. Outside
// a procedure it does nothing.
func (i *Interp) Global(names ...string) error {
	if !i.varFrame.isProc {
		return nil
	}
	for _, name := range names {
		if err := i.ObjMakeUpvar(nil, NewString(name), nil, GlobalOnly, tail(name), 0); err != nil {
			return err
		}
	}
	return nil
}

// Variable declares name as a variable of the current namespace, setting
// it to value when value is not nil. Inside a procedure a local of the
// same name is linked to it. The declaration keeps the variable alive
// until it is unset or its namespace is deleted.
func (i *Interp) Variable(name string, value *Obj) error {
	nameObj := NewString(name)
	ref, err := i.lookupVar(nameObj, nil, NamespaceOnly, "define", true, false)
	if err != nil {
		return err
	}
	v := ref.v
	if ref.arr != nil {
		cleanupVar(v, ref.arr)
		return varErr("define", name, nil, ErrIsArrayElement)
	}
	if v.flags&flagNamespaceVar == 0 {
		v.flags |= flagNamespaceVar
		v.refCount++
	}
	if value != nil {
		if _, err := i.setVarRef(ref, value, NamespaceOnly); err != nil {
			return err
		}
	}
	if i.varFrame.isProc {
		return i.ptrMakeUpvar(v, tail(name), 0)
	}
	return nil
}
