package tclcore

import (
	"strconv"
	"strings"

	"github.com/feather-lang/tclcore/internal/hashtab"
)

// CallFrame is one level of the call stack.
//
// A proc frame has local variables: a fixed set of slots named when the
// frame is pushed, plus a table of locals created at run time. A namespace
// frame has none; names resolve in its namespace.
type CallFrame struct {
	ns        *Namespace
	isProc    bool
	level     int
	caller    *CallFrame
	callerVar *CallFrame

	localNames []string
	locals     []*Var
	table      *hashtab.Table[*Var]
}

// Level returns the frame's level, 0 for the global frame.
func (f *CallFrame) Level() int { return f.level }

// Namespace returns the namespace names resolve in.
func (f *CallFrame) Namespace() *Namespace { return f.ns }

// IsProc reports whether the frame has local variables.
func (f *CallFrame) IsProc() bool { return f.isProc }

// Local returns the slot cell for a name given when the frame was pushed.
func (f *CallFrame) Local(name string) *Var {
	for idx, n := range f.localNames {
		if n == name {
			return f.locals[idx]
		}
	}
	return nil
}

// LocalNames returns the names of the defined local variables.
func (f *CallFrame) LocalNames() []string {
	var out []string
	for idx, v := range f.locals {
		if !v.IsUndefined() {
			out = append(out, f.localNames[idx])
		}
	}
	for e := f.table.First(); e != nil; e = f.table.Next(e) {
		if !e.Value.IsUndefined() {
			out = append(out, e.Key())
		}
	}
	return out
}

func (i *Interp) pushFrame(ns *Namespace, isProc bool, locals []string) *CallFrame {
	f := &CallFrame{
		ns:        ns,
		isProc:    isProc,
		level:     i.varFrame.level + 1,
		caller:    i.frame,
		callerVar: i.varFrame,
	}
	if isProc {
		f.localNames = append([]string(nil), locals...)
		f.locals = make([]*Var, len(locals))
		for idx, n := range locals {
			f.locals[idx] = &Var{name: n}
		}
	}
	i.frame = f
	i.varFrame = f
	i.depth++
	return f
}

// PushProcFrame enters a procedure body running in ns. locals names the
// fixed local slots, which start out undefined.
func (i *Interp) PushProcFrame(ns *Namespace, locals []string) *CallFrame {
	if ns == nil {
		ns = i.CurrentNamespace()
	}
	return i.pushFrame(ns, true, locals)
}

// PushNamespaceFrame enters a frame whose names resolve in ns.
func (i *Interp) PushNamespaceFrame(ns *Namespace) *CallFrame {
	return i.pushFrame(ns, false, nil)
}

// PopFrame leaves the current frame. Local variables are deleted, firing
// unset traces and releasing link targets.
func (i *Interp) PopFrame() {
	f := i.frame
	if f == i.rootFrame {
		return
	}
	if f.isProc {
		i.deleteLocals(f)
	}
	i.frame = f.caller
	i.varFrame = f.callerVar
	i.depth--
}

// Depth returns the number of frames above the global frame.
func (i *Interp) Depth() int { return i.depth }

// Frame returns the frame whose variables are in scope.
func (i *Interp) Frame() *CallFrame { return i.varFrame }

// GetFrame resolves a level specification: "#N" is absolute, "N" is
// relative to the current frame, "" means one level up.
func (i *Interp) GetFrame(level string) (*CallFrame, error) {
	cur := i.varFrame.level
	target := cur - 1
	switch {
	case level == "":
	case strings.HasPrefix(level, "#"):
		n, err := strconv.Atoi(level[1:])
		if err != nil || n < 0 {
			return nil, errorf(ErrBadLevel, "bad level %q", level)
		}
		target = n
	default:
		n, err := strconv.Atoi(level)
		if err != nil || n < 0 || level[0] == '+' || level[0] == '-' {
			return nil, errorf(ErrBadLevel, "bad level %q", level)
		}
		target = cur - n
	}
	if target < 0 || target > cur {
		return nil, errorf(ErrBadLevel, "bad level %q", level)
	}
	for f := i.varFrame; f != nil; f = f.callerVar {
		if f.level == target {
			return f, nil
		}
	}
	return nil, errorf(ErrBadLevel, "bad level %q", level)
}

// IsLevel reports whether s reads as a level specification.
func IsLevel(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}

// Uplevel runs fn with the variables of the frame named by level in
// scope.
func (i *Interp) Uplevel(level string, fn func() error) error {
	f, err := i.GetFrame(level)
	if err != nil {
		return err
	}
	saved := i.varFrame
	i.varFrame = f
	defer func() { i.varFrame = saved }()
	return fn()
}

func (i *Interp) deleteLocals(f *CallFrame) {
	for idx, v := range f.locals {
		i.deleteVar(v, f.localNames[idx], 0)
	}
	if f.table != nil {
		i.deleteVarTable(f.table, 0)
	}
}

// deleteVarTable unsets every cell of a frame or namespace table and
// removes it. Cells still referenced elsewhere survive as deleted cells.
func (i *Interp) deleteVarTable(t *hashtab.Table[*Var], flags VarFlags) {
	for e := t.First(); e != nil; e = t.First() {
		v := e.Value
		v.refCount++
		i.deleteVar(v, e.Key(), flags)
		v.refCount--
		t.Delete(e)
	}
}

func (i *Interp) deleteVar(v *Var, name string, flags VarFlags) {
	i.unsetVarStruct(v, nil, name, nil, flags)
	// An unset trace may have brought the variable back.
	if v.state == stateScalar && v.value != nil {
		v.value.DecrRef()
	}
	v.clear()
}
