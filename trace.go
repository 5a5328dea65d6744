package tclcore

// TraceOps selects the events a variable trace fires on.
type TraceOps uint8

const (
	TraceRead TraceOps = 1 << iota
	TraceWrite
	TraceUnset
	TraceArray
	// TraceDestroyed accompanies TraceUnset when the trace is being
	// removed along with the variable.
	TraceDestroyed
)

// String renders ops as a list of the words used by the trace command.
func (ops TraceOps) String() string {
	var words []string
	if ops&TraceArray != 0 {
		words = append(words, "array")
	}
	if ops&TraceRead != 0 {
		words = append(words, "read")
	}
	if ops&TraceWrite != 0 {
		words = append(words, "write")
	}
	if ops&TraceUnset != 0 {
		words = append(words, "unset")
	}
	return MergeList(words)
}

// VarTraceProc is called when a traced event happens. name1 is the
// variable or array name, name2 the element name or "" for scalars.
// Returning an error aborts reads and writes; errors from unset traces
// are ignored.
type VarTraceProc func(i *Interp, name1, name2 string, ops TraceOps) error

// VarTrace is a registered trace. It doubles as the handle for removal.
type VarTrace struct {
	ops     TraceOps
	proc    VarTraceProc
	removed bool

	// script is the command prefix of traces added by the trace command.
	script *Obj
}

// Ops returns the events the trace fires on.
func (t *VarTrace) Ops() TraceOps { return t.ops }

// AddTrace registers a trace on the cell. The newest trace fires first.
func (v *Var) AddTrace(ops TraceOps, proc VarTraceProc) *VarTrace {
	t := &VarTrace{ops: ops, proc: proc}
	v.traces = append([]*VarTrace{t}, v.traces...)
	return t
}

// RemoveTrace unregisters t. A trace removed while traces are being
// called is not called afterwards.
func (v *Var) RemoveTrace(t *VarTrace) bool {
	for idx, cur := range v.traces {
		if cur == t {
			t.removed = true
			v.traces = append(v.traces[:idx:idx], v.traces[idx+1:]...)
			return true
		}
	}
	return false
}

// Traces returns the registered traces, newest first.
func (v *Var) Traces() []*VarTrace {
	return append([]*VarTrace(nil), v.traces...)
}

// TraceVar2 registers a trace on a variable or element, creating an
// undefined cell when needed so the trace can see the variable come into
// existence.
func (i *Interp) TraceVar2(part1, part2 *Obj, flags VarFlags, ops TraceOps, proc VarTraceProc) (*VarTrace, error) {
	ref, err := i.lookupVar(part1, part2, flags&scopeFlags, "trace", true, true)
	if err != nil {
		return nil, err
	}
	return ref.v.AddTrace(ops, proc), nil
}

// TraceVar registers a trace on the variable called name.
func (i *Interp) TraceVar(name string, ops TraceOps, proc VarTraceProc) (*VarTrace, error) {
	return i.TraceVar2(NewString(name), nil, 0, ops, proc)
}

// UntraceVar2 removes a trace registered with TraceVar2. The cell is
// released if it is undefined and nothing else holds it.
func (i *Interp) UntraceVar2(part1, part2 *Obj, flags VarFlags, t *VarTrace) error {
	ref, err := i.lookupVar(part1, part2, flags&scopeFlags, "untrace", false, false)
	if err != nil {
		return err
	}
	ref.v.RemoveTrace(t)
	cleanupVar(ref.v, ref.arr)
	return nil
}

// UntraceVar removes a trace from the variable called name.
func (i *Interp) UntraceVar(name string, t *VarTrace) error {
	return i.UntraceVar2(NewString(name), nil, 0, t)
}

// VarTraces returns the traces on a variable, newest first.
func (i *Interp) VarTraces(name string) ([]*VarTrace, error) {
	ref, err := i.lookupVar(NewString(name), nil, 0, "trace", false, false)
	if err != nil {
		return nil, err
	}
	return ref.v.Traces(), nil
}

// callVarTraces fires the traces of arr, then those of v, that match ops.
// A cell whose traces are already running does not fire again. The first
// error aborts the remaining traces unless ops is an unset.
func (i *Interp) callVarTraces(arr, v *Var, part1 string, part2 *string, ops TraceOps, flags VarFlags) error {
	if v.flags&flagTraceActive != 0 {
		return nil
	}
	v.flags |= flagTraceActive
	v.refCount++
	if arr != nil {
		arr.refCount++
	}
	defer func() {
		v.flags &^= flagTraceActive
		v.refCount--
		if arr != nil {
			arr.refCount--
		}
	}()

	name2 := ""
	if part2 != nil {
		name2 = *part2
	}
	var firstErr error
	fire := func(traces []*VarTrace) bool {
		for _, t := range append([]*VarTrace(nil), traces...) {
			if t.removed || t.ops&ops == 0 {
				continue
			}
			err := t.proc(i, part1, name2, ops)
			if err == nil {
				continue
			}
			if ops&TraceUnset != 0 {
				if firstErr == nil {
					firstErr = &traceError{cause: err}
				}
				continue
			}
			firstErr = &traceError{cause: err}
			return false
		}
		return true
	}

	if arr != nil && len(arr.traces) > 0 {
		if !fire(arr.traces) {
			return firstErr
		}
	}
	if len(v.traces) > 0 {
		fire(v.traces)
	}
	return firstErr
}
