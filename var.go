package tclcore

import "github.com/feather-lang/tclcore/internal/hashtab"

type varState uint8

const (
	stateUndefined varState = iota
	stateScalar
	stateArray
	stateLink
)

type varFlags uint8

const (
	flagArrayElement varFlags = 1 << iota
	flagInHashTable
	flagNamespaceVar
	flagTraceActive
)

// Var is a variable cell. It is undefined, holds a scalar value, holds an
// array of element cells, or links to another cell.
//
// refCount counts bindings to the cell (links pointing at it, namespace
// declarations, operations in progress), not sharers of its value.
type Var struct {
	state    varState
	flags    varFlags
	value    *Obj
	elements *hashtab.Table[*Var]
	link     *Var
	traces   []*VarTrace
	searches []*ArraySearch
	refCount int

	ns    *Namespace // nil for proc locals
	entry *hashtab.Entry[*Var]
	name  string
}

// NewVar returns an undefined cell that lives in no table. Variable
// resolvers use it to hand out cells they manage themselves.
func NewVar(name string) *Var {
	return &Var{name: name}
}

// IsUndefined reports whether the cell holds no value. Unset cells that
// are still referenced stay in this state.
func (v *Var) IsUndefined() bool { return v.state == stateUndefined }

// IsScalar reports whether the cell holds a scalar value.
func (v *Var) IsScalar() bool { return v.state == stateScalar }

// IsArray reports whether the cell holds an array.
func (v *Var) IsArray() bool { return v.state == stateArray }

// IsLink reports whether the cell refers to another cell.
func (v *Var) IsLink() bool { return v.state == stateLink }

// IsArrayElement reports whether the cell is an element of an array.
func (v *Var) IsArrayElement() bool { return v.flags&flagArrayElement != 0 }

// RefCount returns the number of bindings holding the cell.
func (v *Var) RefCount() int { return v.refCount }

// Value returns the scalar value, or nil.
func (v *Var) Value() *Obj {
	if v.state != stateScalar {
		return nil
	}
	return v.value
}

// Link returns the target of a link cell, or nil.
func (v *Var) Link() *Var {
	if v.state != stateLink {
		return nil
	}
	return v.link
}

// Name returns the name the cell is stored under.
func (v *Var) Name() string {
	if v.entry != nil {
		return v.entry.Key()
	}
	return v.name
}

// Namespace returns the namespace owning the cell, or nil for locals.
func (v *Var) Namespace() *Namespace { return v.ns }

// Deleted reports whether the table holding the cell is gone while the
// cell is still kept alive by a link.
func (v *Var) Deleted() bool {
	return v.flags&flagInHashTable != 0 && !v.entry.Live()
}

// Len returns the number of defined elements of an array cell.
func (v *Var) Len() int {
	n := 0
	for e := v.elements.First(); e != nil; e = v.elements.Next(e) {
		if !e.Value.IsUndefined() {
			n++
		}
	}
	return n
}

func (v *Var) hasTraces(ops TraceOps) bool {
	for _, t := range v.traces {
		if t.ops&ops != 0 {
			return true
		}
	}
	return false
}

func (v *Var) setScalar(value *Obj) {
	if v.value == value && v.state == stateScalar {
		return
	}
	value.IncrRef()
	if v.value != nil {
		v.value.DecrRef()
	}
	v.value = value
	v.state = stateScalar
}

func (v *Var) makeArray() {
	v.state = stateArray
	v.elements = hashtab.New[*Var]()
}

func (v *Var) makeLink(target *Var) {
	v.state = stateLink
	v.link = target
}

// clear forgets contents without touching reference counts.
func (v *Var) clear() {
	v.state = stateUndefined
	v.value = nil
	v.elements = nil
	v.link = nil
}

// removable reports whether nothing needs the cell any more.
func (v *Var) removable() bool {
	return v.state == stateUndefined && v.refCount == 0 && len(v.traces) == 0 &&
		v.flags&flagInHashTable != 0 && v.entry.Live()
}

func (v *Var) removeFromTable() {
	v.entry.Remove()
}

// cleanupVar removes v, and then arr, from their tables once they are
// undefined and unreferenced.
func cleanupVar(v, arr *Var) {
	if v.removable() {
		v.removeFromTable()
	}
	if arr != nil && arr.removable() {
		arr.removeFromTable()
	}
}
