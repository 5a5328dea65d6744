package tclcore

import (
	"sort"
	"strings"

	"github.com/feather-lang/tclcore/internal/hashtab"
)

// VarResolver gets the first chance to resolve a variable name in a
// namespace. It returns the cell, or nil to let the standard lookup
// proceed, or an error to fail the lookup.
type VarResolver func(i *Interp, name string, ns *Namespace, flags VarFlags) (*Var, error)

// Namespace is a named scope of variables.
type Namespace struct {
	name     string
	fullName string
	parent   *Namespace
	children map[string]*Namespace
	vars     *hashtab.Table[*Var]
	resolver VarResolver
	deleted  bool
}

func newNamespace(name string, parent *Namespace) *Namespace {
	ns := &Namespace{
		name:     name,
		parent:   parent,
		children: make(map[string]*Namespace),
		vars:     hashtab.New[*Var](),
	}
	switch {
	case parent == nil:
		ns.fullName = "::"
	case parent.parent == nil:
		ns.fullName = "::" + name
	default:
		ns.fullName = parent.fullName + "::" + name
	}
	return ns
}

// Name returns the last component of the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// FullName returns the fully qualified name, "::" for the global namespace.
func (ns *Namespace) FullName() string { return ns.fullName }

// Parent returns the enclosing namespace, nil for the global namespace.
func (ns *Namespace) Parent() *Namespace { return ns.parent }

// Deleted reports whether the namespace has been torn down.
func (ns *Namespace) Deleted() bool { return ns.deleted }

// Children returns the child namespaces sorted by name.
func (ns *Namespace) Children() []*Namespace {
	names := make([]string, 0, len(ns.children))
	for n := range ns.children {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Namespace, len(names))
	for i, n := range names {
		out[i] = ns.children[n]
	}
	return out
}

// SetResolver installs a variable resolver consulted before the standard
// lookup for names resolved in this namespace.
func (ns *Namespace) SetResolver(r VarResolver) { ns.resolver = r }

// FindVar returns the cell stored under name directly in this namespace.
func (ns *Namespace) FindVar(name string) *Var {
	if e := ns.vars.Find(name); e != nil {
		return e.Value
	}
	return nil
}

// VarNames returns the names of the defined variables of the namespace.
func (ns *Namespace) VarNames() []string {
	var out []string
	for e := ns.vars.First(); e != nil; e = ns.vars.Next(e) {
		if !e.Value.IsUndefined() {
			out = append(out, e.Key())
		}
	}
	return out
}

func (ns *Namespace) createVar(name string) *Var {
	e, isNew := ns.vars.Create(name)
	if isNew {
		e.Value = &Var{ns: ns, entry: e, flags: flagInHashTable}
	}
	return e.Value
}

// splitQualified splits a name on runs of two or more colons.
func splitQualified(name string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(name); {
		if name[i] == ':' && i+1 < len(name) && name[i+1] == ':' {
			parts = append(parts, name[start:i])
			for i < len(name) && name[i] == ':' {
				i++
			}
			start = i
			continue
		}
		i++
	}
	return append(parts, name[start:])
}

// qualify resolves the namespace part of a possibly qualified name. ns is
// the namespace relative to ctx, alt the one relative to the global
// namespace when the lookup may fall back to it. Either may be nil when
// the path does not exist.
func (i *Interp) qualify(name string, ctx *Namespace, flags VarFlags) (ns, alt *Namespace, tail string) {
	if flags&GlobalOnly != 0 {
		ctx = i.global
	}
	ns = ctx
	if strings.HasPrefix(name, "::") {
		ns = i.global
		name = strings.TrimLeft(name, ":")
	} else if flags&NamespaceOnly == 0 && ctx != i.global {
		alt = i.global
	}

	parts := splitQualified(name)
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			continue
		}
		if ns != nil {
			ns = ns.children[p]
		}
		if alt != nil {
			alt = alt.children[p]
		}
	}
	return ns, alt, parts[len(parts)-1]
}

func (i *Interp) findNamespaceVar(name string, ctx *Namespace, flags VarFlags) *Var {
	ns, alt, tail := i.qualify(name, ctx, flags)
	for _, n := range []*Namespace{ns, alt} {
		if n == nil {
			continue
		}
		if v := n.FindVar(tail); v != nil {
			return v
		}
	}
	return nil
}

// GlobalNamespace returns the root namespace.
func (i *Interp) GlobalNamespace() *Namespace { return i.global }

// CurrentNamespace returns the namespace of the active variable frame.
func (i *Interp) CurrentNamespace() *Namespace { return i.varFrame.ns }

// FindNamespace looks name up relative to the current namespace, then
// relative to the global namespace. It returns nil if neither exists.
func (i *Interp) FindNamespace(name string) *Namespace {
	if strings.Trim(name, ":") == "" {
		return i.global
	}
	ns, alt, tail := i.qualify(name, i.CurrentNamespace(), 0)
	for _, n := range []*Namespace{ns, alt} {
		if n == nil {
			continue
		}
		if tail == "" {
			return n
		}
		if c := n.children[tail]; c != nil {
			return c
		}
	}
	return nil
}

// CreateNamespace returns the namespace called name, creating it and any
// missing parents. Relative names are taken relative to the current
// namespace.
func (i *Interp) CreateNamespace(name string) *Namespace {
	ns := i.CurrentNamespace()
	if strings.HasPrefix(name, "::") {
		ns = i.global
	}
	for _, p := range splitQualified(strings.TrimLeft(name, ":")) {
		if p == "" {
			continue
		}
		c := ns.children[p]
		if c == nil {
			c = newNamespace(p, ns)
			ns.children[p] = c
		}
		ns = c
	}
	return ns
}

// DeleteNamespace tears down ns and its children. Variables are unset,
// firing their unset traces; cells kept alive by links from elsewhere
// are left behind as deleted cells. The global namespace cannot be
// deleted.
func (i *Interp) DeleteNamespace(ns *Namespace) {
	if ns == nil || ns.deleted || ns == i.global {
		return
	}
	for _, c := range ns.Children() {
		i.DeleteNamespace(c)
	}
	i.logger.Debug("deleting namespace", "namespace", ns.fullName, "vars", ns.vars.Len())
	i.deleteVarTable(ns.vars, NamespaceOnly)
	ns.deleted = true
	if ns.parent != nil {
		delete(ns.parent.children, ns.name)
	}
}
