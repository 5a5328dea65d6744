package tclcore

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/feather-lang/tclcore/internal/hashtab"
)

// ArraySearch is an open element-by-element enumeration of an array.
// Searches are named by tokens of the form "s-<id>-<array>". Adding an
// element to the array or unsetting it ends every search on it.
type ArraySearch struct {
	id    int
	token string
	array *Var
	next  *hashtab.Entry[*Var]
}

// Token returns the identifier handed out by startsearch.
func (s *ArraySearch) Token() string { return s.token }

// MatchMode selects how ArrayNames interprets its pattern.
type MatchMode int

const (
	MatchGlob MatchMode = iota
	MatchExact
	MatchRegexp
)

// ParseMatchMode parses the option word taken by array names.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "-exact":
		return MatchExact, nil
	case "-glob":
		return MatchGlob, nil
	case "-regexp":
		return MatchRegexp, nil
	}
	return 0, fmt.Errorf("bad option %q: must be -exact, -glob, or -regexp", s)
}

func (i *Interp) deleteSearches(v *Var) {
	if len(v.searches) == 0 {
		return
	}
	i.logger.Debug("invalidating array searches", "array", v.Name(), "searches", len(v.searches))
	v.searches = nil
}

// deleteArray unsets every element of arr, which has already been detached
// from its variable. Element unset traces fire with the element value gone.
// Elements still referenced by links stay behind as dangling cells.
func (i *Interp) deleteArray(part1 string, arr *Var, flags VarFlags) {
	i.deleteSearches(arr)
	t := arr.elements
	if t == nil {
		return
	}
	i.logger.Debug("deleting array", "array", part1, "elements", t.Len())
	for e := t.First(); e != nil; e = t.First() {
		el := e.Value
		elem := e.Key()
		if el.state == stateScalar && el.value != nil {
			el.value.DecrRef()
		}
		el.clear()
		if len(el.traces) > 0 {
			el.flags &^= flagTraceActive
			if el.hasTraces(TraceUnset) {
				if err := i.callVarTraces(nil, el, part1, &elem, TraceUnset|TraceDestroyed, flags); err != nil {
					i.logger.Debug("unset trace failed", "var", part1+"("+elem+")", "error", err)
				}
			}
			for _, tr := range el.traces {
				tr.removed = true
			}
			el.traces = nil
		}
		if el.state == stateScalar && el.value != nil {
			el.value.DecrRef()
		}
		el.clear()
		if el.flags&flagNamespaceVar != 0 {
			el.flags &^= flagNamespaceVar
			el.refCount--
		}
		t.Delete(e)
	}
	arr.elements = nil
}

// locateArray resolves name and fires its array traces. It returns nil
// without error when name does not denote an array.
func (i *Interp) locateArray(name string) (*Var, error) {
	ref, err := i.lookupVar(NewString(name), nil, 0, "read", false, false)
	if err != nil {
		return nil, nil
	}
	v := ref.v
	if v.hasTraces(TraceArray) && (v.state == stateArray || v.state == stateUndefined) {
		if err := i.callVarTraces(ref.arr, v, name, nil, TraceArray, 0); err != nil {
			return nil, varErr("trace array", name, nil, err)
		}
	}
	if v.state != stateArray {
		return nil, nil
	}
	return v, nil
}

func notArray(name string) error {
	return errorf(ErrVarNotArray, "%q isn't an array", name)
}

// ArrayExists reports whether name is an array variable.
func (i *Interp) ArrayExists(name string) (bool, error) {
	v, err := i.locateArray(name)
	return v != nil, err
}

// ArraySize returns the number of defined elements, 0 if name is not an
// array.
func (i *Interp) ArraySize(name string) (int, error) {
	v, err := i.locateArray(name)
	if v == nil || err != nil {
		return 0, err
	}
	return v.Len(), nil
}

func (i *Interp) matcherFor(mode MatchMode, pattern string) (func(string) bool, error) {
	if pattern == "" && mode == MatchGlob {
		return func(string) bool { return true }, nil
	}
	switch mode {
	case MatchExact:
		return func(s string) bool { return s == pattern }, nil
	case MatchRegexp:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("couldn't compile regular expression pattern: %w", err)
		}
		return re.MatchString, nil
	}
	return func(s string) bool { return i.Match(pattern, s) }, nil
}

// ArrayNames returns the names of the defined elements matching pattern.
// An empty glob pattern matches every element.
func (i *Interp) ArrayNames(name string, mode MatchMode, pattern string) ([]string, error) {
	match, err := i.matcherFor(mode, pattern)
	if err != nil {
		return nil, err
	}
	v, err := i.locateArray(name)
	if v == nil || err != nil {
		return nil, err
	}
	var out []string
	for e := v.elements.First(); e != nil; e = v.elements.Next(e) {
		if !e.Value.IsUndefined() && match(e.Key()) {
			out = append(out, e.Key())
		}
	}
	return out, nil
}

// ArrayGet returns a list of element names and values matching the glob
// pattern. Read traces fire on every element returned.
func (i *Interp) ArrayGet(name, pattern string) (*Obj, error) {
	names, err := i.ArrayNames(name, MatchGlob, pattern)
	if err != nil {
		return nil, err
	}
	items := make([]*Obj, 0, 2*len(names))
	for _, elem := range names {
		val, err := i.ObjGetVar2(NewString(name), NewString(elem), 0)
		if err != nil {
			if errors.Is(err, ErrNoSuchElement) || errors.Is(err, ErrNoSuchVariable) {
				continue
			}
			return nil, err
		}
		items = append(items, NewString(elem), val)
	}
	return NewList(items...), nil
}

// ArraySet sets elements of name from a list of names and values, turning
// an undefined variable into an array. An empty list creates an empty
// array.
func (i *Interp) ArraySet(name string, list *Obj) error {
	items, err := list.List()
	if err != nil {
		return err
	}
	if len(items)%2 != 0 {
		return errors.New("list must have an even number of elements")
	}
	ref, err := i.lookupVar(NewString(name), nil, 0, "set", true, true)
	if err != nil {
		return err
	}
	if ref.arr != nil {
		cleanupVar(ref.v, ref.arr)
		return varErr("set", name, nil, ErrVarNotArray)
	}
	v := ref.v
	switch {
	case v.state == stateUndefined:
		if v.Deleted() {
			if v.IsArrayElement() {
				return varErr("array set", name, nil, ErrDanglingElement)
			}
			return varErr("array set", name, nil, ErrDanglingVar)
		}
		v.makeArray()
	case v.state != stateArray:
		return varErr("array set", name, nil, ErrVarNotArray)
	}

	v.refCount++
	defer func() { v.refCount-- }()
	for idx := 0; idx < len(items); idx += 2 {
		elem := items[idx].String()
		if v.state != stateArray {
			return varErr("set", name, &elem, ErrVarNotArray)
		}
		el, err := i.lookupArrayElement(v, name, elem, "set", true, true)
		if err != nil {
			return err
		}
		if _, err := i.setVarRef(varRef{v: el, arr: v, part1: name, part2: &elem}, items[idx+1], 0); err != nil {
			return err
		}
	}
	return nil
}

// ArrayUnset unsets the elements matching the glob pattern, or the whole
// array when pattern is empty. A name that is not an array is ignored.
func (i *Interp) ArrayUnset(name, pattern string) error {
	v, err := i.locateArray(name)
	if v == nil || err != nil {
		return err
	}
	if pattern == "" {
		return i.ObjUnsetVar2(NewString(name), nil, 0)
	}
	v.refCount++
	defer func() { v.refCount-- }()
	for _, e := range v.elements.Entries() {
		if !e.Live() || e.Value.IsUndefined() || !i.Match(pattern, e.Key()) {
			continue
		}
		if v.state != stateArray {
			break
		}
		elem := e.Key()
		if err := i.ObjUnsetVar2(NewString(name), NewString(elem), 0); err != nil &&
			!errors.Is(err, ErrNoSuchElement) && !errors.Is(err, ErrNoSuchVariable) {
			return err
		}
	}
	return nil
}

// ArrayStats returns the bucket statistics of the element table.
func (i *Interp) ArrayStats(name string) (string, error) {
	v, err := i.locateArray(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", notArray(name)
	}
	return v.elements.Stats(), nil
}

// ArrayStartSearch opens a search over the elements of name and returns
// its token.
func (i *Interp) ArrayStartSearch(name string) (string, error) {
	v, err := i.locateArray(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", notArray(name)
	}
	id := 1
	if n := len(v.searches); n > 0 {
		id = v.searches[n-1].id + 1
	}
	s := &ArraySearch{
		id:    id,
		token: "s-" + strconv.Itoa(id) + "-" + name,
		array: v,
		next:  v.elements.First(),
	}
	v.searches = append(v.searches, s)
	return s.token, nil
}

// findSearch resolves a search token against the array it must belong to.
func (i *Interp) findSearch(name, token string) (*Var, *ArraySearch, error) {
	v, err := i.locateArray(name)
	if err != nil {
		return nil, nil, err
	}
	if v == nil {
		return nil, nil, notArray(name)
	}
	rest, ok := strings.CutPrefix(token, "s-")
	if !ok {
		return nil, nil, fmt.Errorf("illegal search identifier %q", token)
	}
	digits, arrName, ok := strings.Cut(rest, "-")
	id, convErr := strconv.Atoi(digits)
	if !ok || convErr != nil || id <= 0 {
		return nil, nil, fmt.Errorf("illegal search identifier %q", token)
	}
	if arrName != name {
		return nil, nil, fmt.Errorf("search identifier %q isn't for variable %q", token, name)
	}
	for _, s := range v.searches {
		if s.id == id {
			return v, s, nil
		}
	}
	return nil, nil, fmt.Errorf("couldn't find search %q", token)
}

// skipUndefined moves the cursor past elements that are not set.
func (s *ArraySearch) skipUndefined() {
	for s.next != nil && (!s.next.Live() || s.next.Value.IsUndefined()) {
		s.next = s.array.elements.Next(s.next)
	}
}

// ArrayAnyMore reports whether the search has elements left.
func (i *Interp) ArrayAnyMore(name, token string) (bool, error) {
	_, s, err := i.findSearch(name, token)
	if err != nil {
		return false, err
	}
	s.skipUndefined()
	return s.next != nil, nil
}

// ArrayNextElement returns the next element name of the search, or "" once
// the search is exhausted.
func (i *Interp) ArrayNextElement(name, token string) (string, error) {
	_, s, err := i.findSearch(name, token)
	if err != nil {
		return "", err
	}
	s.skipUndefined()
	if s.next == nil {
		return "", nil
	}
	elem := s.next.Key()
	s.next = s.array.elements.Next(s.next)
	return elem, nil
}

// ArrayDoneSearch closes the search.
func (i *Interp) ArrayDoneSearch(name, token string) error {
	v, s, err := i.findSearch(name, token)
	if err != nil {
		return err
	}
	for idx, cur := range v.searches {
		if cur == s {
			v.searches = append(v.searches[:idx:idx], v.searches[idx+1:]...)
			break
		}
	}
	return nil
}
