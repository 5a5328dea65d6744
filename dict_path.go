package tclcore

import (
	"errors"
	"fmt"
)

// ErrWrongType reports a value that cannot be used as a dictionary.
var ErrWrongType = errors.New("value is not a dictionary")

type wrongTypeError struct{ reason string }

func wrongType(reason string) error { return &wrongTypeError{reason: reason} }

func (e *wrongTypeError) Error() string        { return e.reason }
func (e *wrongTypeError) Is(target error) bool { return target == ErrWrongType }

// KeyError reports a key missing from a dictionary.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q not known in dictionary", e.Key)
}

// PathMode selects how TraceDictPath treats the dictionaries it walks.
type PathMode int

const (
	// PathRead fails with a KeyError when a key is missing.
	PathRead PathMode = 0
	// PathExists reports a missing key through DictPath.Exists instead of
	// failing.
	PathExists PathMode = 1
	// PathUpdate unshares every dictionary on the path so the leaf can be
	// modified in place.
	PathUpdate PathMode = 2
	// PathCreate is PathUpdate that also creates missing levels.
	PathCreate PathMode = 2 | 4
)

// DictPath is the outcome of TraceDictPath.
type DictPath struct {
	// Leaf is the dictionary value at the end of the path. It is nil when
	// Exists is false.
	Leaf *Obj
	// Exists is false only in PathExists mode, when some key on the way
	// is missing.
	Exists bool

	// chain holds every dictionary value walked, root first. It lives only
	// as long as the path and is filled in update modes.
	chain []*Obj
}

// TraceDictPath walks the nested dictionaries of root following keys.
//
// In update modes every dictionary on the way is unshared, with the new
// copy stored back into its parent, so the returned leaf may be modified in
// place. After modifying it the caller must call Invalidate so the cached
// string of every ancestor is dropped.
func TraceDictPath(root *Obj, keys []*Obj, mode PathMode) (*DictPath, error) {
	dict, err := asDict(root)
	if err != nil {
		return nil, err
	}
	p := &DictPath{Exists: true}
	update := mode&PathUpdate != 0
	if update {
		p.chain = append(p.chain, root)
	}

	cur := root
	for _, key := range keys {
		e := dict.table.Find(key.String())
		var next *Obj
		if e == nil {
			if mode&4 == 0 {
				if mode == PathExists {
					return &DictPath{Exists: false}, nil
				}
				return nil, &KeyError{Key: key.String()}
			}
			next = NewDict()
			dict.put(key, next)
		} else {
			next = e.Value.value
			if _, err := asDict(next); err != nil {
				return nil, err
			}
			if update && next.IsShared() {
				dup := next.Duplicate()
				dict.put(key, dup)
				next = dup
			}
		}
		dict, _ = asDict(next)
		cur = next
		if update {
			p.chain = append(p.chain, cur)
		}
	}
	p.Leaf = cur
	return p, nil
}

// Invalidate drops the cached string of every dictionary on the path and
// advances their epochs. It is a no-op for paths walked in read modes.
func (p *DictPath) Invalidate() {
	for i := len(p.chain) - 1; i >= 0; i-- {
		o := p.chain[i]
		o.InvalidateStringRep()
		if d, ok := o.intrep.(*DictType); ok {
			d.epoch++
		}
	}
}

// DictGetKeyList returns the value at the nested path keys, or nil if the
// final key is absent. Missing intermediate keys are errors.
func DictGetKeyList(d *Obj, keys []*Obj) (*Obj, error) {
	if len(keys) == 0 {
		return d, nil
	}
	p, err := TraceDictPath(d, keys[:len(keys)-1], PathRead)
	if err != nil {
		return nil, err
	}
	return DictGet(p.Leaf, keys[len(keys)-1])
}
