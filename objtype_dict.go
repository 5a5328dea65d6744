package tclcore

import (
	"strings"

	"github.com/feather-lang/tclcore/internal/hashtab"
)

type dictEntry struct {
	key   *Obj
	value *Obj
}

// DictType is the internal representation for dictionary values.
//
// The payload owns one reference on every key and value it holds. Its own
// reference count covers the owning value plus every open search, so a
// search keeps the payload alive even if the owner shimmers or is freed.
type DictType struct {
	table    *hashtab.Table[dictEntry]
	epoch    int
	refCount int
}

func newDictType() *DictType {
	return &DictType{table: hashtab.New[dictEntry](), refCount: 1}
}

func (t *DictType) Name() string { return "dict" }

func (t *DictType) Dup() ObjType {
	c := &DictType{table: t.table.Clone(), refCount: 1}
	for e := c.table.First(); e != nil; e = c.table.Next(e) {
		e.Value.key.IncrRef()
		e.Value.value.IncrRef()
	}
	return c
}

func (t *DictType) UpdateString() string {
	var b strings.Builder
	for e := t.table.First(); e != nil; e = t.table.Next(e) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(QuoteElement(e.Value.key.String()))
		b.WriteByte(' ')
		b.WriteString(QuoteElement(e.Value.value.String()))
	}
	return b.String()
}

func (t *DictType) IntoList() ([]*Obj, bool) {
	list := make([]*Obj, 0, t.table.Len()*2)
	for e := t.table.First(); e != nil; e = t.table.Next(e) {
		list = append(list, e.Value.key, e.Value.value)
	}
	return list, true
}

// Release drops one reference on the payload. The last release drops the
// references held on every key and value.
func (t *DictType) Release() {
	if t.refCount <= 0 {
		return
	}
	t.refCount--
	if t.refCount > 0 {
		return
	}
	for e := t.table.First(); e != nil; e = t.table.Next(e) {
		e.Value.key.DecrRef()
		e.Value.value.DecrRef()
	}
}

// Len returns the number of entries.
func (t *DictType) Len() int { return t.table.Len() }

// Epoch returns the modification counter of the payload.
func (t *DictType) Epoch() int { return t.epoch }

// Keys returns the keys in iteration order.
func (t *DictType) Keys() []*Obj {
	keys := make([]*Obj, 0, t.table.Len())
	for e := t.table.First(); e != nil; e = t.table.Next(e) {
		keys = append(keys, e.Value.key)
	}
	return keys
}

// Lookup returns the value stored under key, or nil.
func (t *DictType) Lookup(key string) *Obj {
	if e := t.table.Find(key); e != nil {
		return e.Value.value
	}
	return nil
}

// Stats returns the bucket statistics of the payload table.
func (t *DictType) Stats() string { return t.table.Stats() }

func (t *DictType) put(key, value *Obj) {
	e, isNew := t.table.Create(key.String())
	value.IncrRef()
	if isNew {
		key.IncrRef()
		e.Value.key = key
	} else {
		e.Value.value.DecrRef()
	}
	e.Value.value = value
	t.epoch++
}

func (t *DictType) remove(key string) bool {
	e := t.table.Find(key)
	if e == nil {
		return false
	}
	t.table.Delete(e)
	e.Value.key.DecrRef()
	e.Value.value.DecrRef()
	t.epoch++
	return true
}

// NewDict returns an empty dictionary value.
func NewDict() *Obj {
	return NewObj(newDictType())
}

// asDict converts o to a dictionary, shimmering if needed.
func asDict(o *Obj) (*DictType, error) {
	if o == nil {
		return nil, wrongType("missing value to go with key")
	}
	if d, ok := o.intrep.(*DictType); ok {
		return d, nil
	}

	d := newDictType()
	if l, ok := o.intrep.(ListType); ok {
		if len(l)%2 != 0 {
			return nil, wrongType("missing value to go with key")
		}
		for i := 0; i < len(l); i += 2 {
			d.put(l[i], l[i+1])
		}
	} else {
		parts, err := splitElements(o.String(), "dict")
		if err != nil {
			return nil, wrongType(err.Error())
		}
		if len(parts)%2 != 0 {
			return nil, wrongType("missing value to go with key")
		}
		for i := 0; i < len(parts); i += 2 {
			d.put(NewString(parts[i]), NewString(parts[i+1]))
		}
	}
	d.epoch = 0
	o.setIntRep(d)
	return d, nil
}

// DictPut stores value under key in d, replacing any previous value.
// d must be unshared.
func DictPut(d, key, value *Obj) error {
	if d.IsShared() {
		panic("DictPut called with shared object")
	}
	dict, err := asDict(d)
	if err != nil {
		return err
	}
	d.InvalidateStringRep()
	dict.put(key, value)
	return nil
}

// DictGet returns the value stored under key, or nil when the key is
// absent. An error is returned only if d is not a dictionary.
func DictGet(d, key *Obj) (*Obj, error) {
	dict, err := asDict(d)
	if err != nil {
		return nil, err
	}
	return dict.Lookup(key.String()), nil
}

// DictRemove deletes key from d. Removing an absent key is not an error.
// d must be unshared.
func DictRemove(d, key *Obj) error {
	if d.IsShared() {
		panic("DictRemove called with shared object")
	}
	dict, err := asDict(d)
	if err != nil {
		return err
	}
	if dict.remove(key.String()) {
		d.InvalidateStringRep()
	}
	return nil
}

// DictSize returns the number of entries in d.
func DictSize(d *Obj) (int, error) {
	dict, err := asDict(d)
	if err != nil {
		return 0, err
	}
	return dict.Len(), nil
}

// DictPutKeyList stores value at the nested path keys, creating
// intermediate dictionaries as needed. d must be unshared.
func DictPutKeyList(d *Obj, keys []*Obj, value *Obj) error {
	if d.IsShared() {
		panic("DictPutKeyList called with shared object")
	}
	if len(keys) == 0 {
		panic("DictPutKeyList called with empty key list")
	}
	path, err := TraceDictPath(d, keys[:len(keys)-1], PathCreate)
	if err != nil {
		return err
	}
	dict, err := asDict(path.Leaf)
	if err != nil {
		return err
	}
	dict.put(keys[len(keys)-1], value)
	path.Invalidate()
	return nil
}

// DictRemoveKeyList removes the entry at the nested path keys. Every
// intermediate key must exist. d must be unshared.
func DictRemoveKeyList(d *Obj, keys []*Obj) error {
	if d.IsShared() {
		panic("DictRemoveKeyList called with shared object")
	}
	if len(keys) == 0 {
		panic("DictRemoveKeyList called with empty key list")
	}
	path, err := TraceDictPath(d, keys[:len(keys)-1], PathUpdate)
	if err != nil {
		return err
	}
	dict, err := asDict(path.Leaf)
	if err != nil {
		return err
	}
	dict.remove(keys[len(keys)-1].String())
	path.Invalidate()
	return nil
}
