package tclcore

import "github.com/feather-lang/tclcore/internal/hashtab"

// DictSearch is an open iteration over a dictionary.
//
// While open, the search pins the dictionary payload. Modifying the
// dictionary during the search is a programming error: the next step
// panics.
type DictSearch struct {
	dict  *DictType
	next  *hashtab.Entry[dictEntry]
	epoch int
	done  bool
}

// DictFirst starts a search over d and returns the first entry. When the
// dictionary is empty, done is true and no pin is taken.
func DictFirst(d *Obj) (s *DictSearch, key, value *Obj, done bool, err error) {
	dict, err := asDict(d)
	if err != nil {
		return nil, nil, nil, true, err
	}
	s = &DictSearch{dict: dict, epoch: dict.epoch}
	first := dict.table.First()
	if first == nil {
		s.done = true
		return s, nil, nil, true, nil
	}
	dict.refCount++
	s.next = dict.table.Next(first)
	return s, first.Value.key, first.Value.value, false, nil
}

// Next advances the search. When the last entry has been returned, the
// search is finished and its pin released.
func (s *DictSearch) Next() (key, value *Obj, done bool) {
	if s.done {
		return nil, nil, true
	}
	if s.dict.epoch != s.epoch {
		panic("concurrent dictionary modification and search")
	}
	e := s.next
	if e == nil {
		s.Done()
		return nil, nil, true
	}
	s.next = s.dict.table.Next(e)
	return e.Value.key, e.Value.value, false
}

// Done terminates the search early. Calling Done on a finished search is
// a no-op.
func (s *DictSearch) Done() {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.dict.Release()
}
