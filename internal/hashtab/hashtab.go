// Package hashtab provides the string-keyed hash table used for dictionary
// payloads, array element tables and variable tables.
//
// Entries are kept on an insertion-ordered chain so that enumeration is
// deterministic and a cursor stays usable across deletions of other
// entries. Deleting the entry a cursor points at is also tolerated: a
// deleted entry keeps its forward link, and Next skips dead entries.
package hashtab

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Entry is one key/value slot of a Table.
type Entry[V any] struct {
	key   string
	Value V

	prev, next *Entry[V]
	table      *Table[V] // nil once the entry has been deleted
}

// Key returns the entry's key.
func (e *Entry[V]) Key() string { return e.key }

// Live reports whether the entry is still part of its table.
func (e *Entry[V]) Live() bool { return e != nil && e.table != nil }

// Table is an insertion-ordered hash table keyed by string.
type Table[V any] struct {
	index      map[string]*Entry[V]
	head, tail *Entry[V]
}

// New creates an empty table.
func New[V any]() *Table[V] {
	return &Table[V]{index: make(map[string]*Entry[V])}
}

// Len returns the number of live entries.
func (t *Table[V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// Find returns the entry for key, or nil.
func (t *Table[V]) Find(key string) *Entry[V] {
	if t == nil {
		return nil
	}
	return t.index[key]
}

// Create returns the entry for key, creating it at the end of the chain if
// it does not exist yet. isNew reports whether an entry was created.
func (t *Table[V]) Create(key string) (e *Entry[V], isNew bool) {
	if e = t.index[key]; e != nil {
		return e, false
	}
	e = &Entry[V]{key: key, table: t, prev: t.tail}
	if t.tail != nil {
		t.tail.next = e
	} else {
		t.head = e
	}
	t.tail = e
	t.index[key] = e
	return e, true
}

// Delete removes e from the table. Deleting an entry twice is a no-op.
func (t *Table[V]) Delete(e *Entry[V]) {
	if e == nil || e.table != t {
		return
	}
	delete(t.index, e.key)
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		t.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		t.tail = e.prev
	}
	// e.next is deliberately kept so cursors parked on e can move on.
	e.prev = nil
	e.table = nil
}

// First returns the first live entry, or nil for an empty table.
func (t *Table[V]) First() *Entry[V] {
	if t == nil {
		return nil
	}
	return t.head
}

// Next returns the live entry following e, or nil at the end.
func (t *Table[V]) Next(e *Entry[V]) *Entry[V] {
	if e == nil {
		return nil
	}
	n := e.next
	for n != nil && n.table != t {
		n = n.next
	}
	return n
}

// Entries returns a snapshot of the live entries in chain order.
func (t *Table[V]) Entries() []*Entry[V] {
	if t == nil {
		return nil
	}
	out := make([]*Entry[V], 0, len(t.index))
	for e := t.head; e != nil; e = e.next {
		out = append(out, e)
	}
	return out
}

// Keys returns the live keys in chain order.
func (t *Table[V]) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.index))
	for e := t.head; e != nil; e = e.next {
		out = append(out, e.key)
	}
	return out
}

// Clone returns a new table with the same keys and values in the same order.
func (t *Table[V]) Clone() *Table[V] {
	c := New[V]()
	for e := t.First(); e != nil; e = e.next {
		ne, _ := c.Create(e.key)
		ne.Value = e.Value
	}
	return c
}

const (
	smallBuckets     = 4
	rebuildMultiplier = 3
	numCounters      = 10
)

// bucketCount mirrors the growth policy of a chained hash table that starts
// with four buckets and quadruples whenever the load exceeds three entries
// per bucket.
func bucketCount(n int) int {
	b := smallBuckets
	for n >= b*rebuildMultiplier {
		b *= 4
	}
	return b
}

// Stats returns a human readable summary of the bucket distribution the
// table would have as a chained hash table.
func (t *Table[V]) Stats() string {
	n := t.Len()
	buckets := bucketCount(n)
	chains := make([]int, buckets)
	for e := t.First(); e != nil; e = e.next {
		h := fnv.New32a()
		h.Write([]byte(e.key))
		chains[h.Sum32()%uint32(buckets)]++
	}

	var counts [numCounters]int
	overflow := 0
	average := 0.0
	for _, c := range chains {
		if c < numCounters {
			counts[c]++
		} else {
			overflow++
		}
		if n != 0 {
			average += float64(c+1) * float64(c) / 2.0 / float64(n)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d entries in table, %d buckets", n, buckets)
	for i, c := range counts {
		fmt.Fprintf(&b, "\nnumber of buckets with %d entries: %d", i, c)
	}
	fmt.Fprintf(&b, "\nnumber of buckets with %d or more entries: %d", numCounters, overflow)
	fmt.Fprintf(&b, "\naverage search distance for entry: %.1f", average)
	return b.String()
}

// Remove deletes e from whatever table holds it.
func (e *Entry[V]) Remove() {
	if e != nil && e.table != nil {
		e.table.Delete(e)
	}
}
