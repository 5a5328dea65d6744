package tclcore_test

import (
	"errors"
	"testing"

	"github.com/feather-lang/tclcore"
)

func strs(items ...string) []*tclcore.Obj {
	out := make([]*tclcore.Obj, len(items))
	for idx, s := range items {
		out[idx] = tclcore.NewString(s)
	}
	return out
}

func mustPut(t *testing.T, d *tclcore.Obj, key, value string) {
	t.Helper()
	if err := tclcore.DictPut(d, tclcore.NewString(key), tclcore.NewString(value)); err != nil {
		t.Fatalf("DictPut(%s): %v", key, err)
	}
}

func TestDictRoundTrip(t *testing.T) {
	t.Run("FromString", func(t *testing.T) {
		d := tclcore.NewString("x {1 2} y 3")
		v, err := tclcore.DictGet(d, tclcore.NewString("x"))
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != "1 2" {
			t.Errorf("expected '1 2', got %q", v.String())
		}
		if n, _ := tclcore.DictSize(d); n != 2 {
			t.Errorf("expected 2 entries, got %d", n)
		}
		if d.String() != "x {1 2} y 3" {
			t.Errorf("expected string form kept, got %q", d.String())
		}
		if d.Type() != "dict" {
			t.Errorf("expected type dict, got %q", d.Type())
		}
	})

	t.Run("Regenerated", func(t *testing.T) {
		d := tclcore.NewDict()
		mustPut(t, d, "a", "1")
		mustPut(t, d, "b", "two words")
		mustPut(t, d, "", "empty key")
		if d.String() != "a 1 b {two words} {} {empty key}" {
			t.Errorf("unexpected string %q", d.String())
		}
		back := tclcore.NewString(d.String())
		for _, key := range []string{"a", "b", ""} {
			want, _ := tclcore.DictGet(d, tclcore.NewString(key))
			got, err := tclcore.DictGet(back, tclcore.NewString(key))
			if err != nil || got == nil || got.String() != want.String() {
				t.Errorf("key %q: expected %q, got %v (%v)", key, want.String(), got, err)
			}
		}
	})

	t.Run("DuplicateKeysLastWins", func(t *testing.T) {
		d := tclcore.NewString("a 1 a 2")
		v, _ := tclcore.DictGet(d, tclcore.NewString("a"))
		if v.String() != "2" {
			t.Errorf("expected 2, got %q", v.String())
		}
		if n, _ := tclcore.DictSize(d); n != 1 {
			t.Errorf("expected 1 entry, got %d", n)
		}
	})

	t.Run("OddLength", func(t *testing.T) {
		_, err := tclcore.DictSize(tclcore.NewString("a b c"))
		if err == nil || err.Error() != "missing value to go with key" {
			t.Fatalf("expected missing value error, got %v", err)
		}
		if !errors.Is(err, tclcore.ErrWrongType) {
			t.Error("expected error to match ErrWrongType")
		}
		if tclcore.KindOf(err) != tclcore.KindTypeConflict {
			t.Errorf("expected TypeConflictError, got %v", tclcore.KindOf(err))
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		v, err := tclcore.DictGet(tclcore.NewString("a 1"), tclcore.NewString("b"))
		if err != nil || v != nil {
			t.Errorf("expected nil value without error, got %v, %v", v, err)
		}
	})
}

func TestDictCopyOnWrite(t *testing.T) {
	d := tclcore.NewDict()
	mustPut(t, d, "a", "1")
	d.IncrRef()
	d.IncrRef()
	if !d.IsShared() {
		t.Fatal("expected dict to be shared")
	}

	t.Run("PutOnSharedPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected DictPut on a shared value to panic")
			}
		}()
		tclcore.DictPut(d, tclcore.NewString("a"), tclcore.NewString("2"))
	})

	c := d.Duplicate()
	mustPut(t, c, "a", "2")
	orig, _ := tclcore.DictGet(d, tclcore.NewString("a"))
	if orig.String() != "1" {
		t.Errorf("expected original to keep 1, got %q", orig.String())
	}
	if c.String() != "a 2" {
		t.Errorf("expected copy 'a 2', got %q", c.String())
	}
}

func TestDictKeyList(t *testing.T) {
	d := tclcore.NewDict()
	keys := strs("a", "b")

	for n := 0; n < 2; n++ {
		if err := tclcore.DictPutKeyList(d, keys, tclcore.NewString("v")); err != nil {
			t.Fatal(err)
		}
		if d.String() != "a {b v}" {
			t.Errorf("pass %d: expected 'a {b v}', got %q", n, d.String())
		}
	}

	v, err := tclcore.DictGetKeyList(d, keys)
	if err != nil || v.String() != "v" {
		t.Errorf("expected v, got %v (%v)", v, err)
	}

	t.Run("NestedCopyOnWrite", func(t *testing.T) {
		c := d.Duplicate()
		if err := tclcore.DictPutKeyList(c, keys, tclcore.NewString("w")); err != nil {
			t.Fatal(err)
		}
		if c.String() != "a {b w}" {
			t.Errorf("expected copy 'a {b w}', got %q", c.String())
		}
		if d.String() != "a {b v}" {
			t.Errorf("expected original untouched, got %q", d.String())
		}
	})

	t.Run("MissingIntermediate", func(t *testing.T) {
		_, err := tclcore.DictGetKeyList(d, strs("x", "y"))
		if err == nil || err.Error() != `key "x" not known in dictionary` {
			t.Fatalf("expected key error, got %v", err)
		}
		var ke *tclcore.KeyError
		if !errors.As(err, &ke) || ke.Key != "x" {
			t.Errorf("expected KeyError for x, got %T", err)
		}
		if tclcore.KindOf(err) != tclcore.KindNotFound {
			t.Errorf("expected NotFoundError, got %v", tclcore.KindOf(err))
		}
	})

	t.Run("Exists", func(t *testing.T) {
		p, err := tclcore.TraceDictPath(d, strs("a", "zz"), tclcore.PathExists)
		if err != nil {
			t.Fatal(err)
		}
		if p.Exists {
			t.Error("expected path to be reported missing")
		}
	})

	t.Run("NotADict", func(t *testing.T) {
		bad := tclcore.NewString("a {x y z}")
		err := tclcore.DictPutKeyList(bad, strs("a", "b"), tclcore.NewString("1"))
		if !errors.Is(err, tclcore.ErrWrongType) {
			t.Errorf("expected wrong type error, got %v", err)
		}
	})

	if err := tclcore.DictRemoveKeyList(d, keys); err != nil {
		t.Fatal(err)
	}
	if d.String() != "a {}" {
		t.Errorf("expected 'a {}', got %q", d.String())
	}
}

func TestDictCreateRemove(t *testing.T) {
	d := tclcore.NewString("a 1 b 2")
	v, _ := tclcore.DictGet(d, tclcore.NewString("a"))
	if v == nil || v.String() != "1" {
		t.Fatalf("expected 1, got %v", v)
	}
	if err := tclcore.DictRemove(d, tclcore.NewString("a")); err != nil {
		t.Fatal(err)
	}
	if n, _ := tclcore.DictSize(d); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestDictRemove(t *testing.T) {
	d := tclcore.NewDict()
	mustPut(t, d, "a", "1")
	mustPut(t, d, "b", "2")
	mustPut(t, d, "c", "3")
	if err := tclcore.DictRemove(d, tclcore.NewString("b")); err != nil {
		t.Fatal(err)
	}
	if err := tclcore.DictRemove(d, tclcore.NewString("nope")); err != nil {
		t.Errorf("removing an absent key should not fail, got %v", err)
	}
	if d.String() != "a 1 c 3" {
		t.Errorf("expected 'a 1 c 3', got %q", d.String())
	}
}

func TestDictSearch(t *testing.T) {
	d := tclcore.NewDict()
	mustPut(t, d, "a", "1")
	mustPut(t, d, "b", "2")
	mustPut(t, d, "c", "3")

	t.Run("Order", func(t *testing.T) {
		s, k, v, done, err := tclcore.DictFirst(d)
		if err != nil || done {
			t.Fatalf("expected first entry, got done=%v err=%v", done, err)
		}
		got := k.String() + v.String()
		for {
			k, v, done = s.Next()
			if done {
				break
			}
			got += " " + k.String() + v.String()
		}
		if got != "a1 b2 c3" {
			t.Errorf("expected 'a1 b2 c3', got %q", got)
		}
		if _, _, done := s.Next(); !done {
			t.Error("expected finished search to stay done")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		s, _, _, done, err := tclcore.DictFirst(tclcore.NewDict())
		if err != nil || !done {
			t.Errorf("expected empty search to be done, got done=%v err=%v", done, err)
		}
		s.Done()
	})

	t.Run("ModifiedDuringSearch", func(t *testing.T) {
		s, _, _, _, _ := tclcore.DictFirst(d)
		defer s.Done()
		mustPut(t, d, "z", "26")
		defer func() {
			if recover() == nil {
				t.Error("expected Next to panic after modification")
			}
		}()
		s.Next()
	})

	t.Run("OtherDictModified", func(t *testing.T) {
		other := tclcore.NewString("p 1")
		s, _, _, _, err := tclcore.DictFirst(tclcore.NewString("k 1 l 2"))
		if err != nil {
			t.Fatal(err)
		}
		mustPut(t, other, "q", "2")
		n := 1
		for _, _, done := s.Next(); !done; _, _, done = s.Next() {
			n++
		}
		if n != 2 {
			t.Errorf("expected 2 entries, got %d", n)
		}
	})

	t.Run("SurvivesShimmer", func(t *testing.T) {
		o := tclcore.NewString("k v")
		s, k, _, _, err := tclcore.DictFirst(o)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := o.Int(); err == nil {
			t.Fatal("expected int conversion to fail")
		}
		if _, err := o.List(); err != nil {
			t.Fatal(err)
		}
		if k.String() != "k" {
			t.Errorf("expected pinned key k, got %q", k.String())
		}
		if _, _, done := s.Next(); !done {
			t.Error("expected search to finish")
		}
	})
}
