package tclcore_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/feather-lang/tclcore"
)

func TestElementNames(t *testing.T) {
	for _, noCache := range []bool{false, true} {
		t.Run(fmt.Sprintf("noCache=%v", noCache), func(t *testing.T) {
			cfg := tclcore.DefaultConfig()
			cfg.DisableVarNameCache = noCache
			i := tclcore.NewWithConfig(cfg)

			name := tclcore.NewString("a(x)")
			if _, err := i.ObjSetVar2(name, nil, tclcore.NewString("1"), 0); err != nil {
				t.Fatal(err)
			}
			v, err := i.GetElem("a", "x")
			if err != nil || v.String() != "1" {
				t.Fatalf("expected a(x) = 1, got %v (%v)", v, err)
			}
			if n, _ := i.ArraySize("a"); n != 1 {
				t.Errorf("expected 1 element, got %d", n)
			}

			// The name value may be reused.
			v, err = i.ObjGetVar2(name, nil, 0)
			if err != nil || v.String() != "1" {
				t.Errorf("expected reused name to read 1, got %v (%v)", v, err)
			}
			if name.String() != "a(x)" {
				t.Errorf("expected name to keep its text, got %q", name.String())
			}
			if noCache && name.InternalRep() != nil {
				t.Errorf("expected no cache on name, got %s", name.Type())
			}

			_, err = i.ObjGetVar2(name, tclcore.NewString("y"), 0)
			if err == nil || err.Error() != `can't read "a(x)(y)": variable isn't array` {
				t.Fatalf("expected element syntax error, got %v", err)
			}
			if !errors.Is(err, tclcore.ErrElementSyntax) {
				t.Error("expected error to match ErrElementSyntax")
			}
			if tclcore.KindOf(err) != tclcore.KindNameSyntax {
				t.Errorf("expected NameSyntaxError, got %v", tclcore.KindOf(err))
			}
		})
	}
}

// A name value used in one procedure frame is reused in frames whose
// locals are laid out differently.
func TestLocalNameReuse(t *testing.T) {
	results := map[bool]string{}
	for _, noCache := range []bool{false, true} {
		cfg := tclcore.DefaultConfig()
		cfg.DisableVarNameCache = noCache
		i := tclcore.NewWithConfig(cfg)
		name := tclcore.NewString("x")
		var log []string
		read := func() {
			v, err := i.ObjGetVar2(name, nil, 0)
			if err != nil {
				log = append(log, err.Error())
				return
			}
			log = append(log, v.String())
		}

		i.PushProcFrame(nil, []string{"x"})
		if _, err := i.ObjSetVar2(name, nil, tclcore.NewString("1"), 0); err != nil {
			t.Fatal(err)
		}
		read()
		i.PopFrame()

		i.PushProcFrame(nil, []string{"y", "x"})
		i.SetVar("y", tclcore.NewString("wrong"))
		i.SetVar("x", tclcore.NewString("2"))
		read()
		i.PopFrame()

		i.PushProcFrame(nil, []string{"x", "y"})
		i.SetVar("y", tclcore.NewString("wrong"))
		read()
		i.PopFrame()

		read()
		results[noCache] = strings.Join(log, "|")
	}

	want := `1|2|can't read "x": no such variable|can't read "x": no such variable`
	for noCache, got := range results {
		if got != want {
			t.Errorf("noCache=%v: expected %q, got %q", noCache, want, got)
		}
	}
}

func TestReadErrors(t *testing.T) {
	i := tclcore.New()
	i.SetVar("s", tclcore.NewString("1"))
	i.SetElem("arr", "k", tclcore.NewString("v"))

	tests := []struct {
		name string
		read func() error
		msg  string
		kind tclcore.ErrorKind
	}{
		{"missing", func() error { _, err := i.GetVar("nope"); return err },
			`can't read "nope": no such variable`, tclcore.KindNotFound},
		{"array as scalar", func() error { _, err := i.GetVar("arr"); return err },
			`can't read "arr": variable is array`, tclcore.KindTypeConflict},
		{"missing element", func() error { _, err := i.GetElem("arr", "q"); return err },
			`can't read "arr(q)": no such element in array`, tclcore.KindNotFound},
		{"scalar as array", func() error { _, err := i.GetElem("s", "q"); return err },
			`can't read "s(q)": variable isn't array`, tclcore.KindTypeConflict},
		{"bad namespace", func() error { _, err := i.SetVar("no::such::v", tclcore.NewString("1")); return err },
			`can't set "no::such::v": parent namespace doesn't exist`, tclcore.KindScopeResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read()
			if err == nil || err.Error() != tt.msg {
				t.Fatalf("expected %q, got %v", tt.msg, err)
			}
			if k := tclcore.KindOf(err); k != tt.kind {
				t.Errorf("expected %v, got %v", tt.kind, k)
			}
			var ve *tclcore.VarError
			if !errors.As(err, &ve) {
				t.Errorf("expected a VarError, got %T", err)
			}
		})
	}

	if i.VarExists("arr(q)") {
		t.Error("expected failed read to leave no element behind")
	}
}

func TestIncrVar(t *testing.T) {
	i := tclcore.New()
	v, err := i.IncrVar(tclcore.NewString("n"), nil, 5, 0)
	if err != nil || v.String() != "5" {
		t.Fatalf("expected unset variable to count from 0, got %v (%v)", v, err)
	}
	v, _ = i.IncrVar(tclcore.NewString("n"), nil, -2, 0)
	if v.String() != "3" {
		t.Errorf("expected 3, got %q", v.String())
	}
	i.SetVar("w", tclcore.NewString("abc"))
	if _, err := i.IncrVar(tclcore.NewString("w"), nil, 1, 0); err == nil {
		t.Error("expected incr of a non-integer to fail")
	}
}

func TestUpvarSelfReference(t *testing.T) {
	i := tclcore.New()
	i.SetVar("x", tclcore.NewString("1"))
	err := i.Upvar("#0", "x", "x")
	if !errors.Is(err, tclcore.ErrSelfReference) {
		t.Fatalf("expected self reference error, got %v", err)
	}
	if tclcore.KindOf(err) != tclcore.KindLifetime {
		t.Errorf("expected LifetimeError, got %v", tclcore.KindOf(err))
	}
}

func TestUpvarLinkCycle(t *testing.T) {
	i := tclcore.New()
	if err := i.Upvar("#0", "x", "y"); err != nil {
		t.Fatal(err)
	}
	y := i.GlobalNamespace().FindVar("y")
	if !y.IsLink() {
		t.Fatal("expected y to be a link")
	}

	err := i.MakeUpvar(y, "x", 0)
	if !errors.Is(err, tclcore.ErrSelfReference) {
		t.Fatalf("expected self reference error, got %v", err)
	}
	if i.GlobalNamespace().FindVar("x").IsLink() {
		t.Fatal("expected x to stay a plain cell")
	}

	if _, err := i.SetVar("x", tclcore.NewString("1")); err != nil {
		t.Fatal(err)
	}
	v, err := i.GetVar("y")
	if err != nil || v.String() != "1" {
		t.Errorf("expected y to read 1 through the link, got %v (%v)", v, err)
	}

	// A link target is followed to the cell it refers to.
	if err := i.MakeUpvar(y, "z", 0); err != nil {
		t.Fatal(err)
	}
	if z := i.GlobalNamespace().FindVar("z"); z.Link() != i.GlobalNamespace().FindVar("x") {
		t.Error("expected z to refer to x directly")
	}
}

func TestUpvarTargetLifetime(t *testing.T) {
	i := tclcore.New()
	i.SetVar("g", tclcore.NewString("1"))
	g := i.GlobalNamespace().FindVar("g")

	i.PushProcFrame(nil, []string{"l"})
	if err := i.Upvar("#0", "g", "l"); err != nil {
		t.Fatal(err)
	}
	if g.RefCount() != 1 {
		t.Errorf("expected link to hold the target, got refcount %d", g.RefCount())
	}
	if !i.Frame().Local("l").IsLink() {
		t.Error("expected local l to be a link")
	}

	if err := i.UnsetVar("l"); err != nil {
		t.Fatal(err)
	}
	if i.GlobalNamespace().FindVar("g") != g {
		t.Error("expected the unset target to stay in its table while linked")
	}
	if _, err := i.SetVar("l", tclcore.NewString("5")); err != nil {
		t.Fatal(err)
	}
	i.PopFrame()

	if g.RefCount() != 0 {
		t.Errorf("expected frame exit to release the target, got refcount %d", g.RefCount())
	}
	v, err := i.GetVar("g")
	if err != nil || v.String() != "5" {
		t.Errorf("expected g to be recreated through the link, got %v (%v)", v, err)
	}
}

func TestUpvarTargetFreed(t *testing.T) {
	i := tclcore.New()
	i.SetVar("g", tclcore.NewString("1"))

	i.PushProcFrame(nil, []string{"l"})
	if err := i.Upvar("#0", "g", "l"); err != nil {
		t.Fatal(err)
	}
	if err := i.UnsetVar("l"); err != nil {
		t.Fatal(err)
	}
	g := i.GlobalNamespace().FindVar("g")
	if g == nil || !g.IsUndefined() || g.RefCount() != 1 {
		t.Fatalf("expected an undefined target held by the link, got %v", g)
	}
	i.PopFrame()

	if g.RefCount() != 0 {
		t.Errorf("expected refcount 0, got %d", g.RefCount())
	}
	if i.GlobalNamespace().FindVar("g") != nil {
		t.Error("expected the unreferenced undefined target to be removed")
	}
}

func TestUpvarDeletedNamespace(t *testing.T) {
	i := tclcore.New()
	ns := i.CreateNamespace("ns")
	i.SetVar("ns::v", tclcore.NewString("1"))
	cell := ns.FindVar("v")

	i.PushProcFrame(nil, []string{"l"})
	defer i.PopFrame()
	if err := i.Upvar("#0", "ns::v", "l"); err != nil {
		t.Fatal(err)
	}
	i.DeleteNamespace(ns)
	if !ns.Deleted() || !cell.Deleted() {
		t.Fatal("expected namespace and cell to be deleted")
	}
	if i.FindNamespace("ns") != nil {
		t.Error("expected namespace to be gone")
	}

	_, err := i.SetVar("l", tclcore.NewString("2"))
	if err == nil || err.Error() != `can't set "l": upvar refers to variable in deleted namespace` {
		t.Fatalf("expected dangling link error, got %v", err)
	}
	if tclcore.KindOf(err) != tclcore.KindLifetime {
		t.Errorf("expected LifetimeError, got %v", tclcore.KindOf(err))
	}
}

func TestUpvarProcToNamespace(t *testing.T) {
	i := tclcore.New()
	i.PushProcFrame(nil, []string{"x"})
	defer i.PopFrame()
	i.SetVar("x", tclcore.NewString("1"))

	i.PushNamespaceFrame(i.GlobalNamespace())
	defer i.PopFrame()
	err := i.Upvar("1", "x", "y")
	if !errors.Is(err, tclcore.ErrBadVarName) {
		t.Fatalf("expected bad variable name, got %v", err)
	}
	if !strings.Contains(err.Error(), "can't create namespace variable that refers to procedure variable") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestGetFrame(t *testing.T) {
	i := tclcore.New()
	i.PushProcFrame(nil, nil)
	i.PushProcFrame(nil, nil)
	defer i.PopFrame()
	defer i.PopFrame()

	tests := []struct {
		level string
		want  int
	}{
		{"", 1},
		{"1", 1},
		{"2", 0},
		{"#0", 0},
		{"#2", 2},
	}
	for _, tt := range tests {
		f, err := i.GetFrame(tt.level)
		if err != nil {
			t.Errorf("level %q: %v", tt.level, err)
			continue
		}
		if f.Level() != tt.want {
			t.Errorf("level %q: expected frame %d, got %d", tt.level, tt.want, f.Level())
		}
	}
	for _, bad := range []string{"3", "#3", "-1", "x"} {
		_, err := i.GetFrame(bad)
		if !errors.Is(err, tclcore.ErrBadLevel) {
			t.Errorf("level %q: expected bad level, got %v", bad, err)
		}
	}
}

func TestTraces(t *testing.T) {
	t.Run("Order", func(t *testing.T) {
		i := tclcore.New()
		var log []string
		record := func(tag string) tclcore.VarTraceProc {
			return func(i *tclcore.Interp, name1, name2 string, ops tclcore.TraceOps) error {
				log = append(log, fmt.Sprintf("%s %s %q %s", tag, name1, name2, ops))
				return nil
			}
		}
		first, _ := i.TraceVar("x", tclcore.TraceWrite, record("first"))
		i.TraceVar("x", tclcore.TraceWrite, record("second"))
		i.SetVar("x", tclcore.NewString("1"))

		want := `second x "" write|first x "" write`
		if got := strings.Join(log, "|"); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}

		log = nil
		if err := i.UntraceVar("x", first); err != nil {
			t.Fatal(err)
		}
		i.SetVar("x", tclcore.NewString("2"))
		if got := strings.Join(log, "|"); got != `second x "" write` {
			t.Errorf("expected only second after removal, got %q", got)
		}
		traces, _ := i.VarTraces("x")
		if len(traces) != 1 {
			t.Errorf("expected 1 trace left, got %d", len(traces))
		}
	})

	t.Run("WriteError", func(t *testing.T) {
		i := tclcore.New()
		i.TraceVar("x", tclcore.TraceWrite, func(*tclcore.Interp, string, string, tclcore.TraceOps) error {
			return errors.New("read-only")
		})
		_, err := i.SetVar("x", tclcore.NewString("1"))
		if err == nil || err.Error() != `can't set "x": read-only` {
			t.Fatalf("expected trace error, got %v", err)
		}
		if !errors.Is(err, tclcore.ErrTraceFailed) {
			t.Error("expected error to match ErrTraceFailed")
		}
		if tclcore.KindOf(err) != tclcore.KindTrace {
			t.Errorf("expected TraceError, got %v", tclcore.KindOf(err))
		}
	})

	t.Run("ReadReplacesValue", func(t *testing.T) {
		i := tclcore.New()
		i.SetVar("x", tclcore.NewString("old"))
		i.TraceVar("x", tclcore.TraceRead, func(i *tclcore.Interp, name1, _ string, _ tclcore.TraceOps) error {
			_, err := i.SetVar(name1, tclcore.NewString("fresh"))
			return err
		})
		v, err := i.GetVar("x")
		if err != nil || v.String() != "fresh" {
			t.Errorf("expected fresh, got %v (%v)", v, err)
		}
	})

	t.Run("Unset", func(t *testing.T) {
		i := tclcore.New()
		i.SetVar("x", tclcore.NewString("1"))
		var got tclcore.TraceOps
		var existed bool
		i.TraceVar("x", tclcore.TraceUnset, func(i *tclcore.Interp, _, _ string, ops tclcore.TraceOps) error {
			got = ops
			existed = i.VarExists("x")
			return errors.New("ignored")
		})
		if err := i.UnsetVar("x"); err != nil {
			t.Fatalf("expected unset trace errors to be ignored, got %v", err)
		}
		if got&tclcore.TraceUnset == 0 || got&tclcore.TraceDestroyed == 0 {
			t.Errorf("expected unset and destroyed ops, got %d", got)
		}
		if existed {
			t.Error("expected variable to be gone when the unset trace ran")
		}
		if i.VarExists("x") {
			t.Error("expected x to stay unset")
		}
	})

	t.Run("ArrayElement", func(t *testing.T) {
		i := tclcore.New()
		var seen []string
		i.TraceVar("a", tclcore.TraceWrite, func(_ *tclcore.Interp, name1, name2 string, _ tclcore.TraceOps) error {
			seen = append(seen, name1+"("+name2+")")
			return nil
		})
		i.SetElem("a", "k", tclcore.NewString("1"))
		if len(seen) != 1 || seen[0] != "a(k)" {
			t.Errorf("expected whole-array trace to see a(k), got %v", seen)
		}
	})
}

func TestArrays(t *testing.T) {
	i := tclcore.New()
	if err := i.ArraySet("a", tclcore.NewString("x 1 y 2")); err != nil {
		t.Fatal(err)
	}
	if ok, _ := i.ArrayExists("a"); !ok {
		t.Fatal("expected a to be an array")
	}
	names, _ := i.ArrayNames("a", tclcore.MatchGlob, "x*")
	if len(names) != 1 || names[0] != "x" {
		t.Errorf("expected [x], got %v", names)
	}
	names, _ = i.ArrayNames("a", tclcore.MatchRegexp, "^[xy]$")
	if len(names) != 2 {
		t.Errorf("expected 2 regexp matches, got %v", names)
	}
	got, _ := i.ArrayGet("a", "")
	if got.String() != "x 1 y 2" {
		t.Errorf("expected 'x 1 y 2', got %q", got.String())
	}
	if err := i.ArraySet("a", tclcore.NewString("odd")); err == nil {
		t.Error("expected odd list to be rejected")
	}

	t.Run("Search", func(t *testing.T) {
		tok, err := i.ArrayStartSearch("a")
		if err != nil || tok != "s-1-a" {
			t.Fatalf("expected s-1-a, got %q (%v)", tok, err)
		}
		tok2, _ := i.ArrayStartSearch("a")
		if tok2 != "s-2-a" {
			t.Errorf("expected s-2-a, got %q", tok2)
		}
		var elems []string
		for {
			more, err := i.ArrayAnyMore("a", tok)
			if err != nil {
				t.Fatal(err)
			}
			if !more {
				break
			}
			e, _ := i.ArrayNextElement("a", tok)
			elems = append(elems, e)
		}
		if strings.Join(elems, " ") != "x y" {
			t.Errorf("expected 'x y', got %v", elems)
		}
		if e, _ := i.ArrayNextElement("a", tok); e != "" {
			t.Errorf("expected exhausted search to return empty, got %q", e)
		}
		if err := i.ArrayDoneSearch("a", tok); err != nil {
			t.Fatal(err)
		}

		_, err = i.ArrayAnyMore("a", "s-x-a")
		if err == nil || err.Error() != `illegal search identifier "s-x-a"` {
			t.Errorf("expected illegal identifier error, got %v", err)
		}
		_, err = i.ArrayAnyMore("a", "s-2-b")
		if err == nil || err.Error() != `search identifier "s-2-b" isn't for variable "a"` {
			t.Errorf("expected wrong variable error, got %v", err)
		}

		i.SetElem("a", "z", tclcore.NewString("3"))
		_, err = i.ArrayAnyMore("a", tok2)
		if err == nil || err.Error() != `couldn't find search "s-2-a"` {
			t.Errorf("expected search to end when an element is added, got %v", err)
		}
	})

	t.Run("Unset", func(t *testing.T) {
		if err := i.ArrayUnset("a", "[xy]"); err != nil {
			t.Fatal(err)
		}
		names, _ := i.ArrayNames("a", tclcore.MatchGlob, "")
		if len(names) != 1 || names[0] != "z" {
			t.Errorf("expected [z], got %v", names)
		}
		if err := i.ArrayUnset("a", ""); err != nil {
			t.Fatal(err)
		}
		if ok, _ := i.ArrayExists("a"); ok {
			t.Error("expected a to be gone")
		}
	})

	t.Run("NotArray", func(t *testing.T) {
		i.SetVar("s", tclcore.NewString("1"))
		if n, err := i.ArraySize("s"); n != 0 || err != nil {
			t.Errorf("expected 0 for a scalar, got %d (%v)", n, err)
		}
		_, err := i.ArrayStartSearch("s")
		if err == nil || err.Error() != `"s" isn't an array` {
			t.Errorf("expected not-an-array error, got %v", err)
		}
	})
}

func TestResolver(t *testing.T) {
	i := tclcore.New()
	cell := tclcore.NewVar("magic")
	i.AddResolver(func(_ *tclcore.Interp, name string, _ *tclcore.Namespace, _ tclcore.VarFlags) (*tclcore.Var, error) {
		if name == "magic" {
			return cell, nil
		}
		return nil, nil
	})
	if _, err := i.SetVar("magic", tclcore.NewString("42")); err != nil {
		t.Fatal(err)
	}
	if cell.Value() == nil || cell.Value().String() != "42" {
		t.Errorf("expected resolver cell to hold 42, got %v", cell.Value())
	}
	if i.GlobalNamespace().FindVar("magic") != nil {
		t.Error("expected resolved variable to bypass the namespace table")
	}
	if _, err := i.SetVar("plain", tclcore.NewString("1")); err != nil {
		t.Fatal(err)
	}
	if i.GlobalNamespace().FindVar("plain") == nil {
		t.Error("expected unresolved names to use the namespace table")
	}
}

func TestNamespaceVariables(t *testing.T) {
	i := tclcore.New()
	ns := i.CreateNamespace("::a::b")
	if ns.FullName() != "::a::b" {
		t.Errorf("expected ::a::b, got %q", ns.FullName())
	}
	if i.FindNamespace("a::b") != ns {
		t.Error("expected relative lookup to find ::a::b")
	}

	i.PushNamespaceFrame(ns)
	if err := i.Variable("v", tclcore.NewString("1")); err != nil {
		t.Fatal(err)
	}
	i.SetVar("g", tclcore.NewString("global"))
	i.PopFrame()

	v, err := i.GetVar("::a::b::v")
	if err != nil || v.String() != "1" {
		t.Errorf("expected ::a::b::v = 1, got %v (%v)", v, err)
	}
	if ns.FindVar("v").RefCount() != 1 {
		t.Errorf("expected declaration to hold the variable, got refcount %d", ns.FindVar("v").RefCount())
	}
	if ns.FindVar("g") == nil {
		t.Error("expected set inside the namespace to create a namespace variable")
	}

	i.PushProcFrame(ns, nil)
	if err := i.Variable("v", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := i.IncrVar(tclcore.NewString("v"), nil, 1, 0); err != nil {
		t.Fatal(err)
	}
	if err := i.Global("top"); err != nil {
		t.Fatal(err)
	}
	i.SetVar("top", tclcore.NewString("t"))
	i.PopFrame()

	v, _ = i.GetVar("a::b::v")
	if v.String() != "2" {
		t.Errorf("expected linked increment to reach the namespace variable, got %q", v.String())
	}
	v, _ = i.GetVar("top")
	if v == nil || v.String() != "t" {
		t.Errorf("expected global top = t, got %v", v)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want tclcore.ErrorKind
	}{
		{nil, tclcore.KindUnknown},
		{errors.New("other"), tclcore.KindUnknown},
		{tclcore.ErrBadLevel, tclcore.KindScopeResolution},
		{tclcore.ErrDanglingElement, tclcore.KindLifetime},
		{fmt.Errorf("wrapped: %w", tclcore.ErrHasTraces), tclcore.KindTypeConflict},
		{&tclcore.KeyError{Key: "k"}, tclcore.KindNotFound},
	}
	for _, tt := range tests {
		if got := tclcore.KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
	if tclcore.KindLifetime.String() != "LifetimeError" {
		t.Errorf("expected LifetimeError, got %q", tclcore.KindLifetime.String())
	}
}
