// Package tclcore provides the value and variable runtime of a Tcl
// interpreter: dual-representation values, dictionaries, variable cells,
// call frames, namespaces, upvar links, traces and arrays.
//
// # Overview
//
// A [*Obj] carries a string form and an optional internal representation,
// either of which may be computed from the other. Values are shared by
// reference count; a shared value is duplicated before it is changed.
//
// Variables live in cells ([*Var]) held by a namespace table, a procedure
// frame or an array. A cell is undefined, a scalar, an array, or a link to
// another cell created by upvar, global or variable.
//
// # Quick Start
//
//	i := tclcore.New()
//
//	// Two-part names: "a(x)" and ("a", "x") are the same element.
//	i.SetVar("a(x)", tclcore.NewString("1"))
//	v, _ := i.GetElem("a", "x")
//	fmt.Println(v) // 1
//
//	// Failed lookups return a *VarError.
//	_, err := i.GetVar("missing")
//	fmt.Println(err) // can't read "missing": no such variable
//
// # Procedures and Links
//
// Procedure frames are pushed by the embedding evaluator:
//
//	f := i.PushProcFrame(nil, []string{"x"})
//	i.Upvar("1", "counter", "c") // c now refers to the caller's counter
//	i.IncrVar(tclcore.NewString("c"), nil, 1, 0)
//	i.PopFrame()
//
// A link keeps its target cell alive. Unsetting the target leaves an
// undefined cell behind that the link can bring back to life.
//
// # Dictionaries
//
// Dictionary operations take values, not variables:
//
//	d := tclcore.NewDict()
//	tclcore.DictPut(d, tclcore.NewString("k"), tclcore.NewString("v"))
//	tclcore.DictPutKeyList(d, keys, value)  // creates nested levels
//	s, k, v, done, _ := tclcore.DictFirst(d) // insertion order
//
// Writers panic when handed a shared value.
//
// # Traces
//
//	i.TraceVar("x", tclcore.TraceWrite, func(i *tclcore.Interp, n1, n2 string, ops tclcore.TraceOps) error {
//	    return errors.New("read-only")
//	})
//	_, err := i.SetVar("x", tclcore.NewString("1"))
//	// can't set "x": read-only
//
// # Scripts
//
// The package does not parse scripts itself. An [Evaluator] installed with
// SetEvaluator runs the bodies of procedures and the script arguments of
// the built-in commands. Expression syntax is parsed by the expr
// subpackage.
package tclcore
