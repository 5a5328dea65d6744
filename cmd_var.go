package tclcore

import (
	"errors"
	"fmt"
)

func wrongArgs(cmd *Obj, usage string) Result {
	if usage == "" {
		return Errorf("wrong # args: should be \"%s\"", cmd.String())
	}
	return Errorf("wrong # args: should be \"%s %s\"", cmd.String(), usage)
}

func cmdSet(i *Interp, cmd *Obj, args []*Obj) Result {
	switch len(args) {
	case 1:
		v, err := i.ObjGetVar2(args[0], nil, 0)
		if err != nil {
			return Error(err)
		}
		return OK(v)
	case 2:
		v, err := i.ObjSetVar2(args[0], nil, args[1], 0)
		if err != nil {
			return Error(err)
		}
		return OK(v)
	}
	return wrongArgs(cmd, "varName ?newValue?")
}

func cmdUnset(i *Interp, cmd *Obj, args []*Obj) Result {
	complain := true
	for len(args) > 0 {
		opt := args[0].String()
		if opt == "-nocomplain" {
			complain = false
			args = args[1:]
			continue
		}
		if opt == "--" {
			args = args[1:]
		}
		break
	}
	for _, name := range args {
		if err := i.ObjUnsetVar2(name, nil, 0); err != nil && complain {
			return Error(err)
		}
	}
	return OK("")
}

func cmdIncr(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 && len(args) != 2 {
		return wrongArgs(cmd, "varName ?increment?")
	}
	var incr int64 = 1
	if len(args) == 2 {
		n, err := args[1].Int()
		if err != nil {
			return Error(err)
		}
		incr = n
	}
	v, err := i.IncrVar(args[0], nil, incr, 0)
	if err != nil {
		return Error(err)
	}
	return OK(v)
}

func cmdAppend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "varName ?value ...?")
	}
	if len(args) == 1 {
		v, err := i.ObjGetVar2(args[0], nil, 0)
		if err != nil {
			return Error(err)
		}
		return OK(v)
	}
	var v *Obj
	for _, value := range args[1:] {
		var err error
		if v, err = i.AppendVar(args[0], nil, value); err != nil {
			return Error(err)
		}
	}
	return OK(v)
}

func cmdLappend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "varName ?value ...?")
	}
	v, err := i.LappendVar(args[0], nil, args[1:]...)
	if err != nil {
		return Error(err)
	}
	return OK(v)
}

// levelArg splits an optional leading level off args. The default level
// is one up.
func levelArg(args []*Obj) (string, []*Obj) {
	if len(args) > 0 && IsLevel(args[0].String()) {
		return args[0].String(), args[1:]
	}
	return "1", args
}

func cmdUpvar(i *Interp, cmd *Obj, args []*Obj) Result {
	const usage = "?level? otherVar localVar ?otherVar localVar ...?"
	if len(args) < 2 {
		return wrongArgs(cmd, usage)
	}
	level, rest := levelArg(args)
	if len(rest) == 0 || len(rest)%2 != 0 {
		return wrongArgs(cmd, usage)
	}
	frame, err := i.GetFrame(level)
	if err != nil {
		return Error(err)
	}
	for idx := 0; idx < len(rest); idx += 2 {
		if err := i.ObjMakeUpvar(frame, rest[idx], nil, 0, rest[idx+1].String(), 0); err != nil {
			return Error(err)
		}
	}
	return OK("")
}

func cmdGlobal(i *Interp, cmd *Obj, args []*Obj) Result {
	names := make([]string, len(args))
	for idx, a := range args {
		names[idx] = a.String()
	}
	if err := i.Global(names...); err != nil {
		return Error(err)
	}
	return OK("")
}

func cmdVariable(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "?name value...? name ?value?")
	}
	for idx := 0; idx < len(args); idx += 2 {
		var value *Obj
		if idx+1 < len(args) {
			value = args[idx+1]
		}
		if err := i.Variable(args[idx].String(), value); err != nil {
			return Error(err)
		}
	}
	return OK("")
}

func cmdArray(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs(cmd, "option arrayName ?arg ...?")
	}
	sub, name := args[0].String(), args[1].String()
	rest := args[2:]
	usage := func(u string) Result {
		if u == "" {
			return Errorf("wrong # args: should be \"%s %s arrayName\"", cmd.String(), sub)
		}
		return Errorf("wrong # args: should be \"%s %s arrayName %s\"", cmd.String(), sub, u)
	}

	switch sub {
	case "anymore":
		if len(rest) != 1 {
			return usage("searchId")
		}
		more, err := i.ArrayAnyMore(name, rest[0].String())
		if err != nil {
			return Error(err)
		}
		return OK(more)
	case "donesearch":
		if len(rest) != 1 {
			return usage("searchId")
		}
		if err := i.ArrayDoneSearch(name, rest[0].String()); err != nil {
			return Error(err)
		}
		return OK("")
	case "exists":
		if len(rest) != 0 {
			return usage("")
		}
		ok, err := i.ArrayExists(name)
		if err != nil {
			return Error(err)
		}
		return OK(ok)
	case "get":
		if len(rest) > 1 {
			return usage("?pattern?")
		}
		pattern := ""
		if len(rest) == 1 {
			pattern = rest[0].String()
		}
		l, err := i.ArrayGet(name, pattern)
		if err != nil {
			return Error(err)
		}
		return OK(l)
	case "names":
		if len(rest) > 2 {
			return usage("?mode? ?pattern?")
		}
		mode, pattern := MatchGlob, ""
		switch len(rest) {
		case 1:
			pattern = rest[0].String()
		case 2:
			m, err := ParseMatchMode(rest[0].String())
			if err != nil {
				return Error(err)
			}
			mode, pattern = m, rest[1].String()
		}
		names, err := i.ArrayNames(name, mode, pattern)
		if err != nil {
			return Error(err)
		}
		return OK(NewStringList(names...))
	case "nextelement":
		if len(rest) != 1 {
			return usage("searchId")
		}
		elem, err := i.ArrayNextElement(name, rest[0].String())
		if err != nil {
			return Error(err)
		}
		return OK(elem)
	case "set":
		if len(rest) != 1 {
			return usage("list")
		}
		if err := i.ArraySet(name, rest[0]); err != nil {
			return Error(err)
		}
		return OK("")
	case "size":
		if len(rest) != 0 {
			return usage("")
		}
		n, err := i.ArraySize(name)
		if err != nil {
			return Error(err)
		}
		return OK(n)
	case "startsearch":
		if len(rest) != 0 {
			return usage("")
		}
		token, err := i.ArrayStartSearch(name)
		if err != nil {
			return Error(err)
		}
		return OK(token)
	case "statistics":
		if len(rest) != 0 {
			return usage("")
		}
		stats, err := i.ArrayStats(name)
		if err != nil {
			return Error(err)
		}
		return OK(stats)
	case "unset":
		if len(rest) > 1 {
			return usage("?pattern?")
		}
		pattern := ""
		if len(rest) == 1 {
			pattern = rest[0].String()
		}
		if err := i.ArrayUnset(name, pattern); err != nil {
			return Error(err)
		}
		return OK("")
	}
	return Errorf("unknown or ambiguous subcommand %q: must be anymore, donesearch, exists, get, names, nextelement, set, size, startsearch, statistics, or unset", sub)
}

// parseTraceOps reads the operation list of trace add/remove variable.
func parseTraceOps(o *Obj) (TraceOps, error) {
	words, err := o.List()
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, errors.New("bad operation list \"\": must be one or more of array, read, unset, or write")
	}
	var ops TraceOps
	for _, w := range words {
		switch w.String() {
		case "array":
			ops |= TraceArray
		case "read":
			ops |= TraceRead
		case "write":
			ops |= TraceWrite
		case "unset":
			ops |= TraceUnset
		default:
			return 0, fmt.Errorf("bad operation %q: must be array, read, unset, or write", w.String())
		}
	}
	return ops, nil
}

// scriptTraceProc runs prefix with the variable name, element and
// operation appended.
func scriptTraceProc(prefix *Obj) VarTraceProc {
	return func(i *Interp, name1, name2 string, ops TraceOps) error {
		op := "unset"
		switch {
		case ops&TraceRead != 0:
			op = "read"
		case ops&TraceWrite != 0:
			op = "write"
		case ops&TraceArray != 0:
			op = "array"
		}
		words, err := prefix.List()
		if err != nil {
			return err
		}
		call := append(append([]*Obj(nil), words...), NewString(name1), NewString(name2), NewString(op))
		res := i.EvalObj(NewList(call...))
		if res.Code() == ResultError {
			return res.Err()
		}
		return nil
	}
}

func cmdTrace(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs(cmd, "option ?arg ...?")
	}
	sub := args[0].String()
	if args[1].String() != "variable" {
		return Errorf("bad type %q: must be variable", args[1].String())
	}
	rest := args[2:]
	switch sub {
	case "add":
		if len(rest) != 3 {
			return Errorf("wrong # args: should be \"%s add variable name opList command\"", cmd.String())
		}
		ops, err := parseTraceOps(rest[1])
		if err != nil {
			return Error(err)
		}
		t, err := i.TraceVar2(rest[0], nil, 0, ops, scriptTraceProc(rest[2]))
		if err != nil {
			return Error(err)
		}
		rest[2].IncrRef()
		t.script = rest[2]
		return OK("")
	case "remove":
		if len(rest) != 3 {
			return Errorf("wrong # args: should be \"%s remove variable name opList command\"", cmd.String())
		}
		ops, err := parseTraceOps(rest[1])
		if err != nil {
			return Error(err)
		}
		traces, err := i.VarTraces(rest[0].String())
		if err != nil {
			return OK("")
		}
		prefix := rest[2].String()
		for _, t := range traces {
			if t.ops != ops {
				continue
			}
			if t.script != nil && t.script.String() == prefix {
				if err := i.UntraceVar2(rest[0], nil, 0, t); err != nil {
					return Error(err)
				}
				break
			}
		}
		return OK("")
	case "info":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"%s info variable name\"", cmd.String())
		}
		traces, err := i.VarTraces(rest[0].String())
		if err != nil {
			return OK("")
		}
		var out []*Obj
		for _, t := range traces {
			if t.script != nil {
				out = append(out, NewList(NewString(t.ops.String()), t.script))
			}
		}
		return OK(NewList(out...))
	}
	return Errorf("bad option %q: must be add, info, or remove", sub)
}
