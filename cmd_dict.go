package tclcore

import (
	"errors"
	"strings"
)

type dictSubcommand struct {
	usage string
	fn    func(i *Interp, cmd *Obj, args []*Obj) Result
}

var dictSubcommands map[string]dictSubcommand

func init() {
	dictSubcommands = map[string]dictSubcommand{
		"append":  {"dictVarName key ?value ...?", dictAppend},
		"create":  {"?key value ...?", dictCreate},
		"exists":  {"dictionary key ?key ...?", dictExists},
		"filter":  {"dictionary filterType ?arg ...?", dictFilter},
		"for":     {"{keyVarName valueVarName} dictionary script", dictFor},
		"get":     {"dictionary ?key ...?", dictGet},
		"incr":    {"dictVarName key ?increment?", dictIncr},
		"info":    {"dictionary", dictInfo},
		"keys":    {"dictionary ?pattern?", dictKeys},
		"lappend": {"dictVarName key ?value ...?", dictLappend},
		"merge":   {"?dictionary ...?", dictMerge},
		"remove":  {"dictionary ?key ...?", dictRemove},
		"replace": {"dictionary ?key value ...?", dictReplace},
		"set":     {"dictVarName key ?key ...? value", dictSet},
		"size":    {"dictionary", dictSize},
		"unset":   {"dictVarName key ?key ...?", dictUnset},
		"update":  {"dictVarName key varName ?key varName ...? script", dictUpdate},
		"values":  {"dictionary ?pattern?", dictValues},
		"with":    {"dictVarName ?key ...? script", dictWith},
	}
}

func cmdDict(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "subcommand ?arg ...?")
	}
	name := args[0].String()
	sub, ok := dictSubcommands[name]
	if !ok {
		return Errorf("unknown or ambiguous subcommand %q: must be append, create, exists, filter, for, get, incr, info, keys, lappend, merge, remove, replace, set, size, unset, update, values, or with", name)
	}
	return sub.fn(i, cmd, args[1:])
}

// dictUsage formats the wrong-args error of a dict subcommand.
func dictUsage(cmd *Obj, sub string) Result {
	return Errorf("wrong # args: should be \"%s %s %s\"", cmd.String(), sub, dictSubcommands[sub].usage)
}

// dictForUpdate returns the dictionary held by the variable name ready to
// be modified in place. A missing variable yields a new empty dictionary.
func (i *Interp) dictForUpdate(name *Obj) *Obj {
	d, err := i.ObjGetVar2(name, nil, 0)
	if err != nil {
		return NewDict()
	}
	if d.IsShared() {
		return d.Duplicate()
	}
	return d
}

func (i *Interp) storeDict(name, d *Obj) Result {
	v, err := i.ObjSetVar2(name, nil, d, 0)
	if err != nil {
		return Error(err)
	}
	return OK(v)
}

func dictAppend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "append")
	}
	d := i.dictForUpdate(args[0])
	cur, err := DictGet(d, args[1])
	if err != nil {
		return Error(err)
	}
	var b strings.Builder
	if cur != nil {
		b.WriteString(cur.String())
	}
	for _, a := range args[2:] {
		b.WriteString(a.String())
	}
	if err := DictPut(d, args[1], NewString(b.String())); err != nil {
		return Error(err)
	}
	return i.storeDict(args[0], d)
}

func dictCreate(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args)%2 != 0 {
		return dictUsage(cmd, "create")
	}
	d := NewDict()
	for idx := 0; idx < len(args); idx += 2 {
		DictPut(d, args[idx], args[idx+1])
	}
	return OK(d)
}

func dictExists(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "exists")
	}
	keys := args[1:]
	p, err := TraceDictPath(args[0], keys[:len(keys)-1], PathExists)
	if err != nil || !p.Exists {
		return OK(false)
	}
	v, err := DictGet(p.Leaf, keys[len(keys)-1])
	return OK(err == nil && v != nil)
}

func dictFilter(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "filter")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	kind := args[1].String()
	rest := args[2:]
	out := NewDict()

	switch kind {
	case "key", "value":
		for _, k := range d.Keys() {
			v := d.Lookup(k.String())
			subject := k
			if kind == "value" {
				subject = v
			}
			for _, pat := range rest {
				if i.Match(pat.String(), subject.String()) {
					DictPut(out, k, v)
					break
				}
			}
		}
		return OK(out)
	case "script":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"%s filter dictionary script {keyVarName valueVarName} filterScript\"", cmd.String())
		}
		keyVar, valueVar, err := twoVarNames(rest[0])
		if err != nil {
			return Error(err)
		}
		script := rest[1]
		args[0].IncrRef()
		defer args[0].DecrRef()
		s, k, v, done, err := DictFirst(args[0])
		if err != nil {
			return Error(err)
		}
		defer s.Done()
		for ; !done; k, v, done = s.Next() {
			if res := setLoopVars(i, keyVar, valueVar, k, v); res.Code() != ResultOK {
				return res
			}
			res := i.EvalObj(script)
			switch res.Code() {
			case ResultOK:
				keep, err := res.Obj().Bool()
				if err != nil {
					return Error(err)
				}
				if keep {
					DictPut(out, k, v)
				}
			case ResultBreak:
				return OK(out)
			case ResultContinue:
			default:
				return res
			}
		}
		return OK(out)
	}
	return Errorf("bad filterType %q: must be key, script, or value", kind)
}

func twoVarNames(o *Obj) (*Obj, *Obj, error) {
	names, err := o.List()
	if err != nil {
		return nil, nil, err
	}
	if len(names) != 2 {
		return nil, nil, errors.New("must have exactly two variable names")
	}
	return names[0], names[1], nil
}

func setLoopVars(i *Interp, keyVar, valueVar, k, v *Obj) Result {
	if _, err := i.ObjSetVar2(keyVar, nil, k, 0); err != nil {
		return Errorf("couldn't set key variable: %q", keyVar.String())
	}
	if _, err := i.ObjSetVar2(valueVar, nil, v, 0); err != nil {
		return Errorf("couldn't set value variable: %q", valueVar.String())
	}
	return OK("")
}

func dictFor(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 3 {
		return dictUsage(cmd, "for")
	}
	keyVar, valueVar, err := twoVarNames(args[0])
	if err != nil {
		return Error(err)
	}
	d, script := args[1], args[2]
	d.IncrRef()
	defer d.DecrRef()
	s, k, v, done, err := DictFirst(d)
	if err != nil {
		return Error(err)
	}
	defer s.Done()
	for ; !done; k, v, done = s.Next() {
		if res := setLoopVars(i, keyVar, valueVar, k, v); res.Code() != ResultOK {
			return res
		}
		res := i.EvalObj(script)
		switch res.Code() {
		case ResultOK, ResultContinue:
		case ResultBreak:
			return OK("")
		default:
			return res
		}
	}
	return OK("")
}

func dictGet(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return dictUsage(cmd, "get")
	}
	if len(args) == 1 {
		if _, err := args[0].Dict(); err != nil {
			return Error(err)
		}
		return OK(args[0])
	}
	v, err := DictGetKeyList(args[0], args[1:])
	if err != nil {
		return Error(err)
	}
	if v == nil {
		return Error(&KeyError{Key: args[len(args)-1].String()})
	}
	return OK(v)
}

func dictIncr(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 && len(args) != 3 {
		return dictUsage(cmd, "incr")
	}
	var incr int64 = 1
	if len(args) == 3 {
		n, err := args[2].Int()
		if err != nil {
			return Error(err)
		}
		incr = n
	}
	d := i.dictForUpdate(args[0])
	cur, err := DictGet(d, args[1])
	if err != nil {
		return Error(err)
	}
	n := incr
	if cur != nil {
		base, err := cur.Int()
		if err != nil {
			return Error(err)
		}
		n += base
	}
	if err := DictPut(d, args[1], NewInt(n)); err != nil {
		return Error(err)
	}
	return i.storeDict(args[0], d)
}

func dictInfo(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return dictUsage(cmd, "info")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	return OK(d.Stats())
}

func dictKeys(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 && len(args) != 2 {
		return dictUsage(cmd, "keys")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	var out []*Obj
	for _, k := range d.Keys() {
		if len(args) == 1 || i.Match(args[1].String(), k.String()) {
			out = append(out, k)
		}
	}
	return OK(NewList(out...))
}

func dictValues(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 && len(args) != 2 {
		return dictUsage(cmd, "values")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	var out []*Obj
	for _, k := range d.Keys() {
		v := d.Lookup(k.String())
		if len(args) == 1 || i.Match(args[1].String(), v.String()) {
			out = append(out, v)
		}
	}
	return OK(NewList(out...))
}

func dictLappend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "lappend")
	}
	d := i.dictForUpdate(args[0])
	cur, err := DictGet(d, args[1])
	if err != nil {
		return Error(err)
	}
	var list *Obj
	switch {
	case cur == nil:
		list = NewList()
	case cur.IsShared():
		list = cur.Duplicate()
	default:
		list = cur
	}
	for _, v := range args[2:] {
		if err := ListAppend(list, v); err != nil {
			return Error(err)
		}
	}
	if err := DictPut(d, args[1], list); err != nil {
		return Error(err)
	}
	return i.storeDict(args[0], d)
}

func dictMerge(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return OK(NewDict())
	}
	first, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	out := NewObj(first.Dup())
	for _, a := range args[1:] {
		d, err := a.Dict()
		if err != nil {
			return Error(err)
		}
		for _, k := range d.Keys() {
			DictPut(out, k, d.Lookup(k.String()))
		}
	}
	return OK(out)
}

func dictRemove(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return dictUsage(cmd, "remove")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	out := NewObj(d.Dup())
	for _, k := range args[1:] {
		DictRemove(out, k)
	}
	return OK(out)
}

func dictReplace(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 || len(args)%2 != 1 {
		return dictUsage(cmd, "replace")
	}
	d, err := args[0].Dict()
	if err != nil {
		return Error(err)
	}
	out := NewObj(d.Dup())
	for idx := 1; idx < len(args); idx += 2 {
		DictPut(out, args[idx], args[idx+1])
	}
	return OK(out)
}

func dictSet(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 3 {
		return dictUsage(cmd, "set")
	}
	d := i.dictForUpdate(args[0])
	if err := DictPutKeyList(d, args[1:len(args)-1], args[len(args)-1]); err != nil {
		return Error(err)
	}
	return i.storeDict(args[0], d)
}

func dictSize(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return dictUsage(cmd, "size")
	}
	n, err := DictSize(args[0])
	if err != nil {
		return Error(err)
	}
	return OK(n)
}

func dictUnset(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "unset")
	}
	d := i.dictForUpdate(args[0])
	if err := DictRemoveKeyList(d, args[1:]); err != nil {
		return Error(err)
	}
	return i.storeDict(args[0], d)
}

func dictUpdate(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 4 || len(args)%2 != 0 {
		return dictUsage(cmd, "update")
	}
	name := args[0]
	pairs := args[1 : len(args)-1]
	script := args[len(args)-1]

	d, err := i.ObjGetVar2(name, nil, 0)
	if err != nil {
		return Error(err)
	}
	dict, err := d.Dict()
	if err != nil {
		return Error(err)
	}
	for idx := 0; idx < len(pairs); idx += 2 {
		v := dict.Lookup(pairs[idx].String())
		if v == nil {
			i.ObjUnsetVar2(pairs[idx+1], nil, 0)
			continue
		}
		if _, err := i.ObjSetVar2(pairs[idx+1], nil, v, 0); err != nil {
			return Error(err)
		}
	}

	res := i.EvalObj(script)

	d, err = i.ObjGetVar2(name, nil, 0)
	if err != nil {
		return res
	}
	if _, err := d.Dict(); err != nil {
		return Error(err)
	}
	if d.IsShared() {
		d = d.Duplicate()
	}
	for idx := 0; idx < len(pairs); idx += 2 {
		v, err := i.ObjGetVar2(pairs[idx+1], nil, 0)
		switch {
		case err != nil:
			DictRemove(d, pairs[idx])
		case v == d:
			DictPut(d, pairs[idx], v.Duplicate())
		default:
			DictPut(d, pairs[idx], v)
		}
	}
	if _, err := i.ObjSetVar2(name, nil, d, 0); err != nil {
		return Error(err)
	}
	return res
}

func dictWith(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return dictUsage(cmd, "with")
	}
	name := args[0]
	path := args[1 : len(args)-1]
	script := args[len(args)-1]

	d, err := i.ObjGetVar2(name, nil, 0)
	if err != nil {
		return Error(err)
	}
	leaf := d
	if len(path) > 0 {
		p, err := TraceDictPath(d, path, PathRead)
		if err != nil {
			return Error(err)
		}
		leaf = p.Leaf
	}
	dict, err := leaf.Dict()
	if err != nil {
		return Error(err)
	}
	keys := dict.Keys()
	for _, k := range keys {
		k.IncrRef()
		defer k.DecrRef()
		if _, err := i.ObjSetVar2(k, nil, dict.Lookup(k.String()), 0); err != nil {
			return Error(err)
		}
	}

	res := i.EvalObj(script)
	if err := i.dictWithFinish(name, path, keys); err != nil {
		return Error(err)
	}
	return res
}

// dictWithFinish writes the variables named by keys back into the
// dictionary at path inside the variable name. Keys whose variable is gone
// are removed.
func (i *Interp) dictWithFinish(name *Obj, path, keys []*Obj) error {
	d, err := i.ObjGetVar2(name, nil, 0)
	if err != nil {
		return nil
	}
	if d.IsShared() {
		d = d.Duplicate()
	}
	leaf := d
	var p *DictPath
	if len(path) > 0 {
		p, err = TraceDictPath(d, path, PathUpdate)
		if err != nil {
			return err
		}
		leaf = p.Leaf
	} else if _, err := d.Dict(); err != nil {
		return err
	}
	for _, k := range keys {
		v, err := i.ObjGetVar2(k, nil, 0)
		switch {
		case err != nil:
			DictRemove(leaf, k)
		case v == leaf:
			DictPut(leaf, k, v.Duplicate())
		default:
			DictPut(leaf, k, v)
		}
	}
	if p != nil {
		p.Invalidate()
	}
	_, err = i.ObjSetVar2(name, nil, d, 0)
	return err
}
