package tclcore

import (
	"io"
	"strings"
)

// registerBuiltins installs the commands every interpreter starts with.
func registerBuiltins(i *Interp) {
	for name, fn := range map[string]CommandFunc{
		"append":    cmdAppend,
		"array":     cmdArray,
		"break":     cmdBreak,
		"catch":     cmdCatch,
		"continue":  cmdContinue,
		"dict":      cmdDict,
		"error":     cmdError,
		"global":    cmdGlobal,
		"incr":      cmdIncr,
		"info":      cmdInfo,
		"lappend":   cmdLappend,
		"list":      cmdList,
		"namespace": cmdNamespace,
		"proc":      cmdProc,
		"puts":      cmdPuts,
		"return":    cmdReturn,
		"set":       cmdSet,
		"trace":     cmdTrace,
		"unset":     cmdUnset,
		"uplevel":   cmdUplevel,
		"upvar":     cmdUpvar,
		"variable":  cmdVariable,
	} {
		i.RegisterCommand(name, fn)
	}
}

type procParam struct {
	name       string
	def        *Obj
	hasDefault bool
}

// procedure is a command defined by proc.
type procedure struct {
	name   string
	ns     *Namespace
	params []procParam
	body   *Obj
}

func (p *procedure) usage() string {
	var b strings.Builder
	b.WriteString(p.name)
	for idx, a := range p.params {
		b.WriteByte(' ')
		switch {
		case a.name == "args" && idx == len(p.params)-1:
			b.WriteString("?arg ...?")
		case a.hasDefault:
			b.WriteString("?" + a.name + "?")
		default:
			b.WriteString(a.name)
		}
	}
	return b.String()
}

func (p *procedure) call(i *Interp, cmd *Obj, args []*Obj) Result {
	names := make([]string, len(p.params))
	values := make([]*Obj, len(p.params))
	for idx, a := range p.params {
		names[idx] = a.name
		switch {
		case a.name == "args" && idx == len(p.params)-1:
			rest := []*Obj{}
			if idx < len(args) {
				rest = args[idx:]
			}
			values[idx] = NewList(rest...)
		case idx < len(args):
			values[idx] = args[idx]
		case a.hasDefault:
			values[idx] = a.def
		default:
			return Errorf("wrong # args: should be \"%s\"", p.usage())
		}
	}
	if len(args) > len(p.params) && (len(p.params) == 0 || p.params[len(p.params)-1].name != "args") {
		return Errorf("wrong # args: should be \"%s\"", p.usage())
	}
	if i.depth >= i.config.RecursionLimit {
		return Error("too many nested evaluations (infinite loop?)")
	}

	f := i.PushProcFrame(p.ns, names)
	defer i.PopFrame()
	for idx, v := range values {
		f.locals[idx].setScalar(v)
	}
	res := i.EvalObj(p.body)
	switch res.Code() {
	case ResultReturn:
		return OK(res.Obj())
	case ResultBreak:
		return Error("invoked \"break\" outside of a loop")
	case ResultContinue:
		return Error("invoked \"continue\" outside of a loop")
	}
	return res
}

func cmdProc(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 3 {
		return wrongArgs(cmd, "name args body")
	}
	name := args[0].String()
	ns := i.CurrentNamespace()
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		qual := name[:idx]
		if qual == "" {
			ns = i.global
		} else if ns = i.FindNamespace(qual); ns == nil {
			return Errorf("can't create procedure %q: unknown namespace", name)
		}
		name = name[idx+2:]
	}
	specs, err := args[1].List()
	if err != nil {
		return Error(err)
	}
	p := &procedure{name: name, ns: ns, body: args[2]}
	for _, spec := range specs {
		parts, err := spec.List()
		if err != nil {
			return Error(err)
		}
		switch len(parts) {
		case 1:
			p.params = append(p.params, procParam{name: parts[0].String()})
		case 2:
			p.params = append(p.params, procParam{name: parts[0].String(), def: parts[1], hasDefault: true})
		default:
			return Errorf("too many fields in argument specifier %q", spec.String())
		}
	}
	args[2].IncrRef()
	full := name
	if ns != i.global {
		full = strings.TrimPrefix(ns.fullName, "::") + "::" + name
		p.name = full
	}
	i.RegisterCommand(full, p.call)
	return OK("")
}

func cmdReturn(i *Interp, cmd *Obj, args []*Obj) Result {
	switch len(args) {
	case 0:
		return Return("")
	case 1:
		return Return(args[0])
	}
	return wrongArgs(cmd, "?value?")
}

func cmdBreak(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 0 {
		return wrongArgs(cmd, "")
	}
	return Break()
}

func cmdContinue(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 0 {
		return wrongArgs(cmd, "")
	}
	return Continue()
}

func cmdError(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return wrongArgs(cmd, "message")
	}
	return Error(args[0])
}

func cmdCatch(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 && len(args) != 2 {
		return wrongArgs(cmd, "script ?resultVarName?")
	}
	res := i.EvalObj(args[0])
	if len(args) == 2 {
		if _, err := i.ObjSetVar2(args[1], nil, res.Obj(), 0); err != nil {
			return Error("couldn't save command result in variable")
		}
	}
	return OK(int(res.Code()))
}

func cmdList(i *Interp, cmd *Obj, args []*Obj) Result {
	return OK(NewList(args...))
}

func cmdPuts(i *Interp, cmd *Obj, args []*Obj) Result {
	newline := true
	if len(args) == 2 && args[0].String() == "-nonewline" {
		newline = false
		args = args[1:]
	}
	if len(args) != 1 {
		return wrongArgs(cmd, "?-nonewline? string")
	}
	s := args[0].String()
	if newline {
		s += "\n"
	}
	if _, err := io.WriteString(i.stdout, s); err != nil {
		return Errorf("error writing \"stdout\": %v", err)
	}
	return OK("")
}

func cmdUplevel(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "?level? command ?arg ...?")
	}
	level, rest := "1", args
	if len(args) > 1 {
		level, rest = levelArg(args)
	}
	if len(rest) == 0 {
		return wrongArgs(cmd, "?level? command ?arg ...?")
	}
	f, err := i.GetFrame(level)
	if err != nil {
		return Error(err)
	}
	script := rest[0]
	if len(rest) > 1 {
		words := make([]string, len(rest))
		for idx, r := range rest {
			words[idx] = r.String()
		}
		script = NewString(strings.Join(words, " "))
	}
	saved := i.varFrame
	i.varFrame = f
	defer func() { i.varFrame = saved }()
	return i.EvalObj(script)
}

func cmdNamespace(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "subcommand ?arg ...?")
	}
	sub, rest := args[0].String(), args[1:]
	switch sub {
	case "current":
		if len(rest) != 0 {
			return Errorf("wrong # args: should be \"%s current\"", cmd.String())
		}
		return OK(i.CurrentNamespace().FullName())
	case "eval":
		if len(rest) < 2 {
			return Errorf("wrong # args: should be \"%s eval name arg ?arg...?\"", cmd.String())
		}
		ns := i.CreateNamespace(rest[0].String())
		script := rest[1]
		if len(rest) > 2 {
			words := make([]string, len(rest)-1)
			for idx, r := range rest[1:] {
				words[idx] = r.String()
			}
			script = NewString(strings.Join(words, " "))
		}
		if i.depth >= i.config.RecursionLimit {
			return Error("too many nested evaluations (infinite loop?)")
		}
		i.PushNamespaceFrame(ns)
		defer i.PopFrame()
		return i.EvalObj(script)
	case "delete":
		for _, r := range rest {
			ns := i.FindNamespace(r.String())
			if ns == nil {
				return Errorf("unknown namespace %q in namespace delete command", r.String())
			}
			i.DeleteNamespace(ns)
		}
		return OK("")
	case "exists":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"%s exists name\"", cmd.String())
		}
		return OK(i.FindNamespace(rest[0].String()) != nil)
	case "children":
		ns := i.CurrentNamespace()
		if len(rest) > 0 {
			if ns = i.FindNamespace(rest[0].String()); ns == nil {
				return Errorf("namespace %q not found in %q", rest[0].String(), i.CurrentNamespace().FullName())
			}
		}
		var out []string
		for _, c := range ns.Children() {
			out = append(out, c.FullName())
		}
		return OK(NewStringList(out...))
	}
	return Errorf("unknown or ambiguous subcommand %q: must be children, current, delete, eval, or exists", sub)
}

func cmdInfo(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(cmd, "subcommand ?arg ...?")
	}
	sub, rest := args[0].String(), args[1:]
	pattern := func() string {
		if len(rest) > 0 {
			return rest[0].String()
		}
		return ""
	}
	switch sub {
	case "exists":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"%s exists varName\"", cmd.String())
		}
		return OK(i.VarExists(rest[0].String()))
	case "vars":
		return OK(NewStringList(i.VarNames(pattern())...))
	case "globals":
		var out []string
		for _, n := range i.global.VarNames() {
			if pattern() == "" || i.Match(pattern(), n) {
				out = append(out, n)
			}
		}
		return OK(NewStringList(out...))
	case "level":
		if len(rest) == 0 {
			return OK(i.varFrame.level)
		}
		return Errorf("wrong # args: should be \"%s level\"", cmd.String())
	}
	return Errorf("unknown or ambiguous subcommand %q: must be exists, globals, level, or vars", sub)
}
