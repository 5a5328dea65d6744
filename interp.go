package tclcore

import (
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
)

// CommandFunc is the signature for commands.
//
// cmd is the command name as invoked, args are the arguments after it.
type CommandFunc func(i *Interp, cmd *Obj, args []*Obj) Result

// Evaluator runs a script. The interpreter has no parser of its own; the
// embedder installs one with SetEvaluator.
type Evaluator func(i *Interp, script *Obj) Result

// Matcher reports whether s matches a glob pattern.
type Matcher func(pattern, s string) bool

// DefaultMatcher matches with path.Match. Malformed patterns match nothing.
func DefaultMatcher(pattern, s string) bool {
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// Interp holds variables, namespaces, the call stack and the command table.
// An Interp is not safe for concurrent use.
type Interp struct {
	global    *Namespace
	rootFrame *CallFrame
	frame     *CallFrame
	varFrame  *CallFrame
	depth     int
	evalDepth int

	resolvers []VarResolver
	config    Config
	logger    *slog.Logger
	matcher   Matcher
	commands  map[string]CommandFunc
	evaluator Evaluator
	stdout    io.Writer
}

// New creates an interpreter with the default configuration.
func New() *Interp {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an interpreter with the given configuration and
// the variable, array, dict and trace commands registered.
func NewWithConfig(cfg Config) *Interp {
	i := &Interp{
		global:   newNamespace("", nil),
		config:   cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		matcher:  DefaultMatcher,
		commands: make(map[string]CommandFunc),
		stdout:   os.Stdout,
	}
	i.rootFrame = &CallFrame{ns: i.global}
	i.frame = i.rootFrame
	i.varFrame = i.rootFrame
	registerBuiltins(i)
	return i
}

// Config returns the interpreter's configuration.
func (i *Interp) Config() Config { return i.config }

// SetLogger replaces the logger. A nil logger discards everything.
func (i *Interp) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	i.logger = l
}

// Logger returns the interpreter's logger.
func (i *Interp) Logger() *slog.Logger { return i.logger }

// SetMatcher replaces the glob matcher used by pattern-taking commands.
func (i *Interp) SetMatcher(m Matcher) {
	if m == nil {
		m = DefaultMatcher
	}
	i.matcher = m
}

// Match applies the interpreter's glob matcher.
func (i *Interp) Match(pattern, s string) bool { return i.matcher(pattern, s) }

// AddResolver installs an interpreter-wide variable resolver. Resolvers
// are consulted after the namespace's own resolver, in installation order.
func (i *Interp) AddResolver(r VarResolver) {
	i.resolvers = append(i.resolvers, r)
}

// SetStdout sets the writer used by output commands.
func (i *Interp) SetStdout(w io.Writer) { i.stdout = w }

// Stdout returns the writer used by output commands.
func (i *Interp) Stdout() io.Writer { return i.stdout }

// RegisterCommand adds or replaces a command.
func (i *Interp) RegisterCommand(name string, fn CommandFunc) {
	i.commands[strings.TrimPrefix(name, "::")] = fn
}

// UnregisterCommand removes a command.
func (i *Interp) UnregisterCommand(name string) {
	delete(i.commands, strings.TrimPrefix(name, "::"))
}

// HasCommand reports whether a command exists.
func (i *Interp) HasCommand(name string) bool {
	_, ok := i.commands[strings.TrimPrefix(name, "::")]
	return ok
}

// Invoke runs the command named by words[0].
func (i *Interp) Invoke(words []*Obj) Result {
	if len(words) == 0 {
		return OK("")
	}
	name := words[0].String()
	fn, ok := i.lookupCommand(name)
	if !ok {
		return Errorf("invalid command name %q", name)
	}
	return fn(i, words[0], words[1:])
}

// lookupCommand resolves a command name relative to the current namespace,
// then globally.
func (i *Interp) lookupCommand(name string) (CommandFunc, bool) {
	if !strings.HasPrefix(name, "::") {
		if ns := i.CurrentNamespace(); ns != i.global {
			if fn, ok := i.commands[strings.TrimPrefix(ns.fullName, "::")+"::"+name]; ok {
				return fn, true
			}
		}
	}
	fn, ok := i.commands[strings.TrimPrefix(name, "::")]
	return fn, ok
}

// SetEvaluator installs the script evaluator.
func (i *Interp) SetEvaluator(e Evaluator) { i.evaluator = e }

// EvalObj runs a script through the installed evaluator.
func (i *Interp) EvalObj(script *Obj) Result {
	if i.evaluator == nil {
		return Error("no script evaluator installed")
	}
	if i.evalDepth >= i.config.RecursionLimit {
		return Error("too many nested evaluations (infinite loop?)")
	}
	i.evalDepth++
	defer func() { i.evalDepth-- }()
	return i.evaluator(i, script)
}

// Eval runs a script given as a string.
func (i *Interp) Eval(script string) Result {
	return i.EvalObj(NewString(script))
}
