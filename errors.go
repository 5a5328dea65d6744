package tclcore

import (
	"errors"
	"fmt"
)

// Reasons reported by variable operations. They are wrapped in a VarError
// carrying the operation verb and the variable name.
var (
	ErrNoSuchVariable  = errors.New("no such variable")
	ErrVarIsArray      = errors.New("variable is array")
	ErrVarNotArray     = errors.New("variable isn't array")
	ErrNoSuchElement   = errors.New("no such element in array")
	ErrDanglingElement = errors.New("upvar refers to element in deleted array")
	ErrDanglingVar     = errors.New("upvar refers to variable in deleted namespace")
	ErrBadNamespace    = errors.New("parent namespace doesn't exist")
	ErrMissingName     = errors.New("missing variable name")
	ErrIsArrayElement  = errors.New("name refers to an element in an array")

	// ErrElementSyntax is reported when a name already carries an element
	// part "a(b)" and an element was supplied separately as well.
	ErrElementSyntax = errors.New("variable isn't array")
)

// Linkage failures. These render as complete messages of their own.
var (
	ErrSelfReference = errors.New("can't upvar from variable to itself")
	ErrHasTraces     = errors.New("variable has traces")
	ErrBadVarName    = errors.New("bad variable name")
	ErrAlreadyExists = errors.New("variable already exists")
	ErrBadLevel      = errors.New("bad level")
)

// ErrTraceFailed matches errors raised by a variable trace callback.
var ErrTraceFailed = errors.New("trace failed")

// VarError describes a failed variable operation. It renders as
//
//	can't <op> "<part1>[(<part2>)]": <reason>
type VarError struct {
	Op       string
	Part1    string
	Part2    string
	HasPart2 bool
	Err      error
}

func (e *VarError) Error() string {
	return fmt.Sprintf("can't %s %q: %s", e.Op, e.Name(), e.Err.Error())
}

func (e *VarError) Unwrap() error { return e.Err }

// Name returns the variable name as written, with the element part.
func (e *VarError) Name() string {
	if e.HasPart2 {
		return e.Part1 + "(" + e.Part2 + ")"
	}
	return e.Part1
}

func varErr(op, part1 string, part2 *string, reason error) *VarError {
	e := &VarError{Op: op, Part1: part1, Err: reason}
	if part2 != nil {
		e.Part2 = *part2
		e.HasPart2 = true
	}
	return e
}

// messageError is an error with a fixed message matching a sentinel.
type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

func errorf(kind error, format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: kind}
}

// traceError wraps the failure of a trace callback.
type traceError struct{ cause error }

func (e *traceError) Error() string        { return e.cause.Error() }
func (e *traceError) Unwrap() error        { return e.cause }
func (e *traceError) Is(target error) bool { return target == ErrTraceFailed }

// ErrorKind classifies recoverable failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNameSyntax
	KindScopeResolution
	KindTypeConflict
	KindNotFound
	KindLifetime
	KindTrace
)

func (k ErrorKind) String() string {
	switch k {
	case KindNameSyntax:
		return "NameSyntaxError"
	case KindScopeResolution:
		return "ScopeResolutionError"
	case KindTypeConflict:
		return "TypeConflictError"
	case KindNotFound:
		return "NotFoundError"
	case KindLifetime:
		return "LifetimeError"
	case KindTrace:
		return "TraceError"
	}
	return "UnknownError"
}

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrTraceFailed, KindTrace},
	{ErrElementSyntax, KindNameSyntax},
	{ErrMissingName, KindNameSyntax},
	{ErrBadVarName, KindNameSyntax},
	{ErrIsArrayElement, KindNameSyntax},
	{ErrBadNamespace, KindScopeResolution},
	{ErrBadLevel, KindScopeResolution},
	{ErrVarIsArray, KindTypeConflict},
	{ErrVarNotArray, KindTypeConflict},
	{ErrWrongType, KindTypeConflict},
	{ErrAlreadyExists, KindTypeConflict},
	{ErrHasTraces, KindTypeConflict},
	{ErrNoSuchVariable, KindNotFound},
	{ErrNoSuchElement, KindNotFound},
	{ErrDanglingVar, KindLifetime},
	{ErrDanglingElement, KindLifetime},
	{ErrSelfReference, KindLifetime},
}

// KindOf returns the classification of err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ke *KeyError
	if errors.As(err, &ke) {
		return KindNotFound
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
