package tclcore

import (
	"errors"
	"fmt"
)

// ResultCode is the completion code of a command.
type ResultCode int

const (
	ResultOK ResultCode = iota
	ResultError
	ResultReturn
	ResultBreak
	ResultContinue
)

func (c ResultCode) String() string {
	switch c {
	case ResultOK:
		return "ok"
	case ResultError:
		return "error"
	case ResultReturn:
		return "return"
	case ResultBreak:
		return "break"
	case ResultContinue:
		return "continue"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Result represents the result of a command execution.
//
// Create results using [OK], [Error], or [Errorf].
type Result struct {
	code ResultCode
	obj  *Obj
	err  error
}

// OK returns a successful result with a value.
//
// Pass a [*Obj] directly to preserve its internal type (int, list, dict, etc.).
//
//	return tclcore.OK("success")
//	return tclcore.OK(42)
//	return tclcore.OK(myObj)
func OK(v any) Result {
	return Result{code: ResultOK, obj: toObj(v)}
}

// Error returns an error result. v may be a string, a [*Obj] or an error;
// an error stays available through [Result.Err].
//
//	return tclcore.Error("something went wrong")
//	return tclcore.Error(err)
func Error(v any) Result {
	if err, ok := v.(error); ok {
		return Result{code: ResultError, obj: NewString(err.Error()), err: err}
	}
	return Result{code: ResultError, obj: toObj(v)}
}

// Errorf returns a formatted error result.
//
//	return tclcore.Errorf("expected %d args, got %d", want, got)
func Errorf(format string, args ...any) Result {
	err := fmt.Errorf(format, args...)
	return Result{code: ResultError, obj: NewString(err.Error()), err: err}
}

// Return, Break and Continue build the non-local completion codes.
func Return(v any) Result { return Result{code: ResultReturn, obj: toObj(v)} }
func Break() Result       { return Result{code: ResultBreak, obj: NewString("")} }
func Continue() Result    { return Result{code: ResultContinue, obj: NewString("")} }

// Code returns the completion code.
func (r Result) Code() ResultCode { return r.code }

// Obj returns the result value, or the error message for errors.
func (r Result) Obj() *Obj {
	if r.obj == nil {
		return NewString("")
	}
	return r.obj
}

// String returns the result value as a string.
func (r Result) String() string { return r.Obj().String() }

// Err returns nil unless the result is an error.
func (r Result) Err() error {
	if r.code != ResultError {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return errors.New(r.String())
}

func toObj(v any) *Obj {
	switch val := v.(type) {
	case nil:
		return NewString("")
	case *Obj:
		if val == nil {
			return NewString("")
		}
		return val
	case string:
		return NewString(val)
	case int:
		return NewInt(int64(val))
	case int64:
		return NewInt(val)
	case float64:
		return NewDouble(val)
	case bool:
		return NewBool(val)
	case []string:
		return NewStringList(val...)
	case error:
		return NewString(val.Error())
	default:
		return NewString(fmt.Sprintf("%v", v))
	}
}
