package geofilter

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrParse         ErrorKind = "parse"
	ErrType          ErrorKind = "type"
	ErrRegistration  ErrorKind = "registration"
	ErrConfig        ErrorKind = "config"
	ErrSetup         ErrorKind = "setup"
	ErrEval          ErrorKind = "eval"
	ErrUnsupportedFn ErrorKind = "unsupported_function"
	ErrSQL           ErrorKind = "sql"
	ErrIO            ErrorKind = "io"
	ErrCRS           ErrorKind = "crs"
)

type Error struct {
	Kind     ErrorKind
	Message  string
	Function string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Function != "" {
		base = fmt.Sprintf("%s (function=%s)", base, e.Function)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func TypeError(fn, msg string) *Error {
	return &Error{Kind: ErrType, Message: msg, Function: fn}
}

func RegistrationError(fn, msg string) *Error {
	return &Error{Kind: ErrRegistration, Message: msg, Function: fn}
}

func EvalError(msg string) *Error {
	return &Error{Kind: ErrEval, Message: msg}
}

func ConfigError(msg string) *Error {
	return &Error{Kind: ErrConfig, Message: msg}
}

func UnsupportedFunctionError(fn, dialect string) *Error {
	return &Error{
		Kind:     ErrUnsupportedFn,
		Message:  fmt.Sprintf("no SQL lowering for dialect %q", dialect),
		Function: fn,
	}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
