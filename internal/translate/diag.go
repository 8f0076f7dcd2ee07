package translate

import (
	"fmt"
	"runtime"
)

// Kind is one of the three error kinds this translator defines, forming a
// strict subset lattice: OutOfMemory is unrecoverable, the two
// Unsupported kinds are caught at decl boundaries and converted into
// diagnostic declarations.
type Kind int

const (
	KindOutOfMemory Kind = iota
	KindUnsupportedType
	KindUnsupportedTranslation
)

func (k Kind) String() string {
	switch k {
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindUnsupportedTranslation:
		return "UnsupportedTranslation"
	default:
		return "Kind(?)"
	}
}

// TranslateError wraps a translation failure with the kind that
// determines how the caller must react.
type TranslateError struct {
	Kind Kind
	Pos  string // "file:line:col", empty if not associated with a source location
	msg  string
	err  error
}

func (e *TranslateError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *TranslateError) Unwrap() error { return e.err }

// errorf mirrors ccgo/v4/lib/*.go's own `errorf` helper (every file
// there wraps its failures through one such function rather than a
// logging framework): it tags the call site so a trace of failures
// during development reads like a stack, without pulling in a
// structured-logging dependency.
func errorf(kind Kind, format string, args ...interface{}) *TranslateError {
	msg := fmt.Sprintf(format, args...)
	if _, file, line, ok := runtime.Caller(1); ok {
		msg = fmt.Sprintf("%s (%s:%d)", msg, file, line)
	}
	return &TranslateError{Kind: kind, msg: msg}
}

func oom(err error) *TranslateError {
	return &TranslateError{Kind: KindOutOfMemory, msg: "allocation failed", err: err}
}

// unsupportedType reports a type the Type Translator could not
// express.
func unsupportedType(pos, format string, args ...interface{}) *TranslateError {
	e := errorf(KindUnsupportedType, format, args...)
	e.Pos = pos
	return e
}

// unsupportedTranslation reports a statement/expression the Lowerer
// could not express.
func unsupportedTranslation(pos, format string, args ...interface{}) *TranslateError {
	e := errorf(KindUnsupportedTranslation, format, args...)
	e.Pos = pos
	return e
}
