package core

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	LexError ErrorKind = iota
	ParseError
	BindError
	SchemaError
	TypeError
	ConstraintError
	ArithmeticError
	IOError
)

func (kind ErrorKind) String() string {
	switch kind {
	case LexError:
		return "Lex"
	case ParseError:
		return "Parse"
	case BindError:
		return "Bind"
	case SchemaError:
		return "Schema"
	case TypeError:
		return "Type"
	case ConstraintError:
		return "Constraint"
	case ArithmeticError:
		return "Arithmetic"
	case IOError:
		return "IO"
	default:
		return "Unknown"
	}
}

// Error is the user-visible error value returned from every public
// entry point. Kind is the coarse classification; Msg is the
// human-readable detail.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + " error: " + e.Msg
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err if it is (or wraps) a core.Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
