package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// The current token doesn't match what the active grammar rule requires.
	UnexpectedTokenError ErrorKind = iota
	// A segment or command outside the vm instruction set was passed to the VMWriter.
	InvalidInstructionError
	// Trailing tokens after the class, or cursor misuse on the Tokenizer.
	StructuralError
)

func (kind ErrorKind) String() string {
	switch kind {
	case UnexpectedTokenError:
		return "unexpected token"
	case InvalidInstructionError:
		return "invalid instruction"
	case StructuralError:
		return "structural error"
	}
	return "unknown error"
}

// CompileError is the only error type produced while compiling a single class. The first one
// aborts the compilation unit.
type CompileError struct {
	Kind ErrorKind
	Near string
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s near %q: %s", e.Kind, e.Near, e.Msg)
}

// ErrNoSourceFiles is returned when a directory holds no jack files. Callers treat it as a warning.
var ErrNoSourceFiles = errors.New("no jack source files found")

func makeError(kind ErrorKind, near string, format string, args ...interface{}) error {
	return errors.WithStack(&CompileError{Kind: kind, Near: near, Msg: fmt.Sprintf(format, args...)})
}

// AsCompileError returns the CompileError carried by err, if any.
func AsCompileError(err error) (*CompileError, bool) {
	compileErr, ok := errors.Cause(err).(*CompileError)
	return compileErr, ok
}
