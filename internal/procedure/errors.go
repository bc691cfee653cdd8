package procedure

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned by Rows.Next once the sequence has no more rows.
	ErrExhausted = errors.New("no more rows")

	// ErrArity is matched by ArgumentErrors for a wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")

	// ErrArgumentType is matched by ArgumentErrors for a mistyped argument.
	ErrArgumentType = errors.New("argument type mismatch")
)

// ArgumentError reports positional arguments that do not match a
// procedure's declared inputs.
type ArgumentError struct {
	Procedure string
	Reason    error // ErrArity or ErrArgumentType
	Message   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("procedure `%s`: %s", e.Procedure, e.Message)
}

// Unwrap returns ErrArity or ErrArgumentType.
func (e *ArgumentError) Unwrap() error {
	return e.Reason
}

// InvocationError reports a failure in user or injected code while calling
// a procedure or producing one of its rows. The original cause is kept.
type InvocationError struct {
	Procedure string

	// Row is the zero-based index of the row being produced, or -1 when the
	// failure happened before the first row was requested.
	Row int

	Cause error
}

func (e *InvocationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("failed to invoke procedure `%s`: %v", e.Procedure, e.Cause)
	}
	return fmt.Sprintf("procedure `%s` failed producing row %d: %v", e.Procedure, e.Row, e.Cause)
}

// Unwrap returns the original cause.
func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// PanicError carries a value recovered from a panicking procedure.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsInvocationError reports whether err is, or wraps, an InvocationError.
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
