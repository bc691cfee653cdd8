package compiler

import (
	"errors"
	"fmt"
)

// CompilationErrorCode categorizes compilation errors.
type CompilationErrorCode string

const (
	// ErrCodeConstructor indicates the group has no usable public
	// no-argument constructor. Fails the whole group.
	ErrCodeConstructor CompilationErrorCode = "NO_USABLE_CONSTRUCTOR"

	// ErrCodeResourceField indicates a resource field that cannot be
	// assigned. Fails the whole group.
	ErrCodeResourceField CompilationErrorCode = "UNASSIGNABLE_RESOURCE"

	// ErrCodeInvalidGroup indicates a group type that is not a struct.
	ErrCodeInvalidGroup CompilationErrorCode = "INVALID_GROUP"

	// ErrCodeDuplicateMember indicates two members share a name.
	ErrCodeDuplicateMember CompilationErrorCode = "DUPLICATE_MEMBER"

	// ErrCodeInvalidMember indicates a member with an empty name or a
	// record or argument type that is not a struct.
	ErrCodeInvalidMember CompilationErrorCode = "INVALID_MEMBER"
)

// CompilationError reports a declaration group or member that cannot be
// compiled.
//
// Error returns Message unchanged: messages are written for the extension
// author and some are matched verbatim by tooling.
type CompilationError struct {
	Code CompilationErrorCode

	// Group is the simple name of the declaration group.
	Group string

	// Member is the procedure member, empty for whole-group failures.
	Member string

	Message string
}

func (e *CompilationError) Error() string {
	return e.Message
}

// TypeMappingError reports a record or argument field whose Go type has no
// procedure type tag. Only the member that declares the field fails.
type TypeMappingError struct {
	Group  string
	Member string
	Field  string
	Cause  error
}

func (e *TypeMappingError) Error() string {
	return fmt.Sprintf("procedure `%s` in `%s`: field `%s`: %v", e.Member, e.Group, e.Field, e.Cause)
}

// Unwrap returns the mapping failure, which matches typemap.ErrNoMapping.
func (e *TypeMappingError) Unwrap() error {
	return e.Cause
}

// IsConstructorError reports whether err is, or joins, a constructor
// CompilationError.
func IsConstructorError(err error) bool {
	var ce *CompilationError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeConstructor
	}
	return false
}

// IsGroupError reports whether err failed a whole declaration group, so
// that Compile returned no handles for it. Member-level failures are not
// group errors.
func IsGroupError(err error) bool {
	var ce *CompilationError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case ErrCodeConstructor, ErrCodeResourceField, ErrCodeInvalidGroup:
		return true
	}
	return false
}

func constructorError(group string) *CompilationError {
	return &CompilationError{
		Code:  ErrCodeConstructor,
		Group: group,
		Message: fmt.Sprintf("Unable to find a usable public no-argument constructor in the class `%s`. "+
			"Please add a valid, public constructor, recompile the class and try again.", group),
	}
}
