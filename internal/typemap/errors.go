package typemap

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoMapping is matched by every MappingError.
var ErrNoMapping = errors.New("no type mapping")

// MappingError reports a Go type that has no procedure type tag.
// For list and map types, Type is the offending element type and
// Outer is the type that was being mapped.
type MappingError struct {
	Type  reflect.Type
	Outer reflect.Type
}

func (e *MappingError) Error() string {
	if e.Outer != nil && e.Outer != e.Type {
		return fmt.Sprintf("don't know how to map %s (element of %s) to a procedure type", typeName(e.Type), typeName(e.Outer))
	}
	return fmt.Sprintf("don't know how to map %s to a procedure type", typeName(e.Type))
}

// Is matches ErrNoMapping.
func (e *MappingError) Is(target error) bool {
	return target == ErrNoMapping
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
