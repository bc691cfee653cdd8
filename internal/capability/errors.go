package capability

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnresolved is matched by every ResolutionError.
var ErrUnresolved = errors.New("unresolved capability")

// ResolutionError reports a capability that could not be produced, either
// because no provider is registered for its marker or because the provider
// failed. Cause is nil in the first case.
type ResolutionError struct {
	Marker reflect.Type
	Cause  error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve capability %s: %v", markerName(e.Marker), e.Cause)
	}
	return fmt.Sprintf("no provider registered for capability %s", markerName(e.Marker))
}

// Unwrap returns the provider's error, if any.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches ErrUnresolved.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

func markerName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
