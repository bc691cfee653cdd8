package typemap

import (
	"reflect"
	"sync"

	"github.com/roach88/procrt/internal/ir"
)

var (
	nodeType         = reflect.TypeFor[ir.Node]()
	relationshipType = reflect.TypeFor[ir.Relationship]()
	pathType         = reflect.TypeFor[ir.Path]()
)

// Mapper maps Go types to procedure type tags.
//
// Thread-safety: Register and Map may be called from any goroutine. In
// practice all registrations happen before compilation starts.
type Mapper struct {
	mu        sync.RWMutex
	overrides map[reflect.Type]ir.TypeTag
}

// New creates a Mapper with the default mappings.
func New() *Mapper {
	return &Mapper{overrides: make(map[reflect.Type]ir.TypeTag)}
}

// Register maps t to tag, replacing any earlier registration for t.
// Registered mappings take precedence over the defaults.
func (m *Mapper) Register(t reflect.Type, tag ir.TypeTag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[t] = tag
}

// RegisterType is the generic form of Mapper.Register.
//
// Example:
//
//	typemap.RegisterType[uuid.UUID](m, ir.TypeString)
//
// The tag only declares the column type. Values of T must still produce
// a conforming row value: a type registered as STRING should implement
// encoding.TextMarshaler (and, as a parameter, encoding.TextUnmarshaler),
// otherwise every row carrying it fails.
func RegisterType[T any](m *Mapper, tag ir.TypeTag) {
	m.Register(reflect.TypeFor[T](), tag)
}

// Map returns the type tag for t. Returns a *MappingError when t, or the
// element type of a list or map, has no mapping.
func (m *Mapper) Map(t reflect.Type) (ir.TypeTag, error) {
	return m.mapType(t, t)
}

func (m *Mapper) mapType(t, outer reflect.Type) (ir.TypeTag, error) {
	if t == nil {
		return ir.TypeTag{}, &MappingError{Type: t, Outer: outer}
	}

	m.mu.RLock()
	tag, ok := m.overrides[t]
	m.mu.RUnlock()
	if ok {
		return tag, nil
	}

	switch t {
	case nodeType:
		return ir.TypeNode, nil
	case relationshipType:
		return ir.TypeRelationship, nil
	case pathType:
		return ir.TypePath, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return m.mapType(t.Elem(), outer)
	case reflect.String:
		return ir.TypeString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ir.TypeInteger, nil
	case reflect.Float32, reflect.Float64:
		return ir.TypeFloat, nil
	case reflect.Bool:
		return ir.TypeBoolean, nil
	case reflect.Slice, reflect.Array:
		elem, err := m.mapType(t.Elem(), outer)
		if err != nil {
			return ir.TypeTag{}, err
		}
		return ir.ListOf(elem), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return ir.TypeTag{}, &MappingError{Type: t.Key(), Outer: outer}
		}
		if _, err := m.mapType(t.Elem(), outer); err != nil {
			return ir.TypeTag{}, err
		}
		return ir.TypeMap, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return ir.TypeAny, nil
		}
	}

	return ir.TypeTag{}, &MappingError{Type: t, Outer: outer}
}
