package typemap

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procrt/internal/ir"
)

type label string

type shout interface{ Shout() string }

func TestMapDefaults(t *testing.T) {
	m := New()

	tests := []struct {
		name string
		typ  reflect.Type
		want ir.TypeTag
	}{
		{"string", reflect.TypeFor[string](), ir.TypeString},
		{"named string", reflect.TypeFor[label](), ir.TypeString},
		{"int", reflect.TypeFor[int](), ir.TypeInteger},
		{"int64", reflect.TypeFor[int64](), ir.TypeInteger},
		{"uint8", reflect.TypeFor[uint8](), ir.TypeInteger},
		{"float32", reflect.TypeFor[float32](), ir.TypeFloat},
		{"float64", reflect.TypeFor[float64](), ir.TypeFloat},
		{"bool", reflect.TypeFor[bool](), ir.TypeBoolean},
		{"pointer to string", reflect.TypeFor[*string](), ir.TypeString},
		{"any", reflect.TypeFor[any](), ir.TypeAny},
		{"map", reflect.TypeFor[map[string]any](), ir.TypeMap},
		{"node", reflect.TypeFor[ir.Node](), ir.TypeNode},
		{"node pointer", reflect.TypeFor[*ir.Node](), ir.TypeNode},
		{"relationship", reflect.TypeFor[ir.Relationship](), ir.TypeRelationship},
		{"path", reflect.TypeFor[ir.Path](), ir.TypePath},
		{"list of string", reflect.TypeFor[[]string](), ir.ListOf(ir.TypeString)},
		{"array of int", reflect.TypeFor[[3]int](), ir.ListOf(ir.TypeInteger)},
		{"list of list", reflect.TypeFor[[][]float64](), ir.ListOf(ir.ListOf(ir.TypeFloat))},
		{"list of nodes", reflect.TypeFor[[]ir.Node](), ir.ListOf(ir.TypeNode)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Map(tt.typ)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestMapUnmapped(t *testing.T) {
	m := New()

	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"struct", reflect.TypeFor[time.Time]()},
		{"chan", reflect.TypeFor[chan int]()},
		{"func", reflect.TypeFor[func()]()},
		{"non-empty interface", reflect.TypeFor[shout]()},
		{"complex", reflect.TypeFor[complex128]()},
		{"int keyed map", reflect.TypeFor[map[int]string]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Map(tt.typ)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoMapping))

			var me *MappingError
			require.True(t, errors.As(err, &me))
		})
	}
}

func TestMapListWithUnmappedElement(t *testing.T) {
	m := New()

	_, err := m.Map(reflect.TypeFor[[]chan int]())
	require.Error(t, err)

	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, reflect.TypeFor[chan int](), me.Type)
	assert.Equal(t, reflect.TypeFor[[]chan int](), me.Outer)
	assert.Contains(t, err.Error(), "chan int")
	assert.Contains(t, err.Error(), "[]chan int")
}

func TestMapMapWithUnmappedValue(t *testing.T) {
	m := New()

	_, err := m.Map(reflect.TypeFor[map[string]func()]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMapping))
}

func TestRegisterAddsMapping(t *testing.T) {
	m := New()
	RegisterType[time.Time](m, ir.TypeString)

	got, err := m.Map(reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.True(t, got.Equal(ir.TypeString))

	got, err = m.Map(reflect.TypeFor[[]time.Time]())
	require.NoError(t, err)
	assert.True(t, got.Equal(ir.ListOf(ir.TypeString)))
}

func TestRegisterLastWins(t *testing.T) {
	m := New()
	RegisterType[label](m, ir.TypeInteger)
	RegisterType[label](m, ir.TypeFloat)

	got, err := m.Map(reflect.TypeFor[label]())
	require.NoError(t, err)
	assert.True(t, got.Equal(ir.TypeFloat))
}

func TestRegisterOverridesDefault(t *testing.T) {
	m := New()
	RegisterType[int](m, ir.TypeFloat)

	got, err := m.Map(reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.True(t, got.Equal(ir.TypeFloat))

	// Other integer kinds keep the default.
	got, err = m.Map(reflect.TypeFor[int64]())
	require.NoError(t, err)
	assert.True(t, got.Equal(ir.TypeInteger))
}
