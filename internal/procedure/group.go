package procedure

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// ResourceTag is the struct tag that marks an injectable field:
//
//	Log proclog.Log `proc:"resource"`
const ResourceTag = "proc"

// ResourceTagValue is the tag value that marks an injectable field.
const ResourceTagValue = "resource"

// Group is a declaration group as seen by the compiler.
type Group interface {
	// Type is the group's struct type. Its name is the group's simple name.
	Type() reflect.Type

	// Constructor is the function that allocates a fresh instance per call.
	// It is validated at compile time and may be of any shape.
	Constructor() any

	// Namespace is the explicit namespace, or nil to derive one from the
	// package path of Type.
	Namespace() []string

	// Members lists the procedure members in declaration order.
	Members() []Member
}

// Member is a type-erased procedure member.
type Member struct {
	Name        string
	Description string

	// Output is the output record struct type.
	Output reflect.Type

	// Input is the argument struct type, or nil for zero-argument members.
	Input reflect.Type

	// Call runs the member against a group instance (a pointer to the
	// group struct). input is an Input value, or nil. The returned sequence
	// yields Output values.
	Call func(instance any, input any) iter.Seq2[any, error]
}

// Declaration is the descriptor of one declaration group with struct type G.
type Declaration[G any] struct {
	ctor      any
	namespace []string
	members   []Member
}

// DeclareOption configures a Declaration.
type DeclareOption func(*declareOptions)

type declareOptions struct {
	namespace []string
}

// Namespace sets an explicit dotted namespace such as "db.people".
func Namespace(ns string) DeclareOption {
	return func(o *declareOptions) {
		o.namespace = strings.Split(ns, ".")
	}
}

// Declare starts a declaration group for G.
//
// ctor is normally an exported function of type func() *G or
// func() (*G, error). Any other shape is rejected by the compiler if the
// group declares at least one procedure.
func Declare[G any](ctor any, opts ...DeclareOption) *Declaration[G] {
	var o declareOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Declaration[G]{ctor: ctor, namespace: o.namespace}
}

// Type implements Group.
func (d *Declaration[G]) Type() reflect.Type {
	return reflect.TypeFor[G]()
}

// Constructor implements Group.
func (d *Declaration[G]) Constructor() any {
	return d.ctor
}

// Namespace implements Group.
func (d *Declaration[G]) Namespace() []string {
	if d.namespace == nil {
		return nil
	}
	return append([]string(nil), d.namespace...)
}

// Members implements Group.
func (d *Declaration[G]) Members() []Member {
	return append([]Member(nil), d.members...)
}

// MemberOption configures a member.
type MemberOption func(*Member)

// Description documents a member; it is shown in procedure listings.
func Description(text string) MemberOption {
	return func(m *Member) {
		m.Description = text
	}
}

// Define marks fn as a zero-argument procedure of the group. The output
// columns are the exported fields of R in declaration order.
func Define[G, R any](d *Declaration[G], name string, fn func(*G) Stream[R], opts ...MemberOption) {
	if fn == nil {
		panic(fmt.Sprintf("procedure %q: nil function", name))
	}
	m := Member{
		Name:   name,
		Output: reflect.TypeFor[R](),
		Call: func(instance any, _ any) iter.Seq2[any, error] {
			return erase(fn(instance.(*G)))
		},
	}
	d.add(m, opts)
}

// DefineWithArgs marks fn as a procedure taking positional arguments. The
// inputs are the exported fields of A in declaration order.
func DefineWithArgs[G, A, R any](d *Declaration[G], name string, fn func(*G, A) Stream[R], opts ...MemberOption) {
	if fn == nil {
		panic(fmt.Sprintf("procedure %q: nil function", name))
	}
	m := Member{
		Name:   name,
		Output: reflect.TypeFor[R](),
		Input:  reflect.TypeFor[A](),
		Call: func(instance any, input any) iter.Seq2[any, error] {
			return erase(fn(instance.(*G), input.(A)))
		},
	}
	d.add(m, opts)
}

func (d *Declaration[G]) add(m Member, opts []MemberOption) {
	for _, opt := range opts {
		opt(&m)
	}
	d.members = append(d.members, m)
}

func erase[R any](s Stream[R]) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if s == nil {
			return
		}
		for r, err := range s {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}
