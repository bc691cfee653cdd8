package compiler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/typemap"
)

// Compiler turns declaration groups into procedure handles.
//
// A Compiler is safe for concurrent use. The mapper is consulted at compile
// time; the registry is consulted on every invocation of the handles it
// produces, so capabilities registered later are picked up.
type Compiler struct {
	mapper   *typemap.Mapper
	registry *capability.Registry
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler over mapper and registry.
func New(mapper *typemap.Mapper, registry *capability.Registry, opts ...Option) *Compiler {
	c := &Compiler{
		mapper:   mapper,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile produces one handle per member of group, in declaration order.
//
// A group with no members compiles to an empty list without any further
// checks. Otherwise a group-level failure (constructor, resource fields)
// returns a *CompilationError and no handles. Member-level failures
// (*TypeMappingError, duplicate or malformed members) leave the other
// members compiled: the handles are returned together with the joined
// member errors.
func (c *Compiler) Compile(group procedure.Group) ([]*procedure.Handle, error) {
	members := group.Members()
	if len(members) == 0 {
		return []*procedure.Handle{}, nil
	}

	gt := group.Type()
	name := gt.Name()

	if gt.Kind() != reflect.Struct {
		return nil, &CompilationError{
			Code:    ErrCodeInvalidGroup,
			Group:   name,
			Message: fmt.Sprintf("declaration group `%s` must be a struct type, got %s", name, gt.Kind()),
		}
	}

	ctor, ok := checkConstructor(group.Constructor(), gt)
	if !ok {
		return nil, constructorError(name)
	}

	resources, err := resourceFields(gt)
	if err != nil {
		return nil, err
	}
	for _, rf := range resources {
		if !c.registry.Has(rf.marker) {
			c.logger.Debug("resource has no provider yet",
				"group", name,
				"field", rf.name,
				"marker", rf.marker.String())
		}
	}

	fac := &factory{
		group:     name,
		ctor:      ctor,
		resources: resources,
		registry:  c.registry,
	}
	namespace := namespaceOf(group)

	handles := make([]*procedure.Handle, 0, len(members))
	var errs []error
	seen := make(map[string]bool, len(members))

	for _, m := range members {
		if seen[m.Name] {
			errs = append(errs, &CompilationError{
				Code:    ErrCodeDuplicateMember,
				Group:   name,
				Member:  m.Name,
				Message: fmt.Sprintf("procedure `%s` is declared more than once in `%s`", m.Name, name),
			})
			continue
		}
		seen[m.Name] = true

		h, err := c.compileMember(fac, namespace, m)
		if err != nil {
			c.logger.Warn("procedure not compiled",
				"group", name,
				"member", m.Name,
				"error", err)
			errs = append(errs, err)
			continue
		}

		c.logger.Debug("procedure compiled",
			"procedure", h.Name(),
			"signature", h.Signature().String(),
			"resources", len(resources))
		handles = append(handles, h)
	}

	return handles, errors.Join(errs...)
}

func (c *Compiler) compileMember(fac *factory, namespace []string, m procedure.Member) (*procedure.Handle, error) {
	group := fac.group
	if m.Name == "" {
		return nil, &CompilationError{
			Code:    ErrCodeInvalidMember,
			Group:   group,
			Message: fmt.Sprintf("a procedure in `%s` has an empty name", group),
		}
	}
	if m.Call == nil || m.Output == nil {
		return nil, &CompilationError{
			Code:    ErrCodeInvalidMember,
			Group:   group,
			Member:  m.Name,
			Message: fmt.Sprintf("procedure `%s` in `%s` has no implementation", m.Name, group),
		}
	}

	outType, outPtr, ok := structOf(m.Output)
	if !ok {
		return nil, &CompilationError{
			Code:    ErrCodeInvalidMember,
			Group:   group,
			Member:  m.Name,
			Message: fmt.Sprintf("procedure `%s` in `%s` must produce struct records, got %s", m.Name, group, m.Output),
		}
	}
	outCols := columnsOf(outType)
	outputs, err := mapColumns(c.mapper, group, m.Name, outCols)
	if err != nil {
		return nil, err
	}

	var binder *argBinder
	var inputs []ir.FieldSignature
	if m.Input != nil {
		inType, inPtr, ok := structOf(m.Input)
		if !ok {
			return nil, &CompilationError{
				Code:    ErrCodeInvalidMember,
				Group:   group,
				Member:  m.Name,
				Message: fmt.Sprintf("procedure `%s` in `%s` must take a struct of arguments, got %s", m.Name, group, m.Input),
			}
		}
		inCols := columnsOf(inType)
		inputs, err = mapColumns(c.mapper, group, m.Name, inCols)
		if err != nil {
			return nil, err
		}
		binder = &argBinder{typ: inType, pointer: inPtr, cols: inCols}
	}

	b := ir.NewSignature(append(slices.Clone(namespace), m.Name)...).Describe(m.Description)
	for _, f := range inputs {
		b.In(f.Name, f.Type)
	}
	for _, f := range outputs {
		b.Out(f.Name, f.Type)
	}
	sig := b.Build()

	reader := recordReader{pointer: outPtr, cols: outCols}
	procName := sig.QualifiedName()
	call := m.Call

	invoke := func(ctx context.Context, args []any) (iter.Seq2[ir.Row, error], error) {
		instance, err := fac.instantiate(ctx, procName)
		if err != nil {
			return nil, err
		}
		var input any
		if binder != nil {
			if input, err = binder.bind(procName, args); err != nil {
				return nil, err
			}
		}
		return reader.rows(call(instance.Interface(), input)), nil
	}

	return procedure.NewHandle(sig, invoke), nil
}

// namespaceOf returns the group's explicit namespace, or its Go package
// path split into segments.
func namespaceOf(group procedure.Group) []string {
	if ns := group.Namespace(); ns != nil {
		return ns
	}
	return strings.FieldsFunc(group.Type().PkgPath(), func(r rune) bool {
		return r == '/' || r == '.'
	})
}
