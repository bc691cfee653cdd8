package procedure

import (
	"context"
	"fmt"
	"iter"

	"github.com/roach88/procrt/internal/ir"
)

// InvokeFunc produces the rows of one call. The arguments have already been
// checked against the signature. Errors returned directly are setup
// failures (constructor, capability resolution); errors yielded by the
// sequence are row failures.
type InvokeFunc func(ctx context.Context, args []any) (iter.Seq2[ir.Row, error], error)

// Handle is a compiled procedure: an immutable signature plus the means to
// call it. Handles hold no per-call state and are safe for concurrent use.
type Handle struct {
	sig    ir.Signature
	name   string
	invoke InvokeFunc
}

// NewHandle wraps an invoke function with its signature.
func NewHandle(sig ir.Signature, invoke InvokeFunc) *Handle {
	if invoke == nil {
		panic(fmt.Sprintf("procedure %s: nil invoke function", sig.QualifiedName()))
	}
	return &Handle{
		sig:    sig.Clone(),
		name:   sig.QualifiedName(),
		invoke: invoke,
	}
}

// Signature returns a copy of the procedure's signature.
func (h *Handle) Signature() ir.Signature {
	return h.sig.Clone()
}

// Name returns the qualified name, e.g. "db.people.listCoolPeople".
func (h *Handle) Name() string {
	return h.name
}

// Description returns the member's description, if any.
func (h *Handle) Description() string {
	return h.sig.Description
}

// Invoke calls the procedure with positional arguments.
//
// Arguments are validated against the signature's inputs before any user
// code runs. Each call builds a fresh group instance; rows are produced
// lazily as the returned Rows is pulled. The caller must Close the Rows if
// it stops before exhausting it.
func (h *Handle) Invoke(ctx context.Context, args []any) (rows *Rows, err error) {
	if err := h.checkArgs(args); err != nil {
		return nil, err
	}

	ctx = WithName(ctx, h.name)

	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = &InvocationError{Procedure: h.name, Row: -1, Cause: &PanicError{Value: r}}
		}
	}()

	seq, err := h.invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	return newRows(h.name, seq), nil
}

func (h *Handle) checkArgs(args []any) error {
	inputs := h.sig.Inputs
	if len(args) != len(inputs) {
		return &ArgumentError{
			Procedure: h.name,
			Reason:    ErrArity,
			Message:   fmt.Sprintf("expected %d argument(s), got %d", len(inputs), len(args)),
		}
	}
	for i, in := range inputs {
		if !Conforms(in.Type, args[i]) {
			return &ArgumentError{
				Procedure: h.name,
				Reason:    ErrArgumentType,
				Message:   fmt.Sprintf("argument `%s` at position %d: expected %s, got %T", in.Name, i, in.Type, args[i]),
			}
		}
	}
	return nil
}

type nameKey struct{}

// WithName returns a context carrying the qualified name of the procedure
// being invoked.
func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, nameKey{}, name)
}

// NameFromContext returns the procedure being invoked, if any.
func NameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(nameKey{}).(string)
	return name, ok && name != ""
}
