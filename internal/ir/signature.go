package ir

import (
	"slices"
	"strings"
)

// FieldSignature is one named, typed input or output column.
type FieldSignature struct {
	Name string  `json:"name" yaml:"name"`
	Type TypeTag `json:"type" yaml:"type"`
}

// String renders the field as "name :: TYPE".
func (f FieldSignature) String() string {
	return f.Name + " :: " + f.Type.String()
}

// Signature describes a compiled procedure: where it lives, what it is
// called, what it accepts and which columns it produces.
//
// INVARIANTS:
//   - Namespace + Name is the procedure's global identity
//   - Outputs order equals the output record's declared field order
type Signature struct {
	Namespace   []string         `json:"namespace" yaml:"namespace"`
	Name        string           `json:"name" yaml:"name"`
	Inputs      []FieldSignature `json:"inputs" yaml:"inputs"`
	Outputs     []FieldSignature `json:"outputs" yaml:"outputs"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
}

// QualifiedName returns the dotted identity, e.g. "db.people.listCoolPeople".
func (s Signature) QualifiedName() string {
	if len(s.Namespace) == 0 {
		return s.Name
	}
	return strings.Join(s.Namespace, ".") + "." + s.Name
}

// String renders the signature in catalog form:
//
//	db.people.greet(name :: STRING) :: (greeting :: STRING)
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.QualifiedName())
	b.WriteByte('(')
	writeFields(&b, s.Inputs)
	b.WriteString(") :: (")
	writeFields(&b, s.Outputs)
	b.WriteByte(')')
	return b.String()
}

func writeFields(b *strings.Builder, fields []FieldSignature) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
}

// Equal reports whether two signatures have the same identity and shape.
// Descriptions are not part of the comparison.
func (s Signature) Equal(other Signature) bool {
	return s.Name == other.Name &&
		slices.Equal(s.Namespace, other.Namespace) &&
		fieldsEqual(s.Inputs, other.Inputs) &&
		fieldsEqual(s.Outputs, other.Outputs)
}

func fieldsEqual(a, b []FieldSignature) bool {
	return slices.EqualFunc(a, b, func(x, y FieldSignature) bool {
		return x.Name == y.Name && x.Type.Equal(y.Type)
	})
}

// Clone returns a deep copy so callers cannot mutate a shared signature.
func (s Signature) Clone() Signature {
	return Signature{
		Namespace:   slices.Clone(s.Namespace),
		Name:        s.Name,
		Inputs:      slices.Clone(s.Inputs),
		Outputs:     slices.Clone(s.Outputs),
		Description: s.Description,
	}
}

// SignatureBuilder assembles a Signature column by column.
//
// Example:
//
//	sig := ir.NewSignature("db", "people", "listCoolPeople").
//		Out("name", ir.TypeString).
//		Build()
type SignatureBuilder struct {
	sig Signature
}

// NewSignature starts a signature. All parts but the last form the
// namespace; the last part is the procedure name.
func NewSignature(parts ...string) *SignatureBuilder {
	b := &SignatureBuilder{}
	if len(parts) == 0 {
		return b
	}
	b.sig.Namespace = slices.Clone(parts[:len(parts)-1])
	b.sig.Name = parts[len(parts)-1]
	return b
}

// In appends an input parameter.
func (b *SignatureBuilder) In(name string, t TypeTag) *SignatureBuilder {
	b.sig.Inputs = append(b.sig.Inputs, FieldSignature{Name: name, Type: t})
	return b
}

// Out appends an output column.
func (b *SignatureBuilder) Out(name string, t TypeTag) *SignatureBuilder {
	b.sig.Outputs = append(b.sig.Outputs, FieldSignature{Name: name, Type: t})
	return b
}

// Describe sets the human-readable description.
func (b *SignatureBuilder) Describe(description string) *SignatureBuilder {
	b.sig.Description = description
	return b
}

// Build returns an independent copy of the accumulated signature.
// The builder can keep being used without affecting returned values.
func (b *SignatureBuilder) Build() Signature {
	sig := b.sig.Clone()
	if sig.Namespace == nil {
		sig.Namespace = []string{}
	}
	if sig.Inputs == nil {
		sig.Inputs = []FieldSignature{}
	}
	if sig.Outputs == nil {
		sig.Outputs = []FieldSignature{}
	}
	return sig
}
