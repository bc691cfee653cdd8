package ir

import (
	"fmt"
	"strings"
)

// Kind identifies one member of the closed set of procedure type tags.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindMap
	KindNode
	KindRelationship
	KindPath
	KindList
)

var kindNames = map[Kind]string{
	KindAny:          "ANY",
	KindString:       "STRING",
	KindInteger:      "INTEGER",
	KindFloat:        "FLOAT",
	KindBoolean:      "BOOLEAN",
	KindMap:          "MAP",
	KindNode:         "NODE",
	KindRelationship: "RELATIONSHIP",
	KindPath:         "PATH",
	KindList:         "LIST",
}

// String returns the upper-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TypeTag is the type of a procedure input or output column.
// List tags carry their element type; every other tag is scalar.
//
// TypeTag values are immutable. Compare with Equal, not ==.
type TypeTag struct {
	kind Kind
	elem *TypeTag
}

// Scalar type tags.
var (
	TypeAny          = TypeTag{kind: KindAny}
	TypeString       = TypeTag{kind: KindString}
	TypeInteger      = TypeTag{kind: KindInteger}
	TypeFloat        = TypeTag{kind: KindFloat}
	TypeBoolean      = TypeTag{kind: KindBoolean}
	TypeMap          = TypeTag{kind: KindMap}
	TypeNode         = TypeTag{kind: KindNode}
	TypeRelationship = TypeTag{kind: KindRelationship}
	TypePath         = TypeTag{kind: KindPath}
)

// ListOf returns the LIST OF elem type tag.
func ListOf(elem TypeTag) TypeTag {
	e := elem
	return TypeTag{kind: KindList, elem: &e}
}

// Kind returns the tag's kind.
func (t TypeTag) Kind() Kind {
	return t.kind
}

// Elem returns the element type of a list tag.
// The second result is false for non-list tags.
func (t TypeTag) Elem() (TypeTag, bool) {
	if t.kind != KindList || t.elem == nil {
		return TypeTag{}, false
	}
	return *t.elem, true
}

// Equal reports whether two tags describe the same type, recursing into
// list element types.
func (t TypeTag) Equal(other TypeTag) bool {
	if t.kind != other.kind {
		return false
	}
	if t.kind != KindList {
		return true
	}
	if t.elem == nil || other.elem == nil {
		return t.elem == other.elem
	}
	return t.elem.Equal(*other.elem)
}

// String renders the tag in catalog form, e.g. "INTEGER" or "LIST OF STRING".
func (t TypeTag) String() string {
	if t.kind == KindList {
		if t.elem == nil {
			return "LIST OF ANY"
		}
		return "LIST OF " + t.elem.String()
	}
	return t.kind.String()
}

// MarshalText implements encoding.TextMarshaler (used by JSON and YAML output).
func (t TypeTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeTag) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTypeTag parses the catalog form produced by TypeTag.String.
func ParseTypeTag(s string) (TypeTag, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "LIST OF "); ok {
		elem, err := ParseTypeTag(rest)
		if err != nil {
			return TypeTag{}, err
		}
		return ListOf(elem), nil
	}
	for kind, name := range kindNames {
		if kind == KindList {
			continue
		}
		if name == s {
			return TypeTag{kind: kind}, nil
		}
	}
	return TypeTag{}, fmt.Errorf("unknown type tag %q", s)
}
