package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureBuilder(t *testing.T) {
	sig := NewSignature("org", "neo4j", "kernel", "impl", "proc", "listCoolPeople").
		Out("name", TypeString).
		Build()

	assert.Equal(t, []string{"org", "neo4j", "kernel", "impl", "proc"}, sig.Namespace)
	assert.Equal(t, "listCoolPeople", sig.Name)
	assert.Empty(t, sig.Inputs)
	require.Len(t, sig.Outputs, 1)
	assert.Equal(t, "name", sig.Outputs[0].Name)
	assert.True(t, sig.Outputs[0].Type.Equal(TypeString))
	assert.Equal(t, "org.neo4j.kernel.impl.proc.listCoolPeople", sig.QualifiedName())
}

func TestSignatureBuilderReturnsIndependentCopies(t *testing.T) {
	b := NewSignature("db", "people").Out("name", TypeString)
	first := b.Build()
	b.Out("age", TypeInteger)
	second := b.Build()

	assert.Len(t, first.Outputs, 1)
	assert.Len(t, second.Outputs, 2)

	first.Namespace[0] = "mutated"
	assert.Equal(t, "db", b.Build().Namespace[0])
}

func TestSignatureString(t *testing.T) {
	sig := NewSignature("db", "people", "greet").
		In("name", TypeString).
		In("times", TypeInteger).
		Out("greeting", TypeString).
		Out("tags", ListOf(TypeString)).
		Build()

	assert.Equal(t,
		"db.people.greet(name :: STRING, times :: INTEGER) :: (greeting :: STRING, tags :: LIST OF STRING)",
		sig.String())
}

func TestSignatureWithoutNamespace(t *testing.T) {
	sig := NewSignature("ping").Build()
	assert.Equal(t, "ping", sig.QualifiedName())
	assert.Equal(t, "ping() :: ()", sig.String())
}

func TestSignatureEqual(t *testing.T) {
	a := NewSignature("db", "labels").Out("label", TypeString).Build()
	b := NewSignature("db", "labels").Out("label", TypeString).Describe("List labels").Build()
	c := NewSignature("db", "labels").Out("label", TypeInteger).Build()
	d := NewSignature("dbms", "labels").Out("label", TypeString).Build()

	assert.True(t, a.Equal(b), "descriptions do not affect equality")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestPathLength(t *testing.T) {
	p := Path{
		Nodes:         []Node{{ID: 1}, {ID: 2}, {ID: 3}},
		Relationships: []Relationship{{ID: 10, StartID: 1, EndID: 2}, {ID: 11, StartID: 2, EndID: 3}},
	}
	assert.Equal(t, 2, p.Length())
}
