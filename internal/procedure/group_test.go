package procedure

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	step int
}

func newCounter() *counter { return &counter{step: 1} }

type countRow struct {
	N int
}

type countArgs struct {
	Upto int
}

func TestDeclaration_MembersInOrder(t *testing.T) {
	d := Declare[counter](newCounter, Namespace("t.counting"))
	Define(d, "zero", func(*counter) Stream[countRow] { return Empty[countRow]() })
	DefineWithArgs(d, "upto", func(c *counter, a countArgs) Stream[countRow] {
		return func(yield func(countRow, error) bool) {
			for i := 0; i < a.Upto; i += c.step {
				if !yield(countRow{N: i}, nil) {
					return
				}
			}
		}
	}, Description("counts up"))

	assert.Equal(t, reflect.TypeFor[counter](), d.Type())
	assert.Equal(t, []string{"t", "counting"}, d.Namespace())

	members := d.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "zero", members[0].Name)
	assert.Nil(t, members[0].Input)
	assert.Equal(t, "upto", members[1].Name)
	assert.Equal(t, "counts up", members[1].Description)
	assert.Equal(t, reflect.TypeFor[countArgs](), members[1].Input)
	assert.Equal(t, reflect.TypeFor[countRow](), members[1].Output)

	var got []any
	for r, err := range members[1].Call(newCounter(), countArgs{Upto: 3}) {
		require.NoError(t, err)
		got = append(got, r)
	}
	assert.Equal(t, []any{countRow{0}, countRow{1}, countRow{2}}, got)
}

func TestDeclaration_NoNamespace(t *testing.T) {
	d := Declare[counter](newCounter)
	assert.Nil(t, d.Namespace())
	assert.Empty(t, d.Members())
}

func TestDeclaration_MembersAreCopies(t *testing.T) {
	d := Declare[counter](newCounter)
	Define(d, "zero", func(*counter) Stream[countRow] { return nil })

	m := d.Members()
	m[0].Name = "changed"
	assert.Equal(t, "zero", d.Members()[0].Name)
}

func TestDefine_NilFunctionPanics(t *testing.T) {
	d := Declare[counter](newCounter)
	assert.Panics(t, func() { Define[counter, countRow](d, "bad", nil) })
}

func TestErase_StopsAfterError(t *testing.T) {
	boom := errors.New("boom")
	s := func(yield func(countRow, error) bool) {
		if !yield(countRow{}, boom) {
			return
		}
		yield(countRow{N: 1}, nil)
	}

	var errs, rows int
	for _, err := range erase[countRow](s) {
		if err != nil {
			errs++
			continue
		}
		rows++
	}
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, rows)
}

func TestErase_NilStream(t *testing.T) {
	n := 0
	for range erase[countRow](nil) {
		n++
	}
	assert.Zero(t, n)
}
