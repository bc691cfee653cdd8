package compiler

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/typemap"
)

// column is one exported field of a record or argument struct.
//
// The column name is the field's `proc` tag when present, otherwise the Go
// field name. A tag of "-" skips the field.
type column struct {
	name  string
	index int
	typ   reflect.Type
	tag   ir.TypeTag // set by mapColumns
}

// structOf returns the struct type behind t, which may be a struct or a
// pointer to one.
func structOf(t reflect.Type) (reflect.Type, bool, bool) {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return t.Elem(), true, true
	}
	return t, false, t.Kind() == reflect.Struct
}

func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get(procedure.ResourceTag); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		cols = append(cols, column{name: name, index: i, typ: f.Type})
	}
	return cols
}

// mapColumns types each column in place. The first failure is reported as
// a TypeMappingError naming the field.
func mapColumns(m *typemap.Mapper, group, member string, cols []column) ([]ir.FieldSignature, error) {
	fields := make([]ir.FieldSignature, 0, len(cols))
	for i, c := range cols {
		tag, err := m.Map(c.typ)
		if err != nil {
			return nil, &TypeMappingError{Group: group, Member: member, Field: c.name, Cause: err}
		}
		cols[i].tag = tag
		fields = append(fields, ir.FieldSignature{Name: c.name, Type: tag})
	}
	return fields, nil
}

// recordReader flattens output records into rows. Each value is checked
// against its column's declared tag.
type recordReader struct {
	pointer bool
	cols    []column
}

func (r recordReader) row(record any) (ir.Row, error) {
	v := reflect.ValueOf(record)
	if r.pointer {
		if !v.IsValid() || v.IsNil() {
			return nil, fmt.Errorf("nil record")
		}
		v = v.Elem()
	}

	row := make(ir.Row, len(r.cols))
	for i, c := range r.cols {
		val, err := procedure.NormalizeAs(c.tag, v.Field(c.index).Interface())
		if err != nil {
			return nil, fmt.Errorf("column `%s`: %w", c.name, err)
		}
		row[i] = val
	}
	return row, nil
}

// rows adapts a record sequence lazily: each record is flattened only when
// the consumer pulls it.
func (r recordReader) rows(records iter.Seq2[any, error]) iter.Seq2[ir.Row, error] {
	return func(yield func(ir.Row, error) bool) {
		for rec, err := range records {
			if err != nil {
				yield(nil, err)
				return
			}
			row, err := r.row(rec)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// argBinder assigns positional arguments to the fields of an argument
// struct.
type argBinder struct {
	typ     reflect.Type
	pointer bool
	cols    []column
}

func (b argBinder) bind(procName string, args []any) (any, error) {
	ptr := reflect.New(b.typ)
	v := ptr.Elem()
	for i, c := range b.cols {
		cv, err := procedure.ConvertArg(args[i], c.typ)
		if err != nil {
			return nil, &procedure.ArgumentError{
				Procedure: procName,
				Reason:    procedure.ErrArgumentType,
				Message:   fmt.Sprintf("argument `%s` at position %d: %v", c.name, i, err),
			}
		}
		v.Field(c.index).Set(cv)
	}
	if b.pointer {
		return ptr.Interface(), nil
	}
	return v.Interface(), nil
}
