package compiler

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/procedure"
)

var errorType = reflect.TypeFor[error]()

// closureSegment matches the compiler-generated name of a function literal,
// e.g. "Declaration.func1" or "glob..func2".
var closureSegment = regexp.MustCompile(`(^|\.)func\d+(\.|$)`)

// constructor is a validated group constructor.
type constructor struct {
	fn        reflect.Value
	returnErr bool
}

// checkConstructor accepts an exported, non-variadic func with no
// parameters returning *G or (*G, error).
func checkConstructor(ctor any, group reflect.Type) (constructor, bool) {
	if ctor == nil {
		return constructor{}, false
	}
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return constructor{}, false
	}

	t := fn.Type()
	if t.NumIn() != 0 || t.IsVariadic() {
		return constructor{}, false
	}

	want := reflect.PointerTo(group)
	switch {
	case t.NumOut() == 1 && t.Out(0) == want:
	case t.NumOut() == 2 && t.Out(0) == want && t.Out(1) == errorType:
	default:
		return constructor{}, false
	}

	if !isPublicFunc(fn) {
		return constructor{}, false
	}
	return constructor{fn: fn, returnErr: t.NumOut() == 2}, true
}

// isPublicFunc reports whether fn is a named, exported function or method.
// Function literals are never public.
func isPublicFunc(fn reflect.Value) bool {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return false
	}
	name := rf.Name()

	// Drop the import path, then the package name.
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	name = strings.ReplaceAll(name, "[...]", "")

	if name == "" || closureSegment.MatchString(name) {
		return false
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// resourceField is an injectable field of the group struct.
type resourceField struct {
	name   string
	index  int
	marker reflect.Type
}

// resourceFields lists the fields tagged `proc:"resource"` in declaration
// order. Unexported tagged fields cannot be assigned and fail the group.
func resourceFields(group reflect.Type) ([]resourceField, error) {
	var fields []resourceField
	for i := 0; i < group.NumField(); i++ {
		f := group.Field(i)
		if f.Tag.Get(procedure.ResourceTag) != procedure.ResourceTagValue {
			continue
		}
		if !f.IsExported() {
			return nil, &CompilationError{
				Code:  ErrCodeResourceField,
				Group: group.Name(),
				Message: fmt.Sprintf("field `%s` in `%s` is marked as a resource but is not exported, "+
					"so it cannot be injected", f.Name, group.Name()),
			}
		}
		fields = append(fields, resourceField{name: f.Name, index: i, marker: f.Type})
	}
	return fields, nil
}

// factory builds a fresh, injected group instance for one call.
type factory struct {
	group     string
	ctor      constructor
	resources []resourceField
	registry  *capability.Registry
}

// instantiate runs the constructor and resolves every resource field
// against the call's context. The procedure name is used only in errors.
func (f *factory) instantiate(ctx context.Context, procName string) (reflect.Value, error) {
	out := f.ctor.fn.Call(nil)
	if f.ctor.returnErr {
		if err, _ := out[1].Interface().(error); err != nil {
			return reflect.Value{}, &procedure.InvocationError{Procedure: procName, Row: -1, Cause: err}
		}
	}
	instance := out[0]
	if instance.IsNil() {
		return reflect.Value{}, &procedure.InvocationError{
			Procedure: procName,
			Row:       -1,
			Cause:     fmt.Errorf("constructor of `%s` returned nil", f.group),
		}
	}

	elem := instance.Elem()
	for _, rf := range f.resources {
		v, err := f.registry.Resolve(ctx, rf.marker)
		if err != nil {
			return reflect.Value{}, &procedure.InvocationError{
				Procedure: procName,
				Row:       -1,
				Cause:     fmt.Errorf("resource field `%s`: %w", rf.name, err),
			}
		}
		if v == nil {
			continue
		}
		elem.Field(rf.index).Set(reflect.ValueOf(v))
	}
	return instance, nil
}
