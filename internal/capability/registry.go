package capability

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Provider produces a capability instance for one invocation.
type Provider func(ctx context.Context) (any, error)

// Registry maps capability markers to providers.
//
// Thread-safety: all methods are safe for concurrent use. The provider
// table is read-mostly after startup, so lookups take a read lock.
type Registry struct {
	mu        sync.RWMutex
	providers map[reflect.Type]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[reflect.Type]Provider)}
}

// Register associates marker with p, replacing any previous provider.
func (r *Registry) Register(marker reflect.Type, p Provider) {
	if marker == nil {
		panic("capability: nil marker")
	}
	if p == nil {
		panic(fmt.Sprintf("capability: nil provider for %s", marker))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[marker] = p
}

// Has reports whether a provider is registered for marker.
func (r *Registry) Has(marker reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[marker]
	return ok
}

// Resolve produces the capability for marker using ctx.
//
// Returns a *ResolutionError when no provider is registered, when the
// provider fails, or when the provider returns a value that is not
// assignable to marker.
func (r *Registry) Resolve(ctx context.Context, marker reflect.Type) (any, error) {
	r.mu.RLock()
	p, ok := r.providers[marker]
	r.mu.RUnlock()
	if !ok {
		return nil, &ResolutionError{Marker: marker}
	}

	v, err := p(ctx)
	if err != nil {
		return nil, &ResolutionError{Marker: marker, Cause: err}
	}
	if v == nil {
		if canBeNil(marker) {
			return nil, nil
		}
		return nil, &ResolutionError{Marker: marker, Cause: fmt.Errorf("provider returned nil")}
	}
	if !reflect.TypeOf(v).AssignableTo(marker) {
		return nil, &ResolutionError{
			Marker: marker,
			Cause:  fmt.Errorf("provider returned %T, which is not assignable to %s", v, marker),
		}
	}
	return v, nil
}

// Markers returns the registered marker names in sorted order.
func (r *Registry) Markers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for m := range r.providers {
		names = append(names, m.String())
	}
	slices.Sort(names)
	return names
}

func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// MarkerOf returns the marker for T.
func MarkerOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Provide registers a typed provider for T.
//
// Example:
//
//	capability.Provide(reg, func(ctx context.Context) (proclog.Log, error) {
//		return proclog.FromContext(ctx), nil
//	})
func Provide[T any](r *Registry, fn func(ctx context.Context) (T, error)) {
	r.Register(MarkerOf[T](), func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// Instance registers a provider that always returns v.
func Instance[T any](r *Registry, v T) {
	Provide(r, func(context.Context) (T, error) { return v, nil })
}

// Lookup resolves T from r.
func Lookup[T any](ctx context.Context, r *Registry) (T, error) {
	var zero T
	v, err := r.Resolve(ctx, MarkerOf[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}
