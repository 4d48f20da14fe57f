// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package types

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/viant/x"
	"go.uber.org/atomic"

	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/internal/validation"
)

// GlobalRegistry is the process-wide type registry
var GlobalRegistry = NewRegistry()

// Registry holds the set of known type handles in registration order.
//
// Handles of Go types are created on first reference, with a lattice derived from
// the Go type: the first embedded struct is the base and every registered Go
// interface the type implements is one of its interfaces.
type Registry struct {
	mu         sync.RWMutex
	ordered    []*Type
	byName     map[string]*Type
	byReflect  map[reflect.Type]*Type
	interfaces []*Type
	index      *x.Registry
	generation atomic.Uint64
}

// NewRegistry creates an empty type registry
func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*Type),
		byReflect: make(map[reflect.Type]*Type),
		index:     x.NewRegistry(),
	}
}

// New creates a descriptor-only type handle. The handle must be added to a
// registry with Register before it is used.
func New(name string, opts ...Option) (*Type, error) {
	if err := validation.NewNameValidator(name, errors.ErrInvalidTypeName).Validate(); err != nil {
		return nil, err
	}

	t := &Type{name: name}
	for _, opt := range opts {
		opt.Apply(t)
	}

	// the name is fixed by the declaration
	t.name = name
	if err := checkLattice(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Define declares the Go type T with the given options and registers it.
// It fails when T already has a handle in the registry, including one registered
// implicitly on first reference: define base types before the types embedding them.
func Define[T any](r *Registry, opts ...Option) (*Type, error) {
	rtype := indirect(reflect.TypeFor[T]())

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byReflect[rtype]; ok {
		return nil, errors.NewErrTypeAlreadyDefined(existing.name)
	}

	t := r.derive(rtype, mapset.NewThreadUnsafeSet[reflect.Type]())
	t.implicit = false
	for _, opt := range opts {
		opt.Apply(t)
	}

	if t.name != nameOf(rtype) {
		if err := validation.NewNameValidator(t.name, errors.ErrInvalidTypeName).Validate(); err != nil {
			return nil, err
		}
	}

	if err := checkLattice(t); err != nil {
		return nil, err
	}

	if err := r.register(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Of returns the handle of the Go type T, registering it on first reference
func Of[T any](r *Registry) *Type {
	return r.TypeOf(reflect.TypeFor[T]())
}

// TypeOf returns the handle of the given Go type, registering it on first reference.
// Pointer indirections are stripped.
func (r *Registry) TypeOf(rtype reflect.Type) *Type {
	if rtype == nil {
		return nil
	}

	rtype = indirect(rtype)
	r.mu.RLock()
	t, ok := r.byReflect[rtype]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typeOf(rtype, mapset.NewThreadUnsafeSet[reflect.Type]())
}

// TypeOfValue returns the handle of the dynamic type of v, or nil when v is nil
func (r *Registry) TypeOfValue(v any) *Type {
	if v == nil {
		return nil
	}
	return r.TypeOf(reflect.TypeOf(v))
}

// Register adds a handle to the registry. Registering the same handle twice is a no-op.
// The base and declared interfaces of the handle are registered first when missing.
func (r *Registry) Register(t *Type) error {
	if t == nil {
		return errors.ErrInvalidOperation
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(t)
}

// All returns the registered handles in registration order
func (r *Registry) All() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ordered)
}

// Lookup returns the handle registered under the given name. Go types are also
// resolved by the short name kept in the type index.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byName[name]; ok {
		return t, true
	}

	if xt := r.index.Lookup(name); xt != nil && xt.Type != nil {
		t, ok := r.byReflect[indirect(xt.Type)]
		return t, ok
	}
	return nil, false
}

// Generation returns a number that changes whenever a registration may alter the
// interface set of an already registered type, i.e. when a Go interface is registered.
func (r *Registry) Generation() uint64 {
	return r.generation.Load()
}

// Ancestors returns the type followed by its base chain up to the root
func (r *Registry) Ancestors(t *Type) []*Type {
	var ancestors []*Type
	for current := t; current != nil; current = current.base {
		ancestors = append(ancestors, current)
	}
	return ancestors
}

// Interfaces returns every interface of the type: the declared interfaces of the type
// and of its ancestors, each followed by the interfaces it declares itself, then the
// registered Go interfaces the type implements in registration order.
func (r *Registry) Interfaces(t *Type) []*Type {
	if t == nil {
		return nil
	}

	seen := mapset.NewThreadUnsafeSet[*Type]()
	var interfaces []*Type
	var visit func(iface *Type)
	visit = func(iface *Type) {
		if iface == t || !seen.Add(iface) {
			return
		}
		interfaces = append(interfaces, iface)
		for _, parent := range iface.interfaces {
			visit(parent)
		}
	}

	for current := t; current != nil; current = current.base {
		for _, iface := range current.interfaces {
			visit(iface)
		}
	}

	if t.rtype != nil {
		r.mu.RLock()
		registered := r.interfaces
		r.mu.RUnlock()
		for _, iface := range registered {
			if iface != t && implements(t.rtype, iface.rtype) {
				visit(iface)
			}
		}
	}
	return interfaces
}

// IsBaseOf reports whether base is a strict ancestor of t
func (r *Registry) IsBaseOf(base, t *Type) bool {
	if base == nil || t == nil {
		return false
	}
	for current := t.base; current != nil; current = current.base {
		if current == base {
			return true
		}
	}
	return false
}

// Implements reports whether t implements iface
func (r *Registry) Implements(t, iface *Type) bool {
	if t == nil || iface == nil || !iface.iface {
		return false
	}
	return slices.Contains(r.Interfaces(t), iface)
}

// AssignableTo reports whether a value of type t can be used where target is expected
func (r *Registry) AssignableTo(t, target *Type) bool {
	if t == nil || target == nil {
		return false
	}
	return t == target || r.IsBaseOf(target, t) || r.Implements(t, target)
}

// typeOf returns the handle of rtype, deriving and registering it when missing.
// The registry lock must be held.
func (r *Registry) typeOf(rtype reflect.Type, visiting mapset.Set[reflect.Type]) *Type {
	if t, ok := r.byReflect[rtype]; ok {
		return t
	}

	t := r.derive(rtype, visiting)
	if err := r.register(t); err == nil {
		return t
	}

	// an unrelated handle already owns the name: fall back to the type string,
	// then to numbered variants of it until one is free
	fallback := rtype.String()
	t.name = fallback
	for suffix := 2; r.register(t) != nil; suffix++ {
		t.name = fmt.Sprintf("%s#%d", fallback, suffix)
	}
	return t
}

// derive builds an unregistered handle for the Go type.
// The registry lock must be held.
func (r *Registry) derive(rtype reflect.Type, visiting mapset.Set[reflect.Type]) *Type {
	visiting.Add(rtype)
	t := &Type{
		name:       nameOf(rtype),
		rtype:      rtype,
		iface:      rtype.Kind() == reflect.Interface,
		extensible: implements(rtype, extendableType),
		implicit:   true,
	}

	if rtype.Kind() != reflect.Struct {
		return t
	}

	for i := range rtype.NumField() {
		field := rtype.Field(i)
		if !field.Anonymous {
			continue
		}

		embedded := indirect(field.Type)
		if embedded.Kind() != reflect.Struct || visiting.Contains(embedded) {
			continue
		}

		t.base = r.typeOf(embedded, visiting)
		break
	}
	return t
}

// register adds a handle and its lattice. The registry lock must be held.
func (r *Registry) register(t *Type) error {
	if existing, ok := r.byName[t.name]; ok {
		if existing == t {
			return nil
		}
		return errors.NewErrTypeAlreadyDefined(t.name)
	}

	if t.rtype != nil {
		if existing, ok := r.byReflect[t.rtype]; ok && existing != t {
			return errors.NewErrTypeAlreadyDefined(t.name)
		}
	}

	if t.base != nil {
		if err := r.register(t.base); err != nil {
			return err
		}
	}

	for _, iface := range t.interfaces {
		if err := r.register(iface); err != nil {
			return err
		}
	}

	r.ordered = append(r.ordered, t)
	r.byName[t.name] = t
	if t.rtype == nil {
		return nil
	}

	r.byReflect[t.rtype] = t
	if t.rtype.Name() != "" {
		r.index.Register(x.NewType(t.rtype, x.WithName(t.rtype.Name())))
	}

	if t.iface {
		// copy on write: readers iterate the previous slice without holding the lock
		r.interfaces = append(slices.Clip(r.interfaces), t)
		r.generation.Inc()
	}
	return nil
}
