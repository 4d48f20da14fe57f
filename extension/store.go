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

package extension

import (
	"reflect"

	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/internal/validation"
	"github.com/tochemey/typext/types"
)

// Store is the typed view of one extension kind. Values registered through a
// narrower kind that are assignable to E are visible through the view as well.
type Store[E any] struct {
	registry *Registry
	kind     *types.Type
	view     reflect.Type
}

// For returns the view of kind E. The kind is registered with the type registry.
func For[E any](r *Registry) *Store[E] {
	view := reflect.TypeFor[E]()
	kind := r.types.TypeOf(view)

	r.mu.Lock()
	r.backfill(kind)
	r.mu.Unlock()

	return &Store[E]{
		registry: r,
		kind:     kind,
		view:     view,
	}
}

// Kind returns the kind handle of the view
func (s *Store[E]) Kind() *types.Type {
	return s.kind
}

// Add attaches value to the target type. The entry is propagated to every base and
// interface kind of E. Adding to a nil target is a no-op.
func (s *Store[E]) Add(target *types.Type, value E) Entry[E] {
	return s.add(&entry{target: target, kind: s.kind, value: value})
}

// AddFunc attaches a value produced on first retrieval to the target type
func (s *Store[E]) AddFunc(target *types.Type, produce func() E) Entry[E] {
	return s.add(&entry{target: target, kind: s.kind, produce: func() any { return produce() }})
}

// AddProperty attaches a named value to the target type. The target must be extensible
// and the name unique for the exact target: a duplicate returns the existing entry
// along with ErrPropertyExists.
func (s *Store[E]) AddProperty(target *types.Type, name string, value E) (Entry[E], error) {
	return s.addProperty(&entry{target: target, kind: s.kind, name: name, value: value})
}

// AddPropertyFunc attaches a named value produced on first retrieval to the target type
func (s *Store[E]) AddPropertyFunc(target *types.Type, name string, produce func() E) (Entry[E], error) {
	return s.addProperty(&entry{target: target, kind: s.kind, name: name, produce: func() any { return produce() }})
}

// Extensions returns the values applicable to the type: plain extensions of the type,
// its bases and its interfaces, followed by the properties in the same order.
// The returned slice is shared and must not be modified.
func (s *Store[E]) Extensions(t *types.Type) []E {
	if t == nil {
		return nil
	}

	key := resultKey{kind: s.kind, view: s.view, target: t, mode: modeValues}
	return s.registry.resolve(key, func(entries []*entry) any {
		values := make([]E, 0, len(entries))
		for _, e := range entries {
			if value, ok := e.resolve().(E); ok {
				values = append(values, value)
			}
		}
		return values
	}).([]E)
}

// ExtensionsOf returns the values applicable to the dynamic type of v
func (s *Store[E]) ExtensionsOf(v any) []E {
	return s.Extensions(s.registry.types.TypeOfValue(v))
}

// Entries returns the entries applicable to the type, in the order of Extensions
func (s *Store[E]) Entries(t *types.Type) []Entry[E] {
	if t == nil {
		return nil
	}

	key := resultKey{kind: s.kind, view: s.view, target: t, mode: modeTyped}
	return s.registry.resolve(key, func(entries []*entry) any {
		typed := make([]Entry[E], 0, len(entries))
		for _, e := range entries {
			if _, ok := e.resolve().(E); ok {
				typed = append(typed, Entry[E]{entry: e})
			}
		}
		return typed
	}).([]Entry[E])
}

type property[E any] struct {
	value E
	found bool
}

// Property returns the first property with the given name in traversal order
func (s *Store[E]) Property(t *types.Type, name string) (E, bool) {
	if t == nil || name == "" {
		var zero E
		return zero, false
	}

	key := resultKey{kind: s.kind, view: s.view, target: t, name: name, mode: modeProperty}
	result := s.registry.resolve(key, func(entries []*entry) any {
		for _, e := range entries {
			if !e.property() || e.name != name {
				continue
			}
			if value, ok := e.resolve().(E); ok {
				return property[E]{value: value, found: true}
			}
		}
		return property[E]{}
	}).(property[E])
	return result.value, result.found
}

func (s *Store[E]) add(e *entry) Entry[E] {
	if e.target == nil {
		return Entry[E]{}
	}

	s.registry.mu.Lock()
	s.registry.add(e)
	s.registry.mu.Unlock()
	return Entry[E]{entry: e}
}

func (s *Store[E]) addProperty(e *entry) (Entry[E], error) {
	if err := checkProperty(e.target, e.name); err != nil {
		return Entry[E]{}, err
	}

	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	added, err := s.registry.addProperty(e)
	return Entry[E]{entry: added}, err
}

// checkProperty validates a property target and name
func checkProperty(target *types.Type, name string) error {
	if target == nil {
		return errors.ErrInvalidOperation
	}
	if !target.IsExtensible() {
		return errors.NewErrNotExtensible(target.Name())
	}
	return validation.NewNameValidator(name, errors.ErrInvalidTypeName).Validate()
}
