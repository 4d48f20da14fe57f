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
	"github.com/tochemey/typext/types"
)

// Declarer is implemented by Go types that declare their own extensions.
// DeclareExtensions is called once, the first time the type is visited by a lookup.
// It must register through d only.
type Declarer interface {
	DeclareExtensions(d *Declarations) error
}

var declarerType = reflect.TypeFor[Declarer]()

// DeclareFunc declares the extensions of a type
type DeclareFunc func(d *Declarations) error

// Declarations buffers the extensions declared for one type.
// They are registered only when the declaring function succeeds.
type Declarations struct {
	registry *Registry
	target   *types.Type
	pending  []*entry
}

// Target returns the type being declared
func (d *Declarations) Target() *types.Type {
	return d.target
}

// Attach declares a plain extension of kind E
func Attach[E any](d *Declarations, value E) {
	d.pending = append(d.pending, &entry{
		target: d.target,
		kind:   d.registry.types.TypeOf(reflect.TypeFor[E]()),
		value:  value,
	})
}

// AttachFunc declares a plain extension of kind E produced on first retrieval
func AttachFunc[E any](d *Declarations, produce func() E) {
	d.pending = append(d.pending, &entry{
		target:  d.target,
		kind:    d.registry.types.TypeOf(reflect.TypeFor[E]()),
		produce: func() any { return produce() },
	})
}

// AttachProperty declares a property of kind E
func AttachProperty[E any](d *Declarations, name string, value E) error {
	if err := checkProperty(d.target, name); err != nil {
		return err
	}

	kind := d.registry.types.TypeOf(reflect.TypeFor[E]())
	for _, e := range d.pending {
		if e.kind == kind && e.name == name {
			return errors.NewErrPropertyExists(d.target.Name(), name)
		}
	}

	d.pending = append(d.pending, &entry{
		target: d.target,
		kind:   kind,
		name:   name,
		value:  value,
	})
	return nil
}

// Declare registers a function declaring the extensions of the target type.
// The function runs the first time the type is visited by a lookup, or immediately
// when the type has already been visited.
func (r *Registry) Declare(target *types.Type, fn DeclareFunc) {
	if target == nil || fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.declared.Contains(target) {
		r.apply(target, fn)
		return
	}
	r.declarations[target] = append(r.declarations[target], fn)
}

// ensureDeclared applies the declarations of the type once.
// The registry lock must be held.
func (r *Registry) ensureDeclared(t *types.Type) {
	if !r.declared.Add(t) {
		return
	}

	fns := r.declarations[t]
	delete(r.declarations, t)

	if rtype := t.ReflectType(); rtype != nil && rtype.Kind() != reflect.Interface && reflect.PointerTo(rtype).Implements(declarerType) {
		declarer := reflect.New(rtype).Interface().(Declarer)
		fns = append([]DeclareFunc{declarer.DeclareExtensions}, fns...)
	}

	for _, fn := range fns {
		r.apply(t, fn)
	}
}

// apply runs a declaration and commits what it buffered when it succeeds.
// The registry lock must be held.
func (r *Registry) apply(target *types.Type, fn DeclareFunc) {
	d := &Declarations{registry: r, target: target}
	if err := fn(d); err != nil {
		r.logger.Warnf("extension declarations of type=(%s) skipped: %v", target.Name(), err)
		return
	}

	for _, e := range d.pending {
		if !e.property() {
			continue
		}
		if _, ok := r.table(e.kind).lookup(e.target, e.name); ok {
			r.logger.Warnf("extension declarations of type=(%s) skipped: %v", target.Name(), errors.NewErrPropertyExists(target.Name(), e.name))
			return
		}
	}

	for _, e := range d.pending {
		if e.property() {
			_, _ = r.addProperty(e)
			continue
		}
		r.add(e)
	}
}
