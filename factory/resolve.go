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

package factory

import (
	"cmp"
	stderrors "errors"
	"reflect"
	"slices"

	"github.com/tochemey/typext/errors"
)

var errorType = reflect.TypeFor[error]()

// class is the construction class of a Go type
type class int

const (
	// reference types are built by the container: interfaces, pointers to structs,
	// maps, slices, channels and functions
	reference class = iota
	// byReference types are pointers to non-struct values and are never provided
	byReference
	// value types are basic kinds, structs and arrays
	value
)

func classOf(rtype reflect.Type) class {
	switch rtype.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return reference
	case reflect.Pointer:
		if rtype.Elem().Kind() == reflect.Struct {
			return reference
		}
		return byReference
	case reflect.UnsafePointer:
		return byReference
	default:
		return value
	}
}

// constructor is a registered constructor function
type constructor struct {
	fn        reflect.Value
	params    []reflect.Type
	optional  []bool
	withError bool
	implicit  reflect.Type
}

// parseConstructor validates a constructor of the concrete type
func parseConstructor(concrete reflect.Type, fn any) (*constructor, error) {
	if concrete.Kind() == reflect.Interface {
		return nil, stderrors.New("interface types cannot be constructed")
	}

	if fn == nil {
		return nil, stderrors.New("constructor is nil")
	}

	rv := reflect.ValueOf(fn)
	rtype := rv.Type()
	switch {
	case rtype.Kind() != reflect.Func:
		return nil, stderrors.New("constructor is not a function")
	case rtype.IsVariadic():
		return nil, stderrors.New("variadic constructors are not supported")
	case rtype.NumOut() == 0 || rtype.NumOut() > 2:
		return nil, stderrors.New("constructor must return the type, optionally followed by an error")
	case rtype.Out(0) != concrete:
		return nil, stderrors.New("constructor returns " + rtype.Out(0).String())
	case rtype.NumOut() == 2 && rtype.Out(1) != errorType:
		return nil, stderrors.New("second result must be an error")
	}

	ctor := &constructor{
		fn:        rv,
		params:    make([]reflect.Type, rtype.NumIn()),
		optional:  make([]bool, rtype.NumIn()),
		withError: rtype.NumOut() == 2,
	}
	for i := range rtype.NumIn() {
		ctor.params[i] = rtype.In(i)
		ctor.optional[i] = rtype.In(i).Implements(optionalParamType)
	}
	return ctor, nil
}

// invoke calls the constructor with the given arguments
func (x *constructor) invoke(args []reflect.Value) (reflect.Value, error) {
	if x.implicit != nil {
		return reflect.New(x.implicit.Elem()), nil
	}

	out := x.fn.Call(args)
	if x.withError && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// path is the chain of concrete types being resolved by one call.
// Each recursion level extends its own copy.
type path []reflect.Type

func (p path) contains(rtype reflect.Type) bool {
	return slices.Contains(p, rtype)
}

func (p path) push(rtype reflect.Type) path {
	return append(slices.Clip(p), rtype)
}

// cycle returns the names of the types forming the cycle that closes on rtype
func (p path) cycle(rtype reflect.Type) []string {
	start := slices.Index(p, rtype)
	names := make([]string, 0, len(p)-start+1)
	for _, t := range p[start:] {
		names = append(names, t.String())
	}
	return append(names, rtype.String())
}

// constructors returns the constructors of the concrete type. A pointer to a struct
// without registered constructors is built from its zero value.
func (s *state) constructorsOf(concrete reflect.Type) []*constructor {
	if ctors, ok := s.constructors[concrete]; ok {
		return ctors
	}
	if concrete.Kind() == reflect.Pointer && concrete.Elem().Kind() == reflect.Struct {
		return []*constructor{{implicit: concrete}}
	}
	return nil
}

// selectConstructor returns the constructor used to build the concrete type, or nil
// when none is usable.
func (c *Container) selectConstructor(concrete reflect.Type, resolving path) (*constructor, error) {
	generation := c.selections.Current()
	if cached, ok := generation.Load(concrete); ok {
		return cached.constructor, nil
	}

	ctors := c.state.Load().constructorsOf(concrete)
	for _, ctor := range ctors {
		if len(ctor.params) == 0 {
			generation.Store(concrete, selection{constructor: ctor})
			return ctor, nil
		}
	}

	if resolving.contains(concrete) {
		return nil, errors.NewErrCircularDependency(resolving.cycle(concrete)...)
	}

	next := resolving.push(concrete)
	candidates := make([]*constructor, 0, len(ctors))
	for _, ctor := range ctors {
		ok, err := c.providable(ctor, next)
		if err != nil {
			return nil, err
		}
		if ok {
			candidates = append(candidates, ctor)
		}
	}

	slices.SortStableFunc(candidates, func(a, b *constructor) int {
		return cmp.Compare(len(b.params), len(a.params))
	})

	var chosen *constructor
	switch {
	case len(candidates) == 1:
		chosen = candidates[0]
	case len(candidates) > 1 && len(candidates[0].params) != len(candidates[1].params):
		chosen = candidates[0]
	case len(candidates) > 1:
		c.logger.Debugf("ambiguous constructors type=(%s) parameters=(%d)", concrete, len(candidates[0].params))
	}

	generation.Store(concrete, selection{constructor: chosen})
	return chosen, nil
}

// providable reports whether every parameter of the constructor can be provided
func (c *Container) providable(ctor *constructor, resolving path) (bool, error) {
	for i, param := range ctor.params {
		if ctor.optional[i] {
			continue
		}

		if classOf(param) != reference {
			return false, nil
		}

		ok, err := c.canCreate(param, resolving)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// canCreate reports whether the contract can be built
func (c *Container) canCreate(contract reflect.Type, resolving path) (bool, error) {
	concrete := c.state.Load().concrete(contract)
	if c.isAbstract(concrete) {
		return false, nil
	}

	if classOf(concrete) == value {
		return true, nil
	}

	ctor, err := c.selectConstructor(concrete, resolving)
	return ctor != nil, err
}

// build creates an instance of the contract. Optional parameters are not part of
// constructor selection, so the resolution path is checked again while building.
func (c *Container) build(contract reflect.Type, resolving path) (reflect.Value, error) {
	concrete := c.state.Load().concrete(contract)
	if c.isAbstract(concrete) {
		return reflect.Value{}, errors.NewErrNotSupported(concrete.String())
	}

	ctor, err := c.selectConstructor(concrete, resolving)
	if err != nil {
		return reflect.Value{}, err
	}

	if ctor == nil {
		if classOf(concrete) == value {
			return reflect.Zero(concrete), nil
		}
		return reflect.Value{}, errors.NewErrMissingConstructor(concrete.String())
	}

	if len(ctor.params) == 0 {
		return ctor.invoke(nil)
	}

	if resolving.contains(concrete) {
		return reflect.Value{}, errors.NewErrCircularDependency(resolving.cycle(concrete)...)
	}

	next := resolving.push(concrete)
	args := make([]reflect.Value, len(ctor.params))
	for i, param := range ctor.params {
		if ctor.optional[i] {
			if args[i], err = c.buildOptional(param, next); err != nil {
				return reflect.Value{}, err
			}
			continue
		}

		if args[i], err = c.build(param, next); err != nil {
			return reflect.Value{}, err
		}
	}
	return ctor.invoke(args)
}

// buildOptional fills an optional parameter when its type is a reference type the
// container can create, and leaves it empty otherwise
func (c *Container) buildOptional(param reflect.Type, resolving path) (reflect.Value, error) {
	empty := reflect.Zero(param)
	optional := empty.Interface().(optionalParam)
	elem := optional.elem()
	if classOf(elem) != reference {
		return empty, nil
	}

	ok, err := c.canCreate(elem, resolving)
	if err != nil || !ok {
		return empty, nil
	}

	instance, err := c.build(elem, resolving)
	switch {
	case stderrors.Is(err, errors.ErrCircularDependency):
		return empty, nil
	case err != nil:
		return reflect.Value{}, err
	}
	return optional.with(instance), nil
}
