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

import "reflect"

// optionalParam is implemented by Optional. It lets the resolver recognize optional
// constructor parameters and fill them.
type optionalParam interface {
	elem() reflect.Type
	with(value reflect.Value) reflect.Value
}

var optionalParamType = reflect.TypeFor[optionalParam]()

// Optional marks a constructor parameter as optional. An optional parameter never
// prevents a constructor from being selected: it is set when its type can be
// created by the container and left empty otherwise.
type Optional[V any] struct {
	value V
	set   bool
}

// Some returns an Optional holding value
func Some[V any](value V) Optional[V] {
	return Optional[V]{value: value, set: true}
}

// Get returns the value and whether it is set
func (o Optional[V]) Get() (V, bool) {
	return o.value, o.set
}

// IsSet returns true when the value is set
func (o Optional[V]) IsSet() bool {
	return o.set
}

// Or returns the value when set and fallback otherwise
func (o Optional[V]) Or(fallback V) V {
	if o.set {
		return o.value
	}
	return fallback
}

func (o Optional[V]) elem() reflect.Type {
	return reflect.TypeFor[V]()
}

func (o Optional[V]) with(value reflect.Value) reflect.Value {
	v, ok := value.Interface().(V)
	if !ok {
		return reflect.ValueOf(o)
	}
	return reflect.ValueOf(Some(v))
}
