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
	"reflect"

	"github.com/tochemey/typext/errors"
)

// Bind sets C as the implementation of the contract T.
// Rebinding a contract whose binding is not replaceable fails with ErrNotReplaceable
// unless Force is given, and leaves the current binding active.
func Bind[T, C any](c *Container, opts ...BindOption) error {
	return c.BindType(reflect.TypeFor[T](), reflect.TypeFor[C](), opts...)
}

// BindType sets concrete as the implementation of contract
func (c *Container) BindType(contract, concrete reflect.Type, opts ...BindOption) error {
	if contract == nil || concrete == nil {
		return errors.ErrInvalidOperation
	}

	if !concrete.AssignableTo(contract) {
		return errors.NewErrNotAssignable(contract.String(), concrete.String())
	}

	config := newBindConfig(opts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.state.Load()
	if existing, ok := current.bindings[contract]; ok {
		if !config.replaceExisting || (existing.concrete == concrete && existing.replaceable == config.replaceable) {
			return nil
		}

		if !existing.replaceable && !config.force {
			c.logger.Warnf("rebinding rejected contract=(%s) current=(%s) requested=(%s)", contract, existing.concrete, concrete)
			return errors.NewErrNotReplaceable(contract.String(), existing.concrete.String())
		}
	}

	next := current.clone()
	next.bindings[contract] = binding{concrete: concrete, replaceable: config.replaceable}
	c.publish(next)
	c.logger.Debugf("contract=(%s) bound to=(%s)", contract, concrete)
	return nil
}

// Binding returns the implementation bound to the contract T
func Binding[T any](c *Container) (reflect.Type, bool) {
	b, ok := c.state.Load().bindings[reflect.TypeFor[T]()]
	return b.concrete, ok
}
