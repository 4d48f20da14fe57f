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
	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/internal/validation"
)

// Option is the interface that applies a declaration option.
type Option interface {
	// Apply sets the Option value of a type.
	Apply(t *Type)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(t *Type)

// Apply applies the option
func (f OptionFunc) Apply(t *Type) {
	f(t)
}

// WithName overrides the name of a Go type
func WithName(name string) Option {
	return OptionFunc(func(t *Type) {
		t.name = name
	})
}

// WithBase sets the base type. For Go struct types it overrides the base
// derived from the first embedded struct.
func WithBase(base *Type) Option {
	return OptionFunc(func(t *Type) {
		t.base = base
	})
}

// WithInterfaces declares the interfaces implemented by the type, in declaration order
func WithInterfaces(interfaces ...*Type) Option {
	return OptionFunc(func(t *Type) {
		t.interfaces = append(t.interfaces, interfaces...)
	})
}

// Abstract marks the type as not instantiable
func Abstract() Option {
	return OptionFunc(func(t *Type) {
		t.abstract = true
	})
}

// Interface marks a descriptor-only type as an interface
func Interface() Option {
	return OptionFunc(func(t *Type) {
		t.iface = true
	})
}

// Extensible marks the type as accepting property extensions
func Extensible() Option {
	return OptionFunc(func(t *Type) {
		t.extensible = true
	})
}

// checkLattice validates the base and declared interfaces of a type being declared.
// Every violation is reported.
func checkLattice(t *Type) error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.ValidatorFunc(func() error {
			if t.base != nil && (t.base == t || t.base.iface) {
				return errors.NewErrInvalidBase(t.name, t.base.name)
			}
			return nil
		}))

	for _, iface := range t.interfaces {
		chain.AddValidator(validation.ValidatorFunc(func() error {
			if iface == nil || !iface.iface {
				return errors.NewErrInvalidInterface(t.name, iface.String())
			}
			return nil
		}))
	}
	return chain.Validate()
}
