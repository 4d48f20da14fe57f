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
	"reflect"
	"slices"
)

// Extendable is implemented by Go types that accept property extensions.
// It is the capability marker checked by the extension registry; descriptor-only
// types use the Extensible option instead.
type Extendable interface {
	Extendable()
}

var extendableType = reflect.TypeFor[Extendable]()

// Type is a type handle. Handles are interned by their Registry: two handles are
// equal if and only if they denote the same type.
//
// A handle is either reflect-backed, created from a Go type with pointer indirections
// stripped, or descriptor-only, declared by name. Its lattice (base and declared
// interfaces) never changes after registration.
type Type struct {
	name       string
	rtype      reflect.Type
	base       *Type
	interfaces []*Type
	abstract   bool
	iface      bool
	extensible bool
	implicit   bool
}

// Name returns the fully qualified name of the type
func (t *Type) Name() string {
	return t.name
}

// String returns the name of the type
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// ReflectType returns the Go type behind the handle, or nil for descriptor-only types
func (t *Type) ReflectType() reflect.Type {
	return t.rtype
}

// Base returns the immediate base type, or nil at the root
func (t *Type) Base() *Type {
	return t.base
}

// DeclaredInterfaces returns the interfaces explicitly declared on the type, in declaration order
func (t *Type) DeclaredInterfaces() []*Type {
	return slices.Clone(t.interfaces)
}

// IsAbstract returns true when the type cannot be instantiated
func (t *Type) IsAbstract() bool {
	return t.abstract || t.iface
}

// IsInterface returns true when the type is an interface
func (t *Type) IsInterface() bool {
	return t.iface
}

// IsExtensible returns true when the type accepts property extensions
func (t *Type) IsExtensible() bool {
	return t.extensible
}

// IsImplicit returns true when the handle was registered on first reference rather than defined
func (t *Type) IsImplicit() bool {
	return t.implicit
}

// indirect strips pointer indirections
func indirect(rtype reflect.Type) reflect.Type {
	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}
	return rtype
}

// nameOf returns the fully qualified name of a Go type
func nameOf(rtype reflect.Type) string {
	if rtype.Name() == "" {
		return rtype.String()
	}
	if rtype.PkgPath() == "" {
		return rtype.Name()
	}
	return rtype.PkgPath() + "." + rtype.Name()
}

// implements reports whether the Go type, or a pointer to it, implements iface
func implements(rtype, iface reflect.Type) bool {
	if rtype.Implements(iface) {
		return true
	}
	return rtype.Kind() != reflect.Interface && reflect.PointerTo(rtype).Implements(iface)
}
