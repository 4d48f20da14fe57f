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

// Package errors defines the errors returned by the type registry, the extension
// registry and the construction factory.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSupported is returned when the bound or requested type cannot be instantiated,
	// i.e. it is an interface or has been declared abstract.
	ErrNotSupported = errors.New("type cannot be instantiated")

	// ErrMissingConstructor is returned when no constructor could be selected for a concrete type.
	// Either none of its constructors has only providable parameters or the best two candidates
	// have the same number of parameters.
	ErrMissingConstructor = errors.New("no usable constructor")

	// ErrCircularDependency is returned when constructor resolution re-enters a type that is
	// already being resolved on the same call path.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrInvalidOperation is returned when an operation is not allowed in the current state.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotReplaceable is returned when rebinding a contract whose current binding is not replaceable.
	ErrNotReplaceable = fmt.Errorf("%w: binding is not replaceable", ErrInvalidOperation)

	// ErrNotExtensible is returned when attaching a property extension to a type that does not
	// carry the extensible capability marker.
	ErrNotExtensible = fmt.Errorf("%w: type is not extensible", ErrInvalidOperation)

	// ErrPropertyExists is returned when a property with the same name is already attached to the exact target type.
	ErrPropertyExists = fmt.Errorf("%w: property already exists", ErrInvalidOperation)

	// ErrInvalidConstructor is returned when a registered constructor is not a function
	// returning the concrete type, optionally followed by an error.
	ErrInvalidConstructor = errors.New("invalid constructor")

	// ErrInvalidTypeName is returned when a type or property name does not satisfy the naming rules.
	// A valid name is no more than 255 characters long, starts with a letter and contains only
	// alphanumeric characters, '_', '.' or '-' thereafter.
	ErrInvalidTypeName = errors.New("invalid name")

	// ErrTypeAlreadyDefined is returned when a type name or Go type already has a handle in the registry.
	ErrTypeAlreadyDefined = errors.New("type is already defined")

	// ErrModuleExists is returned when a module with the same name is already registered with the runtime.
	ErrModuleExists = errors.New("module already exists")

	// ErrAlreadyStarted is returned when the runtime initialization pass has already run.
	ErrAlreadyStarted = errors.New("runtime has already started")
)

// NewErrNotSupported formats an ErrNotSupported for the given type name.
func NewErrNotSupported(typeName string) error {
	return fmt.Errorf("type=(%s) %w", typeName, ErrNotSupported)
}

// NewErrMissingConstructor formats an ErrMissingConstructor for the given type name.
func NewErrMissingConstructor(typeName string) error {
	return fmt.Errorf("type=(%s) %w", typeName, ErrMissingConstructor)
}

// NewErrCircularDependency formats an ErrCircularDependency with the resolution path
// that led back to the first element.
func NewErrCircularDependency(path ...string) error {
	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(path, " -> "))
}

// NewErrNotReplaceable formats an ErrNotReplaceable for the given contract and its current implementation.
func NewErrNotReplaceable(contract, current string) error {
	return fmt.Errorf("contract=(%s) bound to=(%s) %w", contract, current, ErrNotReplaceable)
}

// NewErrNotExtensible formats an ErrNotExtensible for the given type name.
func NewErrNotExtensible(typeName string) error {
	return fmt.Errorf("type=(%s) %w", typeName, ErrNotExtensible)
}

// NewErrPropertyExists formats an ErrPropertyExists for the given type and property names.
func NewErrPropertyExists(typeName, property string) error {
	return fmt.Errorf("type=(%s) property=(%s) %w", typeName, property, ErrPropertyExists)
}

// NewErrInvalidConstructor wraps a reason with ErrInvalidConstructor.
func NewErrInvalidConstructor(typeName string, reason error) error {
	return fmt.Errorf("type=(%s) %w: %w", typeName, ErrInvalidConstructor, reason)
}

// NewErrTypeAlreadyDefined formats an ErrTypeAlreadyDefined for the given type name.
func NewErrTypeAlreadyDefined(typeName string) error {
	return fmt.Errorf("type=(%s) %w", typeName, ErrTypeAlreadyDefined)
}

// NewErrModuleExists formats an ErrModuleExists for the given module name.
func NewErrModuleExists(name string) error {
	return fmt.Errorf("module=(%s) %w", name, ErrModuleExists)
}

// NewErrInvalidBase formats an ErrInvalidOperation for a base type that cannot be used.
func NewErrInvalidBase(typeName, base string) error {
	return fmt.Errorf("type=(%s) base=(%s) %w: base must be a non-interface type", typeName, base, ErrInvalidOperation)
}

// NewErrInvalidInterface formats an ErrInvalidOperation for a declared interface that is not an interface type.
func NewErrInvalidInterface(typeName, iface string) error {
	return fmt.Errorf("type=(%s) interface=(%s) %w: not an interface type", typeName, iface, ErrInvalidOperation)
}

// NewErrNotAssignable formats an ErrInvalidOperation for an implementation that does not satisfy its contract.
func NewErrNotAssignable(contract, concrete string) error {
	return fmt.Errorf("contract=(%s) implementation=(%s) %w: implementation is not assignable to contract", contract, concrete, ErrInvalidOperation)
}
