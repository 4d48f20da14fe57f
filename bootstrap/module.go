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

package bootstrap

import (
	"context"
)

// Module is a unit of registration code. Init runs once per process, in the order
// modules were added to the Runtime, after every PreInit has run.
type Module interface {
	// Name returns the unique name of the module
	Name() string
	// Init registers the module extensions, constructors and bindings
	Init(ctx context.Context, runtime *Runtime) error
}

// PreInitializer is implemented by modules that need a first pass before any module Init runs,
// typically to declare types other modules build on.
type PreInitializer interface {
	PreInit(ctx context.Context, runtime *Runtime) error
}

// ModuleFunc adapts a function into a Module
type ModuleFunc struct {
	name string
	init func(ctx context.Context, runtime *Runtime) error
}

var _ Module = (*ModuleFunc)(nil)

// NewModuleFunc creates a Module named name running init
func NewModuleFunc(name string, init func(ctx context.Context, runtime *Runtime) error) *ModuleFunc {
	return &ModuleFunc{name: name, init: init}
}

// Name returns the module name
func (m *ModuleFunc) Name() string {
	return m.name
}

// Init runs the module function
func (m *ModuleFunc) Init(ctx context.Context, runtime *Runtime) error {
	return m.init(ctx, runtime)
}
