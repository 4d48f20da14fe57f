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

// Package bootstrap wires the type registry, the extension registry and the
// construction factory of a process and runs the registration modules once.
package bootstrap

import (
	"context"
	"fmt"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/extension"
	"github.com/tochemey/typext/factory"
	"github.com/tochemey/typext/internal/chain"
	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

// Runtime aggregates the registries of a process
type Runtime struct {
	mu            sync.Mutex
	id            string
	types         *types.Registry
	extensions    *extension.Registry
	factory       *factory.Container
	logger        log.Logger
	meterProvider otelmetric.MeterProvider

	pending  []Module
	modules  []Module
	names    mapset.Set[string]
	starting atomic.Bool
	started  atomic.Bool
}

// New creates a Runtime. Modules given with WithModules are added in order;
// a duplicate module name is logged and ignored, use Use to get the error.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		id:     uuid.NewString(),
		types:  types.GlobalRegistry,
		logger: log.DefaultLogger,
		names:  mapset.NewThreadUnsafeSet[string](),
	}

	for _, opt := range opts {
		opt.Apply(r)
	}

	r.logger = r.logger.With("runtime", r.id)
	r.extensions = extension.NewRegistry(
		extension.WithTypes(r.types),
		extension.WithLogger(r.logger),
		extension.WithMeterProvider(r.meterProvider),
	)

	r.factory = factory.NewContainer(
		factory.WithTypes(r.types),
		factory.WithLogger(r.logger),
		factory.WithMeterProvider(r.meterProvider),
	)

	for _, module := range r.pending {
		if err := r.Use(module); err != nil {
			r.logger.Warn(err)
		}
	}
	r.pending = nil
	return r
}

// ID returns the unique identifier of the runtime
func (r *Runtime) ID() string {
	return r.id
}

// Types returns the type registry
func (r *Runtime) Types() *types.Registry {
	return r.types
}

// Extensions returns the extension registry
func (r *Runtime) Extensions() *extension.Registry {
	return r.extensions
}

// Factory returns the construction factory
func (r *Runtime) Factory() *factory.Container {
	return r.factory
}

// Logger returns the logger
func (r *Runtime) Logger() log.Logger {
	return r.logger
}

// Started returns true once Start has succeeded
func (r *Runtime) Started() bool {
	return r.started.Load()
}

// Modules returns the names of the registered modules in initialization order
func (r *Runtime) Modules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.modules))
	for _, module := range r.modules {
		names = append(names, module.Name())
	}
	return names
}

// Use adds modules. The registration order is the initialization order.
// Nothing is added when a name is already taken.
func (r *Runtime) Use(modules ...Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.starting.Load() || r.started.Load() {
		return errors.ErrAlreadyStarted
	}

	names := r.names.Clone()
	for _, module := range modules {
		if module == nil {
			return errors.ErrInvalidOperation
		}
		if !names.Add(module.Name()) {
			return errors.NewErrModuleExists(module.Name())
		}
	}

	r.names = names
	r.modules = append(r.modules, modules...)
	return nil
}

// Start runs PreInit of every module, then Init of every module, in registration order.
// The first failure stops the pass. Start succeeds at most once.
func (r *Runtime) Start(ctx context.Context) error {
	if !r.starting.CompareAndSwap(false, true) {
		return errors.ErrAlreadyStarted
	}
	defer r.starting.Store(false)

	r.mu.Lock()
	if r.started.Load() {
		r.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	modules := slices.Clone(r.modules)
	r.mu.Unlock()

	r.logger.Infof("starting runtime with %d modules", len(modules))
	pass := chain.New(chain.WithContext(ctx))
	for _, module := range modules {
		preInitializer, ok := module.(PreInitializer)
		pass.AddStepIf(ok, fmt.Sprintf("module=(%s) pre-init", module.Name()), func(ctx context.Context) error {
			return preInitializer.PreInit(ctx, r)
		})
	}

	for _, module := range modules {
		pass.AddStep(fmt.Sprintf("module=(%s) init", module.Name()), func(ctx context.Context) error {
			r.logger.Debugf("initializing module=(%s)", module.Name())
			return module.Init(ctx, r)
		})
	}

	if err := pass.Run(); err != nil {
		r.logger.Errorf("runtime failed to start: %v", err)
		return err
	}

	r.started.Store(true)
	r.logger.Info("runtime started")
	return nil
}

// Reset clears the extensions, bindings, constructors and singletons and allows Start
// to run again. It is meant for tests.
func (r *Runtime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions.ClearAll()
	r.factory.ClearAll()
	r.started.Store(false)
}
