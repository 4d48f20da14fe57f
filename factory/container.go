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

// Package factory builds instances of contract types through constructor injection.
//
// A contract is bound to a concrete implementation with Bind and concrete types
// receive their constructors with Provide. New selects the constructor with the
// most parameters the container can provide, builds every parameter recursively
// and invokes it. Singleton memoizes one instance per contract and scope.
package factory

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"sync"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/internal/errorschain"
	"github.com/tochemey/typext/internal/metric"
	"github.com/tochemey/typext/internal/xsync"
	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

// binding is the current implementation of a contract
type binding struct {
	concrete    reflect.Type
	replaceable bool
}

// state is an immutable snapshot of the registrations. Writers publish a modified copy.
type state struct {
	bindings     map[reflect.Type]binding
	constructors map[reflect.Type][]*constructor
}

func newState() *state {
	return &state{
		bindings:     make(map[reflect.Type]binding),
		constructors: make(map[reflect.Type][]*constructor),
	}
}

func (s *state) clone() *state {
	return &state{
		bindings:     maps.Clone(s.bindings),
		constructors: maps.Clone(s.constructors),
	}
}

// concrete returns the implementation bound to the contract, or the contract itself
func (s *state) concrete(contract reflect.Type) reflect.Type {
	if b, ok := s.bindings[contract]; ok {
		return b.concrete
	}
	return contract
}

// selection is a cached constructor choice. A nil constructor means none is usable.
type selection struct {
	constructor *constructor
}

// Container holds the bindings, constructors and singletons of a process
type Container struct {
	mu            sync.Mutex
	state         atomic.Pointer[state]
	selections    *xsync.Generations[reflect.Type, selection]
	slots         *xsync.Map[slotKey, *slot]
	types         *types.Registry
	logger        log.Logger
	meterProvider otelmetric.MeterProvider
	metric        *metric.FactoryMetric
}

// NewContainer creates an empty container
func NewContainer(opts ...Option) *Container {
	c := &Container{
		selections: xsync.NewGenerations[reflect.Type, selection](),
		slots:      xsync.NewMap[slotKey, *slot](),
		types:      types.GlobalRegistry,
		logger:     log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(c)
	}

	c.metric = metric.NoopFactoryMetric()
	factoryMetric, err := metric.NewFactoryMetric(metric.NewProvider(c.meterProvider).Meter())
	if err != nil {
		c.logger.Warnf("factory metrics disabled: %v", err)
	} else {
		c.metric = factoryMetric
	}

	c.state.Store(newState())
	return c
}

// Provide registers constructors for the concrete type C. A constructor is a function
// returning C, or C and an error, whose parameters are resolved by the container.
// Every invalid constructor is reported and none is registered in that case.
func Provide[C any](c *Container, constructors ...any) error {
	concrete := reflect.TypeFor[C]()
	chain := errorschain.New()
	parsed := make([]*constructor, 0, len(constructors))
	for _, fn := range constructors {
		ctor, err := parseConstructor(concrete, fn)
		if err != nil {
			chain.AddError(errors.NewErrInvalidConstructor(concrete.String(), err))
			continue
		}
		parsed = append(parsed, ctor)
	}

	if err := chain.Error(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Load().clone()
	next.constructors[concrete] = slices.Concat(next.constructors[concrete], parsed)
	c.publish(next)
	c.logger.Debugf("constructors provided type=(%s) count=(%d)", concrete, len(parsed))
	return nil
}

// New builds an instance of T. Constructor errors are returned as they are.
func New[T any](c *Container) (T, error) {
	var zero T
	contract := reflect.TypeFor[T]()
	value, err := c.build(contract, nil)
	if err != nil {
		c.metric.ResolutionFailed(context.Background(), contract.String())
		return zero, err
	}

	c.metric.InstanceCreated(context.Background(), contract.String())
	instance, _ := value.Interface().(T)
	return instance, nil
}

// CanCreate reports whether New[T] can select a constructor. Value types can always be created.
func CanCreate[T any](c *Container) bool {
	ok, err := c.canCreate(reflect.TypeFor[T](), nil)
	return ok && err == nil
}

// ClearAll removes every binding, constructor and singleton.
// It is meant for tests and must not run concurrently with construction.
func (c *Container) ClearAll() {
	c.mu.Lock()
	c.publish(newState())
	c.slots.Reset()
	c.mu.Unlock()
}

// publish installs a new state and retires cached selections.
// The container lock must be held.
func (c *Container) publish(next *state) {
	c.state.Store(next)
	c.selections.Invalidate()
}

// isAbstract reports whether the concrete type cannot be instantiated
func (c *Container) isAbstract(concrete reflect.Type) bool {
	if concrete.Kind() == reflect.Interface {
		return true
	}
	return c.types.TypeOf(concrete).IsAbstract()
}
