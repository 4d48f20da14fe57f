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
	"context"
	"reflect"
	"sync"

	"go.uber.org/atomic"
)

// SingletonOption configures a singleton lookup
type SingletonOption interface {
	// Apply sets the SingletonOption value of a lookup.
	Apply(config *singletonConfig)
}

var _ SingletonOption = SingletonOptionFunc(nil)

// SingletonOptionFunc implements the SingletonOption interface.
type SingletonOptionFunc func(config *singletonConfig)

// Apply applies the option
func (f SingletonOptionFunc) Apply(config *singletonConfig) {
	f(config)
}

type singletonConfig struct {
	scope reflect.Type
}

// ScopedBy partitions singletons by the type S. Each scope holds its own instance.
func ScopedBy[S any]() SingletonOption {
	return SingletonOptionFunc(func(config *singletonConfig) {
		config.scope = reflect.TypeFor[S]()
	})
}

// slotKey identifies a singleton
type slotKey struct {
	scope    reflect.Type
	contract reflect.Type
}

// slot holds one lazily created instance
type slot struct {
	mu    sync.Mutex
	ready atomic.Bool
	value any
}

// get returns the slot value, creating it on first successful call.
// Failed creations are not memoized.
func (s *slot) get(create func() (any, error)) (value any, created bool, err error) {
	if s.ready.Load() {
		return s.value, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return s.value, false, nil
	}

	if value, err = create(); err != nil {
		return nil, false, err
	}

	s.value = value
	s.ready.Store(true)
	return value, true, nil
}

// Singleton returns the instance of T for the scope, built with New on first call.
//
// The slot stays locked while its instance is built. A constructor may request other
// singletons, but must not request the one being built, directly or through another
// singleton: that call blocks forever. Declare such dependencies as constructor
// parameters so that the cycle is reported as ErrCircularDependency.
func Singleton[T any](c *Container, opts ...SingletonOption) (T, error) {
	config := new(singletonConfig)
	for _, opt := range opts {
		opt.Apply(config)
	}

	key := slotKey{scope: config.scope, contract: reflect.TypeFor[T]()}
	s := c.slots.LoadOrCompute(key, func() *slot { return new(slot) })
	value, created, err := s.get(func() (any, error) {
		return New[T](c)
	})

	var zero T
	if err != nil {
		return zero, err
	}

	if created {
		c.metric.SingletonCreated(context.Background(), key.contract.String())
	}

	instance, _ := value.(T)
	return instance, nil
}
