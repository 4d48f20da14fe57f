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

package xsync

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/typext/internal/locker"
)

// Generation is one immutable-by-convention epoch of a Generations cache.
// Values stored in a generation are never modified, only added.
type Generation[K comparable, V any] struct {
	id      uint64
	entries sync.Map
}

// ID returns the generation number.
func (g *Generation[K, V]) ID() uint64 {
	return g.id
}

// Load returns the value cached for k in this generation.
func (g *Generation[K, V]) Load(k K) (V, bool) {
	val, ok := g.entries.Load(k)
	if !ok {
		var zero V
		return zero, false
	}
	return val.(V), true
}

// Store caches v for k in this generation. Storing into a retired generation is
// harmless: the value is never observed through Generations.Current again.
func (g *Generation[K, V]) Store(k K, v V) {
	g.entries.Store(k, v)
}

// Generations is a generation-counted cache. Readers load the current generation
// without locking; writers retire the whole cache in one step with Invalidate.
//
// A value computed from state observed at generation N must be stored into the
// generation N object, obtained before the computation started. If the cache
// was invalidated in between, the value lands in a retired generation and is dropped.
type Generations[K comparable, V any] struct {
	_       locker.NoCopy
	counter atomic.Uint64
	current atomic.Pointer[Generation[K, V]]
}

// NewGenerations creates a cache at generation zero.
func NewGenerations[K comparable, V any]() *Generations[K, V] {
	cache := new(Generations[K, V])
	cache.current.Store(&Generation[K, V]{})
	return cache
}

// Current returns the live generation.
func (x *Generations[K, V]) Current() *Generation[K, V] {
	return x.current.Load()
}

// Invalidate retires the live generation and returns the number of the new one.
func (x *Generations[K, V]) Invalidate() uint64 {
	id := x.counter.Inc()
	x.current.Store(&Generation[K, V]{id: id})
	return id
}
