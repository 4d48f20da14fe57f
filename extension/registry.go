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

// Package extension attaches extensions to types after the fact.
//
// Extensions are grouped by kind, the Go type of the extension value. An extension
// attached to a type applies to every type derived from it and to every type
// implementing it. Merged results are cached per queried type and served without
// locking until the next registration.
package extension

import (
	"cmp"
	"context"
	"reflect"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/internal/metric"
	"github.com/tochemey/typext/internal/xsync"
	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

// table holds the extensions of one kind, per exact target type
type table struct {
	plain map[*types.Type][]*entry
	props map[*types.Type][]*entry
	names map[*types.Type]map[string]*entry
}

func newTable() *table {
	return &table{
		plain: make(map[*types.Type][]*entry),
		props: make(map[*types.Type][]*entry),
		names: make(map[*types.Type]map[string]*entry),
	}
}

// lookup returns the property registered under name for the exact target
func (t *table) lookup(target *types.Type, name string) (*entry, bool) {
	e, ok := t.names[target][name]
	return e, ok
}

// append adds the entry to the target list
func (t *table) append(e *entry) {
	if !e.property() {
		t.plain[e.target] = append(t.plain[e.target], e)
		return
	}

	names, ok := t.names[e.target]
	if !ok {
		names = make(map[string]*entry)
		t.names[e.target] = names
	}
	names[e.name] = e
	t.props[e.target] = append(t.props[e.target], e)
}

type mode uint8

const (
	modeEntries mode = iota
	modeValues
	modeTyped
	modeProperty
)

// resultKey identifies a cached merge
type resultKey struct {
	kind   *types.Type
	view   reflect.Type
	target *types.Type
	name   string
	mode   mode
}

// Registry holds every extension kind of the process behind a single mutex.
// Use For to obtain the typed view of one kind.
type Registry struct {
	mu            sync.Mutex
	types         *types.Registry
	logger        log.Logger
	meterProvider otelmetric.MeterProvider
	metric        *metric.ExtensionMetric

	kinds        map[*types.Type]*table
	synced       mapset.Set[*types.Type]
	sequence     uint64
	declarations map[*types.Type][]DeclareFunc
	declared     mapset.Set[*types.Type]

	cache           *xsync.Generations[resultKey, any]
	typesGeneration atomic.Uint64
}

// NewRegistry creates an empty extension registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		types:        types.GlobalRegistry,
		logger:       log.DefaultLogger,
		kinds:        make(map[*types.Type]*table),
		synced:       mapset.NewThreadUnsafeSet[*types.Type](),
		declarations: make(map[*types.Type][]DeclareFunc),
		declared:     mapset.NewThreadUnsafeSet[*types.Type](),
		cache:        xsync.NewGenerations[resultKey, any](),
	}

	for _, opt := range opts {
		opt.Apply(r)
	}

	r.metric = metric.NoopExtensionMetric()
	extensionMetric, err := metric.NewExtensionMetric(metric.NewProvider(r.meterProvider).Meter())
	if err != nil {
		r.logger.Warnf("extension metrics disabled: %v", err)
	} else {
		r.metric = extensionMetric
	}

	r.typesGeneration.Store(r.types.Generation())
	return r
}

// Types returns the type registry used by the registry
func (r *Registry) Types() *types.Registry {
	return r.types
}

// Generation returns the current cache generation
func (r *Registry) Generation() uint64 {
	return r.cache.Current().ID()
}

// ClearAll removes every extension, declaration and cached result.
// It is meant for tests and must not run concurrently with readers.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.kinds = make(map[*types.Type]*table)
	r.synced = mapset.NewThreadUnsafeSet[*types.Type]()
	r.declarations = make(map[*types.Type][]DeclareFunc)
	r.declared = mapset.NewThreadUnsafeSet[*types.Type]()
	r.cache.Invalidate()
	r.mu.Unlock()
}

// current returns the live cache generation, retiring it first when the
// interface set of the type registry changed since it was built.
func (r *Registry) current() *xsync.Generation[resultKey, any] {
	observed := r.types.Generation()
	if r.typesGeneration.Load() != observed {
		r.mu.Lock()
		if r.typesGeneration.Load() != observed {
			r.cache.Invalidate()
			r.typesGeneration.Store(observed)
		}
		r.mu.Unlock()
	}
	return r.cache.Current()
}

// table returns the table of the given kind, creating it when missing.
// The registry lock must be held.
func (r *Registry) table(kind *types.Type) *table {
	tb, ok := r.kinds[kind]
	if !ok {
		tb = newTable()
		r.kinds[kind] = tb
	}
	return tb
}

// propagation returns the kind followed by its ancestors and interfaces, each once
func (r *Registry) propagation(kind *types.Type) []*types.Type {
	seen := mapset.NewThreadUnsafeSet[*types.Type]()
	var kinds []*types.Type
	for _, k := range append(r.types.Ancestors(kind), r.types.Interfaces(kind)...) {
		if seen.Add(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// add registers a plain extension entry under its kind and every wider kind.
// The registry lock must be held.
func (r *Registry) add(e *entry) {
	r.sequence++
	e.seq = r.sequence
	for _, kind := range r.propagation(e.kind) {
		r.table(kind).append(e)
	}
	r.cache.Invalidate()
	r.metric.Registration(context.Background(), e.kind.Name())
	r.logger.Debugf("extension added kind=(%s) target=(%s)", e.kind.Name(), e.target.Name())
}

// addProperty registers a property entry under its kind and every wider kind that
// does not hold a property with the same name for the target.
// The registry lock must be held.
func (r *Registry) addProperty(e *entry) (*entry, error) {
	if existing, ok := r.table(e.kind).lookup(e.target, e.name); ok {
		return existing, errors.NewErrPropertyExists(e.target.Name(), e.name)
	}

	r.sequence++
	e.seq = r.sequence
	for _, kind := range r.propagation(e.kind) {
		tb := r.table(kind)
		if _, ok := tb.lookup(e.target, e.name); ok {
			continue
		}
		tb.append(e)
	}
	r.cache.Invalidate()
	r.metric.Registration(context.Background(), e.kind.Name())
	r.logger.Debugf("property added kind=(%s) target=(%s) name=(%s)", e.kind.Name(), e.target.Name(), e.name)
	return e, nil
}

// backfill copies into the table of kind the entries registered through narrower
// kinds before kind was known to the type registry, keeping registration order.
// The registry lock must be held.
func (r *Registry) backfill(kind *types.Type) {
	if !r.synced.Add(kind) {
		return
	}

	seen := mapset.NewThreadUnsafeSet[*entry]()
	if tb, ok := r.kinds[kind]; ok {
		for _, entries := range tb.plain {
			seen.Append(entries...)
		}
		for _, entries := range tb.props {
			seen.Append(entries...)
		}
	}

	widens := make(map[*types.Type]bool)
	var missing []*entry
	collect := func(entries []*entry) {
		for _, e := range entries {
			if e.kind == kind || seen.Contains(e) {
				continue
			}
			ok, known := widens[e.kind]
			if !known {
				ok = slices.Contains(r.propagation(e.kind), kind)
				widens[e.kind] = ok
			}
			if ok {
				seen.Add(e)
				missing = append(missing, e)
			}
		}
	}

	for k, tb := range r.kinds {
		if k == kind {
			continue
		}
		for _, entries := range tb.plain {
			collect(entries)
		}
		for _, entries := range tb.props {
			collect(entries)
		}
	}

	if len(missing) == 0 {
		return
	}

	slices.SortFunc(missing, bySequence)
	tb := r.table(kind)
	targets := mapset.NewThreadUnsafeSet[*types.Type]()
	for _, e := range missing {
		if e.property() {
			if _, ok := tb.lookup(e.target, e.name); ok {
				continue
			}
		}
		tb.append(e)
		targets.Add(e.target)
	}

	for target := range targets.Iter() {
		slices.SortStableFunc(tb.plain[target], bySequence)
		slices.SortStableFunc(tb.props[target], bySequence)
	}

	r.cache.Invalidate()
	r.logger.Debugf("extensions backfilled kind=(%s) count=(%d)", kind.Name(), len(missing))
}

func bySequence(a, b *entry) int {
	return cmp.Compare(a.seq, b.seq)
}

// traverse returns the traversal order of the type: the type, its base chain up to
// the root, then its interfaces. Declarations of every visited type are applied.
// The registry lock must be held.
func (r *Registry) traverse(target *types.Type) []*types.Type {
	seen := mapset.NewThreadUnsafeSet[*types.Type]()
	var traversal []*types.Type
	for _, t := range append(r.types.Ancestors(target), r.types.Interfaces(target)...) {
		if seen.Add(t) {
			traversal = append(traversal, t)
			r.ensureDeclared(t)
		}
	}
	return traversal
}

// merged returns the entries of the kind applicable to the target: plain extensions
// in traversal order followed by properties in traversal order.
func (r *Registry) merged(kind, target *types.Type) []*entry {
	key := resultKey{kind: kind, target: target, mode: modeEntries}
	if cached, ok := r.current().Load(key); ok {
		return cached.([]*entry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	traversal := r.traverse(target)
	generation := r.cache.Current()
	if cached, ok := generation.Load(key); ok {
		return cached.([]*entry)
	}

	r.metric.CacheMiss(context.Background(), kind.Name())
	entries := make([]*entry, 0)
	tb, ok := r.kinds[kind]
	if ok {
		seen := mapset.NewThreadUnsafeSet[*entry]()
		for _, t := range traversal {
			for _, e := range tb.plain[t] {
				if seen.Add(e) {
					entries = append(entries, e)
				}
			}
		}
		for _, t := range traversal {
			for _, e := range tb.props[t] {
				if seen.Add(e) {
					entries = append(entries, e)
				}
			}
		}
	}

	generation.Store(key, entries)
	return entries
}

// resolve returns the cached result of key, computing it outside the registry lock
// when missing. Lazy producers may therefore query the registry.
func (r *Registry) resolve(key resultKey, compute func([]*entry) any) any {
	generation := r.current()
	if cached, ok := generation.Load(key); ok {
		r.metric.CacheHit(context.Background())
		return cached
	}

	result := compute(r.merged(key.kind, key.target))
	generation.Store(key, result)
	return result
}
