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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/typext/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type publishable interface {
	Publish() string
}

type auditable interface {
	Audit() string
}

type document struct {
	Title string
}

func (document) Extendable() {}

type article struct {
	document
	Body string
}

func (a *article) Publish() string { return a.Title }

type clash struct{}

type loop struct {
	*loop
}

func TestTypeOf(t *testing.T) {
	t.Run("With pointer indirections stripped", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[article](registry)
		require.NotNil(t, handle)
		assert.Same(t, handle, Of[*article](registry))
		assert.Same(t, handle, Of[**article](registry))
		assert.Same(t, handle, registry.TypeOfValue(&article{}))
		assert.Same(t, handle, registry.TypeOf(reflect.TypeFor[article]()))
		assert.True(t, handle.IsImplicit())
		assert.Equal(t, reflect.TypeFor[article](), handle.ReflectType())
		assert.Equal(t, reflect.TypeFor[article]().PkgPath()+".article", handle.Name())
		assert.Equal(t, handle.Name(), handle.String())
	})
	t.Run("With base derived from embedding", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[article](registry)
		base := Of[document](registry)
		assert.Same(t, base, handle.Base())
		assert.Nil(t, base.Base())
		assert.Equal(t, []*Type{handle, base}, registry.Ancestors(handle))
		assert.True(t, registry.IsBaseOf(base, handle))
		assert.False(t, registry.IsBaseOf(handle, base))
		assert.False(t, registry.IsBaseOf(handle, handle))
		assert.Equal(t, []*Type{base, handle}, registry.All())
	})
	t.Run("With self embedding", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[loop](registry)
		assert.Nil(t, handle.Base())
	})
	t.Run("With extendable marker", func(t *testing.T) {
		registry := NewRegistry()
		assert.True(t, Of[document](registry).IsExtensible())
		assert.True(t, Of[article](registry).IsExtensible())
		assert.False(t, Of[int](registry).IsExtensible())
		assert.Equal(t, "int", Of[int](registry).Name())
	})
	t.Run("With interface type", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[publishable](registry)
		assert.True(t, handle.IsInterface())
		assert.True(t, handle.IsAbstract())
	})
	t.Run("With nil value", func(t *testing.T) {
		registry := NewRegistry()
		assert.Nil(t, registry.TypeOfValue(nil))
		assert.Nil(t, registry.TypeOf(nil))
	})
	t.Run("With concurrent first reference", func(t *testing.T) {
		registry := NewRegistry()
		handles := make([]*Type, 32)
		eg := new(errgroup.Group)
		for i := range handles {
			eg.Go(func() error {
				handles[i] = Of[article](registry)
				return nil
			})
		}
		require.NoError(t, eg.Wait())
		for _, handle := range handles {
			assert.Same(t, handles[0], handle)
		}
		assert.Len(t, registry.All(), 2)
	})
	t.Run("With names owned by descriptors", func(t *testing.T) {
		registry := NewRegistry()
		rtype := reflect.TypeFor[clash]()
		for _, name := range []string{nameOf(rtype), rtype.String(), rtype.String() + "#2"} {
			require.NoError(t, registry.Register(&Type{name: name}))
		}

		first := Of[clash](registry)
		second := Of[*clash](registry)
		require.Same(t, first, second)
		assert.Equal(t, rtype.String()+"#3", first.Name())
		assert.Equal(t, rtype, first.ReflectType())

		actual, ok := registry.Lookup(first.Name())
		require.True(t, ok)
		assert.Same(t, first, actual)
		assert.Len(t, registry.All(), 4)
	})
}

func TestDefine(t *testing.T) {
	t.Run("With options", func(t *testing.T) {
		registry := NewRegistry()
		audit, err := Define[auditable](registry)
		require.NoError(t, err)

		handle, err := Define[document](registry, WithName("Document"), Abstract(), WithInterfaces(audit))
		require.NoError(t, err)
		assert.Equal(t, "Document", handle.Name())
		assert.True(t, handle.IsAbstract())
		assert.False(t, handle.IsImplicit())
		assert.Equal(t, []*Type{audit}, handle.DeclaredInterfaces())

		actual, ok := registry.Lookup("Document")
		require.True(t, ok)
		assert.Same(t, handle, actual)
		assert.Same(t, handle, Of[*document](registry))
	})
	t.Run("With type already defined", func(t *testing.T) {
		registry := NewRegistry()
		_, err := Define[article](registry)
		require.NoError(t, err)
		_, err = Define[article](registry)
		require.ErrorIs(t, err, errors.ErrTypeAlreadyDefined)
	})
	t.Run("With type implicitly registered", func(t *testing.T) {
		registry := NewRegistry()
		_ = Of[article](registry)
		_, err := Define[document](registry, Extensible())
		require.ErrorIs(t, err, errors.ErrTypeAlreadyDefined)
	})
	t.Run("With explicit base", func(t *testing.T) {
		registry := NewRegistry()
		root, err := New("Root")
		require.NoError(t, err)
		handle, err := Define[document](registry, WithBase(root))
		require.NoError(t, err)
		assert.Same(t, root, handle.Base())
		assert.True(t, registry.IsBaseOf(root, Of[article](registry)))
	})
	t.Run("With invalid name", func(t *testing.T) {
		registry := NewRegistry()
		_, err := Define[document](registry, WithName("1document"))
		require.ErrorIs(t, err, errors.ErrInvalidTypeName)
		assert.Empty(t, registry.All())
	})
	t.Run("With interface as base", func(t *testing.T) {
		registry := NewRegistry()
		_, err := Define[document](registry, WithBase(Of[publishable](registry)))
		require.ErrorIs(t, err, errors.ErrInvalidOperation)
	})
}

func TestNew(t *testing.T) {
	t.Run("With valid descriptor", func(t *testing.T) {
		registry := NewRegistry()
		iface, err := New("Named", Interface())
		require.NoError(t, err)
		base, err := New("Entity", Abstract(), Extensible())
		require.NoError(t, err)
		handle, err := New("content.Page", WithBase(base), WithInterfaces(iface))
		require.NoError(t, err)

		require.NoError(t, registry.Register(handle))
		require.NoError(t, registry.Register(handle))
		assert.Equal(t, []*Type{base, iface, handle}, registry.All())
		assert.Nil(t, handle.ReflectType())
		assert.True(t, base.IsExtensible())
		assert.True(t, base.IsAbstract())
		assert.False(t, handle.IsAbstract())
		assert.True(t, registry.Implements(handle, iface))
		assert.False(t, registry.Implements(base, iface))
	})
	t.Run("With invalid names", func(t *testing.T) {
		for _, name := range []string{"", "9lives", "bad name", string(make([]byte, 300))} {
			_, err := New(name)
			require.ErrorIs(t, err, errors.ErrInvalidTypeName)
		}
	})
	t.Run("With name override ignored", func(t *testing.T) {
		handle, err := New("Entity", WithName("Other"))
		require.NoError(t, err)
		assert.Equal(t, "Entity", handle.Name())
	})
	t.Run("With invalid lattice", func(t *testing.T) {
		iface, err := New("Named", Interface())
		require.NoError(t, err)
		concrete, err := New("Entity")
		require.NoError(t, err)

		_, err = New("Page", WithBase(iface))
		require.ErrorIs(t, err, errors.ErrInvalidOperation)
		_, err = New("Page", WithInterfaces(concrete))
		require.ErrorIs(t, err, errors.ErrInvalidOperation)
		_, err = New("Page", WithInterfaces(nil))
		require.ErrorIs(t, err, errors.ErrInvalidOperation)

		_, err = New("Page", WithBase(iface), WithInterfaces(concrete, iface, nil))
		require.ErrorIs(t, err, errors.ErrInvalidOperation)
		assert.Len(t, multierr.Errors(err), 3)
	})
	t.Run("With name clash", func(t *testing.T) {
		registry := NewRegistry()
		first, err := New("Entity")
		require.NoError(t, err)
		second, err := New("Entity")
		require.NoError(t, err)
		require.NoError(t, registry.Register(first))
		require.ErrorIs(t, registry.Register(second), errors.ErrTypeAlreadyDefined)
		require.ErrorIs(t, registry.Register(nil), errors.ErrInvalidOperation)
	})
}

func TestLookup(t *testing.T) {
	registry := NewRegistry()
	handle := Of[article](registry)

	actual, ok := registry.Lookup(handle.Name())
	require.True(t, ok)
	assert.Same(t, handle, actual)

	_, ok = registry.Lookup("missing.Type")
	assert.False(t, ok)
}

func TestInterfaces(t *testing.T) {
	t.Run("With declared interfaces in traversal order", func(t *testing.T) {
		registry := NewRegistry()
		a, err := New("A", Interface())
		require.NoError(t, err)
		b, err := New("B", Interface(), WithInterfaces(a))
		require.NoError(t, err)
		c, err := New("C", Interface())
		require.NoError(t, err)
		base, err := New("Base", WithInterfaces(c, a))
		require.NoError(t, err)
		derived, err := New("Derived", WithBase(base), WithInterfaces(b))
		require.NoError(t, err)
		require.NoError(t, registry.Register(derived))

		assert.Equal(t, []*Type{b, a, c}, registry.Interfaces(derived))
		assert.Equal(t, []*Type{a}, registry.Interfaces(b))
		assert.True(t, registry.AssignableTo(derived, a))
		assert.True(t, registry.AssignableTo(derived, base))
		assert.True(t, registry.AssignableTo(derived, derived))
		assert.False(t, registry.AssignableTo(base, derived))
		assert.False(t, registry.AssignableTo(nil, derived))
	})
	t.Run("With registered Go interfaces", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[article](registry)
		assert.Empty(t, registry.Interfaces(handle))

		generation := registry.Generation()
		iface := Of[publishable](registry)
		assert.Greater(t, registry.Generation(), generation)

		assert.Equal(t, []*Type{iface}, registry.Interfaces(handle))
		assert.True(t, registry.Implements(handle, iface))
		assert.False(t, registry.Implements(Of[document](registry), iface))
		assert.False(t, registry.Implements(handle, Of[document](registry)))
	})
	t.Run("With declared before implicit", func(t *testing.T) {
		registry := NewRegistry()
		publish := Of[publishable](registry)
		audit := Of[auditable](registry)
		handle, err := Define[article](registry, WithInterfaces(audit))
		require.NoError(t, err)
		assert.Equal(t, []*Type{audit, publish}, registry.Interfaces(handle))
	})
	t.Run("With concurrent registrations", func(t *testing.T) {
		registry := NewRegistry()
		handle := Of[article](registry)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = registry.Interfaces(handle)
			}
		}()
		go func() {
			defer wg.Done()
			_ = Of[publishable](registry)
			_ = Of[auditable](registry)
		}()
		wg.Wait()
		assert.Len(t, registry.Interfaces(handle), 1)
	})
}
