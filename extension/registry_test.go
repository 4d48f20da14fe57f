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

package extension

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/typext/errors"
	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type named interface {
	Name() string
}

type behavior struct {
	name string
}

func (b *behavior) Name() string { return b.name }

type publishable interface {
	Publish() string
}

type auditable interface {
	Audit() string
}

type document struct{}

func (document) Extendable() {}

type article struct {
	document
}

func (*article) Publish() string { return "article" }

type note struct {
	document
}

type special struct {
	article
}

type plain struct{}

type declared struct{}

func (declared) Extendable() {}

func (*declared) DeclareExtensions(d *Declarations) error {
	Attach(d, &behavior{name: "declared"})
	return AttachProperty(d, "Kind", &behavior{name: "declared-kind"})
}

type broken struct{}

func (*broken) DeclareExtensions(d *Declarations) error {
	Attach(d, &behavior{name: "broken"})
	return errors.New("declaration failed")
}

func newRegistry() (*types.Registry, *Registry) {
	typesRegistry := types.NewRegistry()
	return typesRegistry, NewRegistry(WithTypes(typesRegistry), WithLogger(log.DiscardLogger))
}

func names(values []*behavior) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, value.name)
	}
	return out
}

func TestExtensions(t *testing.T) {
	t.Run("With inheritance propagation", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		store.Add(types.Of[document](typesRegistry), &behavior{name: "audit"})
		store.Add(types.Of[article](typesRegistry), &behavior{name: "article"})

		assert.Equal(t, []string{"article", "audit"}, names(store.Extensions(types.Of[article](typesRegistry))))
		assert.Equal(t, []string{"article", "audit"}, names(store.Extensions(types.Of[special](typesRegistry))))
		assert.Equal(t, []string{"audit"}, names(store.Extensions(types.Of[note](typesRegistry))))
		assert.Equal(t, []string{"audit"}, names(store.ExtensionsOf(&note{})))
		assert.Empty(t, store.Extensions(types.Of[plain](typesRegistry)))
		assert.Nil(t, store.Extensions(nil))
	})
	t.Run("With interface propagation", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		store.Add(types.Of[publishable](typesRegistry), &behavior{name: "publish"})
		store.Add(types.Of[document](typesRegistry), &behavior{name: "audit"})

		assert.Equal(t, []string{"audit", "publish"}, names(store.Extensions(types.Of[article](typesRegistry))))
		assert.Equal(t, []string{"audit", "publish"}, names(store.Extensions(types.Of[special](typesRegistry))))
		assert.Equal(t, []string{"audit"}, names(store.Extensions(types.Of[note](typesRegistry))))
	})
	t.Run("With declared interfaces", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		root, err := types.New("Root", types.Interface())
		require.NoError(t, err)
		child, err := types.New("Child", types.Interface(), types.WithInterfaces(root))
		require.NoError(t, err)
		page, err := types.New("Page", types.WithInterfaces(child))
		require.NoError(t, err)
		require.NoError(t, typesRegistry.Register(page))

		store.Add(root, &behavior{name: "root"})
		store.Add(child, &behavior{name: "child"})
		store.Add(page, &behavior{name: "page"})

		assert.Equal(t, []string{"page", "child", "root"}, names(store.Extensions(page)))
	})
	t.Run("With idempotent merge", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		store.Add(types.Of[document](typesRegistry), &behavior{name: "audit"})

		handle := types.Of[article](typesRegistry)
		first := store.Extensions(handle)
		second := store.Extensions(handle)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Same(t, &first[0], &second[0])
	})
	t.Run("With cache invalidation", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		assert.Empty(t, store.Extensions(handle))
		generation := registry.Generation()

		store.Add(types.Of[document](typesRegistry), &behavior{name: "audit"})
		assert.Greater(t, registry.Generation(), generation)
		assert.Equal(t, []string{"audit"}, names(store.Extensions(handle)))
	})
	t.Run("With interface registered after a lookup", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)
		_ = store.Extensions(handle)

		generation := registry.Generation()
		_ = types.Of[auditable](typesRegistry)
		_ = store.Extensions(handle)
		assert.Greater(t, registry.Generation(), generation)
	})
	t.Run("With end to end document scenario", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		documentType, err := types.Define[document](typesRegistry, types.WithName("Document"))
		require.NoError(t, err)
		articleType, err := types.Define[article](typesRegistry, types.WithName("Article"))
		require.NoError(t, err)
		require.Same(t, documentType, articleType.Base())

		_, err = store.AddProperty(articleType, "Owner", &behavior{name: "owner"})
		require.NoError(t, err)
		store.Add(documentType, &behavior{name: "audit"})

		entries := store.Entries(articleType)
		require.Len(t, entries, 2)
		assert.Same(t, documentType, entries[0].Target())
		assert.False(t, entries[0].IsProperty())
		assert.Equal(t, "audit", entries[0].Value().name)
		assert.Same(t, articleType, entries[1].Target())
		assert.True(t, entries[1].IsProperty())
		assert.Equal(t, "Owner", entries[1].Name())
		assert.Equal(t, []string{"audit", "owner"}, names(store.Extensions(articleType)))
	})
	t.Run("With concurrent first use", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		store.Add(types.Of[document](typesRegistry), &behavior{name: "audit"})
		store.Add(types.Of[publishable](typesRegistry), &behavior{name: "publish"})
		handle := types.Of[special](typesRegistry)

		results := make([][]*behavior, 64)
		eg := new(errgroup.Group)
		for i := range results {
			eg.Go(func() error {
				results[i] = store.Extensions(handle)
				return nil
			})
		}
		require.NoError(t, eg.Wait())
		for _, result := range results {
			assert.Equal(t, []string{"audit", "publish"}, names(result))
		}
	})
	t.Run("With concurrent registrations", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		base := types.Of[document](typesRegistry)
		handle := types.Of[article](typesRegistry)

		eg := new(errgroup.Group)
		for range 16 {
			eg.Go(func() error {
				store.Add(base, &behavior{name: "audit"})
				_ = store.Extensions(handle)
				return nil
			})
		}
		require.NoError(t, eg.Wait())
		assert.Len(t, store.Extensions(handle), 16)
	})
}

func TestProperty(t *testing.T) {
	t.Run("With first match in traversal order", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		base := types.Of[document](typesRegistry)
		handle := types.Of[article](typesRegistry)

		_, err := store.AddProperty(base, "Owner", &behavior{name: "document-owner"})
		require.NoError(t, err)

		value, ok := store.Property(handle, "Owner")
		require.True(t, ok)
		assert.Equal(t, "document-owner", value.name)

		_, err = store.AddProperty(handle, "Owner", &behavior{name: "article-owner"})
		require.NoError(t, err)

		value, ok = store.Property(handle, "Owner")
		require.True(t, ok)
		assert.Equal(t, "article-owner", value.name)

		value, ok = store.Property(base, "Owner")
		require.True(t, ok)
		assert.Equal(t, "document-owner", value.name)
	})
	t.Run("With missing property", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		value, ok := store.Property(handle, "Owner")
		assert.False(t, ok)
		assert.Nil(t, value)
		_, ok = store.Property(handle, "Owner")
		assert.False(t, ok)
		_, ok = store.Property(nil, "Owner")
		assert.False(t, ok)
	})
	t.Run("With empty name", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		store.Add(handle, &behavior{name: "audit"})
		value, ok := store.Property(handle, "")
		assert.False(t, ok)
		assert.Nil(t, value)
	})
	t.Run("With duplicate property", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		first, err := store.AddProperty(handle, "Owner", &behavior{name: "first"})
		require.NoError(t, err)
		existing, err := store.AddProperty(handle, "Owner", &behavior{name: "second"})
		require.ErrorIs(t, err, gerrors.ErrPropertyExists)
		require.ErrorIs(t, err, gerrors.ErrInvalidOperation)
		assert.Same(t, first.entry, existing.entry)
		assert.Equal(t, []string{"first"}, names(store.Extensions(handle)))
	})
	t.Run("With type not extensible", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		entry, err := store.AddProperty(types.Of[plain](typesRegistry), "Owner", &behavior{name: "owner"})
		require.ErrorIs(t, err, gerrors.ErrNotExtensible)
		require.ErrorIs(t, err, gerrors.ErrInvalidOperation)
		assert.Contains(t, err.Error(), "plain")
		assert.True(t, entry.IsZero())

		_, err = store.AddProperty(nil, "Owner", &behavior{name: "owner"})
		require.ErrorIs(t, err, gerrors.ErrInvalidOperation)
	})
	t.Run("With descriptor marked extensible", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		page, err := types.New("Page", types.Extensible())
		require.NoError(t, err)
		require.NoError(t, typesRegistry.Register(page))

		_, err = store.AddProperty(page, "Owner", &behavior{name: "owner"})
		require.NoError(t, err)
	})
	t.Run("With invalid name", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)

		_, err := store.AddProperty(types.Of[article](typesRegistry), "", &behavior{name: "owner"})
		require.ErrorIs(t, err, gerrors.ErrInvalidTypeName)
	})
}

func TestKindPropagation(t *testing.T) {
	t.Run("With wider interface kind", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		wide := For[named](registry)
		narrow := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		entry := narrow.Add(handle, &behavior{name: "audit"})
		assert.Same(t, narrow.Kind(), entry.Kind())

		values := wide.Extensions(handle)
		require.Len(t, values, 1)
		assert.Equal(t, "audit", values[0].Name())

		wideEntries := wide.Entries(handle)
		narrowEntries := narrow.Entries(handle)
		require.Len(t, wideEntries, 1)
		require.Len(t, narrowEntries, 1)
		assert.Same(t, narrowEntries[0].entry, wideEntries[0].entry)
	})
	t.Run("With wider view created after registrations", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		narrow := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		narrow.Add(handle, &behavior{name: "audit"})
		_, err := narrow.AddProperty(handle, "Owner", &behavior{name: "owner"})
		require.NoError(t, err)
		assert.Len(t, narrow.Extensions(handle), 2)

		wide := For[named](registry)
		wide.Add(handle, &behavior{name: "late"})

		values := wide.Extensions(handle)
		require.Len(t, values, 3)
		assert.Equal(t, "audit", values[0].Name())
		assert.Equal(t, "late", values[1].Name())
		assert.Equal(t, "owner", values[2].Name())

		value, ok := wide.Property(handle, "Owner")
		require.True(t, ok)
		assert.Equal(t, "owner", value.Name())

		again := For[named](registry)
		assert.Len(t, again.Extensions(handle), 3)
		assert.Equal(t, []string{"audit", "owner"}, names(narrow.Extensions(handle)))
	})
	t.Run("With values not assignable to the view", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		wide := For[named](registry)
		narrow := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		wide.Add(handle, &behavior{name: "wide"})
		narrow.Add(handle, &behavior{name: "narrow"})

		assert.Equal(t, []string{"narrow"}, names(narrow.Extensions(handle)))
		assert.Len(t, wide.Extensions(handle), 2)
	})
	t.Run("With property held by the wider kind", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		wide := For[named](registry)
		narrow := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)

		_, err := wide.AddProperty(handle, "Owner", &behavior{name: "wide"})
		require.NoError(t, err)
		_, err = narrow.AddProperty(handle, "Owner", &behavior{name: "narrow"})
		require.NoError(t, err)

		value, ok := wide.Property(handle, "Owner")
		require.True(t, ok)
		assert.Equal(t, "wide", value.Name())

		narrowValue, ok := narrow.Property(handle, "Owner")
		require.True(t, ok)
		assert.Equal(t, "narrow", narrowValue.name)
	})
}

func TestLazyEntries(t *testing.T) {
	typesRegistry, registry := newRegistry()
	store := For[*behavior](registry)
	handle := types.Of[article](typesRegistry)

	calls := atomic.NewInt32(0)
	entry := store.AddFunc(handle, func() *behavior {
		calls.Inc()
		return &behavior{name: "lazy"}
	})
	_, err := store.AddPropertyFunc(handle, "Owner", func() *behavior {
		calls.Inc()
		return &behavior{name: "owner"}
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, calls.Load())

	eg := new(errgroup.Group)
	for range 16 {
		eg.Go(func() error {
			_ = store.Extensions(handle)
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	store.Add(handle, &behavior{name: "eager"})
	assert.Equal(t, []string{"lazy", "eager", "owner"}, names(store.Extensions(handle)))
	assert.Equal(t, "lazy", entry.Value().name)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDeclarations(t *testing.T) {
	t.Run("With declarer type", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[declared](typesRegistry)

		assert.Equal(t, []string{"declared", "declared-kind"}, names(store.Extensions(handle)))
		assert.Equal(t, []string{"declared", "declared-kind"}, names(store.Extensions(handle)))

		value, ok := store.Property(handle, "Kind")
		require.True(t, ok)
		assert.Equal(t, "declared-kind", value.name)
	})
	t.Run("With failing declaration skipped", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[broken](typesRegistry)

		assert.Empty(t, store.Extensions(handle))
		assert.Equal(t, []string{"declared", "declared-kind"}, names(store.Extensions(types.Of[declared](typesRegistry))))
	})
	t.Run("With declaration functions", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		base := types.Of[document](typesRegistry)
		handle := types.Of[article](typesRegistry)

		calls := atomic.NewInt32(0)
		registry.Declare(base, func(d *Declarations) error {
			calls.Inc()
			assert.Same(t, base, d.Target())
			Attach(d, &behavior{name: "audit"})
			AttachFunc(d, func() *behavior { return &behavior{name: "lazy"} })
			return nil
		})
		registry.Declare(base, func(d *Declarations) error {
			Attach(d, &behavior{name: "skipped"})
			return errors.New("boom")
		})

		assert.Equal(t, []string{"audit", "lazy"}, names(store.Extensions(handle)))
		assert.Equal(t, []string{"audit", "lazy"}, names(store.Extensions(base)))
		assert.EqualValues(t, 1, calls.Load())
	})
	t.Run("With declaration after the first visit", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)
		assert.Empty(t, store.Extensions(handle))

		registry.Declare(handle, func(d *Declarations) error {
			Attach(d, &behavior{name: "late"})
			return nil
		})
		assert.Equal(t, []string{"late"}, names(store.Extensions(handle)))
	})
	t.Run("With duplicate declared property", func(t *testing.T) {
		typesRegistry, registry := newRegistry()
		store := For[*behavior](registry)
		handle := types.Of[article](typesRegistry)
		_, err := store.AddProperty(handle, "Owner", &behavior{name: "owner"})
		require.NoError(t, err)

		registry.Declare(handle, func(d *Declarations) error {
			Attach(d, &behavior{name: "skipped"})
			return AttachProperty(d, "Owner", &behavior{name: "other"})
		})
		assert.Equal(t, []string{"owner"}, names(store.Extensions(handle)))

		registry.Declare(handle, func(d *Declarations) error {
			require.NoError(t, AttachProperty(d, "Tag", &behavior{name: "tag"}))
			return AttachProperty(d, "Tag", &behavior{name: "tag"})
		})
		assert.Equal(t, []string{"owner"}, names(store.Extensions(handle)))
	})
}

func TestClearAll(t *testing.T) {
	typesRegistry, registry := newRegistry()
	store := For[*behavior](registry)
	handle := types.Of[article](typesRegistry)
	store.Add(handle, &behavior{name: "audit"})
	registry.Declare(types.Of[document](typesRegistry), func(d *Declarations) error {
		Attach(d, &behavior{name: "declared"})
		return nil
	})
	require.Len(t, store.Extensions(handle), 2)

	registry.ClearAll()
	assert.Empty(t, store.Extensions(handle))
	assert.Equal(t, []string{"declared", "declared-kind"}, names(store.Extensions(types.Of[declared](typesRegistry))))
	assert.Same(t, typesRegistry, registry.Types())
}
