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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMap(t *testing.T) {
	t.Run("With basic operations", func(t *testing.T) {
		sm := NewMap[string, int]()
		_, ok := sm.Get("audit")
		require.False(t, ok)

		assert.EqualValues(t, 1, sm.LoadOrCompute("audit", func() int { return 1 }))
		assert.EqualValues(t, 1, sm.LoadOrCompute("audit", func() int { return 2 }))

		val, ok := sm.Get("audit")
		require.True(t, ok)
		assert.EqualValues(t, 1, val)

		sm.Reset()
		_, ok = sm.Get("audit")
		assert.False(t, ok)
	})
	t.Run("With LoadOrCompute computing once under contention", func(t *testing.T) {
		sm := NewMap[string, *int]()
		calls := atomic.NewInt32(0)

		eg := new(errgroup.Group)
		results := make([]*int, 64)
		for i := range results {
			eg.Go(func() error {
				results[i] = sm.LoadOrCompute("slot", func() *int {
					calls.Inc()
					return new(int)
				})
				return nil
			})
		}
		require.NoError(t, eg.Wait())

		assert.EqualValues(t, 1, calls.Load())
		for _, result := range results {
			assert.Same(t, results[0], result)
		}
	})
}

func TestGenerations(t *testing.T) {
	t.Run("With load and store in the current generation", func(t *testing.T) {
		cache := NewGenerations[string, []string]()
		current := cache.Current()
		require.Zero(t, current.ID())

		_, ok := current.Load("article")
		require.False(t, ok)

		current.Store("article", []string{"audit"})
		val, ok := cache.Current().Load("article")
		require.True(t, ok)
		assert.Equal(t, []string{"audit"}, val)
	})
	t.Run("With invalidation retiring cached values", func(t *testing.T) {
		cache := NewGenerations[string, int]()
		retired := cache.Current()
		retired.Store("article", 1)

		id := cache.Invalidate()
		assert.EqualValues(t, 1, id)
		assert.EqualValues(t, 1, cache.Current().ID())

		_, ok := cache.Current().Load("article")
		assert.False(t, ok)

		// a late writer holding the retired generation is never observed
		retired.Store("document", 2)
		_, ok = cache.Current().Load("document")
		assert.False(t, ok)
	})
	t.Run("With concurrent readers and writers", func(t *testing.T) {
		cache := NewGenerations[int, int]()
		eg := new(errgroup.Group)
		for i := range 32 {
			eg.Go(func() error {
				generation := cache.Current()
				generation.Store(i, i)
				if i%8 == 0 {
					cache.Invalidate()
				}
				if val, ok := generation.Load(i); ok && val != i {
					t.Errorf("unexpected value %d for key %d", val, i)
				}
				return nil
			})
		}
		require.NoError(t, eg.Wait())
		assert.EqualValues(t, 4, cache.Current().ID())
	})
}
