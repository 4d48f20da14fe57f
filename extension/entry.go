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
	"sync"

	"github.com/tochemey/typext/types"
)

// entry is a registered extension. The same entry is shared by every kind
// table it has been propagated to.
type entry struct {
	target  *types.Type
	kind    *types.Type
	name    string
	seq     uint64
	once    sync.Once
	produce func() any
	value   any
}

// resolve returns the entry value, evaluating a lazy producer exactly once
func (e *entry) resolve() any {
	e.once.Do(func() {
		if e.produce != nil {
			e.value = e.produce()
			e.produce = nil
		}
	})
	return e.value
}

// property reports whether the entry is a named property
func (e *entry) property() bool {
	return e.name != ""
}

// Entry is a read-only view of a registered extension
type Entry[E any] struct {
	entry *entry
}

// Target returns the type the extension is attached to
func (x Entry[E]) Target() *types.Type {
	if x.entry == nil {
		return nil
	}
	return x.entry.target
}

// Kind returns the kind the extension was registered with
func (x Entry[E]) Kind() *types.Type {
	if x.entry == nil {
		return nil
	}
	return x.entry.kind
}

// Name returns the property name, empty for plain extensions
func (x Entry[E]) Name() string {
	if x.entry == nil {
		return ""
	}
	return x.entry.name
}

// IsProperty returns true when the extension is a named property
func (x Entry[E]) IsProperty() bool {
	return x.entry != nil && x.entry.property()
}

// IsZero returns true when the entry does not refer to a registered extension
func (x Entry[E]) IsZero() bool {
	return x.entry == nil
}

// Value returns the extension value, producing it on first call for lazy entries.
// The zero value is returned when the value is not an E.
func (x Entry[E]) Value() E {
	var zero E
	if x.entry == nil {
		return zero
	}
	if value, ok := x.entry.resolve().(E); ok {
		return value
	}
	return zero
}
