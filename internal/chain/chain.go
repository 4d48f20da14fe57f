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

// Package chain runs named steps in order.
package chain

import (
	"context"
	"fmt"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Chain is an ordered list of steps run by Run. It stops at the first failing step.
type Chain struct {
	ctx   context.Context
	steps []step
}

// Option configures a chain at creation time.
type Option func(*Chain)

// New creates a chain. Steps run in their insertion order.
func New(opts ...Option) *Chain {
	chain := &Chain{
		ctx:   context.Background(),
		steps: make([]step, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// WithContext sets the context passed to the steps.
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}

// AddStep appends a named step
func (c *Chain) AddStep(name string, fn func(ctx context.Context) error) *Chain {
	c.steps = append(c.steps, step{name: name, run: fn})
	return c
}

// AddStepIf appends a named step when the condition is true
func (c *Chain) AddStepIf(condition bool, name string, fn func(ctx context.Context) error) *Chain {
	if condition {
		return c.AddStep(name, fn)
	}
	return c
}

// Run executes the steps and returns the first error, prefixed with the step name.
// The context is checked before every step: once it is done no further step runs.
func (c *Chain) Run() error {
	for _, s := range c.steps {
		if err := c.ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}

		if err := s.run(c.ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
