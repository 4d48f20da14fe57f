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

package bootstrap

import (
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Runtime.
	Apply(r *Runtime)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(r *Runtime)

// Apply applies the option
func (f OptionFunc) Apply(r *Runtime) {
	f(r)
}

// WithLogger sets the logger shared by the registries
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(r *Runtime) {
		r.logger = logger
	})
}

// WithTypes sets the type registry. The default is types.GlobalRegistry.
func WithTypes(registry *types.Registry) Option {
	return OptionFunc(func(r *Runtime) {
		r.types = registry
	})
}

// WithMeterProvider sets the meter provider shared by the registries
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return OptionFunc(func(r *Runtime) {
		r.meterProvider = provider
	})
}

// WithModules adds modules to the runtime
func WithModules(modules ...Module) Option {
	return OptionFunc(func(r *Runtime) {
		r.pending = append(r.pending, modules...)
	})
}
