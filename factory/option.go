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
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/typext/log"
	"github.com/tochemey/typext/types"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Container.
	Apply(c *Container)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(c *Container)

// Apply applies the option
func (f OptionFunc) Apply(c *Container) {
	f(c)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *Container) {
		c.logger = logger
	})
}

// WithTypes sets the type registry consulted for abstract types.
// The default is types.GlobalRegistry.
func WithTypes(registry *types.Registry) Option {
	return OptionFunc(func(c *Container) {
		c.types = registry
	})
}

// WithMeterProvider sets the meter provider used to record the factory metrics
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return OptionFunc(func(c *Container) {
		c.meterProvider = provider
	})
}

// BindOption configures a binding
type BindOption interface {
	// Apply sets the BindOption value of a binding.
	Apply(config *bindConfig)
}

var _ BindOption = BindOptionFunc(nil)

// BindOptionFunc implements the BindOption interface.
type BindOptionFunc func(config *bindConfig)

// Apply applies the option
func (f BindOptionFunc) Apply(config *bindConfig) {
	f(config)
}

type bindConfig struct {
	replaceable     bool
	replaceExisting bool
	force           bool
}

func newBindConfig(opts ...BindOption) *bindConfig {
	config := &bindConfig{replaceExisting: true}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// Replaceable allows the binding to be replaced by a later one
func Replaceable() BindOption {
	return BindOptionFunc(func(config *bindConfig) {
		config.replaceable = true
	})
}

// KeepExisting leaves an existing binding in place
func KeepExisting() BindOption {
	return BindOptionFunc(func(config *bindConfig) {
		config.replaceExisting = false
	})
}

// Force replaces the existing binding even when it is not replaceable
func Force() BindOption {
	return BindOptionFunc(func(config *bindConfig) {
		config.force = true
	})
}
