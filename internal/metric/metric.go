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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ExtensionMetric defines the extension registry instrumentation
type ExtensionMetric struct {
	// Specifies the number of lookups served from the collected-results cache
	cacheHits metric.Int64Counter
	// Specifies the number of lookups that recomputed a merged result
	cacheMisses metric.Int64Counter
	// Specifies the number of extension and property registrations
	registrations metric.Int64Counter
}

// NewExtensionMetric creates an instance of ExtensionMetric
func NewExtensionMetric(meter metric.Meter) (*ExtensionMetric, error) {
	extensionMetric := new(ExtensionMetric)
	var err error
	if extensionMetric.cacheHits, err = meter.Int64Counter(
		"extension_cache_hits",
		metric.WithDescription("Total number of extension lookups served from cache"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cacheHits instrument, %w", err)
	}

	if extensionMetric.cacheMisses, err = meter.Int64Counter(
		"extension_cache_misses",
		metric.WithDescription("Total number of extension lookups that recomputed the merged result"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cacheMisses instrument, %w", err)
	}

	if extensionMetric.registrations, err = meter.Int64Counter(
		"extension_registrations",
		metric.WithDescription("Total number of extension and property registrations"),
	); err != nil {
		return nil, fmt.Errorf("failed to create registrations instrument, %w", err)
	}
	return extensionMetric, nil
}

// NoopExtensionMetric returns an ExtensionMetric that records nothing
func NoopExtensionMetric() *ExtensionMetric {
	extensionMetric, _ := NewExtensionMetric(noop.NewMeterProvider().Meter(instrumentationName))
	return extensionMetric
}

// CacheHit records a lookup served from cache
func (x *ExtensionMetric) CacheHit(ctx context.Context) {
	x.cacheHits.Add(ctx, 1)
}

// CacheMiss records a lookup that recomputed the result for the given kind
func (x *ExtensionMetric) CacheMiss(ctx context.Context, kind string) {
	x.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Registration records a registration for the given kind
func (x *ExtensionMetric) Registration(ctx context.Context, kind string) {
	x.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// FactoryMetric defines the construction factory instrumentation
type FactoryMetric struct {
	// Specifies the number of instances built
	instances metric.Int64Counter
	// Specifies the number of failed constructions
	failures metric.Int64Counter
	// Specifies the number of singletons created
	singletons metric.Int64Counter
}

// NewFactoryMetric creates an instance of FactoryMetric
func NewFactoryMetric(meter metric.Meter) (*FactoryMetric, error) {
	factoryMetric := new(FactoryMetric)
	var err error
	if factoryMetric.instances, err = meter.Int64Counter(
		"factory_instances_created",
		metric.WithDescription("Total number of instances built by the factory"),
	); err != nil {
		return nil, fmt.Errorf("failed to create instances instrument, %w", err)
	}

	if factoryMetric.failures, err = meter.Int64Counter(
		"factory_resolution_failures",
		metric.WithDescription("Total number of failed constructions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failures instrument, %w", err)
	}

	if factoryMetric.singletons, err = meter.Int64Counter(
		"factory_singletons_created",
		metric.WithDescription("Total number of singleton instances created"),
	); err != nil {
		return nil, fmt.Errorf("failed to create singletons instrument, %w", err)
	}
	return factoryMetric, nil
}

// NoopFactoryMetric returns a FactoryMetric that records nothing
func NoopFactoryMetric() *FactoryMetric {
	factoryMetric, _ := NewFactoryMetric(noop.NewMeterProvider().Meter(instrumentationName))
	return factoryMetric
}

// InstanceCreated records an instance built for the given contract
func (x *FactoryMetric) InstanceCreated(ctx context.Context, contract string) {
	x.instances.Add(ctx, 1, metric.WithAttributes(attribute.String("contract", contract)))
}

// ResolutionFailed records a failed construction for the given contract
func (x *FactoryMetric) ResolutionFailed(ctx context.Context, contract string) {
	x.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("contract", contract)))
}

// SingletonCreated records a singleton created for the given contract
func (x *FactoryMetric) SingletonCreated(ctx context.Context, contract string) {
	x.singletons.Add(ctx, 1, metric.WithAttributes(attribute.String("contract", contract)))
}
