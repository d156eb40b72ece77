// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides OpenTelemetry tracing and metrics for
// inheritgraph runs.
//
// OTel is used directly; the exporter is picked by configuration:
//
//   - "none": no provider is installed, spans and instruments are no-ops
//   - "stdout": spans and metrics are printed to a writer (stderr by default)
//   - "otlp": spans are pushed to an OTLP/gRPC collector
//
// Independently, MetricsFile receives the metrics in Prometheus text
// format, for the node_exporter textfile collector. It is rewritten on
// every Flush and once more at Shutdown.
//
// # Usage
//
//	provider, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer provider.Shutdown(context.Background())
//	...
//	_ = provider.Flush(ctx) // after each run
//
//	ctx, span := telemetry.StartSpan(ctx, "inheritgraph", "build")
//	defer span.End()
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

var (
	// ErrNilContext indicates Init was called without a context.
	ErrNilContext = errors.New("telemetry: nil context")

	// ErrUnknownExporter indicates an unsupported exporter name.
	ErrUnknownExporter = errors.New("telemetry: unknown exporter")
)

// Config configures telemetry.
type Config struct {
	// ServiceName identifies this program in traces and metrics.
	ServiceName string

	// ServiceVersion is the program version.
	ServiceVersion string

	// Exporter selects the trace and metric exporter: none, stdout or otlp.
	Exporter string

	// OTLPEndpoint is the collector address for the otlp exporter.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the otlp exporter.
	OTLPInsecure bool

	// Writer receives stdout exporter output. Default: os.Stderr
	Writer io.Writer

	// MetricsFile, when set, receives Prometheus text-format metrics on
	// Flush and Shutdown.
	MetricsFile string
}

// DefaultConfig returns telemetry switched off.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "inheritgraph",
		ServiceVersion: "dev",
		Exporter:       ExporterNone,
		OTLPEndpoint:   "localhost:4317",
		OTLPInsecure:   true,
	}
}

// Provider owns the exporters installed by Init.
//
// # Thread Safety
//
// Flush and Shutdown are safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	flushers  []func(context.Context) error
	shutdowns []func(context.Context) error
	closed    bool
}

// Flush writes MetricsFile from the current metric state. A no-op when no
// metrics file is configured or after Shutdown.
func (p *Provider) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return runAll(ctx, p.flushers)
}

// Shutdown writes MetricsFile a last time, then flushes and stops the
// exporters. Safe to call twice.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	// Textfile writers gather from the live meter provider, so they run first.
	return errors.Join(runAll(ctx, p.flushers), runAll(ctx, p.shutdowns))
}

func runAll(ctx context.Context, fns []func(context.Context) error) error {
	var errs []error
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Init installs the global tracer and meter providers.
//
// # Outputs
//
//   - *Provider: Flushes and stops what was installed. Non-nil on success,
//     and safe to use when nothing was installed.
//   - error: ErrNilContext, ErrUnknownExporter, or an exporter setup error.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	switch cfg.Exporter {
	case "", ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}

	p := &Provider{}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	if cfg.Exporter == ExporterStdout || cfg.Exporter == ExporterOTLP {
		tp, err := initTracer(ctx, cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		p.shutdowns = append(p.shutdowns, tp.Shutdown)
	}

	readers, flushers, err := initReaders(cfg)
	if err != nil {
		return nil, fmt.Errorf("init meter: %w", err)
	}
	if len(readers) > 0 {
		opts := []metric.Option{metric.WithResource(res)}
		for _, r := range readers {
			opts = append(opts, metric.WithReader(r))
		}
		mp := metric.NewMeterProvider(opts...)
		otel.SetMeterProvider(mp)
		p.flushers = flushers
		p.shutdowns = append(p.shutdowns, mp.Shutdown)
	}

	return p, nil
}

func initTracer(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	), nil
}

// initReaders returns the metric readers for cfg, plus the functions that
// write MetricsFile.
func initReaders(cfg Config) ([]metric.Reader, []func(context.Context) error, error) {
	var readers []metric.Reader
	var flushers []func(context.Context) error

	if cfg.Exporter == ExporterStdout {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		readers = append(readers, metric.NewPeriodicReader(exporter))
	}

	if cfg.MetricsFile != "" {
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		readers = append(readers, exporter)
		path := cfg.MetricsFile
		flushers = append(flushers, func(context.Context) error {
			if err := prometheus.WriteToTextfile(path, registry); err != nil {
				return fmt.Errorf("write metrics file %s: %w", path, err)
			}
			return nil
		})
	}

	return readers, flushers, nil
}
