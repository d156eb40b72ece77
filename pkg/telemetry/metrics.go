// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded for each pipeline run.
type Metrics struct {
	RunsTotal          metric.Int64Counter
	RunDuration        metric.Float64Histogram
	FilesScannedTotal  metric.Int64Counter
	ClassesTotal       metric.Int64Counter
	EdgesRenderedTotal metric.Int64Counter
	CyclesTotal        metric.Int64Counter
	ErrorsTotal        metric.Int64Counter
}

// RunResult is what one pipeline run reports to Record.
type RunResult struct {
	Files    int
	Classes  int
	Edges    int
	Cycles   int
	Duration time.Duration
	Format   string
	Err      error
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter(
		"inheritgraph_runs_total",
		metric.WithDescription("Pipeline runs"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, fmt.Errorf("create runs_total: %w", err)
	}

	if m.RunDuration, err = meter.Float64Histogram(
		"inheritgraph_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	); err != nil {
		return nil, fmt.Errorf("create run_duration: %w", err)
	}

	if m.FilesScannedTotal, err = meter.Int64Counter(
		"inheritgraph_files_scanned_total",
		metric.WithDescription("Source files scanned for declarations"),
		metric.WithUnit("{file}"),
	); err != nil {
		return nil, fmt.Errorf("create files_scanned_total: %w", err)
	}

	if m.ClassesTotal, err = meter.Int64Counter(
		"inheritgraph_classes_total",
		metric.WithDescription("Classes kept after filtering"),
		metric.WithUnit("{class}"),
	); err != nil {
		return nil, fmt.Errorf("create classes_total: %w", err)
	}

	if m.EdgesRenderedTotal, err = meter.Int64Counter(
		"inheritgraph_edges_rendered_total",
		metric.WithDescription("Inheritance edges written to the diagram"),
		metric.WithUnit("{edge}"),
	); err != nil {
		return nil, fmt.Errorf("create edges_rendered_total: %w", err)
	}

	if m.CyclesTotal, err = meter.Int64Counter(
		"inheritgraph_cycles_total",
		metric.WithDescription("Inheritance cycles detected"),
		metric.WithUnit("{cycle}"),
	); err != nil {
		return nil, fmt.Errorf("create cycles_total: %w", err)
	}

	if m.ErrorsTotal, err = meter.Int64Counter(
		"inheritgraph_errors_total",
		metric.WithDescription("Failed pipeline runs"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// Record adds one run to the instruments. A nil receiver is a no-op.
func (m *Metrics) Record(ctx context.Context, r RunResult) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("format", r.Format))

	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, r.Duration.Seconds(), attrs)
	m.FilesScannedTotal.Add(ctx, int64(r.Files))
	m.ClassesTotal.Add(ctx, int64(r.Classes))
	m.EdgesRenderedTotal.Add(ctx, int64(r.Edges), attrs)
	m.CyclesTotal.Add(ctx, int64(r.Cycles))
	if r.Err != nil {
		m.ErrorsTotal.Add(ctx, 1, attrs)
	}
}
