// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/config"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/hierarchy"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/render"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/source"
	"github.com/AleutianAI/inheritgraph/pkg/logging"
	"github.com/AleutianAI/inheritgraph/pkg/telemetry"
	"github.com/AleutianAI/inheritgraph/pkg/ux"
)

// tracerName names the spans of one pipeline run.
const tracerName = "github.com/AleutianAI/inheritgraph"

// pipeline runs build, filter and render for one configuration.
//
// # Description
//
// The stages run sequentially on the calling goroutine and share nothing
// between runs, so watch mode simply calls run again.
type pipeline struct {
	cfg       config.Config
	extractor source.Extractor
	logger    *logging.Logger
	metrics   *telemetry.Metrics
	provider  *telemetry.Provider
	printer   *ux.Printer
	stdout    io.Writer
	output    string
	stats     bool
}

// runResult is what one run produced.
type runResult struct {
	RunID    string
	Build    source.Stats
	Classes  int
	Edges    int
	Mixins   int
	Abstract int
	Cycles   [][]string
	Duration time.Duration
}

// newPipeline checks cfg and creates the extractor it names.
//
// # Outputs
//
//   - *pipeline: Ready to run.
//   - error: A UsageError for invalid configuration.
func newPipeline(cfg config.Config, logger *logging.Logger, stdout io.Writer, output string) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	extractor, err := source.NewExtractor(cfg.Parser, source.ExtractorOptions{
		Extensions:  cfg.Extensions,
		MaxFileSize: cfg.MaxFileSize,
		Logger:      logger.Slog(),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return &pipeline{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
		stdout:    stdout,
		output:    output,
	}, nil
}

// run executes the pipeline once and writes the diagram.
func (p *pipeline) run(ctx context.Context) (runResult, error) {
	start := time.Now()
	res := runResult{RunID: uuid.NewString()}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "inheritgraph.run")
	defer span.End()

	log := p.logger.With("run_id", res.RunID)
	if traceID := telemetry.TraceID(ctx); traceID != "" {
		log = log.With("trace_id", traceID)
	}

	err := p.execute(ctx, log, &res)
	res.Duration = time.Since(start)

	p.metrics.Record(ctx, telemetry.RunResult{
		Files:    res.Build.Scanned,
		Classes:  res.Classes,
		Edges:    res.Edges,
		Cycles:   len(res.Cycles),
		Duration: res.Duration,
		Format:   p.cfg.Format,
		Err:      err,
	})
	if p.provider != nil {
		if ferr := p.provider.Flush(ctx); ferr != nil {
			log.Warn("metrics flush failed", "error", ferr.Error())
		}
	}

	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("run failed", "error", err.Error(), "duration_ms", res.Duration.Milliseconds())
		return res, err
	}
	telemetry.SetSpanOK(span)
	log.Info("run finished",
		"classes", res.Classes,
		"edges", res.Edges,
		"cycles", len(res.Cycles),
		"duration_ms", res.Duration.Milliseconds())

	if p.stats && p.printer != nil {
		p.printer.Summary(p.summary(res))
	}
	return res, nil
}

func (p *pipeline) execute(ctx context.Context, log *logging.Logger, res *runResult) error {
	cfg := p.cfg

	// Build.
	bctx, bspan := telemetry.StartSpan(ctx, tracerName, "inheritgraph.build")
	builder := source.NewBuilder(p.extractor, &source.BuilderOptions{
		IgnoreDirs: nonEmpty(cfg.IgnoreDirs),
		Logger:     log.Slog(),
		Strict:     cfg.Strict,
	})
	m, stats, err := builder.BuildWithStats(bctx, cfg.SearchPaths, classmap.NewNameSet(cfg.Omit...))
	res.Build = stats
	bspan.SetAttributes(
		attribute.Int("files", stats.Files),
		attribute.Int("scanned", stats.Scanned),
		attribute.Int("classes", len(m)),
	)
	if err != nil {
		telemetry.RecordError(bspan, err)
		bspan.End()
		return fmt.Errorf("build class map: %w", err)
	}
	bspan.End()
	log.Debug("class map built",
		"parser", p.extractor.Name(),
		"files", stats.Files,
		"scanned", stats.Scanned,
		"classes", len(m),
		"duplicates", stats.Duplicates,
		"omitted", stats.Omitted,
		"skipped", stats.Skipped)
	if stats.Duplicates > 0 {
		log.Warn("duplicate class declarations, last one wins", "count", stats.Duplicates)
	}

	// Cycles.
	res.Cycles = hierarchy.FindCycles(m)
	for _, c := range res.Cycles {
		log.Warn("inheritance cycle", "cycle", hierarchy.FormatCycle(c))
	}

	// Filter.
	_, fspan := telemetry.StartSpan(ctx, tracerName, "inheritgraph.filter")
	include := classmap.NewNameSet(cfg.Include...)
	exclude := classmap.NewNameSet(cfg.Exclude...)
	var filtered classmap.ClassMap
	if cfg.Strict {
		filtered, err = hierarchy.FilterStrict(m, include, exclude)
	} else {
		filtered = hierarchy.Filter(m, include, exclude)
	}
	if err != nil {
		telemetry.RecordError(fspan, err)
		fspan.End()
		return err
	}
	fspan.SetAttributes(attribute.Int("kept", len(filtered)))
	fspan.End()
	log.Debug("class map filtered",
		"include", len(include),
		"exclude", len(exclude),
		"kept", len(filtered))

	// Render.
	_, rspan := telemetry.StartSpan(ctx, tracerName, "inheritgraph.render")
	defer rspan.End()
	abstract := classmap.NewNameSet(cfg.Abstract...)
	renderer := render.New(render.Options{
		Format:      render.OutputFormat(cfg.Format),
		Abstract:    abstract,
		MixinSuffix: cfg.MixinSuffix,
		Direction:   cfg.Direction,
	})
	out, err := renderer.Render(filtered)
	if err != nil {
		telemetry.RecordError(rspan, err)
		return usageError(err)
	}
	mixins, abstracts := render.NewClassifier(cfg.MixinSuffix, abstract).Partition(filtered)
	res.Classes = len(filtered.Names())
	res.Edges = filtered.EdgeCount()
	res.Mixins = len(mixins)
	res.Abstract = len(abstracts)
	rspan.SetAttributes(attribute.String("format", cfg.Format), attribute.Int("edges", res.Edges))

	if err := p.write(out); err != nil {
		telemetry.RecordError(rspan, err)
		return err
	}
	return nil
}

// write sends the diagram to the output file, or stdout when none is set.
// Files are replaced through a temporary sibling so readers never see a
// partial diagram.
func (p *pipeline) write(diagram string) error {
	if p.output == "" {
		if _, err := io.WriteString(p.stdout, diagram); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.output), ".inheritgraph-*")
	if err != nil {
		return fmt.Errorf("write diagram %s: %w", p.output, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(diagram); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write diagram %s: %w", p.output, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write diagram %s: %w", p.output, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write diagram %s: %w", p.output, err)
	}
	if err := os.Rename(tmp.Name(), p.output); err != nil {
		return fmt.Errorf("write diagram %s: %w", p.output, err)
	}
	return nil
}

func (p *pipeline) summary(res runResult) ux.Summary {
	cycles := make([]string, 0, len(res.Cycles))
	for _, c := range res.Cycles {
		cycles = append(cycles, hierarchy.FormatCycle(c))
	}
	return ux.Summary{
		RunID:        res.RunID,
		Parser:       p.extractor.Name(),
		Format:       p.cfg.Format,
		Output:       p.output,
		Files:        res.Build.Files,
		Scanned:      res.Build.Scanned,
		Declarations: res.Build.Declarations,
		Duplicates:   res.Build.Duplicates,
		Classes:      res.Classes,
		Edges:        res.Edges,
		Mixins:       res.Mixins,
		Abstracts:    res.Abstract,
		Cycles:       cycles,
		Duration:     res.Duration,
	}
}

// nonEmpty returns nil for an empty list so callers fall back to defaults.
func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}
