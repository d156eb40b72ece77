// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// DefaultIgnoreDirs are directory names never descended into.
var DefaultIgnoreDirs = []string{".git", "__pycache__", "node_modules", ".venv", ".tox", "build", "dist"}

// Stats summarizes one build.
type Stats struct {
	// Files is the number of regular files visited.
	Files int `json:"files"`

	// Scanned is the number of files handed to the extractor.
	Scanned int `json:"scanned"`

	// Declarations is the number of class statements found.
	Declarations int `json:"declarations"`

	// Duplicates counts declarations that replaced an earlier one.
	Duplicates int `json:"duplicates"`

	// Omitted counts classes dropped through the omission set.
	Omitted int `json:"omitted"`

	// Skipped counts files the extractor rejected as too large or not
	// text. Always zero in strict mode, where such files fail the build.
	Skipped int `json:"skipped"`
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// IgnoreDirs are directory base names to skip.
	// Default: DefaultIgnoreDirs
	IgnoreDirs []string

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger

	// Strict fails the build on files the extractor rejects as too large
	// or not valid text. Otherwise they are skipped with a warning.
	Strict bool
}

// Builder walks search roots and collects class declarations.
//
// # Description
//
// Roots are walked in the order given; filepath.WalkDir visits entries in
// lexical order, so when two files declare the same class the later one
// wins deterministically.
//
// # Thread Safety
//
// Safe for concurrent use; Build keeps no state between calls.
type Builder struct {
	extractor Extractor
	exts      map[string]bool
	ignore    map[string]bool
	logger    *slog.Logger
	strict    bool
}

// NewBuilder creates a Builder using extractor.
//
// # Inputs
//
//   - extractor: Declaration extractor. Must not be nil.
//   - opts: Optional configuration (nil uses defaults).
func NewBuilder(extractor Extractor, opts *BuilderOptions) *Builder {
	if opts == nil {
		opts = &BuilderOptions{}
	}
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Builder{
		extractor: extractor,
		exts:      make(map[string]bool),
		ignore:    make(map[string]bool),
		logger:    logger,
		strict:    opts.Strict,
	}
	for _, e := range extractor.Extensions() {
		b.exts[strings.ToLower(e)] = true
	}
	for _, d := range ignoreDirs {
		b.ignore[d] = true
	}
	return b
}

// Build scans roots and returns the class map with omit removed.
func (b *Builder) Build(ctx context.Context, roots []string, omit classmap.NameSet) (classmap.ClassMap, error) {
	m, _, err := b.BuildWithStats(ctx, roots, omit)
	return m, err
}

// BuildWithStats is Build that also reports what was scanned.
//
// # Inputs
//
//   - ctx: Checked between files. Cancellation aborts the build.
//   - roots: Directories (or single files) to scan. At least one.
//   - omit: Names removed both as classes and as bases. May be nil.
//
// # Outputs
//
//   - classmap.ClassMap: Class name -> declared bases.
//   - Stats: Counters for logging and summaries.
//   - error: ErrNoRoots, ErrRootNotFound, ErrUnreadableSource (wrapped with
//     the path), an extractor error, or the context error.
func (b *Builder) BuildWithStats(ctx context.Context, roots []string, omit classmap.NameSet) (classmap.ClassMap, Stats, error) {
	var stats Stats
	if len(roots) == 0 {
		return nil, stats, ErrNoRoots
	}

	m := make(classmap.ClassMap)
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, stats, fmt.Errorf("%w: %s", ErrRootNotFound, root)
			}
			return nil, stats, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, root, err)
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, walkErr)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && b.ignore[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			stats.Files++
			if !b.exts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			return b.scanFile(ctx, path, m, &stats)
		})
		if err != nil {
			return nil, stats, err
		}
	}

	if len(omit) > 0 {
		for k := range m {
			if omit.Has(k) {
				stats.Omitted++
			}
		}
		m = m.Without(omit)
	}

	b.logger.Debug("class map built",
		slog.Int("roots", len(roots)),
		slog.Int("files", stats.Files),
		slog.Int("scanned", stats.Scanned),
		slog.Int("classes", len(m)),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("skipped", stats.Skipped))

	return m, stats, nil
}

// scanFile extracts one file into m.
func (b *Builder) scanFile(ctx context.Context, path string, m classmap.ClassMap, stats *Stats) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}
	stats.Scanned++

	decls, err := b.extractor.Extract(ctx, content, path)
	if err != nil {
		if !b.strict && (errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrInvalidContent)) {
			stats.Skipped++
			b.logger.Warn("skipping source file", slog.String("file", path), slog.String("reason", err.Error()))
			return nil
		}
		return fmt.Errorf("extract %s: %w", path, err)
	}

	for _, d := range decls {
		stats.Declarations++
		if m.Has(d.Name) {
			stats.Duplicates++
			b.logger.Debug("duplicate class declaration, keeping the later one",
				slog.String("class", d.Name),
				slog.String("file", d.File),
				slog.Int("line", d.Line))
		}
		m.Set(d.Name, d.Bases...)
	}
	return nil
}
