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
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/source"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/watch"
)

// watchLoop runs the pipeline, then again after every batch of source
// changes, until ctx is cancelled. Each run replaces the output file, and
// the metrics file when one is configured.
//
// # Description
//
// Usage errors stop the loop at once. Runtime failures, such as a source
// file caught half-written, are reported and the loop keeps waiting for
// the next change.
func watchLoop(ctx context.Context, p *pipeline) error {
	if _, err := p.run(ctx); err != nil {
		if exitCode(err) == ExitUsage {
			return err
		}
		p.printer.Error(err.Error())
	}

	ignore := p.cfg.IgnoreDirs
	if len(ignore) == 0 {
		ignore = source.DefaultIgnoreDirs
	}
	w, err := watch.New(p.cfg.SearchPaths, watch.Options{
		Extensions: p.extractor.Extensions(),
		IgnoreDirs: ignore,
		Logger:     p.logger.Slog(),
	})
	if err != nil {
		return fmt.Errorf("start watching: %w", err)
	}
	defer w.Close()
	p.logger.Debug("watcher started", "dirs", len(w.Watched()))

	p.printer.Info(fmt.Sprintf("watching %s (ctrl-c to stop)", strings.Join(p.cfg.SearchPaths, ", ")))

	w.Run(ctx, func(ctx context.Context, paths []string) {
		p.logger.Debug("sources changed", "files", len(paths))
		res, err := p.run(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			p.printer.Error(err.Error())
		default:
			p.printer.Success(fmt.Sprintf("re-rendered after %d change(s): %d classes, %d edges", len(paths), res.Classes, res.Edges))
		}
	})
	return nil
}
