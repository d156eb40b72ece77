// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// Render returns the DOT description of m with names in abstract drawn in
// the abstract style. Rendering is total; it never fails.
func Render(m classmap.ClassMap, abstract classmap.NameSet) string {
	opts := DefaultOptions()
	opts.Abstract = abstract
	return New(opts).dot(m)
}

// Renderer generates diagram descriptions of class maps.
//
// # Thread Safety
//
// Safe for concurrent use.
type Renderer struct {
	opts       Options
	classifier Classifier
}

// New creates a Renderer. Zero-valued option fields take their defaults.
func New(opts Options) *Renderer {
	defaults := DefaultOptions()
	if opts.Format == "" {
		opts.Format = defaults.Format
	}
	if opts.MixinSuffix == "" {
		opts.MixinSuffix = defaults.MixinSuffix
	}
	if opts.Direction == "" {
		opts.Direction = defaults.Direction
	}
	opts.Format = OutputFormat(strings.ToLower(string(opts.Format)))
	return &Renderer{
		opts:       opts,
		classifier: NewClassifier(opts.MixinSuffix, opts.Abstract),
	}
}

// Render returns the description of m in the configured format.
//
// # Outputs
//
//   - string: The diagram. Byte-identical for identical input.
//   - error: ErrUnsupportedFormat for an unknown format.
func (r *Renderer) Render(m classmap.ClassMap) (string, error) {
	switch r.opts.Format {
	case FormatDOT:
		return r.dot(m), nil
	case FormatMermaid:
		return r.mermaid(m), nil
	case FormatJSON:
		return r.json(m)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.opts.Format)
	}
}
