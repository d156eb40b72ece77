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
	"errors"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// API version for JSON output.
const APIVersion = "1.0"

// DefaultMixinSuffix marks a class name as a mixin.
const DefaultMixinSuffix = "Mixin"

// ErrUnsupportedFormat indicates an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// OutputFormat specifies the diagram output format.
type OutputFormat string

const (
	FormatDOT     OutputFormat = "dot"
	FormatMermaid OutputFormat = "mermaid"
	FormatJSON    OutputFormat = "json"
)

// Formats lists the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatDOT, FormatMermaid, FormatJSON}
}

// Category is the visual category of a class name.
type Category string

const (
	CategoryMixin    Category = "mixin"
	CategoryAbstract Category = "abstract"
	CategoryConcrete Category = "concrete"
)

// Options configures rendering.
type Options struct {
	// Format selects the output format.
	// Default: FormatDOT
	Format OutputFormat

	// Abstract lists names drawn in the abstract style.
	Abstract classmap.NameSet

	// MixinSuffix marks mixin names.
	// Default: DefaultMixinSuffix
	MixinSuffix string

	// Direction is the graph direction (RL, LR, TB, BT).
	// Default: "RL" (subclasses on the right, bases on the left)
	Direction string
}

// DefaultOptions returns DOT output with the "Mixin" suffix, right to left.
func DefaultOptions() Options {
	return Options{
		Format:      FormatDOT,
		Abstract:    classmap.NewNameSet(),
		MixinSuffix: DefaultMixinSuffix,
		Direction:   "RL",
	}
}

// Classifier assigns categories to class names.
type Classifier struct {
	suffix   string
	abstract classmap.NameSet
}

// NewClassifier creates a Classifier. An empty suffix falls back to
// DefaultMixinSuffix.
func NewClassifier(suffix string, abstract classmap.NameSet) Classifier {
	if suffix == "" {
		suffix = DefaultMixinSuffix
	}
	return Classifier{suffix: suffix, abstract: abstract}
}

// Classify returns the category of name. The mixin rule wins over the
// abstract set.
func (c Classifier) Classify(name string) Category {
	switch {
	case strings.HasSuffix(name, c.suffix):
		return CategoryMixin
	case c.abstract.Has(name):
		return CategoryAbstract
	default:
		return CategoryConcrete
	}
}

// Partition splits the universe of m into mixin and abstract names, each
// sorted. Concrete names are not listed: edges introduce them.
func (c Classifier) Partition(m classmap.ClassMap) (mixins, abstracts []string) {
	for _, n := range m.Names().Sorted() {
		switch c.Classify(n) {
		case CategoryMixin:
			mixins = append(mixins, n)
		case CategoryAbstract:
			abstracts = append(abstracts, n)
		}
	}
	return mixins, abstracts
}
