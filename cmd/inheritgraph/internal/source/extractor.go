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
	"fmt"
	"log/slog"
	"strings"
)

// Extractor names accepted by NewExtractor.
const (
	ExtractorLexical    = "lexical"
	ExtractorTreeSitter = "tree-sitter"
)

// DefaultMaxFileSize is the largest file an extractor will accept (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Declaration is one class statement found in a source file.
type Declaration struct {
	// Name is the declared class name.
	Name string

	// Bases are the declared base names in source order. Empty when the
	// class has no parenthesized base list.
	Bases []string

	// File is the path the declaration was read from.
	File string

	// Line is the 1-based line of the class keyword.
	Line int
}

// Extractor pulls class declarations out of a single file.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Name returns the registered extractor name.
	Name() string

	// Extensions returns the file extensions (with dot) this extractor reads.
	Extensions() []string

	// Extract returns every class declaration in content, in source order.
	// A file without declarations yields an empty slice and no error.
	Extract(ctx context.Context, content []byte, path string) ([]Declaration, error)
}

// ExtractorOptions configures NewExtractor.
type ExtractorOptions struct {
	// Extensions overrides the extractor's default extensions when non-empty.
	Extensions []string

	// MaxFileSize is the largest accepted file in bytes.
	// Default: DefaultMaxFileSize
	MaxFileSize int64

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger
}

// NewExtractor returns the extractor registered under name.
//
// # Inputs
//
//   - name: ExtractorLexical or ExtractorTreeSitter, case-insensitive.
//     Empty means lexical.
//   - opts: Extensions, size limit and logger. Zero values keep defaults.
//
// # Outputs
//
//   - Extractor: The configured extractor.
//   - error: ErrUnknownExtractor for any other name.
func NewExtractor(name string, opts ExtractorOptions) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ExtractorLexical:
		return NewLexicalExtractor(
			WithLexicalExtensions(opts.Extensions...),
			WithLexicalMaxFileSize(opts.MaxFileSize),
		), nil
	case ExtractorTreeSitter:
		return NewSyntaxExtractor(
			WithSyntaxExtensions(opts.Extensions...),
			WithSyntaxMaxFileSize(opts.MaxFileSize),
			WithSyntaxLogger(opts.Logger),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, name)
	}
}

// normalizeExtensions lower-cases extensions and adds a leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// cleanBase normalizes one entry of a base list.
//
// Returns "" for entries that are not base classes: keyword arguments
// (metaclass=ABCMeta), star-args, calls such as namedtuple(...) and empty
// entries. A trailing subscript is stripped so Generic[T] becomes Generic.
func cleanBase(raw string) string {
	b := strings.TrimSpace(raw)
	if b == "" || strings.HasPrefix(b, "*") || strings.Contains(b, "=") {
		return ""
	}
	if i := strings.IndexByte(b, '['); i >= 0 {
		b = strings.TrimSpace(b[:i])
	}
	if strings.Contains(b, "(") {
		return ""
	}
	return b
}

// splitBaseList splits a parenthesized base list on the commas that are not
// nested inside brackets or parentheses.
func splitBaseList(list string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, list[start:])
}
