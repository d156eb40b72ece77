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
	"bytes"
	"context"
	"fmt"
	"regexp"
)

// classHeader matches "class Name" at the start of a line. The rest of the
// statement is read by scanHeader.
var classHeader = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+(\w+)[ \t]*`)

// LexicalOption configures a LexicalExtractor.
type LexicalOption func(*LexicalExtractor)

// WithLexicalExtensions overrides the file extensions. Empty input keeps
// the defaults.
func WithLexicalExtensions(exts ...string) LexicalOption {
	return func(e *LexicalExtractor) {
		if n := normalizeExtensions(exts); len(n) > 0 {
			e.extensions = n
		}
	}
}

// WithLexicalMaxFileSize sets the largest file accepted. Non-positive
// values are ignored.
func WithLexicalMaxFileSize(limit int64) LexicalOption {
	return func(e *LexicalExtractor) {
		if limit > 0 {
			e.maxFileSize = limit
		}
	}
}

// LexicalExtractor finds class declarations with a regular expression.
//
// # Description
//
// The match is deliberately permissive: anything that looks like a class
// statement at the start of a line counts, including ones inside
// docstrings. Keyword arguments and call expressions in the base list are
// dropped and commas nested inside brackets do not split entries.
//
// # Thread Safety
//
// Safe for concurrent use.
type LexicalExtractor struct {
	extensions  []string
	maxFileSize int64
}

// NewLexicalExtractor creates a LexicalExtractor reading .py and .pyi files.
func NewLexicalExtractor(opts ...LexicalOption) *LexicalExtractor {
	e := &LexicalExtractor{
		extensions:  []string{".py", ".pyi"},
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "lexical".
func (e *LexicalExtractor) Name() string {
	return ExtractorLexical
}

// Extensions returns the file extensions this extractor reads.
func (e *LexicalExtractor) Extensions() []string {
	return append([]string(nil), e.extensions...)
}

// Extract returns the class declarations in content.
func (e *LexicalExtractor) Extract(ctx context.Context, content []byte, path string) ([]Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(content)) > e.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), e.maxFileSize)
	}

	matches := classHeader.FindAllSubmatchIndex(content, -1)
	decls := make([]Declaration, 0, len(matches))
	for _, m := range matches {
		// m[2:4] is the name group; the header ends at m[1].
		list, ok := scanHeader(content, m[1])
		if !ok {
			continue
		}

		var bases []string
		for _, raw := range splitBaseList(list) {
			if b := cleanBase(raw); b != "" {
				bases = append(bases, b)
			}
		}

		decls = append(decls, Declaration{
			Name:  string(content[m[2]:m[3]]),
			Bases: bases,
			File:  path,
			Line:  bytes.Count(content[:m[2]], []byte("\n")) + 1,
		})
	}
	return decls, nil
}

// scanHeader reads the remainder of a class statement starting at pos: an
// optional parenthesized base list followed by ":". Parentheses nest and
// quoted strings are skipped, so a base list may hold calls and span lines.
//
// Returns the text between the outer parentheses ("" when there are none)
// and false when the statement is not a class header.
func scanHeader(content []byte, pos int) (string, bool) {
	if pos >= len(content) {
		return "", false
	}
	if content[pos] == ':' {
		return "", true
	}
	if content[pos] != '(' {
		return "", false
	}

	start := pos + 1
	depth := 0
	var quote byte
	for i := pos; i < len(content); i++ {
		c := content[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				j := i + 1
				for j < len(content) && (content[j] == ' ' || content[j] == '\t') {
					j++
				}
				if j < len(content) && content[j] == ':' {
					return string(content[start:i]), true
				}
				return "", false
			}
		}
	}
	return "", false
}
