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
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxOption configures a SyntaxExtractor.
type SyntaxOption func(*SyntaxExtractor)

// WithSyntaxExtensions overrides the file extensions. Empty input keeps
// the defaults.
func WithSyntaxExtensions(exts ...string) SyntaxOption {
	return func(e *SyntaxExtractor) {
		if n := normalizeExtensions(exts); len(n) > 0 {
			e.extensions = n
		}
	}
}

// WithSyntaxMaxFileSize sets the largest file accepted.
//
// Parameters:
//   - limit: Maximum file size in bytes. Non-positive values are ignored.
//
// Example:
//
//	e := NewSyntaxExtractor(WithSyntaxMaxFileSize(5 * 1024 * 1024)) // 5MB limit
func WithSyntaxMaxFileSize(limit int64) SyntaxOption {
	return func(e *SyntaxExtractor) {
		if limit > 0 {
			e.maxFileSize = limit
		}
	}
}

// WithSyntaxLogger sets the logger for parse diagnostics. Nil keeps
// slog.Default().
func WithSyntaxLogger(logger *slog.Logger) SyntaxOption {
	return func(e *SyntaxExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// SyntaxExtractor finds Python class declarations with tree-sitter.
//
// Description:
//
//	Parses the file into a concrete syntax tree and visits every
//	class_definition node, including decorated and nested classes. Base
//	names come from the superclasses argument_list: identifiers and dotted
//	attributes are kept, subscripts are reduced to their value
//	(Generic[T] -> Generic), keyword arguments and splats are dropped.
//	Tree-sitter is error-tolerant, so files with syntax errors still yield
//	every class it could recover.
//
// Thread Safety:
//
//	Safe for concurrent use. Each Extract call creates its own
//	tree-sitter parser.
type SyntaxExtractor struct {
	extensions  []string
	maxFileSize int64
	logger      *slog.Logger
}

// NewSyntaxExtractor creates a SyntaxExtractor reading .py and .pyi files.
func NewSyntaxExtractor(opts ...SyntaxOption) *SyntaxExtractor {
	e := &SyntaxExtractor{
		extensions:  []string{".py", ".pyi"},
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "tree-sitter".
func (e *SyntaxExtractor) Name() string {
	return ExtractorTreeSitter
}

// Extensions returns the file extensions this extractor reads.
func (e *SyntaxExtractor) Extensions() []string {
	return append([]string(nil), e.extensions...)
}

// Extract parses content and returns its class declarations.
//
// Outputs:
//   - []Declaration: Declarations in source order.
//   - error: Non-nil for complete failures:
//   - ErrFileTooLarge: Content exceeds the size limit
//   - ErrInvalidContent: Content is not valid UTF-8
//   - Context errors: Context was canceled
func (e *SyntaxExtractor) Extract(ctx context.Context, content []byte, path string) ([]Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}
	if int64(len(content)) > e.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), e.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse of %s failed: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return []Declaration{}, nil
	}
	if root.HasError() {
		e.logger.Debug("source contains syntax errors", slog.String("file", path))
	}

	decls := make([]Declaration, 0)
	e.walk(root, content, path, &decls)
	return decls, nil
}

// walk visits node and its descendants in document order.
func (e *SyntaxExtractor) walk(node *sitter.Node, content []byte, path string, decls *[]Declaration) {
	if node.Type() == "class_definition" {
		if d, ok := e.declaration(node, content, path); ok {
			*decls = append(*decls, d)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), content, path, decls)
	}
}

// declaration converts a class_definition node.
func (e *SyntaxExtractor) declaration(node *sitter.Node, content []byte, path string) (Declaration, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Declaration{}, false
	}

	d := Declaration{
		Name: nameNode.Content(content),
		File: path,
		Line: int(node.StartPoint().Row + 1),
	}

	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return d, true
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if b := baseName(args.NamedChild(i), content); b != "" {
			d.Bases = append(d.Bases, b)
		}
	}
	return d, true
}

// baseName returns the class name written by an argument_list entry, or ""
// when the entry is not a base class.
func baseName(arg *sitter.Node, content []byte) string {
	switch arg.Type() {
	case "identifier", "attribute":
		return arg.Content(content)
	case "subscript":
		if v := arg.ChildByFieldName("value"); v != nil {
			return baseName(v, content)
		}
	}
	return ""
}
