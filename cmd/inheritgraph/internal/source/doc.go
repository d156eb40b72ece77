// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package source discovers class declarations and builds a class map.
//
// A Builder walks one or more search roots, hands every matching file to an
// Extractor and collects "class name -> declared bases" into a
// classmap.ClassMap. Two extractors are provided:
//
//   - LexicalExtractor: a permissive line-anchored regular expression. It
//     does not understand strings, comments or nesting, which is fine for
//     documentation tooling and keeps it language-agnostic.
//   - SyntaxExtractor: tree-sitter based, Python only. Slower but immune to
//     "class" appearing inside strings and comments.
//
// # Failure Model
//
// A partial class map produces a misleading diagram, so any unreadable root
// or file aborts the build. Files without declarations are not an error.
//
// # Thread Safety
//
// Extractors are safe for concurrent use. A Builder walks sequentially.
package source
