// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render serializes a class map into a diagram description.
//
// Every name in the map (key or base) falls into exactly one category:
//
//   - Mixin: the name ends with the mixin suffix ("Mixin" by default).
//   - Abstract: the name is in the caller's abstract set.
//   - Concrete: everything else.
//
// Output is byte-identical for identical input: all sets and maps are
// sorted before emission, so diagrams diff cleanly in version control.
//
// Supported formats are Graphviz DOT (the default), Mermaid flowcharts and
// a JSON listing.
package render
