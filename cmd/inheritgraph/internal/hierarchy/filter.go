// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hierarchy

import (
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// Filter returns the ancestry-filtered subgraph of m.
//
// # Description
//
// A key of m is kept when it has an ancestor in include (or include is
// empty) and has no ancestor in exclude. Kept keys retain their full,
// original base sets. Every base then referenced but not kept is added as
// a key whose bases are the other such pure bases it declares in m, which
// preserves chains of intermediate ancestors without pulling in anything
// else from m.
//
// # Inputs
//
//   - m: The full class map. Not modified.
//   - include: Include roots. Empty means "every class".
//   - exclude: Exclude roots. Empty means "exclude nothing".
//
// # Outputs
//
//   - classmap.ClassMap: A new map. Every base it references is also a key.
//
// # Example
//
//	m := classmap.ClassMap{"A": {"B": {}}, "B": {"C": {}}, "C": {}}
//	Filter(m, classmap.NewNameSet("B"), nil)
//	// => {A:{B}, B:{C}, C:{}}
func Filter(m classmap.ClassMap, include, exclude classmap.NameSet) classmap.ClassMap {
	anc := NewAncestry(m)

	filtered := make(classmap.ClassMap, len(m))
	for name, bases := range m {
		if len(include) > 0 && !anc.HasAnyAncestor(name, include) {
			continue
		}
		if anc.HasAnyAncestor(name, exclude) {
			continue
		}
		filtered[name] = bases.Clone()
	}

	pure := filtered.PureBases()
	for p := range pure {
		filtered[p] = pure.Intersect(m.Bases(p))
	}

	return filtered
}

// FilterStrict is Filter for callers that refuse malformed input.
//
// # Outputs
//
//   - classmap.ClassMap: The filtered map, nil on error.
//   - error: A *CycleError (wrapping ErrCyclicHierarchy) if m has a cycle.
func FilterStrict(m classmap.ClassMap, include, exclude classmap.NameSet) (classmap.ClassMap, error) {
	if cycles := FindCycles(m); len(cycles) > 0 {
		return nil, &CycleError{Cycles: cycles}
	}
	return Filter(m, include, exclude), nil
}
