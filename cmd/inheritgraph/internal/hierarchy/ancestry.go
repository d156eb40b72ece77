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
	"sort"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// Ancestry answers has-ancestor queries against a single class map.
//
// # Description
//
// HasAncestor is a depth-first search over declared bases. Each query
// carries its own visited set, so a cyclic map cannot make it loop.
//
// # Thread Safety
//
// Safe for concurrent use; the map is only read.
type Ancestry struct {
	m classmap.ClassMap
}

// NewAncestry creates an Ancestry over m. The map must not be modified
// while the Ancestry is in use.
func NewAncestry(m classmap.ClassMap) *Ancestry {
	return &Ancestry{m: m}
}

// HasAncestor reports whether cls is root or derives from root through
// declared bases.
//
// # Inputs
//
//   - cls: The class to start from. Need not be a key of the map.
//   - root: The candidate ancestor. Need not appear in the map at all.
//
// # Outputs
//
//   - bool: True if root is reachable from cls (reflexively).
func (a *Ancestry) HasAncestor(cls, root string) bool {
	visited := make(classmap.NameSet)
	return a.hasAncestor(cls, root, visited)
}

func (a *Ancestry) hasAncestor(cls, root string, visited classmap.NameSet) bool {
	if cls == root {
		return true
	}
	if visited.Has(cls) {
		return false
	}
	visited.Add(cls)

	for base := range a.m.Bases(cls) {
		if a.hasAncestor(base, root, visited) {
			return true
		}
	}
	return false
}

// HasAnyAncestor reports whether cls has at least one member of roots as
// an ancestor. An empty roots set never matches.
func (a *Ancestry) HasAnyAncestor(cls string, roots classmap.NameSet) bool {
	for r := range roots {
		if a.HasAncestor(cls, r) {
			return true
		}
	}
	return false
}

// Ancestors returns every ancestor of cls, including cls itself.
func (a *Ancestry) Ancestors(cls string) classmap.NameSet {
	out := classmap.NewNameSet(cls)
	stack := []string{cls}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for base := range a.m.Bases(cur) {
			if out.Has(base) {
				continue
			}
			out.Add(base)
			stack = append(stack, base)
		}
	}
	return out
}

// Ancestors returns the reflexive-transitive ancestor set of name in m.
func Ancestors(m classmap.ClassMap, name string) classmap.NameSet {
	return NewAncestry(m).Ancestors(name)
}

// =============================================================================
// Cycle detection
// =============================================================================

const (
	white = iota // not yet visited
	grey         // on the current DFS path
	black        // fully explored
)

// FindCycles returns every elementary cycle reachable through a back edge,
// in deterministic order.
//
// # Description
//
// Classic three-colour DFS over the keys of m in lexicographic order,
// visiting bases in lexicographic order. Each back edge yields one cycle,
// rotated so that it starts at its lexicographically smallest member.
// Duplicate cycles are dropped. Returns nil for an acyclic map.
func FindCycles(m classmap.ClassMap) [][]string {
	colour := make(map[string]int)
	var path []string
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		colour[n] = grey
		path = append(path, n)

		for _, base := range m.Bases(n).Sorted() {
			switch colour[base] {
			case white:
				visit(base)
			case grey:
				cycle := extractCycle(path, base)
				key := FormatCycle(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		path = path[:len(path)-1]
		colour[n] = black
	}

	for _, k := range m.Keys() {
		if colour[k] == white {
			visit(k)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return FormatCycle(cycles[i]) < FormatCycle(cycles[j])
	})
	return cycles
}

// extractCycle returns the portion of path starting at start, rotated to
// begin at its smallest member.
func extractCycle(path []string, start string) []string {
	idx := 0
	for i, n := range path {
		if n == start {
			idx = i
			break
		}
	}
	cycle := append([]string{}, path[idx:]...)

	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[minIdx:]...)
	return append(rotated, cycle[:minIdx]...)
}
