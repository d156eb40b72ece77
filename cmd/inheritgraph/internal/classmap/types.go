// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classmap

import (
	"sort"
)

// =============================================================================
// NameSet
// =============================================================================

// NameSet is an unordered set of class names.
//
// The zero value (nil) is a valid empty set for reads. Use NewNameSet
// before calling Add.
type NameSet map[string]struct{}

// NewNameSet creates a set containing the given names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts names into the set.
func (s NameSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is a member of the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of members.
func (s NameSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set. A nil set clones to an
// empty, non-nil set.
func (s NameSet) Clone() NameSet {
	out := make(NameSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Union returns a new set with the members of s and other.
func (s NameSet) Union(other NameSet) NameSet {
	out := s.Clone()
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the members present in both s and other.
func (s NameSet) Intersect(other NameSet) NameSet {
	out := make(NameSet)
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for n := range small {
		if large.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexicographic order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets have exactly the same members.
func (s NameSet) Equal(other NameSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// =============================================================================
// ClassMap
// =============================================================================

// ClassMap maps a class name to the set of its declared base-class names.
type ClassMap map[string]NameSet

// Edge is a single subclass -> base relationship.
type Edge struct {
	Class string `json:"class"`
	Base  string `json:"base"`
}

// Set records the declared bases of class, replacing any previous entry.
func (m ClassMap) Set(class string, bases ...string) {
	m[class] = NewNameSet(bases...)
}

// Bases returns the declared bases of class. Absent classes have no bases.
func (m ClassMap) Bases(class string) NameSet {
	return m[class]
}

// Has reports whether class is a key of the map.
func (m ClassMap) Has(class string) bool {
	_, ok := m[class]
	return ok
}

// Keys returns the class names of the map in lexicographic order.
func (m ClassMap) Keys() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Names returns every name in the map, as key or as base.
func (m ClassMap) Names() NameSet {
	out := make(NameSet, len(m))
	for k, bases := range m {
		out[k] = struct{}{}
		for b := range bases {
			out[b] = struct{}{}
		}
	}
	return out
}

// PureBases returns the names referenced as a base that are not keys.
func (m ClassMap) PureBases() NameSet {
	out := make(NameSet)
	for _, bases := range m {
		for b := range bases {
			if !m.Has(b) {
				out[b] = struct{}{}
			}
		}
	}
	return out
}

// Edges returns every (class, base) pair sorted by class, then base.
func (m ClassMap) Edges() []Edge {
	out := make([]Edge, 0, m.EdgeCount())
	for _, k := range m.Keys() {
		for _, b := range m[k].Sorted() {
			out = append(out, Edge{Class: k, Base: b})
		}
	}
	return out
}

// EdgeCount returns the number of (class, base) pairs.
func (m ClassMap) EdgeCount() int {
	n := 0
	for _, bases := range m {
		n += len(bases)
	}
	return n
}

// Clone returns a deep copy of the map.
func (m ClassMap) Clone() ClassMap {
	out := make(ClassMap, len(m))
	for k, bases := range m {
		out[k] = bases.Clone()
	}
	return out
}

// Equal reports whether both maps have the same keys and base sets.
func (m ClassMap) Equal(other ClassMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, bases := range m {
		ob, ok := other[k]
		if !ok || !bases.Equal(ob) {
			return false
		}
	}
	return true
}

// Without returns a copy of the map with every name in omit removed, both
// as a key and from every base set.
func (m ClassMap) Without(omit NameSet) ClassMap {
	out := make(ClassMap, len(m))
	for k, bases := range m {
		if omit.Has(k) {
			continue
		}
		kept := make(NameSet, len(bases))
		for b := range bases {
			if !omit.Has(b) {
				kept[b] = struct{}{}
			}
		}
		out[k] = kept
	}
	return out
}
