// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hierarchy selects ancestry-filtered subgraphs of a class map.
//
// The has-ancestor relation is reflexive and transitive: a class is its own
// ancestor, and so is every class reachable through declared bases. Filter
// keeps the classes whose ancestry touches an include root (or every class
// when no include roots are given) and drops the ones whose ancestry touches
// an exclude root. Bases that end up referenced but not kept ("pure bases")
// are added back as keys so every edge of the result has both endpoints.
//
// # Architecture
//
//	┌─────────────┐    ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//	│  ClassMap   │───▶│  Keep keys  │───▶│ Pure bases  │───▶│  Reconnect  │
//	│  (input)    │    │ (ancestry)  │    │  (closure)  │    │  (∩ bases)  │
//	└─────────────┘    └─────────────┘    └─────────────┘    └─────────────┘
//
// # Cycles
//
// Real class hierarchies cannot cycle, but hand-written or corrupted input
// can. Traversal carries a visited set, so every operation terminates; a
// re-entered class counts as "no match through this path". FindCycles
// reports cycles and FilterStrict refuses cyclic input.
//
// # Thread Safety
//
// All functions are pure and never mutate their input.
package hierarchy
