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
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicHierarchy indicates the class map contains an inheritance cycle.
var ErrCyclicHierarchy = errors.New("class hierarchy contains a cycle")

// CycleError lists the cycles found in a class map.
type CycleError struct {
	Cycles [][]string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, FormatCycle(c))
	}
	return fmt.Sprintf("class hierarchy contains %d cycle(s): %s", len(e.Cycles), strings.Join(parts, "; "))
}

// Unwrap returns the sentinel error.
func (e *CycleError) Unwrap() error {
	return ErrCyclicHierarchy
}

// FormatCycle renders a cycle as "A -> B -> A".
func FormatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
}
