// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-supplied class names before they reach the
// ancestry filter or the renderer.
//
// Names arrive from command-line flags and config files. A name that can
// never match a declaration (empty, containing spaces, a stray comma from a
// shell-quoted list) is almost always a typo, and silently matching nothing
// hides it. Well-formed names that simply do not occur are still accepted.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxClassNameLength bounds a single class name, dotted parts included.
const MaxClassNameLength = 256

// classNamePattern matches an identifier or a dotted path of identifiers.
// Allows: letters (any script), digits after the first rune, underscores, dots
// between parts (abc.ABC, models.Base).
var classNamePattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*(\.[\p{L}_][\p{L}\p{N}_]*)*$`)

// ValidateClassName validates a class name given on the command line or in
// configuration.
//
// Valid names:
//   - 1-256 characters
//   - Start with a letter or underscore
//   - Letters, digits and underscores
//   - Dots separating non-empty parts, as in abc.ABC
//
// Example:
//
//	if err := validation.ValidateClassName(name); err != nil {
//	    return fmt.Errorf("include: %w", err)
//	}
func ValidateClassName(name string) error {
	if name == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if len(name) > MaxClassNameLength {
		return fmt.Errorf("class name too long: %d bytes (max %d)", len(name), MaxClassNameLength)
	}
	if !classNamePattern.MatchString(name) {
		return fmt.Errorf("invalid class name: %q (must be an identifier or dotted path of identifiers)", name)
	}
	return nil
}

// ValidateClassNames validates multiple class names.
// Returns an error listing all invalid names if any fail validation.
func ValidateClassNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateClassName(n); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", n))
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid class names: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// SanitizeClassName trims surrounding whitespace and validates the result.
//
//	name, err := validation.SanitizeClassName(" Robot ")
//	// name == "Robot"
func SanitizeClassName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateClassName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// IsClassName reports whether name passes ValidateClassName.
func IsClassName(name string) bool {
	return ValidateClassName(name) == nil
}
