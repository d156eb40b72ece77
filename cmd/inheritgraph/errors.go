// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/config"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/render"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/source"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError marks an error caused by bad arguments or configuration.
type UsageError struct {
	Wrapped error
}

func (e *UsageError) Error() string {
	return e.Wrapped.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Wrapped
}

// usageError wraps err as a UsageError. Nil stays nil.
func usageError(err error) error {
	if err == nil {
		return nil
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return err
	}
	return &UsageError{Wrapped: err}
}

// exitCode maps an error returned by the root command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ue *UsageError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrUnknownConfigFormat),
		errors.Is(err, source.ErrUnknownExtractor),
		errors.Is(err, render.ErrUnsupportedFormat):
		return ExitUsage
	default:
		return ExitFailure
	}
}
