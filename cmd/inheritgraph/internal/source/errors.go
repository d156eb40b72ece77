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

import "errors"

// Sentinel errors for class map building.
var (
	// ErrNoRoots indicates Build was called without search roots.
	ErrNoRoots = errors.New("no search roots given")

	// ErrRootNotFound indicates a search root does not exist.
	ErrRootNotFound = errors.New("search root not found")

	// ErrUnreadableSource indicates a root or file could not be read.
	ErrUnreadableSource = errors.New("source is unreadable")

	// ErrFileTooLarge indicates a file exceeds the extractor's size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates a file is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrUnknownExtractor indicates an extractor name is not registered.
	ErrUnknownExtractor = errors.New("unknown extractor")
)
