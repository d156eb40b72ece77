// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classmap defines the class-to-bases mapping shared by the
// inheritgraph pipeline.
//
// A ClassMap maps a class name to the set of base-class names it declares.
// Names that only ever appear as a base (never as a key) are "pure bases":
// library or runtime classes outside the scanned tree, or classes removed
// by filtering.
//
// # Architecture
//
//	┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//	│  source     │───▶│  hierarchy  │───▶│  render     │
//	│  (Builder)  │    │  (Filter)   │    │  (DOT/...)  │
//	└─────────────┘    └─────────────┘    └─────────────┘
//	        └──────────── ClassMap ─────────────┘
//
// # Thread Safety
//
// ClassMap and NameSet are plain maps. They are safe for concurrent reads,
// not for concurrent writes. The pipeline never mutates a map it receives.
package classmap
