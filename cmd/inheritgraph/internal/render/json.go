// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// jsonClass is one entry of the JSON listing.
type jsonClass struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Bases    []string `json:"bases"`
}

// jsonGraph is the JSON document.
type jsonGraph struct {
	APIVersion string      `json:"api_version"`
	Classes    []jsonClass `json:"classes"`
	EdgeCount  int         `json:"edge_count"`
}

// json lists every name with its category and sorted bases.
func (r *Renderer) json(m classmap.ClassMap) (string, error) {
	names := m.Names().Sorted()
	doc := jsonGraph{
		APIVersion: APIVersion,
		Classes:    make([]jsonClass, 0, len(names)),
		EdgeCount:  m.EdgeCount(),
	}
	for _, n := range names {
		doc.Classes = append(doc.Classes, jsonClass{
			Name:     n,
			Category: r.classifier.Classify(n),
			Bases:    m.Bases(n).Sorted(),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data) + "\n", nil
}
