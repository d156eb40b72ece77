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
	"fmt"
	"html"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// mermaid creates a Mermaid flowchart.
func (r *Renderer) mermaid(m classmap.ClassMap) string {
	var sb strings.Builder
	mixins, abstracts := r.classifier.Partition(m)
	ids := mermaidIDs(m.Names().Sorted())

	sb.WriteString(fmt.Sprintf("flowchart %s\n", r.opts.Direction))
	sb.WriteString("    classDef mixin stroke-dasharray: 5 5\n")
	sb.WriteString("    classDef abstract fill:#d3d3d3\n")

	for _, n := range mixins {
		sb.WriteString(fmt.Sprintf("    %s:::mixin\n", mermaidNode(n, ids)))
	}
	for _, n := range abstracts {
		sb.WriteString(fmt.Sprintf("    %s:::abstract\n", mermaidNode(n, ids)))
	}
	for _, e := range m.Edges() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidNode(e.Class, ids), mermaidNode(e.Base, ids)))
	}
	return sb.String()
}

// mermaidIDs assigns every name a distinct node id. Plain identifiers are
// their own id. Other names are sanitized to word characters, and a
// numeric suffix is appended when the result is already taken, so
// pkg.Base and pkg_Base stay separate nodes. names must be sorted.
func mermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		if plainID.MatchString(n) {
			ids[n] = n
			taken[n] = true
		}
	}
	for _, n := range names {
		if _, ok := ids[n]; ok {
			continue
		}
		base := sanitizeID(n)
		id := base
		for i := 2; taken[id]; i++ {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		ids[n] = id
		taken[id] = true
	}
	return ids
}

// sanitizeID replaces every rune that is not an ASCII word character with
// "_" and prefixes "_" when the result would start with a digit.
func sanitizeID(name string) string {
	var id strings.Builder
	for _, r := range name {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			id.WriteRune(r)
		} else {
			id.WriteRune('_')
		}
	}
	out := id.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}

// mermaidNode returns a node reference. Names that are not plain
// identifiers carry their original text as label.
func mermaidNode(name string, ids map[string]string) string {
	id := ids[name]
	if id == name {
		return id
	}
	return fmt.Sprintf("%s[\"%s\"]", id, html.EscapeString(name))
}
