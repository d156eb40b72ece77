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
	"regexp"
	"strings"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// plainID matches DOT identifiers that need no quoting.
var plainID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dot creates a Graphviz digraph.
//
// Layout: header, mixin nodes, abstract nodes, then every edge under the
// concrete style so that names introduced only by edges pick it up.
func (r *Renderer) dot(m classmap.ClassMap) string {
	var sb strings.Builder
	mixins, abstracts := r.classifier.Partition(m)

	sb.WriteString("digraph inheritance {\n")
	sb.WriteString(fmt.Sprintf("    rankdir=%s;\n", r.opts.Direction))
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\", fontsize=10];\n")

	sb.WriteString("\n    // Mixin classes: mixed into concrete classes, never instantiated alone.\n")
	sb.WriteString("    node [style=\"dashed\"];\n")
	for _, n := range mixins {
		sb.WriteString(fmt.Sprintf("    %s;\n", dotID(n)))
	}

	sb.WriteString("\n    // Abstract classes: define an interface, not instantiated directly.\n")
	sb.WriteString("    node [style=\"filled\", fillcolor=\"lightgrey\"];\n")
	for _, n := range abstracts {
		sb.WriteString(fmt.Sprintf("    %s;\n", dotID(n)))
	}

	sb.WriteString("\n    // Concrete classes and inheritance edges.\n")
	sb.WriteString("    node [style=\"solid\", fillcolor=\"white\"];\n")
	for _, e := range m.Edges() {
		sb.WriteString(fmt.Sprintf("    %s->%s;\n", dotID(e.Class), dotID(e.Base)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// dotID returns name bare when it is a plain identifier, quoted otherwise.
func dotID(name string) string {
	if plainID.MatchString(name) {
		return name
	}
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
