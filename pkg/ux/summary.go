// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Summary describes one pipeline run.
type Summary struct {
	RunID        string
	Parser       string
	Format       string
	Output       string
	Files        int
	Scanned      int
	Declarations int
	Duplicates   int
	Classes      int
	Edges        int
	Mixins       int
	Abstracts    int
	Cycles       []string
	Duration     time.Duration
}

// rows returns the label/value pairs in display order.
func (s Summary) rows() [][2]string {
	output := s.Output
	if output == "" {
		output = "stdout"
	}
	return [][2]string{
		{"run", s.RunID},
		{"parser", s.Parser},
		{"format", s.Format},
		{"output", output},
		{"files", fmt.Sprintf("%d scanned of %d", s.Scanned, s.Files)},
		{"declarations", fmt.Sprintf("%d (%d duplicate)", s.Declarations, s.Duplicates)},
		{"classes", fmt.Sprintf("%d", s.Classes)},
		{"edges", fmt.Sprintf("%d", s.Edges)},
		{"mixins", fmt.Sprintf("%d", s.Mixins)},
		{"abstract", fmt.Sprintf("%d", s.Abstracts)},
		{"cycles", fmt.Sprintf("%d", len(s.Cycles))},
		{"duration", s.Duration.Round(time.Millisecond).String()},
	}
}

// Summary prints s as a bordered table, or as "label: value" lines when
// styling is off. Cycles are listed after the table.
func (p *Printer) Summary(s Summary) {
	rows := s.rows()

	if p.plain {
		for _, r := range rows {
			fmt.Fprintf(p.w, "%s: %s\n", r[0], r[1])
		}
		for _, c := range s.Cycles {
			fmt.Fprintf(p.w, "cycle: %s\n", c)
		}
		return
	}

	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	lines := []string{Styles.Title.Render("inheritgraph")}
	for _, r := range rows {
		label := Styles.Label.Render(r[0] + strings.Repeat(" ", width-len(r[0])))
		lines = append(lines, label+"  "+Styles.Value.Render(r[1]))
	}
	fmt.Fprintln(p.w, Styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))

	for _, c := range s.Cycles {
		p.Warning("cycle: " + c)
	}
}
