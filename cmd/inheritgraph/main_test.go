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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/config"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/hierarchy"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/render"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/source"
)

const robotsPy = `class Machine(object):
    pass

class Robot(Machine):
    pass

class LegsMixin:
    pass

class Walker(Robot, LegsMixin):
    pass

class Drone(Machine):
    pass
`

// runCLI executes the root command with captured output.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvLogLevel, "")

	cmd := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(&errb, "inheritgraph: %v\n", err)
	}
	return out.String(), errb.String(), exitCode(err)
}

// writeSources creates files under a fresh directory and returns it.
func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func TestCLI_IncludeToStdout(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	out, stderr, code := runCLI(t, "-p", dir, "-i", "Robot")
	require.Equal(t, ExitOK, code, stderr)

	assert.True(t, strings.HasPrefix(out, "digraph inheritance {\n"))
	assert.Contains(t, out, "    LegsMixin;\n")
	assert.Contains(t, out, "    Robot->Machine;\n")
	assert.Contains(t, out, "    Walker->LegsMixin;\n")
	assert.Contains(t, out, "    Walker->Robot;\n")
	assert.NotContains(t, out, "Drone")
	assert.NotContains(t, out, "object")
}

func TestCLI_ExcludeAndAbstract(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	out, stderr, code := runCLI(t, "--path", dir, "-x", "Robot", "-a", "Machine")
	require.Equal(t, ExitOK, code, stderr)

	assert.Contains(t, out, "    Drone->Machine;\n")
	assert.NotContains(t, out, "Walker")
	abstractBlock := out[strings.Index(out, "// Abstract"):strings.Index(out, "// Concrete")]
	assert.Contains(t, abstractBlock, "    Machine;\n")
}

func TestCLI_OutputFile(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})
	target := filepath.Join(t.TempDir(), "robots.dot")

	out, stderr, code := runCLI(t, "-p", dir, target)
	require.Equal(t, ExitOK, code, stderr)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    Drone->Machine;\n")

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestCLI_EmptyResultIsSuccess(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	out, stderr, code := runCLI(t, "-p", dir, "-i", "NoSuchBase")
	require.Equal(t, ExitOK, code, stderr)
	assert.NotContains(t, out, "->")
}

func TestCLI_Formats(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	out, stderr, code := runCLI(t, "-p", dir, "--format", "mermaid")
	require.Equal(t, ExitOK, code, stderr)
	assert.True(t, strings.HasPrefix(out, "flowchart RL\n"))
	assert.Contains(t, out, "    Walker --> Robot\n")

	out, stderr, code = runCLI(t, "-p", dir, "--format", "json")
	require.Equal(t, ExitOK, code, stderr)
	var doc struct {
		EdgeCount int `json:"edge_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 4, doc.EdgeCount)
}

func TestCLI_TreeSitterParser(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	lexical, _, code := runCLI(t, "-p", dir)
	require.Equal(t, ExitOK, code)
	syntax, stderr, code := runCLI(t, "-p", dir, "--parser", "tree-sitter")
	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, lexical, syntax)
}

func TestCLI_Cycles(t *testing.T) {
	dir := writeSources(t, map[string]string{"loop.py": "class A(B): pass\nclass B(A): pass\nclass C(A): pass\n"})

	out, stderr, code := runCLI(t, "-p", dir)
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, out, "    C->A;\n")
	assert.Contains(t, stderr, "inheritance cycle")
	assert.Contains(t, stderr, "A -> B -> A")

	out, stderr, code = runCLI(t, "-p", dir, "--strict")
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "cycle")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})
	cfgFile := filepath.Join(t.TempDir(), "inheritgraph.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf(`
search_paths: [%q]
include: [Machine]
abstract: [Machine]
direction: LR
`, dir)), 0644))

	out, stderr, code := runCLI(t, "--config", cfgFile, "-x", "Robot")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, "    Drone->Machine;\n")
	assert.NotContains(t, out, "Walker")
}

func TestCLI_Stats(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy, "README.md": "# robots\n"})

	_, stderr, code := runCLI(t, "-p", dir, "--stats")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stderr, "files: 1 scanned of 2\n")
	assert.Contains(t, stderr, "edges: 4\n")
	assert.Contains(t, stderr, "mixins: 1\n")
}

func TestCLI_MetricsFile(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})
	metrics := filepath.Join(t.TempDir(), "inheritgraph.prom")

	_, stderr, code := runCLI(t, "-p", dir, "--metrics-file", metrics)
	require.Equal(t, ExitOK, code, stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inheritgraph_runs")
}

func TestCLI_Errors(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{name: "missing search path", args: []string{"-p", filepath.Join(dir, "absent")}, code: ExitFailure, msg: "search root not found"},
		{name: "unknown format", args: []string{"-p", dir, "--format", "svg"}, code: ExitUsage, msg: "format"},
		{name: "unknown parser", args: []string{"-p", dir, "--parser", "regex"}, code: ExitUsage, msg: "parser"},
		{name: "unknown flag", args: []string{"--colour"}, code: ExitUsage, msg: "unknown flag"},
		{name: "two outputs", args: []string{"-p", dir, "a.dot", "b.dot"}, code: ExitUsage, msg: "at most one"},
		{name: "malformed include", args: []string{"-p", dir, "-i", "Robot,Drone"}, code: ExitUsage, msg: "classname"},
		{name: "watch without output", args: []string{"-p", dir, "--watch"}, code: ExitUsage, msg: "--watch requires an OUTPUT"},
		{name: "bad log format", args: []string{"-p", dir, "--log-format", "xml"}, code: ExitUsage, msg: "log_format"},
		{name: "bad log level", args: []string{"-p", dir, "--log-level", "loud"}, code: ExitUsage, msg: "unknown log level"},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "nope.yaml")}, code: ExitUsage, msg: "nope.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, code := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, code, stderr)
			assert.Empty(t, out)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestCLI_Watch(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvLogLevel, "")

	dir := writeSources(t, map[string]string{"robots.py": robotsPy})
	outDir := t.TempDir()
	target := filepath.Join(outDir, "robots.dot")
	metrics := filepath.Join(outDir, "robots.prom")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs([]string{
		"--env-file", filepath.Join(t.TempDir(), "none.env"),
		"-p", dir, "--watch", "--metrics-file", metrics, target,
	})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(target)
		return err == nil && strings.Contains(string(data), "    Drone->Machine;\n")
	}, 10*time.Second, 50*time.Millisecond, "initial diagram not written")

	// Written after the first run, long before shutdown.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(metrics)
		return err == nil && strings.Contains(string(data), "inheritgraph_runs")
	}, 5*time.Second, 50*time.Millisecond, "metrics file not written after the first run")

	// Rewrite until the watcher picks the change up; the interval stays
	// above the debounce window so batches are not postponed forever.
	updated := robotsPy + "\nclass Rover(Drone):\n    pass\n"
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "robots.py"), []byte(updated), 0644)
		data, err := os.ReadFile(target)
		return err == nil && strings.Contains(string(data), "    Rover->Drone;\n")
	}, 10*time.Second, 500*time.Millisecond, "diagram not re-rendered after a change")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancellation")
	}

	assert.Empty(t, out.String(), "watch mode writes only to OUTPUT")
	assert.Contains(t, errb.String(), "re-rendered after")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files left behind")
}

func TestCLI_LogFileAndQuiet(t *testing.T) {
	dir := writeSources(t, map[string]string{"loop.py": "class A(B): pass\nclass B(A): pass\n"})
	logDir := t.TempDir()

	_, stderr, code := runCLI(t, "-p", dir, "--quiet", "--log-dir", logDir, "--log-level", "info")
	require.Equal(t, ExitOK, code, stderr)
	assert.NotContains(t, stderr, "inheritance cycle")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"inheritance cycle"`)
	assert.Contains(t, string(data), `"run_id":`)
}

func TestCLI_JSONLogsCarryTraceID(t *testing.T) {
	dir := writeSources(t, map[string]string{"robots.py": robotsPy})

	_, stderr, code := runCLI(t, "-p", dir, "--log-format", "json", "--log-level", "info", "--telemetry", "stdout")
	require.Equal(t, ExitOK, code, stderr)

	var finished map[string]any
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, `"msg":"run finished"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &finished))
		}
	}
	require.NotNil(t, finished, "no run finished record in %q", stderr)
	assert.NotEmpty(t, finished["run_id"])
	assert.NotEmpty(t, finished["trace_id"])
}

func TestCLI_Version(t *testing.T) {
	out, _, code := runCLI(t, "version")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "inheritgraph dev\n", out)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", usageError(errors.New("bad flag")), ExitUsage},
		{"invalid config", fmt.Errorf("load: %w", config.ErrInvalidConfig), ExitUsage},
		{"unknown extractor", source.ErrUnknownExtractor, ExitUsage},
		{"unsupported format", render.ErrUnsupportedFormat, ExitUsage},
		{"cycle", &hierarchy.CycleError{Cycles: [][]string{{"A", "B"}}}, ExitFailure},
		{"missing root", source.ErrRootNotFound, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUsageError_NoDoubleWrap(t *testing.T) {
	inner := usageError(errors.New("x"))
	outer := usageError(inner)
	assert.Same(t, inner, outer)
	assert.Nil(t, usageError(nil))
}
