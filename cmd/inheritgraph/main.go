// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command inheritgraph draws the class inheritance hierarchy of a Python
// source tree as a Graphviz DOT digraph.
//
// # Architecture
//
//	┌──────────┐   ┌─────────────┐   ┌────────────┐   ┌──────────┐
//	│  config  │──▶│   source    │──▶│ hierarchy  │──▶│  render  │──▶ stdout / OUTPUT
//	│ yaml/toml│   │  Builder    │   │  Filter    │   │ dot/mmd/ │
//	│ .env/CLI │   │ (extractor) │   │ FindCycles │   │   json   │
//	└──────────┘   └─────────────┘   └────────────┘   └──────────┘
//	                      ▲
//	                 watch (fsnotify) re-runs the pipeline on change
//
// Logs, summaries and telemetry go to stderr; stdout carries only the
// diagram.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command line and returns the process exit code.
func execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "inheritgraph: %v\n", err)
		return exitCode(err)
	}
	return ExitOK
}
