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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/config"
	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/render"
	"github.com/AleutianAI/inheritgraph/pkg/logging"
	"github.com/AleutianAI/inheritgraph/pkg/telemetry"
	"github.com/AleutianAI/inheritgraph/pkg/ux"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootFlags holds the command-line values of one invocation.
type rootFlags struct {
	paths       []string
	include     []string
	exclude     []string
	omit        []string
	abstract    []string
	format      string
	parser      string
	configPath  string
	logLevel    string
	logFormat   string
	logDir      string
	telemetry   string
	metricsFile string
	envFile     string
	strict      bool
	watch       bool
	stats       bool
	quiet       bool
}

func (f *rootFlags) overrides() config.Overrides {
	return config.Overrides{
		SearchPaths: f.paths,
		Include:     f.include,
		Exclude:     f.exclude,
		Omit:        f.omit,
		Abstract:    f.abstract,
		Parser:      f.parser,
		Format:      f.format,
		LogLevel:    f.logLevel,
		LogFormat:   f.logFormat,
		LogDir:      f.logDir,
		Telemetry:   f.telemetry,
		MetricsFile: f.metricsFile,
		Strict:      f.strict,
		Quiet:       f.quiet,
	}
}

// newRootCmd builds the inheritgraph command tree.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "inheritgraph [flags] [OUTPUT]",
		Short: "Draw the class inheritance hierarchy of a Python source tree",
		Long: `inheritgraph scans Python sources for class declarations and writes
their inheritance hierarchy as a Graphviz DOT digraph (or Mermaid, or JSON).

Classes can be narrowed to the descendants of --include names and pruned of
the descendants of --exclude names. Names ending in "Mixin" are drawn dashed;
--abstract names are drawn filled. The diagram goes to OUTPUT, or stdout.`,
		Example: `  inheritgraph -p src -i Robot robots.dot
  inheritgraph -p lib -x Thread --format mermaid
  inheritgraph --watch -p src diagram.dot

In --watch mode OUTPUT is required; it is rewritten after every change.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError(fmt.Errorf("accepts at most one OUTPUT argument, received %d", len(args)))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := ""
			if len(args) == 1 {
				output = args[0]
			}
			if flags.watch && output == "" {
				return usageError(errors.New("--watch requires an OUTPUT file"))
			}
			return runRoot(cmd, flags, output)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	f := cmd.Flags()
	f.StringArrayVarP(&flags.paths, "path", "p", nil, `directory or file to scan; repeatable (default "src")`)
	f.StringArrayVarP(&flags.include, "include", "i", nil, "keep only descendants of NAME; repeatable")
	f.StringArrayVarP(&flags.exclude, "exclude", "x", nil, "drop descendants of NAME; repeatable")
	f.StringArrayVarP(&flags.omit, "omit", "o", nil, "remove NAME entirely, added to the built-in omissions; repeatable")
	f.StringArrayVarP(&flags.abstract, "abstract", "a", nil, "draw NAME as abstract; repeatable")
	f.StringVar(&flags.format, "format", "", "output format: "+formatList()+` (default "dot")`)
	f.StringVar(&flags.parser, "parser", "", `declaration parser: lexical or tree-sitter (default "lexical")`)
	f.StringVar(&flags.configPath, "config", "", "YAML or TOML config file (default: ./inheritgraph.{yaml,yml,toml})")
	f.StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	f.BoolVar(&flags.strict, "strict", false, "fail on inheritance cycles and on source files too large or not valid text")
	f.BoolVar(&flags.watch, "watch", false, "re-render OUTPUT whenever a source file changes")
	f.BoolVar(&flags.stats, "stats", false, "print a run summary to stderr")
	f.StringVar(&flags.logLevel, "log-level", "", `debug, info, warn or error (default "warn")`)
	f.StringVar(&flags.logFormat, "log-format", "", `stderr log format: text or json (default "text")`)
	f.StringVar(&flags.logDir, "log-dir", "", "also write a daily JSON log file to this directory")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "no log output on stderr; the log file is still written")
	f.StringVar(&flags.telemetry, "telemetry", "", `trace and metric exporter: none, stdout or otlp (default "none")`)
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus text-format metrics to this file after each run")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inheritgraph version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inheritgraph %s\n", version)
		},
	}
}

// runRoot resolves configuration, sets up logging and telemetry, then runs
// the pipeline once or in watch mode.
func runRoot(cmd *cobra.Command, flags *rootFlags, output string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	if err := config.LoadEnv(flags.envFile); err != nil {
		return usageError(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	base, cfgPath, err := config.Resolve(flags.configPath, wd)
	if err != nil {
		return usageError(err)
	}
	cfg := base.Merge(flags.overrides())

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return usageError(err)
	}
	logger := logging.New(logging.Config{
		Level:   level,
		Service: "inheritgraph",
		JSON:    cfg.LogFormat == "json",
		Quiet:   cfg.Quiet,
		LogDir:  cfg.LogDir,
		Writer:  stderr,
	})
	defer logger.Close()
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}

	p, err := newPipeline(cfg, logger, cmd.OutOrStdout(), output)
	if err != nil {
		return err
	}
	p.stats = flags.stats
	p.printer = ux.NewPrinter(stderr)

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.Exporter = cfg.Telemetry
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.MetricsFile = cfg.MetricsFile
	tcfg.Writer = stderr
	provider, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return usageError(err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err.Error())
		}
	}()
	p.provider = provider
	if cfg.Telemetry != telemetry.ExporterNone || cfg.MetricsFile != "" {
		if p.metrics, err = telemetry.NewMetrics(otel.Meter(tracerName)); err != nil {
			return err
		}
	}

	if flags.watch {
		return watchLoop(ctx, p)
	}
	_, err = p.run(ctx)
	return err
}

func formatList() string {
	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
