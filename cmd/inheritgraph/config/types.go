// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
)

// Environment variables read after .env files are loaded.
const (
	EnvConfigPath = "INHERITGRAPH_CONFIG"
	EnvLogLevel   = "INHERITGRAPH_LOG_LEVEL"
)

// DiscoverNames are the config file names looked up by Discover, in order.
var DiscoverNames = []string{"inheritgraph.yaml", "inheritgraph.yml", "inheritgraph.toml"}

var (
	// ErrInvalidConfig indicates a config that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownConfigFormat indicates a config file extension that is
	// neither YAML nor TOML.
	ErrUnknownConfigFormat = errors.New("unknown config format")
)

// Config is the inheritgraph configuration.
//
// Every field can be set in a YAML or TOML file. CLI flags are applied on top
// with Merge.
type Config struct {
	// SearchPaths are the directories or files scanned for declarations.
	SearchPaths []string `yaml:"search_paths" toml:"search_paths" validate:"min=1,dive,required"`

	// Include keeps classes descending from any of these names.
	Include []string `yaml:"include" toml:"include" validate:"dive,required,classname"`

	// Exclude drops classes descending from any of these names.
	Exclude []string `yaml:"exclude" toml:"exclude" validate:"dive,required,classname"`

	// Omit names are removed from the map entirely, as keys and as bases.
	Omit []string `yaml:"omit" toml:"omit" validate:"dive,required,classname"`

	// Abstract names are drawn in the abstract style.
	Abstract []string `yaml:"abstract" toml:"abstract" validate:"dive,required,classname"`

	// Parser selects the declaration extractor.
	Parser string `yaml:"parser" toml:"parser" validate:"oneof=lexical tree-sitter"`

	// Extensions limits the scanned files. Empty means the extractor's
	// defaults (.py and .pyi).
	Extensions []string `yaml:"extensions" toml:"extensions" validate:"dive,startswith=."`

	// IgnoreDirs are directory names never descended into. Empty means the
	// builder's defaults.
	IgnoreDirs []string `yaml:"ignore_dirs" toml:"ignore_dirs" validate:"dive,required"`

	// MaxFileSize caps a single source file in bytes. Zero means the
	// extractor's default.
	MaxFileSize int64 `yaml:"max_file_size" toml:"max_file_size" validate:"gte=0"`

	// Format selects the output format.
	Format string `yaml:"format" toml:"format" validate:"oneof=dot mermaid json"`

	// MixinSuffix marks a class name as a mixin.
	MixinSuffix string `yaml:"mixin_suffix" toml:"mixin_suffix" validate:"required"`

	// Direction is the graph layout direction.
	Direction string `yaml:"direction" toml:"direction" validate:"oneof=RL LR TB BT"`

	// Strict fails the run when the hierarchy contains a cycle.
	Strict bool `yaml:"strict" toml:"strict"`

	// LogLevel is the minimum level written to stderr.
	LogLevel string `yaml:"log_level" toml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects text or JSON records on stderr.
	LogFormat string `yaml:"log_format" toml:"log_format" validate:"oneof=text json"`

	// LogDir, when set, also receives a daily JSON log file.
	LogDir string `yaml:"log_dir" toml:"log_dir"`

	// Quiet silences log output on stderr. The log file is still written.
	Quiet bool `yaml:"quiet" toml:"quiet"`

	// Telemetry selects the trace and metric exporter.
	Telemetry string `yaml:"telemetry" toml:"telemetry" validate:"oneof=none stdout otlp"`

	// OTLPEndpoint is the collector address used when Telemetry is "otlp".
	OTLPEndpoint string `yaml:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Telemetry otlp"`

	// MetricsFile receives Prometheus text-format metrics after each run.
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
}

// Overrides carries values given on the command line. Empty fields leave the
// config untouched.
type Overrides struct {
	SearchPaths []string
	Include     []string
	Exclude     []string
	Omit        []string
	Abstract    []string
	Parser      string
	Format      string
	LogLevel    string
	LogFormat   string
	LogDir      string
	Telemetry   string
	MetricsFile string
	Strict      bool
	Quiet       bool
}

// DefaultOmit is the built-in omission set: universal roots and typing
// helpers that would otherwise connect every class.
func DefaultOmit() []string {
	return []string{
		"object",
		"type",
		"ABC",
		"ABCMeta",
		"Generic",
		"Protocol",
		"Exception",
		"BaseException",
	}
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		SearchPaths:  []string{"src"},
		Include:      []string{},
		Exclude:      []string{},
		Omit:         DefaultOmit(),
		Abstract:     []string{},
		Parser:       "lexical",
		Extensions:   []string{},
		IgnoreDirs:   []string{},
		Format:       "dot",
		MixinSuffix:  "Mixin",
		Direction:    "RL",
		LogLevel:     "warn",
		LogFormat:    "text",
		Telemetry:    "none",
		OTLPEndpoint: "localhost:4317",
	}
}
