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
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/inheritgraph/pkg/validation"
)

// configValidate reports field errors by their YAML names.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	configValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// classname: an identifier or dotted path, see validation.ValidateClassName.
	_ = configValidate.RegisterValidation("classname", func(fl validator.FieldLevel) bool {
		return validation.IsClassName(fl.Field().String())
	})
}

// Load reads a config file on top of DefaultConfig.
//
// # Description
//
// The decoder is picked by extension: .yaml and .yml use YAML, .toml uses
// TOML. Fields absent from the file keep their defaults; list fields present
// in the file replace the default list, so an explicit omit list replaces
// the built-in omission set.
//
// # Outputs
//
//   - Config: The decoded configuration. Not validated.
//   - error: Read, decode or ErrUnknownConfigFormat errors, wrapped with the path.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse yaml config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse toml config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	return cfg, nil
}

// Discover returns the first of DiscoverNames present in dir, or "" when
// none exists.
func Discover(dir string) string {
	for _, name := range DiscoverNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadEnv loads the given .env files into the process environment. Missing
// files are skipped. Variables already set are not overwritten.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// Resolve finds and loads the effective configuration.
//
// # Description
//
// The file is, in order: explicit, $INHERITGRAPH_CONFIG, the result of
// Discover(dir). With none of them the defaults are used.
// $INHERITGRAPH_LOG_LEVEL overrides the file's log level.
//
// # Outputs
//
//   - Config: The configuration. Not validated.
//   - string: The file it was read from, or "" for defaults.
//   - error: Non-nil if a named file cannot be loaded.
func Resolve(explicit, dir string) (Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = Discover(dir)
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, path, err
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(lvl))
	}
	return cfg, path, nil
}

// Validate checks every field constraint.
//
// # Outputs
//
//   - error: ErrInvalidConfig listing each failing field, or nil.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Merge returns a copy of c with command-line overrides applied.
//
// # Description
//
// Search paths given on the command line replace the configured ones.
// Include, exclude, omit and abstract names are added to the configured
// lists, with surrounding whitespace trimmed from well-formed names.
// Non-empty scalar overrides replace the configured value; Strict and
// Quiet can only be switched on.
func (c Config) Merge(o Overrides) Config {
	out := c
	out.SearchPaths = append([]string(nil), c.SearchPaths...)
	if len(o.SearchPaths) > 0 {
		out.SearchPaths = append([]string(nil), o.SearchPaths...)
	}
	out.Include = appendUnique(cleanNames(c.Include), cleanNames(o.Include))
	out.Exclude = appendUnique(cleanNames(c.Exclude), cleanNames(o.Exclude))
	out.Omit = appendUnique(cleanNames(c.Omit), cleanNames(o.Omit))
	out.Abstract = appendUnique(cleanNames(c.Abstract), cleanNames(o.Abstract))
	out.Extensions = append([]string(nil), c.Extensions...)
	out.IgnoreDirs = append([]string(nil), c.IgnoreDirs...)

	if o.Parser != "" {
		out.Parser = strings.ToLower(o.Parser)
	}
	if o.Format != "" {
		out.Format = strings.ToLower(o.Format)
	}
	if o.LogLevel != "" {
		out.LogLevel = strings.ToLower(o.LogLevel)
	}
	if o.LogFormat != "" {
		out.LogFormat = strings.ToLower(o.LogFormat)
	}
	if o.LogDir != "" {
		out.LogDir = o.LogDir
	}
	if o.Telemetry != "" {
		out.Telemetry = strings.ToLower(o.Telemetry)
	}
	if o.MetricsFile != "" {
		out.MetricsFile = o.MetricsFile
	}
	out.Strict = c.Strict || o.Strict
	out.Quiet = c.Quiet || o.Quiet
	return out
}

// cleanNames trims well-formed class names. Malformed entries are kept as
// given so Validate reports them.
func cleanNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if clean, err := validation.SanitizeClassName(n); err == nil {
			out[i] = clean
		} else {
			out[i] = n
		}
	}
	return out
}

// appendUnique returns base followed by the entries of extra not yet seen.
func appendUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
