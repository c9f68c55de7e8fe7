// Copyright 2025 the arcport authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the immutable run configuration for arcport.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔄 TransformKind is the file materialization operation applied per job.
type TransformKind string

const (
	TransformCopy     TransformKind = "copy"
	TransformMove     TransformKind = "move"
	TransformHardlink TransformKind = "hardlink"
)

// 📝 ParseTransformKind parses a user-supplied transform name
func ParseTransformKind(s string) (TransformKind, error) {
	switch TransformKind(strings.ToLower(strings.TrimSpace(s))) {
	case TransformCopy:
		return TransformCopy, nil
	case TransformMove:
		return TransformMove, nil
	case TransformHardlink:
		return TransformHardlink, nil
	default:
		return "", errors.Errorf("unknown transform %q (want copy, move or hardlink)", s)
	}
}

func (k TransformKind) String() string {
	return string(k)
}

// 📚 Config is the complete run configuration. It is constructed once in
// cmd/arcport and passed by value afterwards; nothing mutates it mid-run.
type Config struct {
	Source      string        // root of the fanbox-dl source archive
	Destination string        // root of the destination archive tree
	Overwrite   bool          // replace existing destination files
	Transform   TransformKind // copy, move or hardlink
	Allow       []string      // creator IDs to include (empty = all)
	Deny        []string      // creator IDs to exclude, wins over Allow
	Ignore      []string      // doublestar globs for files to skip during scan
	Limit       int           // max concurrent transform operations
}

const (
	DefaultDestination = "./archive"
	DefaultLimit       = 5
)

// 🔍 Validate checks required fields, applies defaults and cleans paths.
func (cfg *Config) Validate() error {
	if cfg.Source == "" {
		return errors.New("source path is required")
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination
	}
	if cfg.Transform == "" {
		cfg.Transform = TransformCopy
	}
	if _, err := ParseTransformKind(string(cfg.Transform)); err != nil {
		return err
	}
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Limit < 0 {
		return errors.Errorf("limit must be positive, got %d", cfg.Limit)
	}

	cfg.Source = filepath.Clean(cfg.Source)
	cfg.Destination = filepath.Clean(cfg.Destination)

	return nil
}

// 🧩 ApplyProfile fills values the command line left unset from a profile
// file. Flags always win over the profile.
func (cfg *Config) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	if cfg.Destination == "" && p.Destination != "" {
		cfg.Destination = p.Destination
	}
	if !cfg.Overwrite && p.Overwrite {
		cfg.Overwrite = true
	}
	if cfg.Transform == "" && p.Transform != "" {
		cfg.Transform = TransformKind(p.Transform)
	}
	if len(cfg.Allow) == 0 {
		cfg.Allow = append(cfg.Allow, p.Allow...)
	}
	if len(cfg.Deny) == 0 {
		cfg.Deny = append(cfg.Deny, p.Deny...)
	}
	if len(cfg.Ignore) == 0 {
		cfg.Ignore = append(cfg.Ignore, p.Ignore...)
	}
	if cfg.Limit == 0 && p.Limit != 0 {
		cfg.Limit = p.Limit
	}
}

// 🌍 ApplyEnv fills source and destination from the environment when the
// command line left them unset. A .env file is honored via godotenv in
// cmd/arcport before this runs.
func (cfg *Config) ApplyEnv() {
	if cfg.Source == "" {
		cfg.Source = strings.TrimSpace(os.Getenv("ARCPORT_INPUT"))
	}
	if cfg.Destination == "" {
		cfg.Destination = strings.TrimSpace(os.Getenv("ARCPORT_OUTPUT"))
	}
}

// 📝 String returns a one-line description of the run
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%s, overwrite=%v, limit=%d)",
		cfg.Source, cfg.Destination, cfg.Transform, cfg.Overwrite, cfg.Limit)
}
