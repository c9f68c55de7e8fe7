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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📦 Profile is the on-disk counterpart of Config: everything but the source
// path, which is always given on the command line.
type Profile struct {
	Destination string   `yaml:"destination" hcl:"destination,optional"`
	Overwrite   bool     `yaml:"overwrite" hcl:"overwrite,optional"`
	Transform   string   `yaml:"transform" hcl:"transform,optional"`
	Allow       []string `yaml:"allow" hcl:"allow,optional"`
	Deny        []string `yaml:"deny" hcl:"deny,optional"`
	Ignore      []string `yaml:"ignore" hcl:"ignore,optional"`
	Limit       int      `yaml:"limit" hcl:"limit,optional"`
}

// 🔌 Parser is the interface for profile parsers
type Parser interface {
	// 📝 Parse parses the profile from bytes
	Parse(ctx context.Context, data []byte) (*Profile, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered parsers
var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 LoadProfile loads a profile file, choosing a parser by extension.
func LoadProfile(ctx context.Context, path string) (*Profile, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading profile")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading profile file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	profile, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing profile: %w", err)
	}

	if profile.Transform != "" {
		if _, err := ParseTransformKind(profile.Transform); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Profile, error) {
	var profile Profile
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &profile, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Profile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "profile.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var profile Profile
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &profile)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &profile, nil
}
