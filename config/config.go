// Copyright 2026 The Waymark Authors
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

// Package config holds the routing engine's configuration surface and a
// file loader for it.
//
// The engine consumes this configuration; it does not own it. Values
// load from a YAML or TOML file (selected by extension), are filled
// with defaults, and can be overridden per-field from WAYMARK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"

	"github.com/waymark-dev/waymark/route"
)

// ErrUnknownFormat indicates a config file extension with no codec.
var ErrUnknownFormat = errors.New("unknown config file format")

// Config is the engine's configuration surface.
//
// Debug enables verbose diagnostics only; it never changes matching
// behavior.
type Config struct {
	StrictSubdomains  bool     `yaml:"strict_subdomains" toml:"strict_subdomains" mapstructure:"strict_subdomains"`
	AllowedSubdomains []string `yaml:"allowed_subdomains" toml:"allowed_subdomains" mapstructure:"allowed_subdomains"`
	BaseDomain        string   `yaml:"base_domain" toml:"base_domain" mapstructure:"base_domain"`
	CacheDirectory    string   `yaml:"cache_directory" toml:"cache_directory" mapstructure:"cache_directory"`
	Debug             bool     `yaml:"debug" toml:"debug" mapstructure:"debug"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() Config {
	return Config{
		CacheDirectory: filepath.Join(os.TempDir(), "waymark-routes"),
	}
}

// Load reads a configuration file, fills unset fields from Default, and
// applies environment overrides. The format is selected by extension:
// .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	raw := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("decode yaml config %q: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("decode toml config %q: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode config %q: %w", path, err)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("merge config defaults: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides individual fields from WAYMARK_* variables.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("WAYMARK_STRICT_SUBDOMAINS"); ok {
		c.StrictSubdomains = cast.ToBool(v)
	}
	if v, ok := os.LookupEnv("WAYMARK_ALLOWED_SUBDOMAINS"); ok {
		c.AllowedSubdomains = splitList(v)
	}
	if v, ok := os.LookupEnv("WAYMARK_BASE_DOMAIN"); ok {
		c.BaseDomain = v
	}
	if v, ok := os.LookupEnv("WAYMARK_CACHE_DIRECTORY"); ok {
		c.CacheDirectory = v
	}
	if v, ok := os.LookupEnv("WAYMARK_DEBUG"); ok {
		c.Debug = cast.ToBool(v)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that every allow-listed subdomain is a valid single
// DNS label and that strict mode has an allow-list to enforce.
func (c *Config) Validate() error {
	for _, s := range c.AllowedSubdomains {
		if !route.ValidSubdomainLabel(s) {
			return fmt.Errorf("%w: %q in allowed_subdomains", route.ErrInvalidSubdomain, s)
		}
	}
	if c.StrictSubdomains && len(c.AllowedSubdomains) == 0 {
		return errors.New("strict_subdomains requires a non-empty allowed_subdomains list")
	}
	return nil
}
