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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymark-dev/waymark/route"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "waymark.yaml", `
strict_subdomains: true
allowed_subdomains:
  - api
  - admin
base_domain: example.com
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.StrictSubdomains)
	assert.Equal(t, []string{"api", "admin"}, cfg.AllowedSubdomains)
	assert.Equal(t, "example.com", cfg.BaseDomain)
	assert.True(t, cfg.Debug)

	// Unset fields come from defaults.
	assert.Equal(t, Default().CacheDirectory, cfg.CacheDirectory)
}

func TestLoadTOML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "waymark.toml", `
strict_subdomains = false
base_domain = "example.org"
cache_directory = "/var/cache/waymark"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.StrictSubdomains)
	assert.Equal(t, "example.org", cfg.BaseDomain)
	assert.Equal(t, "/var/cache/waymark", cfg.CacheDirectory)
}

func TestLoadUnknownExtension(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "waymark.ini", "base_domain=example.com\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bad.yaml", "allowed_subdomains: [unterminated\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	// t.Setenv forbids t.Parallel.
	t.Setenv("WAYMARK_STRICT_SUBDOMAINS", "true")
	t.Setenv("WAYMARK_ALLOWED_SUBDOMAINS", "api, admin ,web")
	t.Setenv("WAYMARK_BASE_DOMAIN", "env.example.com")
	t.Setenv("WAYMARK_DEBUG", "1")

	path := writeConfig(t, "waymark.yaml", `
base_domain: file.example.com
strict_subdomains: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.StrictSubdomains)
	assert.Equal(t, []string{"api", "admin", "web"}, cfg.AllowedSubdomains)
	assert.Equal(t, "env.example.com", cfg.BaseDomain)
	assert.True(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{AllowedSubdomains: []string{"api", "Bad.Label"}}
	err := cfg.Validate()
	assert.ErrorIs(t, err, route.ErrInvalidSubdomain)

	cfg = Config{StrictSubdomains: true}
	assert.Error(t, cfg.Validate())

	cfg = Config{StrictSubdomains: true, AllowedSubdomains: []string{"api"}}
	assert.NoError(t, cfg.Validate())

	def := Default()
	assert.NoError(t, def.Validate())
}

func TestLoadRejectsInvalidAllowList(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "waymark.yaml", `
allowed_subdomains:
  - "has.dots"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, route.ErrInvalidSubdomain)
}
