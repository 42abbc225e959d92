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

package waymark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymark-dev/waymark/config"
)

func TestURLStatic(t *testing.T) {
	t.Parallel()

	e := MustNew()
	require.NoError(t, e.AddRoute("GET", "/api/health", "health", nil, "health", ""))
	require.NoError(t, e.AddRoute("GET", "/", "root", nil, "root", ""))

	// Reverse routing works before Freeze too.
	u, err := e.URL("health", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/health", u)

	u, err = e.URL("root", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", u)

	e.Freeze()
	u, err = e.URL("health", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/health", u)
}

func TestURLWithParams(t *testing.T) {
	t.Parallel()

	e := MustNew()
	require.NoError(t, e.AddRoute("GET", "/blog/{year:int}/{month:int}/{slug:slug}", "blog.show", nil, "blog_show", ""))
	e.Freeze()

	u, err := e.URL("blog_show", map[string]string{
		"year":  "2024",
		"month": "12",
		"slug":  "frohe-weihnachten",
	})
	require.NoError(t, err)
	assert.Equal(t, "/blog/2024/12/frohe-weihnachten", u)

	// The generated URL matches back to the same route.
	m, err := e.Match("GET", "", u)
	require.NoError(t, err)
	assert.Equal(t, "blog.show", m.HandlerID)
	assert.Equal(t, map[string]string{
		"year":  "2024",
		"month": "12",
		"slug":  "frohe-weihnachten",
	}, m.Params)
}

func TestURLEscapesValues(t *testing.T) {
	t.Parallel()

	e := MustNew()
	require.NoError(t, e.AddRoute("GET", "/files/{name}", "files.show", nil, "files_show", ""))

	u, err := e.URL("files_show", map[string]string{"name": "annual report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "/files/annual%20report.pdf", u)
}

func TestURLMissingParameter(t *testing.T) {
	t.Parallel()

	e := MustNew()
	require.NoError(t, e.AddRoute("GET", "/user/{id:int}", "user.show", nil, "user_show", ""))

	_, err := e.URL("user_show", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = e.URL("user_show", map[string]string{"uid": "7"})
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestURLUnknownName(t *testing.T) {
	t.Parallel()

	e := MustNew()
	_, err := e.URL("nope", nil)
	assert.ErrorIs(t, err, ErrRouteNameUnknown)
}

func TestURLSubdomainRoutes(t *testing.T) {
	t.Parallel()

	e := MustNew(WithConfig(config.Config{BaseDomain: "example.com"}))
	require.NoError(t, e.AddRoute("GET", "/status", "api.status", nil, "api_status", "api"))
	require.NoError(t, e.AddRoute("GET", "/plain", "plain", nil, "plain", ""))

	u, err := e.URL("api_status", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/status", u)

	// Unconstrained routes stay path-only.
	u, err = e.URL("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "/plain", u)

	// An explicit override replaces the route's own constraint.
	u, err = e.URLWithSubdomain("api_status", nil, "staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/status", u)

	u, err = e.URLWithSubdomain("plain", nil, "api")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/plain", u)
}
