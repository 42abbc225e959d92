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

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/waymark-dev/waymark/route"
)

func testDefinitions(t *testing.T) []*route.Definition {
	t.Helper()

	specs := []route.Spec{
		{Method: "GET", Path: "/api/health", HandlerID: "health", Name: "health"},
		{Method: "GET", Path: "/user/{id:int}", HandlerID: "user.show", Name: "user_show"},
		{Method: "POST", Path: "/blog/{year:int}/{slug:slug}", HandlerID: "blog.create", Subdomain: "api"},
	}

	defs := make([]*route.Definition, 0, len(specs))
	for _, s := range specs {
		d, err := route.Compile(s)
		require.NoError(t, err)
		defs = append(defs, d)
	}
	return defs
}

func TestStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	defs := testDefinitions(t)
	require.NoError(t, c.Store(defs, "fp-1"))

	loaded, err := c.Load("fp-1")
	require.NoError(t, err)
	require.Len(t, loaded, len(defs))

	for i, d := range defs {
		assert.Equal(t, d.Method, loaded[i].Method)
		assert.Equal(t, d.Template, loaded[i].Template)
		assert.Equal(t, d.Segments, loaded[i].Segments)
		assert.Equal(t, d.ParamNames, loaded[i].ParamNames)
		assert.Equal(t, d.HandlerID, loaded[i].HandlerID)
		assert.Equal(t, d.Name, loaded[i].Name)
		assert.Equal(t, d.Subdomain, loaded[i].Subdomain)
	}
}

func TestLoadFingerprintMismatchIsMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Store(testDefinitions(t), "fp-1"))

	defs, err := c.Load("fp-2")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Nil(t, defs)

	assert.True(t, c.IsValid("fp-1"))
	assert.False(t, c.IsValid("fp-2"))
}

func TestLoadAbsentIsMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = c.Load("fp-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLoadCorruptIsMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(c.Path(), []byte("not msgpack at all"), 0o644))

	_, err = c.Load("fp-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLoadSchemaMismatchIsMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	data, err := msgpack.Marshal(&Record{
		SchemaVersion: SchemaVersion + 1,
		Fingerprint:   "fp-1",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.Path(), data, 0o644))

	_, err = c.Load("fp-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStoreReplacesPreviousRecord(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	defs := testDefinitions(t)
	require.NoError(t, c.Store(defs, "fp-1"))
	require.NoError(t, c.Store(defs[:1], "fp-2"))

	_, err = c.Load("fp-1")
	assert.ErrorIs(t, err, ErrMiss)

	loaded, err := c.Load("fp-2")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, c.Store(testDefinitions(t), "fp-1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestClear(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	// Clearing an absent record is fine.
	require.NoError(t, c.Clear())

	require.NoError(t, c.Store(testDefinitions(t), "fp-1"))
	require.NoError(t, c.Clear())

	_, err = c.Load("fp-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	_, err := New(dir)
	require.NoError(t, err)

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestFingerprintStable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := []SourceInput{
		{Path: "/app/routes/users.def", ModTime: now},
		{Path: "/app/routes/blog.def", ModTime: now.Add(-time.Hour)},
	}
	b := []SourceInput{a[1], a[0]} // reversed discovery order

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintChangesWithInputs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	base := []SourceInput{{Path: "/app/routes/users.def", ModTime: now}}

	touched := []SourceInput{{Path: "/app/routes/users.def", ModTime: now.Add(time.Second)}}
	assert.NotEqual(t, Fingerprint(base), Fingerprint(touched))

	added := append([]SourceInput{}, base...)
	added = append(added, SourceInput{Path: "/app/routes/blog.def", ModTime: now})
	assert.NotEqual(t, Fingerprint(base), Fingerprint(added))
}

func TestFingerprintFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "routes.def")
	require.NoError(t, os.WriteFile(f, []byte("GET /x handler"), 0o644))

	fp1 := FingerprintFiles([]string{f})
	assert.NotEmpty(t, fp1)
	assert.Equal(t, fp1, FingerprintFiles([]string{f}))

	// A missing file participates with a zero mtime instead of failing.
	missing := FingerprintFiles([]string{filepath.Join(dir, "gone.def")})
	assert.NotEmpty(t, missing)
	assert.NotEqual(t, fp1, missing)
}
