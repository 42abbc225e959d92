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

// Package cache persists a compiled route table across process
// lifetimes.
//
// The persisted record carries a schema version and a fingerprint
// computed over the discovery inputs that produced the table. Loading
// with a mismatched fingerprint or schema version is a miss, never an
// error that blocks startup: the caller falls back to recompiling from
// the original declarations. Writes publish atomically (temp file, then
// rename) so concurrent readers in other worker processes never observe
// a half-written record.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/waymark-dev/waymark/route"
)

// SchemaVersion identifies the record layout. Bump on any incompatible
// change to Record or route.Definition serialization; old records then
// read as misses and are recompiled.
const SchemaVersion = 1

// FileName is the cache record's name inside the cache directory.
const FileName = "routes.cache"

// ErrMiss indicates that no usable cache record exists: absent file,
// undecodable record, or a schema/fingerprint mismatch. Always
// recoverable by recompiling.
var ErrMiss = errors.New("route cache miss")

// Record is the serialized form of a compiled route table.
type Record struct {
	SchemaVersion int                 `msgpack:"schema_version"`
	Fingerprint   string              `msgpack:"fingerprint"`
	Routes        []*route.Definition `msgpack:"routes"`
}

// Cache reads and writes route table records under one directory.
// The persisted file is a cross-process shared resource; all methods
// are safe to call from multiple processes concurrently.
type Cache struct {
	dir string
	log *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for recovery notices. Cache I/O
// failures are never fatal; they are logged and reported as misses.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{dir: dir, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}
	return c, nil
}

// Path returns the location of the cache record file.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, FileName)
}

// Store serializes the definitions under the given fingerprint and
// atomically publishes the record. The record is written to a temporary
// file in the same directory and renamed into place, so a reader either
// sees the previous complete record or the new one, never a partial
// write.
func (c *Cache) Store(defs []*route.Definition, fingerprint string) error {
	data, err := msgpack.Marshal(&Record{
		SchemaVersion: SchemaVersion,
		Fingerprint:   fingerprint,
		Routes:        defs,
	})
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync cache record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache record: %w", err)
	}
	return nil
}

// Load reads the record and returns its definitions if the fingerprint
// and schema version both match. Every failure mode short of a matching
// record returns ErrMiss; corrupted or stale records are logged, never
// propagated.
func (c *Cache) Load(fingerprint string) ([]*route.Definition, error) {
	rec, err := c.read()
	if err != nil {
		return nil, err
	}

	if rec.Fingerprint != fingerprint {
		c.log.Debug("route cache fingerprint mismatch",
			"path", c.Path(), "want", fingerprint, "got", rec.Fingerprint)
		return nil, ErrMiss
	}

	return rec.Routes, nil
}

// IsValid reports whether a usable record exists for the fingerprint.
func (c *Cache) IsValid(fingerprint string) bool {
	rec, err := c.read()
	return err == nil && rec.Fingerprint == fingerprint
}

// Clear removes the cache record. Removing an absent record is not an
// error.
func (c *Cache) Clear() error {
	if err := os.Remove(c.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear route cache: %w", err)
	}
	return nil
}

func (c *Cache) read() (*Record, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("route cache unreadable, recompiling", "path", c.Path(), "error", err)
		}
		return nil, ErrMiss
	}

	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		c.log.Warn("route cache corrupted, recompiling", "path", c.Path(), "error", err)
		return nil, ErrMiss
	}

	if rec.SchemaVersion != SchemaVersion {
		c.log.Debug("route cache schema mismatch, recompiling",
			"path", c.Path(), "want", SchemaVersion, "got", rec.SchemaVersion)
		return nil, ErrMiss
	}

	return &rec, nil
}
